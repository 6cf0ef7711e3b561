package echo_test

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/echo"
)

func ExampleProcessor() {
	p := echo.New(echo.WithChannels(1))
	fmt.Println("output enabled:", p.IsOutputEnabled())

	if err := p.OnSampleRateChanged(100, 10); err != nil {
		fmt.Println("error:", err)
		return
	}
	p.SetDelayLength(0.5) // 50 samples
	p.SetFeedback(0.5)

	block := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	p.ProcessBlock([][]float64{block})
	for i := 0; i < 4; i++ {
		block = make([]float64, 10)
		p.ProcessBlock([][]float64{block})
	}
	fmt.Println(block)

	// Output:
	// output enabled: true
	// [0.5 0 0 0 0 0 0 0 0 0]
}

func ExampleProcessor_TestLog() {
	p := echo.New()
	for _, e := range p.TestLog() {
		fmt.Printf("%-20s %v\n", e.Name, e.Passed)
	}

	// Output:
	// length round-trip    true
	// length clamp         true
	// feedback round-trip  true
	// feedback clamp       true
	// line capacity        true
	// echo                 true
}
