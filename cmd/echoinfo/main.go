// Command echoinfo renders the impulse response of the echo processor and
// prints its self-test log, echo taps and magnitude response summary.
//
// Usage:
//
//	echoinfo [flags]
//
// Examples:
//
//	echoinfo
//	echoinfo -length 0.25 -feedback 0.7
//	echoinfo -rate 44100 -duration 4 -taps
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/echo"
	"github.com/cwbudde/algo-echo/measure/ir"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	length := flag.Float64("length", echo.DefaultDelaySeconds, "delay length in seconds")
	feedback := flag.Float64("feedback", echo.DefaultFeedback, "feedback gain")
	duration := flag.Float64("duration", 6, "rendered impulse response length in seconds")
	fftSize := flag.Int("fft", 8192, "FFT size for the magnitude response")
	showTaps := flag.Bool("taps", false, "list every detected tap")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: echoinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders the echo impulse response and prints its properties.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(*rate), core.WithBlockSize(*block))
	opts := renderOptions{
		config:   cfg,
		length:   *length,
		feedback: *feedback,
		samples:  int(math.Round(*duration * cfg.SampleRate)),
	}

	p := echo.New(echo.WithChannels(1))
	printSelfTest(p)

	response, err := render(p, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printAnalysis(p, response, *fftSize, *showTaps); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type renderOptions struct {
	config   core.ProcessorConfig
	length   float64
	feedback float64
	samples  int
}

// render feeds a unit impulse through p block by block and returns the
// single-channel output.
func render(p *echo.Processor, opts renderOptions) ([]float64, error) {
	if err := p.Prepare(opts.config); err != nil {
		return nil, err
	}
	p.SetDelayLength(opts.length)
	p.SetFeedback(opts.feedback)

	out := make([]float64, opts.samples)
	if len(out) > 0 {
		out[0] = 1
	}
	for start := 0; start < len(out); start += opts.config.BlockSize {
		end := min(start+opts.config.BlockSize, len(out))
		p.ProcessBlock([][]float64{out[start:end]})
	}
	return out, nil
}

func printSelfTest(p *echo.Processor) {
	fmt.Println("Self-test")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Check\tResult\tDetail\n")
	for _, e := range p.TestLog() {
		result := "pass"
		if !e.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", e.Name, result, e.Message)
	}
	w.Flush()
	fmt.Printf("  output enabled: %v\n\n", p.IsOutputEnabled())
}

func printAnalysis(p *echo.Processor, response []float64, fftSize int, showTaps bool) error {
	a := ir.NewAnalyzer(p.SampleRate())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Delay length\t%.4f s\t(%d samples)\n", p.DelayLength(), p.ActiveLength(0))
	fmt.Fprintf(w, "Echo delay\t%.4f s\t(%d samples)\n", p.EchoDelaySeconds(), p.DelaySamples(0))
	fmt.Fprintf(w, "Feedback\t%.4f\n", p.Feedback())
	fmt.Fprintf(w, "Capacity\t%d samples\n", p.Capacity(0))
	fmt.Fprintf(w, "Tail length\t%.1f s\n", p.TailLengthSeconds())

	m, err := a.Analyze(response)
	switch {
	case err == nil:
		fmt.Fprintf(w, "Repeats\t%d\n", len(m.Taps)-1)
		fmt.Fprintf(w, "Interval\t%.4f s\n", m.Interval)
		fmt.Fprintf(w, "Decay\t%.2f dB/repeat\n", m.DecayDB)
		fmt.Fprintf(w, "RT60\t%.2f s\n", m.RT60)
		fmt.Fprintf(w, "Center time\t%.4f s\n", m.CenterTime)
	case errors.Is(err, ir.ErrNoEcho):
		fmt.Fprintf(w, "Repeats\t0\n")
	default:
		return err
	}

	_, magDB, err := a.Response(response, fftSize)
	if err != nil {
		return err
	}
	lo, hi := extrema(magDB)
	fmt.Fprintf(w, "Response max\t%.2f dB\n", hi)
	fmt.Fprintf(w, "Response min\t%.2f dB\n", lo)
	fmt.Fprintf(w, "Comb depth\t%.2f dB\n", hi-lo)
	w.Flush()

	if showTaps && len(m.Taps) > 0 {
		fmt.Println()
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "Tap\tIndex\tTime (s)\tAmplitude\tLevel (dB)\t\n")
		for i, t := range m.Taps {
			fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.6f\t%.2f\t\n", i, t.Index, t.Time, t.Amplitude, t.LevelDB)
		}
		tw.Flush()
	}
	return nil
}

// extrema ignores -Inf bins from exact spectral zeros.
func extrema(x []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if math.IsInf(v, -1) || math.IsNaN(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
