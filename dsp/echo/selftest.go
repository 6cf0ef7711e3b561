package echo

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// TestEntry is one self-test result.
type TestEntry struct {
	Name    string
	Passed  bool
	Message string
}

// Check is one self-test step. Run drives the processor and reports
// whether the step passed, with a diagnostic message either way.
type Check struct {
	Name string
	Run  func(p *Processor) (bool, string)
}

const (
	selfTestTolerance  = 1e-4
	selfTestSampleRate = 100
	selfTestBlockSize  = 10
	selfTestWindow     = 50
)

var selfTestEchoInput = []float64{0.25, 0.5, 1.0, 0.25, 0.5, 1.0, 0.25, 0.5, 1.0, 0.5}

// DefaultChecks returns the startup verification sequence, in order:
// length round-trip and clamp, feedback round-trip and clamp, line
// capacity for a 100 Hz rate, and a full echo through channel 0.
func DefaultChecks() []Check {
	return []Check{
		{Name: "length round-trip", Run: checkLengthRoundTrip},
		{Name: "length clamp", Run: checkLengthClamp},
		{Name: "feedback round-trip", Run: checkFeedbackRoundTrip},
		{Name: "feedback clamp", Run: checkFeedbackClamp},
		{Name: "line capacity", Run: checkCapacity},
		{Name: "echo", Run: checkEcho},
	}
}

// runSelfTest executes checks in order. A panic aborts the sequence and
// counts as a failure. Parameters and line state are restored afterwards
// whatever the outcome; only the output gate keeps the result.
func (p *Processor) runSelfTest(checks []Check) {
	saved := p.params
	savedRate, savedBlock := p.sampleRate, p.blockSize

	defer func() {
		p.params = saved
		p.Release()
		if savedRate > 0 {
			_ = p.OnSampleRateChanged(savedRate, savedBlock)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			p.record(TestEntry{
				Name:    "self-test",
				Message: fmt.Sprintf("self-test aborted: %v", r),
			})
		}
	}()

	for _, c := range checks {
		passed, msg := c.Run(p)
		p.record(TestEntry{Name: c.Name, Passed: passed, Message: msg})
	}
}

func (p *Processor) record(e TestEntry) {
	p.testLog = append(p.testLog, e)
	if e.Passed {
		p.logger.Debug("self-test passed", "check", e.Name, "message", e.Message)
		return
	}
	p.outputEnabled = false
	p.logger.Warn("self-test failed, output muted", "check", e.Name, "message", e.Message)
}

func checkLengthRoundTrip(p *Processor) (bool, string) {
	const want = 2.0
	p.SetDelayLength(want)
	got := p.DelayLength()
	return math.Abs(got-want) <= selfTestTolerance,
		fmt.Sprintf("set length %.4f s, read back %.6f s", want, got)
}

func checkLengthClamp(p *Processor) (bool, string) {
	p.SetDelayLength(MaxDelaySeconds + 1)
	got := p.DelayLength()
	return got == MaxDelaySeconds,
		fmt.Sprintf("set length %d s, read back %.6f s, want %d s", MaxDelaySeconds+1, got, MaxDelaySeconds)
}

func checkFeedbackRoundTrip(p *Processor) (bool, string) {
	const want = 0.4
	p.SetFeedback(want)
	got := p.Feedback()
	return math.Abs(got-want) <= selfTestTolerance,
		fmt.Sprintf("set feedback %.4f, read back %.6f", want, got)
}

func checkFeedbackClamp(p *Processor) (bool, string) {
	p.SetFeedback(1.2)
	got := p.Feedback()
	return got <= MaxFeedback,
		fmt.Sprintf("set feedback 1.2, read back %.6f, limit %.2f", got, MaxFeedback)
}

func checkCapacity(p *Processor) (bool, string) {
	if err := p.OnSampleRateChanged(selfTestSampleRate, selfTestBlockSize); err != nil {
		return false, err.Error()
	}

	want := selfTestSampleRate * MaxDelaySeconds
	for ch, line := range p.lines {
		if got := line.Capacity(); got != want {
			return false, fmt.Sprintf("channel %d capacity %d samples, want %d", ch, got, want)
		}
	}
	return true, fmt.Sprintf("%d Hz allocates %d samples per channel", selfTestSampleRate, want)
}

func checkEcho(p *Processor) (bool, string) {
	if err := p.OnSampleRateChanged(selfTestSampleRate, selfTestBlockSize); err != nil {
		return false, err.Error()
	}
	p.SetFeedback(0.5)
	feedback := p.Feedback()

	line := p.lines[0]
	line.Reset()
	line.SetActiveLength(selfTestWindow)

	expected := make([]float64, selfTestBlockSize)
	vecmath.ScaleBlock(expected, selfTestEchoInput, feedback)

	out := make([]float64, selfTestBlockSize)
	silence := make([]float64, selfTestBlockSize)
	line.Push(out, selfTestEchoInput, feedback)
	for i := 0; i < selfTestWindow/selfTestBlockSize-1; i++ {
		line.Push(out, silence, feedback)
	}

	for i := range out {
		if math.Abs(out[i]-expected[i]) > selfTestTolerance {
			return false, fmt.Sprintf("echo sample %d: got %.6f, want %.6f (block %s, expected %s)",
				i, out[i], expected[i], formatBlock(out), formatBlock(expected))
		}
	}
	return true, fmt.Sprintf("echo returned after %d blocks scaled by %.2f",
		selfTestWindow/selfTestBlockSize, feedback)
}

func formatBlock(x []float64) string {
	return fmt.Sprintf("%.4g", x)
}
