package echo

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-echo/internal/testutil"
)

// wrongEchoCheck mirrors the echo check but expects the feedback gain to
// be applied twice, so it always fails.
func wrongEchoCheck(p *Processor) (bool, string) {
	if err := p.OnSampleRateChanged(selfTestSampleRate, selfTestBlockSize); err != nil {
		return false, err.Error()
	}
	line := p.lines[0]
	line.Reset()
	line.SetActiveLength(selfTestWindow)

	fb := p.Feedback()
	out := make([]float64, selfTestBlockSize)
	line.Push(out, selfTestEchoInput, fb)
	for i := 0; i < selfTestWindow/selfTestBlockSize-1; i++ {
		line.Push(out, make([]float64, selfTestBlockSize), fb)
	}
	for i := range out {
		want := selfTestEchoInput[i] * fb * fb
		if math.Abs(out[i]-want) > selfTestTolerance {
			return false, fmt.Sprintf("echo sample %d: got %.6f, want %.6f", i, out[i], want)
		}
	}
	return true, ""
}

func TestDefaultSelfTestPasses(t *testing.T) {
	p := New()
	if !p.IsOutputEnabled() {
		t.Fatalf("output disabled, log: %+v", p.TestLog())
	}

	log := p.TestLog()
	wantNames := []string{
		"length round-trip",
		"length clamp",
		"feedback round-trip",
		"feedback clamp",
		"line capacity",
		"echo",
	}
	if len(log) != len(wantNames) {
		t.Fatalf("log has %d entries, want %d: %+v", len(log), len(wantNames), log)
	}
	for i, e := range log {
		if e.Name != wantNames[i] {
			t.Fatalf("entry %d name %q, want %q", i, e.Name, wantNames[i])
		}
		if !e.Passed {
			t.Fatalf("entry %q failed: %s", e.Name, e.Message)
		}
		if e.Message == "" {
			t.Fatalf("entry %q has no message", e.Name)
		}
	}
}

func TestSelfTestRestoresState(t *testing.T) {
	p := New()
	if p.DelayLength() != DefaultDelaySeconds {
		t.Fatalf("DelayLength() = %v, want %v", p.DelayLength(), DefaultDelaySeconds)
	}
	if p.Feedback() != DefaultFeedback {
		t.Fatalf("Feedback() = %v, want %v", p.Feedback(), DefaultFeedback)
	}
	if p.SampleRate() != 0 {
		t.Fatalf("SampleRate() = %v, want 0 (unprepared)", p.SampleRate())
	}
	for ch := 0; ch < p.Channels(); ch++ {
		if p.Capacity(ch) != 0 {
			t.Fatalf("channel %d capacity %d, want 0", ch, p.Capacity(ch))
		}
	}
}

func TestSelfTestRestoresPreparedRate(t *testing.T) {
	p := New(WithChannels(1), WithChecks())
	if err := p.OnSampleRateChanged(1000, 64); err != nil {
		t.Fatal(err)
	}
	p.SetDelayLength(0.25)

	p.runSelfTest(DefaultChecks())

	if p.SampleRate() != 1000 || p.Capacity(0) != 5000 || p.ActiveLength(0) != 250 {
		t.Fatalf("rate=%v capacity=%d active=%d", p.SampleRate(), p.Capacity(0), p.ActiveLength(0))
	}
	if p.DelayLength() != 0.25 {
		t.Fatalf("DelayLength() = %v, want 0.25", p.DelayLength())
	}

	// The echo check's residue must not leak into real audio.
	for i := 0; i < 30; i++ {
		block := make([]float64, 64)
		p.ProcessBlock([][]float64{block})
		testutil.RequireSilent(t, block)
	}
}

func TestFailingCheckMutesOutput(t *testing.T) {
	checks := append(DefaultChecks(), Check{Name: "echo twice", Run: wrongEchoCheck})
	p := New(WithChecks(checks...))

	if p.IsOutputEnabled() {
		t.Fatal("output enabled despite failing check")
	}

	log := p.TestLog()
	last := log[len(log)-1]
	if last.Passed || last.Name != "echo twice" {
		t.Fatalf("last entry = %+v, want failing 'echo twice'", last)
	}
	if !strings.Contains(last.Message, "got") || !strings.Contains(last.Message, "want") {
		t.Fatalf("message %q does not describe the mismatch", last.Message)
	}

	// Parameters were restored, yet output stays muted through valid use.
	if p.DelayLength() != DefaultDelaySeconds || p.Feedback() != DefaultFeedback {
		t.Fatalf("parameters not restored: length=%v feedback=%v", p.DelayLength(), p.Feedback())
	}
	if err := p.OnSampleRateChanged(100, 10); err != nil {
		t.Fatal(err)
	}
	p.SetDelayLength(0.5)
	p.SetFeedback(0.3)
	for i := 0; i < 10; i++ {
		block := testutil.DeterministicNoise(int64(i), 1, 10)
		p.ProcessBlock([][]float64{block, testutil.DC(1, 10)})
		testutil.RequireSilent(t, block)
		if p.IsOutputEnabled() {
			t.Fatal("output re-enabled")
		}
	}
}

func TestPanickingCheckAbortsAndMutes(t *testing.T) {
	ran := false
	p := New(WithChecks(
		Check{Name: "ok", Run: func(*Processor) (bool, string) { return true, "fine" }},
		Check{Name: "boom", Run: func(p *Processor) (bool, string) {
			p.lines[0].Push(make([]float64, 4), make([]float64, 4), 0.5)
			return true, ""
		}},
		Check{Name: "after", Run: func(*Processor) (bool, string) { ran = true; return true, "" }},
	))

	if p.IsOutputEnabled() {
		t.Fatal("output enabled after panic")
	}
	if ran {
		t.Fatal("checks after the panic still ran")
	}

	log := p.TestLog()
	if len(log) != 2 {
		t.Fatalf("log has %d entries, want 2: %+v", len(log), log)
	}
	if !log[0].Passed {
		t.Fatalf("first entry should pass: %+v", log[0])
	}
	if log[1].Passed || !strings.HasPrefix(log[1].Message, "self-test aborted:") {
		t.Fatalf("second entry = %+v, want aborted failure", log[1])
	}
	if p.SampleRate() != 0 || p.DelayLength() != DefaultDelaySeconds {
		t.Fatalf("state not restored after panic: rate=%v length=%v", p.SampleRate(), p.DelayLength())
	}
}

func TestEmptyCheckListKeepsOutput(t *testing.T) {
	p := New(WithChecks())
	if !p.IsOutputEnabled() || len(p.TestLog()) != 0 {
		t.Fatalf("enabled=%v log=%+v", p.IsOutputEnabled(), p.TestLog())
	}
}

func TestTestLogIsACopy(t *testing.T) {
	p := New()
	log := p.TestLog()
	log[0].Passed = false
	log[0].Message = "tampered"

	if e := p.TestLog()[0]; !e.Passed || e.Message == "tampered" {
		t.Fatalf("TestLog exposed internal state: %+v", e)
	}
}

func TestSelfTestLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(WithLogger(logger), WithChecks(
		Check{Name: "always", Run: func(*Processor) (bool, string) { return true, "ok" }},
		Check{Name: "never", Run: func(*Processor) (bool, string) { return false, "expected 1, got 2" }},
	))

	out := buf.String()
	if !strings.Contains(out, "self-test passed") || !strings.Contains(out, "check=always") {
		t.Fatalf("missing pass record in log:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "check=never") {
		t.Fatalf("missing failure record in log:\n%s", out)
	}
}
