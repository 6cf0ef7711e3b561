package ir

import (
	"errors"
	"math"
	"testing"
)

// echoIR builds a direct impulse followed by n repeats spaced lag apart,
// each scaled by gain.
func echoIR(length, lag, n int, gain float64) []float64 {
	ir := make([]float64, length)
	ir[0] = 1
	amp := 1.0
	for k := 1; k <= n; k++ {
		amp *= gain
		ir[k*lag] = amp
	}
	return ir
}

func TestAnalyzeEchoTrain(t *testing.T) {
	a := NewAnalyzer(1000)
	m, err := a.Analyze(echoIR(1000, 100, 5, 0.5))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(m.Taps) != 6 {
		t.Fatalf("taps = %d, want 6", len(m.Taps))
	}
	for k, tap := range m.Taps {
		if tap.Index != k*100 {
			t.Fatalf("tap %d index %d, want %d", k, tap.Index, k*100)
		}
	}
	if math.Abs(m.Interval-0.1) > 1e-12 {
		t.Fatalf("Interval = %v, want 0.1", m.Interval)
	}
	if math.Abs(m.DecayDB+6.0206) > 1e-3 {
		t.Fatalf("DecayDB = %v, want about -6.02", m.DecayDB)
	}
	wantRT := 60 / 6.0206 * 0.1
	if math.Abs(m.RT60-wantRT) > 1e-3 {
		t.Fatalf("RT60 = %v, want about %v", m.RT60, wantRT)
	}
	if m.PeakIndex != 0 {
		t.Fatalf("PeakIndex = %d, want 0", m.PeakIndex)
	}
}

func TestTapsThreshold(t *testing.T) {
	ir := echoIR(1000, 100, 9, 0.2) // 0.2^5 falls below -60 dB
	a := NewAnalyzer(1000)

	taps, err := a.Taps(ir)
	if err != nil {
		t.Fatal(err)
	}
	if len(taps) != 5 {
		t.Fatalf("taps = %d, want 5 above default threshold", len(taps))
	}

	a.Threshold = 0.05
	taps, _ = a.Taps(ir)
	if len(taps) != 2 {
		t.Fatalf("taps = %d, want 2 above -26 dB", len(taps))
	}
}

func TestAnalyzeErrors(t *testing.T) {
	a := NewAnalyzer(1000)
	if _, err := a.Analyze(nil); !errors.Is(err, ErrEmptyIR) {
		t.Fatalf("err = %v, want ErrEmptyIR", err)
	}
	if _, err := a.Analyze(make([]float64, 16)); !errors.Is(err, ErrNoEcho) {
		t.Fatalf("silent IR: err = %v, want ErrNoEcho", err)
	}
	if _, err := a.Analyze([]float64{1, 0, 0}); !errors.Is(err, ErrNoEcho) {
		t.Fatalf("single tap: err = %v, want ErrNoEcho", err)
	}
	if _, err := NewAnalyzer(0).Analyze([]float64{1}); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("err = %v, want ErrInvalidSampleRate", err)
	}
}

func TestCenterTime(t *testing.T) {
	a := NewAnalyzer(100)
	ct, err := a.CenterTime([]float64{1, 0, 0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ct-0.02) > 1e-12 {
		t.Fatalf("CenterTime = %v, want 0.02", ct)
	}
}

func TestFindImpulseStart(t *testing.T) {
	a := NewAnalyzer(48000)
	idx, err := a.FindImpulseStart([]float64{0, 0.001, 0, 0.5, 1, 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 3 {
		t.Fatalf("FindImpulseStart = %d, want 3", idx)
	}
}

func TestResponseComb(t *testing.T) {
	a := NewAnalyzer(64)
	ir := make([]float64, 64)
	ir[0] = 1
	ir[8] = 0.5

	freq, mag, err := a.Response(ir, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(freq) != 33 || len(mag) != 33 {
		t.Fatalf("bins = %d/%d, want 33", len(freq), len(mag))
	}
	if freq[4] != 4 {
		t.Fatalf("freq[4] = %v, want 4 Hz", freq[4])
	}
	// |1 + 0.5 e^{-j 2π k 8/64}|: peak 1.5 at k=0, notch 0.5 at k=4.
	if math.Abs(mag[0]-20*math.Log10(1.5)) > 1e-9 {
		t.Fatalf("mag[0] = %v dB, want %v", mag[0], 20*math.Log10(1.5))
	}
	if math.Abs(mag[4]-20*math.Log10(0.5)) > 1e-9 {
		t.Fatalf("mag[4] = %v dB, want %v", mag[4], 20*math.Log10(0.5))
	}
	if math.Abs(mag[8]-mag[0]) > 1e-9 {
		t.Fatalf("comb period: mag[8]=%v mag[0]=%v", mag[8], mag[0])
	}
}

func TestResponseRejectsBadSize(t *testing.T) {
	a := NewAnalyzer(48000)
	for _, n := range []int{0, 1, 100} {
		if _, _, err := a.Response([]float64{1}, n); !errors.Is(err, ErrInvalidFFTSize) {
			t.Fatalf("size %d: err = %v, want ErrInvalidFFTSize", n, err)
		}
	}
}
