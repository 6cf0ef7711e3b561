package echo

import (
	"math"
	"testing"
)

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	if p.Length() != DefaultDelaySeconds {
		t.Fatalf("Length() = %v, want %v", p.Length(), DefaultDelaySeconds)
	}
	if p.Feedback() != DefaultFeedback {
		t.Fatalf("Feedback() = %v, want %v", p.Feedback(), DefaultFeedback)
	}
}

func TestSetLengthClamps(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "inside", value: 2, want: 2},
		{name: "zero", value: 0, want: 0},
		{name: "at max", value: MaxDelaySeconds, want: MaxDelaySeconds},
		{name: "above max", value: MaxDelaySeconds + 1, want: MaxDelaySeconds},
		{name: "huge", value: 1e9, want: MaxDelaySeconds},
		{name: "positive inf", value: math.Inf(1), want: MaxDelaySeconds},
		{name: "negative", value: -0.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			p.SetLength(tt.value)
			if p.Length() != tt.want {
				t.Fatalf("Length() = %v, want %v", p.Length(), tt.want)
			}
		})
	}
}

func TestSetFeedbackClamps(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "inside", value: 0.4, want: 0.4},
		{name: "at max", value: MaxFeedback, want: MaxFeedback},
		{name: "unity", value: 1, want: MaxFeedback},
		{name: "above", value: 1.2, want: MaxFeedback},
		{name: "negative", value: -0.3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			p.SetFeedback(tt.value)
			if p.Feedback() != tt.want {
				t.Fatalf("Feedback() = %v, want %v", p.Feedback(), tt.want)
			}
		})
	}
}

func TestSettersIgnoreNaN(t *testing.T) {
	p := DefaultParameters()
	p.SetLength(math.NaN())
	p.SetFeedback(math.NaN())
	if p.Length() != DefaultDelaySeconds || p.Feedback() != DefaultFeedback {
		t.Fatalf("NaN changed parameters: length=%v feedback=%v", p.Length(), p.Feedback())
	}
}

func TestClampingIdempotence(t *testing.T) {
	for _, x := range []float64{-10, -1e-9, 0, 0.37, 1, 2.5, 4.99999, 5, 5.0001, 80} {
		p := DefaultParameters()
		p.SetLength(x)
		first := p.Length()
		p.SetLength(first)
		if p.Length() != first {
			t.Fatalf("SetLength(%v) not idempotent: %v then %v", x, first, p.Length())
		}

		p.SetFeedback(x)
		fb := p.Feedback()
		p.SetFeedback(fb)
		if p.Feedback() != fb {
			t.Fatalf("SetFeedback(%v) not idempotent: %v then %v", x, fb, p.Feedback())
		}
		if fb > MaxFeedback || fb < 0 {
			t.Fatalf("SetFeedback(%v) stored %v outside [0, %v]", x, fb, MaxFeedback)
		}
	}
}

func TestActiveSamples(t *testing.T) {
	p := DefaultParameters()
	p.SetLength(0.5)

	if got := p.ActiveSamples(100); got != 50 {
		t.Fatalf("ActiveSamples(100) = %d, want 50", got)
	}
	if got := p.ActiveSamples(44100); got != 22050 {
		t.Fatalf("ActiveSamples(44100) = %d, want 22050", got)
	}

	p.SetLength(MaxDelaySeconds)
	for _, rate := range []float64{100, 22050.5, 44100, 96000} {
		if p.ActiveSamples(rate) > CapacitySamples(rate) {
			t.Fatalf("rate %v: active %d exceeds capacity %d", rate, p.ActiveSamples(rate), CapacitySamples(rate))
		}
	}
}

func TestCapacitySamples(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{rate: 100, want: 500},
		{rate: 44100, want: 220500},
		{rate: 48000, want: 240000},
		{rate: 22050.25, want: 22051 * MaxDelaySeconds},
	}

	for _, tt := range tests {
		if got := CapacitySamples(tt.rate); got != tt.want {
			t.Fatalf("CapacitySamples(%v) = %d, want %d", tt.rate, got, tt.want)
		}
	}
}
