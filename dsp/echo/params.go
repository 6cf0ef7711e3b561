package echo

import (
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
)

const (
	// MaxDelaySeconds is the longest configurable delay. Line capacity is
	// sized for it so that raising the delay never reallocates.
	MaxDelaySeconds = 5
	// MaxFeedback keeps the feedback loop strictly decaying.
	MaxFeedback = 0.99

	DefaultDelaySeconds = 1.0
	DefaultFeedback     = 0.5
)

// Parameters holds the user-facing delay settings. Both values are always
// within range: the setters are the only way to change them and clamp on
// every call.
type Parameters struct {
	length   float64
	feedback float64
}

// DefaultParameters returns a 1 s delay with feedback 0.5.
func DefaultParameters() Parameters {
	return Parameters{length: DefaultDelaySeconds, feedback: DefaultFeedback}
}

// SetLength sets the delay length in seconds, clamped to [0, MaxDelaySeconds].
// NaN is ignored.
func (p *Parameters) SetLength(seconds float64) {
	if math.IsNaN(seconds) {
		return
	}
	p.length = core.Clamp(seconds, 0, MaxDelaySeconds)
}

// SetFeedback sets the feedback gain, clamped to [0, MaxFeedback].
// NaN is ignored.
func (p *Parameters) SetFeedback(gain float64) {
	if math.IsNaN(gain) {
		return
	}
	p.feedback = core.Clamp(gain, 0, MaxFeedback)
}

// Length returns the delay length in seconds.
func (p Parameters) Length() float64 { return p.length }

// Feedback returns the feedback gain.
func (p Parameters) Feedback() float64 { return p.feedback }

// ActiveSamples returns the active window length for sampleRate.
func (p Parameters) ActiveSamples(sampleRate float64) int {
	return int(math.Round(sampleRate * p.length))
}

// CapacitySamples returns the line capacity needed at sampleRate.
func CapacitySamples(sampleRate float64) int {
	return int(math.Ceil(sampleRate)) * MaxDelaySeconds
}
