package echo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
)

// ErrInvalidSampleRate is returned for non-finite or non-positive rates.
var ErrInvalidSampleRate = errors.New("echo: sample rate must be finite and > 0")

// Processor is a per-instance feedback echo with a fail-closed output gate.
type Processor struct {
	params Parameters
	lines  []*delay.Line
	wet    []float64

	sampleRate float64
	blockSize  int

	outputEnabled bool
	testLog       []TestEntry

	logger *slog.Logger
}

// New creates a processor and runs its self-test. The returned processor
// is unprepared: call OnSampleRateChanged before processing audio.
func New(opts ...Option) *Processor {
	cfg := applyOptions(opts)

	p := &Processor{
		params:        DefaultParameters(),
		lines:         make([]*delay.Line, cfg.channels),
		outputEnabled: true,
		logger:        cfg.logger,
	}
	for i := range p.lines {
		// Capacity 0 cannot fail.
		p.lines[i], _ = delay.New(0)
	}

	p.runSelfTest(cfg.checks)
	return p
}

// OnSampleRateChanged sizes every delay line for sampleRate and refreshes
// the active window. Lines are reallocated only when the required capacity
// changes. blockSizeHint is the block size the host will pass; values
// <= 0 fall back to the core default. The hint fixes the echo delay at
// ActiveLength-blockSizeHint samples (see delay.Line), whatever block
// sizes ProcessBlock later receives.
func (p *Processor) OnSampleRateChanged(sampleRate float64, blockSizeHint int) error {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if blockSizeHint <= 0 {
		blockSizeHint = core.DefaultProcessorConfig().BlockSize
	}

	capacity := CapacitySamples(sampleRate)
	for _, line := range p.lines {
		line.Resize(capacity)
		line.SetBlockSize(blockSizeHint)
	}
	p.sampleRate = sampleRate
	p.blockSize = blockSizeHint
	p.wet = core.EnsureLen(p.wet, blockSizeHint)
	p.refreshActiveLength()
	return nil
}

// Prepare is OnSampleRateChanged driven by a core.ProcessorConfig.
func (p *Processor) Prepare(cfg core.ProcessorConfig) error {
	return p.OnSampleRateChanged(cfg.SampleRate, cfg.BlockSize)
}

// SetDelayLength sets the delay length in seconds. Out-of-range values are
// clamped silently.
func (p *Processor) SetDelayLength(seconds float64) {
	p.params.SetLength(seconds)
	p.refreshActiveLength()
}

// SetFeedback sets the feedback gain. Out-of-range values are clamped
// silently.
func (p *Processor) SetFeedback(gain float64) {
	p.params.SetFeedback(gain)
}

// DelayLength returns the delay length in seconds.
func (p *Processor) DelayLength() float64 { return p.params.Length() }

// Feedback returns the feedback gain.
func (p *Processor) Feedback() float64 { return p.params.Feedback() }

// ProcessBlock adds the delayed signal onto each channel in place. Each
// channel slice is one block; channels beyond Channels() pass through
// dry. If the output gate is closed every channel is zeroed.
func (p *Processor) ProcessBlock(channels [][]float64) {
	for ch, samples := range channels {
		if ch >= len(p.lines) {
			break
		}
		p.processChannel(p.lines[ch], samples)
	}

	if !p.outputEnabled {
		for _, samples := range channels {
			core.Zero(samples)
		}
	}
}

func (p *Processor) processChannel(line *delay.Line, samples []float64) {
	chunk := min(line.ActiveLength(), p.blockSize)
	if chunk == 0 {
		return
	}

	feedback := p.params.Feedback()
	for start := 0; start < len(samples); start += chunk {
		end := min(start+chunk, len(samples))
		dry := samples[start:end]
		wet := p.wet[:len(dry)]
		line.Push(wet, dry, feedback)
		vecmath.AddBlockInPlace(dry, wet)
	}
}

// Release frees the delay memory. The processor must be prepared again
// before further processing produces an echo.
func (p *Processor) Release() {
	for _, line := range p.lines {
		line.Release()
	}
	p.sampleRate = 0
}

// Close tears the instance down: output is muted permanently and the
// delay memory is released.
func (p *Processor) Close() {
	p.outputEnabled = false
	p.Release()
}

// IsOutputEnabled reports whether the output gate is open.
func (p *Processor) IsOutputEnabled() bool { return p.outputEnabled }

// TestLog returns a copy of the self-test results in execution order.
func (p *Processor) TestLog() []TestEntry {
	return append([]TestEntry(nil), p.testLog...)
}

// TailLengthSeconds reports how long a host should keep pulling audio
// after the input stops.
func (p *Processor) TailLengthSeconds() float64 { return MaxDelaySeconds }

// SampleRate returns the prepared sample rate, or 0 when unprepared.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// Channels returns the number of delay lines.
func (p *Processor) Channels() int { return len(p.lines) }

// Capacity returns the capacity in samples of the line for channel ch,
// or 0 when ch is out of range.
func (p *Processor) Capacity(ch int) int {
	if ch < 0 || ch >= len(p.lines) {
		return 0
	}
	return p.lines[ch].Capacity()
}

// ActiveLength returns the active window in samples of the line for
// channel ch, or 0 when ch is out of range.
func (p *Processor) ActiveLength(ch int) int {
	if ch < 0 || ch >= len(p.lines) {
		return 0
	}
	return p.lines[ch].ActiveLength()
}

// DelaySamples returns the time in samples between a sample entering
// channel ch and its first repeat, or 0 when ch is out of range.
func (p *Processor) DelaySamples(ch int) int {
	if ch < 0 || ch >= len(p.lines) {
		return 0
	}
	return p.lines[ch].Delay()
}

// EchoDelaySeconds returns the time between a sample and its first repeat,
// or 0 when unprepared.
func (p *Processor) EchoDelaySeconds() float64 {
	if p.sampleRate <= 0 || len(p.lines) == 0 {
		return 0
	}
	return float64(p.lines[0].Delay()) / p.sampleRate
}

func (p *Processor) refreshActiveLength() {
	if p.sampleRate <= 0 {
		return
	}
	n := p.params.ActiveSamples(p.sampleRate)
	for _, line := range p.lines {
		line.SetActiveLength(n)
	}
}
