package main

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/echo"
	"github.com/cwbudde/algo-echo/stats/level"
)

const bytesPerSample = 4 // float32 little endian

// host pulls blocks from the source through the processor and serves them
// to the audio device as interleaved float32 frames. Parameter changes and
// block processing are serialized by mu.
type host struct {
	mu sync.Mutex

	proc   *echo.Processor
	source *pluckSource

	channels [][]float64
	meters   []*level.Meter
	pending  []byte
	frame    []byte
}

// hostState is a snapshot for display.
type hostState struct {
	Length        float64
	Feedback      float64
	ActiveSamples int
	SampleRate    float64
	OutputEnabled bool
	LevelsDB      []float64
}

func newHost(proc *echo.Processor, source *pluckSource, cfg core.ProcessorConfig) (*host, error) {
	if err := proc.Prepare(cfg); err != nil {
		return nil, err
	}

	h := &host{
		proc:     proc,
		source:   source,
		channels: make([][]float64, proc.Channels()),
		meters:   make([]*level.Meter, proc.Channels()),
		frame:    make([]byte, 0, cfg.BlockSize*proc.Channels()*bytesPerSample),
	}
	for ch := range h.channels {
		h.channels[ch] = make([]float64, cfg.BlockSize)
		h.meters[ch] = level.NewMeter(1.5)
	}
	return h, nil
}

// Read implements io.Reader for the audio player. It always fills p.
func (h *host) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for n < len(p) {
		if len(h.pending) == 0 {
			h.renderBlock()
		}
		c := copy(p[n:], h.pending)
		h.pending = h.pending[c:]
		n += c
	}
	return n, nil
}

func (h *host) renderBlock() {
	h.source.fill(h.channels[0])
	for ch := 1; ch < len(h.channels); ch++ {
		copy(h.channels[ch], h.channels[0])
	}

	h.proc.ProcessBlock(h.channels)
	for ch, samples := range h.channels {
		h.meters[ch].Update(samples)
	}

	out := h.frame[:0]
	blockSize := len(h.channels[0])
	for i := 0; i < blockSize; i++ {
		for _, samples := range h.channels {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(samples[i])))
		}
	}
	h.frame = out
	h.pending = out
}

func (h *host) adjustLength(delta float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proc.SetDelayLength(h.proc.DelayLength() + delta)
}

func (h *host) adjustFeedback(delta float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proc.SetFeedback(h.proc.Feedback() + delta)
}

func (h *host) state() hostState {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := hostState{
		Length:        h.proc.DelayLength(),
		Feedback:      h.proc.Feedback(),
		ActiveSamples: h.proc.ActiveLength(0),
		SampleRate:    h.proc.SampleRate(),
		OutputEnabled: h.proc.IsOutputEnabled(),
		LevelsDB:      make([]float64, len(h.meters)),
	}
	for ch, m := range h.meters {
		s.LevelsDB[ch] = m.LevelDB()
	}
	return s
}

// close mutes and releases the processor. Read keeps serving silence.
func (h *host) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proc.Close()
}
