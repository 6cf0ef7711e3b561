package main

import (
	"math"
	"math/rand/v2"
)

// pluckSource emits short decaying noise bursts at a fixed interval, a
// dry signal that makes individual repeats easy to hear.
type pluckSource struct {
	rng      *rand.Rand
	interval int // samples between burst onsets
	decay    float64
	pos      int
	env      float64
	gain     float64
}

func newPluckSource(sampleRate, intervalSeconds, gain float64) *pluckSource {
	interval := int(math.Round(intervalSeconds * sampleRate))
	if interval < 1 {
		interval = 1
	}
	return &pluckSource{
		rng:      rand.New(rand.NewPCG(1, 2)),
		interval: interval,
		// -60 dB after 50 ms
		decay: math.Pow(1e-3, 1/(0.05*sampleRate)),
		gain:  gain,
	}
}

// fill writes the next len(dst) mono samples.
func (s *pluckSource) fill(dst []float64) {
	for i := range dst {
		if s.pos == 0 {
			s.env = 1
		}
		dst[i] = s.gain * s.env * (2*s.rng.Float64() - 1)
		s.env *= s.decay
		s.pos++
		if s.pos == s.interval {
			s.pos = 0
		}
	}
}
