package ir

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// Response returns the magnitude response of ir in dB for the bins
// 0..fftSize/2 together with their frequencies in Hz. The IR is truncated
// or zero-padded to fftSize.
func (a *Analyzer) Response(ir []float64, fftSize int) (freqHz, magDB []float64, err error) {
	if len(ir) == 0 {
		return nil, nil, ErrEmptyIR
	}
	if a.SampleRate <= 0 {
		return nil, nil, ErrInvalidSampleRate
	}
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, nil, fmt.Errorf("ir: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i := 0; i < fftSize && i < len(ir); i++ {
		in[i] = complex(ir[i], 0)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, nil, fmt.Errorf("ir: forward FFT: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := 0; k < bins; k++ {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	magDB = make([]float64, bins)
	vecmath.Magnitude(magDB, re, im)

	freqHz = make([]float64, bins)
	for k := range magDB {
		magDB[k] = core.LinearToDB(magDB[k])
		freqHz[k] = float64(k) * a.SampleRate / float64(fftSize)
	}
	return freqHz, magDB, nil
}
