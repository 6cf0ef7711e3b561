// Package testutil holds signal generators and tolerance checks shared by
// the package tests.
package testutil

import "math/rand"

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Scaled returns a copy of x multiplied by gain.
func Scaled(x []float64, gain float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * gain
	}
	return out
}

// Blocks splits x into consecutive blocks of size n. A short final block
// is kept.
func Blocks(x []float64, n int) [][]float64 {
	if n <= 0 {
		return nil
	}
	var out [][]float64
	for start := 0; start < len(x); start += n {
		end := start + n
		if end > len(x) {
			end = len(x)
		}
		out = append(out, x[start:end])
	}
	return out
}
