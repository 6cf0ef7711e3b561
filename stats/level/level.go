// Package level provides block level measurements for monitoring echo
// output: RMS, peak and a decaying peak meter.
package level

import (
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	return peak
}

// PeakDB returns the peak level in dBFS, -Inf for silence.
func PeakDB(signal []float64) float64 {
	return core.LinearToDB(Peak(signal))
}

// Meter tracks a peak level that falls back at a fixed rate between
// updates, like a hardware PPM.
type Meter struct {
	level   float64
	release float64
}

// NewMeter returns a meter whose reading falls by releaseDB per update.
func NewMeter(releaseDB float64) *Meter {
	if releaseDB < 0 {
		releaseDB = -releaseDB
	}
	return &Meter{release: math.Pow(10, -releaseDB/20)}
}

// Update feeds one block and returns the current linear reading.
func (m *Meter) Update(block []float64) float64 {
	m.level = core.FlushDenormals(m.level * m.release)
	if p := Peak(block); p > m.level {
		m.level = p
	}
	return m.level
}

// Level returns the current linear reading.
func (m *Meter) Level() float64 { return m.level }

// LevelDB returns the current reading in dBFS.
func (m *Meter) LevelDB() float64 { return core.LinearToDB(m.level) }

// Reset clears the reading.
func (m *Meter) Reset() { m.level = 0 }
