package ir

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrNoEcho            = errors.New("ir: no repeats above threshold")
	ErrInvalidFFTSize    = errors.New("ir: fft size must be a power of two >= 2")
)

// DefaultTapThreshold is the tap detection level relative to the peak (-60 dB).
const DefaultTapThreshold = 1e-3

// Tap is one discrete arrival in the impulse response.
type Tap struct {
	Index     int     // sample index
	Time      float64 // seconds from the start of the IR
	Amplitude float64 // signed sample value
	LevelDB   float64 // level relative to the first tap
}

// Metrics holds echo analysis results.
type Metrics struct {
	Taps       []Tap
	PeakIndex  int     // sample index of the absolute maximum
	Interval   float64 // mean spacing between taps in seconds
	DecayDB    float64 // mean level change per repeat in dB (negative when decaying)
	RT60       float64 // time to decay by 60 dB, extrapolated from DecayDB
	CenterTime float64 // energy centroid in seconds
}

// Analyzer computes echo metrics from impulse response data.
type Analyzer struct {
	SampleRate float64
	// Threshold is the tap detection level relative to the peak.
	// Zero means DefaultTapThreshold.
	Threshold float64
}

// NewAnalyzer creates an analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Analyze locates the taps and derives spacing and decay. At least two
// taps are required.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	taps, err := a.Taps(ir)
	if err != nil {
		return Metrics{}, err
	}
	if len(taps) < 2 {
		return Metrics{}, ErrNoEcho
	}

	m := Metrics{
		Taps:       taps,
		PeakIndex:  a.findPeak(ir),
		CenterTime: a.centerTime(ir),
	}

	last := taps[len(taps)-1]
	repeats := float64(len(taps) - 1)
	m.Interval = (last.Time - taps[0].Time) / repeats
	m.DecayDB = (last.LevelDB - taps[0].LevelDB) / repeats

	if m.DecayDB < 0 {
		m.RT60 = 60 / -m.DecayDB * m.Interval
	} else {
		m.RT60 = math.Inf(1)
	}
	return m, nil
}

// Taps returns the local amplitude maxima at or above the threshold, in
// time order. Levels are relative to the first tap.
func (a *Analyzer) Taps(ir []float64) ([]Tap, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	if a.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	ratio := a.Threshold
	if ratio <= 0 {
		ratio = DefaultTapThreshold
	}
	peak := math.Abs(ir[a.findPeak(ir)])
	if peak == 0 {
		return nil, nil
	}
	threshold := peak * ratio

	var taps []Tap
	for i, v := range ir {
		av := math.Abs(v)
		if av < threshold {
			continue
		}
		if i > 0 && math.Abs(ir[i-1]) > av {
			continue
		}
		if i+1 < len(ir) && math.Abs(ir[i+1]) >= av {
			continue
		}
		taps = append(taps, Tap{
			Index:     i,
			Time:      float64(i) / a.SampleRate,
			Amplitude: v,
		})
	}

	if len(taps) > 0 {
		ref := math.Abs(taps[0].Amplitude)
		for i := range taps {
			taps[i].LevelDB = core.LinearToDB(math.Abs(taps[i].Amplitude) / ref)
		}
	}
	return taps, nil
}

// CenterTime computes the temporal energy centroid of the impulse response
// in seconds.
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}
	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}
	return a.centerTime(ir), nil
}

func (a *Analyzer) centerTime(ir []float64) float64 {
	var numerator, denominator float64
	for i, v := range ir {
		e := v * v
		numerator += float64(i) / a.SampleRate * e
		denominator += e
	}
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

// FindImpulseStart returns the index of the first sample within -20 dB of
// the peak.
func (a *Analyzer) FindImpulseStart(ir []float64) (int, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	threshold := math.Abs(ir[a.findPeak(ir)]) * 0.1
	for i, v := range ir {
		if math.Abs(v) >= threshold {
			return i, nil
		}
	}
	return 0, nil
}

// findPeak returns the index of the absolute maximum.
func (a *Analyzer) findPeak(ir []float64) int {
	peakIdx := 0
	peakVal := 0.0
	for i, v := range ir {
		av := math.Abs(v)
		if av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}
	return peakIdx
}
