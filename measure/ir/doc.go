// Package ir analyses the impulse response of a feedback echo.
//
// An echo impulse response is sparse: the direct sound followed by
// repeats spaced one delay apart, each scaled by the feedback gain. The
// analyzer locates those taps and derives the repeat interval, the decay
// per repeat and the time to fall by 60 dB. Response computes the comb
// filter magnitude response through an FFT.
//
// # Usage
//
//	analyzer := ir.NewAnalyzer(48000)
//	metrics, err := analyzer.Analyze(impulseResponse)
//	fmt.Printf("interval = %.3f s, decay = %.1f dB/repeat\n", metrics.Interval, metrics.DecayDB)
package ir
