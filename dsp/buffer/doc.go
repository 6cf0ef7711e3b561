// Package buffer provides the float64 sample store backing each delay
// line. A Buffer is sized once per sample rate, zeroed on every resize and
// released when playback stops, so the audio path itself never allocates.
package buffer
