// Package delay implements the per-channel delay line used by the echo
// processor.
//
// A Line has a fixed physical capacity, sized for the longest delay the
// host can ask for, and a variable active window. Only the active window
// takes part in delay and feedback; the remainder is silent reserve that
// becomes audible when the window grows, so changing the delay length
// never reallocates.
//
// The host pushes blocks of a known size, and each block occupies the tail
// of the active window. A sample therefore leaves the line
// ActiveLength()-BlockSize() samples after it was written. The lag is
// fixed by the window and the block size alone, so how a stream is split
// into pushes never changes the output. A window no longer than one block
// has no room for that compensation and delays by the whole window.
package delay

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/buffer"
)

// Line is a circular delay line with an adjustable active window.
type Line struct {
	store    *buffer.Buffer
	active   int
	block    int
	lag      int
	writePos int
}

// New returns a zero-filled delay line of the given capacity.
// A capacity of zero yields a released line that must be resized before use.
func New(capacity int) (*Line, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("delay capacity must be >= 0: %d", capacity)
	}
	return &Line{store: buffer.New(capacity)}, nil
}

// Capacity returns the physical size of the line in samples.
func (d *Line) Capacity() int {
	return d.store.Len()
}

// ActiveLength returns the active window length in samples.
func (d *Line) ActiveLength() int {
	return d.active
}

// BlockSize returns the block size the lag is compensated for.
func (d *Line) BlockSize() int {
	return d.block
}

// Delay returns the number of samples between writing a sample and
// reading it back.
func (d *Line) Delay() int {
	return d.lag
}

// Resize reallocates the line to capacity samples, all zero.
// It does nothing when the capacity is unchanged, so calling it on every
// prepare is cheap. The active window is clamped to the new capacity.
func (d *Line) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity == d.store.Len() {
		return
	}

	d.store.Resize(capacity)
	d.store.Zero()
	d.writePos = 0
	d.active = min(d.active, capacity)
	d.lag = lagFor(d.active, d.block)
}

// Release frees the sample memory. It is safe to call repeatedly and the
// line can be resized again afterwards.
func (d *Line) Release() {
	d.store.Release()
	d.active = 0
	d.lag = 0
	d.writePos = 0
}

// SetActiveLength sets the active window, clamped to [0, Capacity()].
// History newly brought into the window is cleared, so an enlarged
// window starts out silent.
func (d *Line) SetActiveLength(n int) {
	d.configure(max(0, min(n, d.store.Len())), d.block)
}

// SetBlockSize sets the block size the host pushes. Negative values count
// as zero, which makes the lag equal to the active window.
func (d *Line) SetBlockSize(n int) {
	d.configure(d.active, max(0, n))
}

func (d *Line) configure(active, block int) {
	lag := lagFor(active, block)
	if active > d.active {
		d.clearHistory(d.active, active)
	}
	if lag > d.lag {
		d.clearHistory(d.lag, lag)
	}
	d.active, d.block, d.lag = active, block, lag
}

func lagFor(active, block int) int {
	if active > block {
		return active - block
	}
	return active
}

// Window copies the active window into dst, oldest sample first, and
// returns the number of samples copied.
func (d *Line) Window(dst []float64) int {
	n := d.active
	if len(dst) < n {
		n = len(dst)
	}
	if n == 0 {
		return 0
	}

	buf := d.store.Samples()
	size := len(buf)
	start := wrap(d.writePos-d.active, size)
	first := copy(dst[:n], buf[start:])
	if first < n {
		copy(dst[first:n], buf)
	}
	return n
}

// Reset clears line state without changing capacity or window.
func (d *Line) Reset() {
	d.store.Zero()
	d.writePos = 0
}

// clearHistory zeroes the samples written between from and to samples
// before the write head, exclusive of from.
func (d *Line) clearHistory(from, to int) {
	size := d.store.Len()
	count := to - from
	if size == 0 || count <= 0 {
		return
	}

	start := wrap(d.writePos-to, size)
	end := start + count
	if end <= size {
		d.store.ZeroRange(start, end)
		return
	}
	d.store.ZeroRange(start, size)
	d.store.ZeroRange(0, end-size)
}

func wrap(pos, size int) int {
	pos %= size
	if pos < 0 {
		pos += size
	}
	return pos
}
