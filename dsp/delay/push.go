package delay

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/core"
)

// Push runs one block through the line and writes the delayed block to dst.
//
// Each output sample is the value stored Delay() samples earlier. What is
// stored is feedback*(input+delayed): the delayed signal recirculates on
// purpose, so every trip around the line scales a repeat by feedback again
// and the echo decays over many repeats instead of sounding once.
//
// len(src) must not exceed ActiveLength() and dst must hold at least
// len(src) samples; Push panics otherwise. dst may alias src.
func (d *Line) Push(dst, src []float64, feedback float64) {
	n := len(src)
	size := d.store.Len()
	if n > d.active || d.active > size {
		panic(fmt.Sprintf("delay: block of %d samples exceeds active window %d (capacity %d)",
			n, d.active, size))
	}
	if len(dst) < n {
		panic(fmt.Sprintf("delay: output holds %d samples, block has %d", len(dst), n))
	}
	if n == 0 {
		return
	}

	buf := d.store.Samples()
	w := d.writePos
	r := wrap(w-d.lag, size)
	for i, x := range src {
		delayed := buf[r]
		buf[w] = core.FlushDenormals((x + delayed) * feedback)
		dst[i] = delayed
		w++
		if w == size {
			w = 0
		}
		r++
		if r == size {
			r = 0
		}
	}
	d.writePos = w
}
