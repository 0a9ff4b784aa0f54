package tui

import "strings"

// sparkLevels are the eight block heights of a sparkline, lowest first.
const sparkLevels = "▁▂▃▄▅▆▇█"

// RingBuffer keeps the most recent samples up to its capacity. The metrics
// panel sizes it to the number of sparkline cells that fit on screen.
type RingBuffer struct {
	buf   []float64
	start int // index of the oldest sample
	n     int
}

// NewRingBuffer returns an empty buffer holding at most capacity samples
// (at least one).
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{buf: make([]float64, max(capacity, 1))}
}

// Push appends v, evicting the oldest sample when full.
func (r *RingBuffer) Push(v float64) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len returns the number of samples held.
func (r *RingBuffer) Len() int { return r.n }

// Cap returns the maximum number of samples held.
func (r *RingBuffer) Cap() int { return len(r.buf) }

// Slice returns the samples oldest first, or nil when empty.
func (r *RingBuffer) Slice() []float64 {
	if r.n == 0 {
		return nil
	}
	out := make([]float64, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Resize sets the capacity (at least one), keeping the newest samples.
func (r *RingBuffer) Resize(capacity int) {
	capacity = max(capacity, 1)
	if capacity == len(r.buf) {
		return
	}
	kept := r.Slice()
	if len(kept) > capacity {
		kept = kept[len(kept)-capacity:]
	}
	r.buf = make([]float64, capacity)
	r.start = 0
	r.n = copy(r.buf, kept)
}

// Percentages scales values so that the largest one maps to 100. It is
// used to draw evaluation durations, whose range is unknown in advance.
func Percentages(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	out := make([]float64, len(values))
	if peak == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / peak * 100
	}
	return out
}

// RenderSparkline draws values in [0, 100] as block characters. Values
// outside the range are clamped.
func RenderSparkline(values []float64) string {
	levels := []rune(sparkLevels)
	top := len(levels) - 1
	var b strings.Builder
	for _, v := range values {
		v = min(max(v, 0), 100)
		b.WriteRune(levels[min(int(v/100*float64(top)), top)])
	}
	return b.String()
}
