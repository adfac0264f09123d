// SPDX-License-Identifier: MIT
/*
Package ringbuf provides a fixed-capacity ring buffer for float64 samples.

The buffer evicts the oldest value once full, keeps all index arithmetic
internal, and never allocates after construction. It is intended for
bounded measurement histories (inter-onset intervals, envelope followers)
read and written from a single goroutine.
*/
package ringbuf

// Ring is a fixed-capacity FIFO over float64 values. The zero value is not
// usable; construct with New.
type Ring struct {
	data  []float64
	head  int // index of the oldest element
	count int
}

// New returns a Ring holding at most capacity values. A capacity below 1 is
// treated as 1.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{data: make([]float64, capacity)}
}

// Push appends v, evicting the oldest value if the ring is full.
func (r *Ring) Push(v float64) {
	if r.count < len(r.data) {
		r.data[(r.head+r.count)%len(r.data)] = v
		r.count++
		return
	}
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
}

// At returns the i-th value, oldest first. Out-of-range indices return 0.
func (r *Ring) At(i int) float64 {
	if i < 0 || i >= r.count {
		return 0
	}
	return r.data[(r.head+i)%len(r.data)]
}

// Len returns the number of stored values.
func (r *Ring) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *Ring) Cap() int { return len(r.data) }

// Reset discards all values while keeping the backing storage.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}

// CopyTo copies the stored values, oldest first, into dst and returns the
// number copied. dst is typically a scratch slice sized Cap() so the copy
// never allocates.
func (r *Ring) CopyTo(dst []float64) int {
	n := r.count
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = r.data[(r.head+i)%len(r.data)]
	}
	return n
}
