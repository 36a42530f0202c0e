// Package pool — zero-alloc batching without locks.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity batch of buffers for drivers that refill or drain rings
// several packets at a time. Not thread-safe; owned by one context.

package pool

// BufferBatch is a bounded, zero-alloc batch of buffers held by one caller.
type BufferBatch struct {
	buffers []*Buffer
}

// NewBufferBatch creates a batch with the given fixed capacity.
func NewBufferBatch(capacity int) *BufferBatch {
	return &BufferBatch{
		buffers: make([]*Buffer, 0, capacity),
	}
}

// Append adds a buffer; it reports false when the batch is full.
func (bb *BufferBatch) Append(b *Buffer) bool {
	if len(bb.buffers) == cap(bb.buffers) {
		return false
	}
	bb.buffers = append(bb.buffers, b)
	return true
}

// Len returns number of buffers in the batch.
func (bb *BufferBatch) Len() int {
	return len(bb.buffers)
}

// Cap returns the fixed capacity.
func (bb *BufferBatch) Cap() int {
	return cap(bb.buffers)
}

// Get retrieves the buffer at idx.
func (bb *BufferBatch) Get(idx int) *Buffer {
	return bb.buffers[idx]
}

// Underlying returns the underlying slice.
func (bb *BufferBatch) Underlying() []*Buffer {
	return bb.buffers
}

// Fill allocates from p until the batch is full or p is exhausted and
// returns the number of buffers added.
func (bb *BufferBatch) Fill(p *BufferPool, size int) int {
	n := 0
	for len(bb.buffers) < cap(bb.buffers) {
		b, err := p.Alloc(size)
		if err != nil {
			break
		}
		bb.buffers = append(bb.buffers, b)
		n++
	}
	return n
}

// EnqueueAll hands every buffer to q under a single lock section and
// empties the batch.
func (bb *BufferBatch) EnqueueAll(q *Queue) {
	q.Lock()
	for _, b := range bb.buffers {
		q.EnqueueTailLocked(b)
	}
	q.Unlock()
	bb.Reset()
}

// FreeAll returns every buffer to its pool and empties the batch.
func (bb *BufferBatch) FreeAll() {
	for _, b := range bb.buffers {
		Free(b)
	}
	bb.Reset()
}

// Truncate keeps the first n buffers and forgets the rest without freeing
// them.
func (bb *BufferBatch) Truncate(n int) {
	if n < 0 || n >= len(bb.buffers) {
		return
	}
	for i := n; i < len(bb.buffers); i++ {
		bb.buffers[i] = nil
	}
	bb.buffers = bb.buffers[:n]
}

// Reset clears the batch retaining capacity.
func (bb *BufferBatch) Reset() {
	for i := range bb.buffers {
		bb.buffers[i] = nil
	}
	bb.buffers = bb.buffers[:0]
}
