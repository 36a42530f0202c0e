// File: pool/queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Queue is the FIFO substrate shared by free lists, stage queues and the
// levels of a PriorityQueue.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/internal/concurrency"
)

// Queue is a singly linked FIFO of buffers addressed by arena handle.
// The ...Locked methods expect the caller to hold the queue's lock (or an
// enclosing lock that serializes every access, as PriorityQueue does).
type Queue struct {
	lock  concurrency.SpinLock
	arena *Arena
	first Handle
	last  Handle
	qlen  int
}

// NewQueue returns an empty queue over arena a.
func NewQueue(a *Arena) *Queue {
	q := &Queue{}
	q.Init(a)
	return q
}

// Init resets q to the empty state. It must not be called on a queue
// that still holds buffers.
func (q *Queue) Init(a *Arena) {
	q.arena = a
	q.first = NilHandle
	q.last = NilHandle
	q.qlen = 0
}

// Lock acquires the queue's spin lock for a batch of ...Locked calls.
func (q *Queue) Lock() { q.lock.Lock() }

// Unlock releases the queue's spin lock.
func (q *Queue) Unlock() { q.lock.Unlock() }

// checkEnqueue panics unless b is unqueued and belongs to q's arena.
// The caller owns b exclusively, so the check is valid outside the lock.
func (q *Queue) checkEnqueue(b *Buffer) {
	if b.queue != nil || q.arena.Get(b.handle) != b {
		panic(ownershipViolation("enqueue", b))
	}
}

// EnqueueTailLocked appends b without taking the lock.
func (q *Queue) EnqueueTailLocked(b *Buffer) {
	q.checkEnqueue(b)
	b.queue = q
	b.next = NilHandle
	if q.qlen == 0 {
		q.first = b.handle
	} else {
		q.arena.Get(q.last).next = b.handle
	}
	q.last = b.handle
	q.qlen++
}

// EnqueueTail appends b under the queue lock. Ownership violations panic
// before the lock is taken.
func (q *Queue) EnqueueTail(b *Buffer) {
	q.checkEnqueue(b)
	q.lock.Lock()
	q.EnqueueTailLocked(b)
	q.lock.Unlock()
}

// DequeueHeadLocked removes the first buffer without taking the lock.
// It returns nil when the queue is empty.
func (q *Queue) DequeueHeadLocked() *Buffer {
	if q.qlen == 0 {
		return nil
	}
	b := q.arena.Get(q.first)
	q.first = b.next
	if q.first == NilHandle {
		q.last = NilHandle
	}
	b.next = NilHandle
	b.queue = nil
	q.qlen--
	return b
}

// DequeueHead removes the first buffer under the queue lock.
func (q *Queue) DequeueHead() *Buffer {
	q.lock.Lock()
	b := q.DequeueHeadLocked()
	q.lock.Unlock()
	return b
}

// Peek returns the first buffer without removing it.
func (q *Queue) Peek() *Buffer {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.qlen == 0 {
		return nil
	}
	return q.arena.Get(q.first)
}

// Len reports the number of queued buffers.
func (q *Queue) Len() int {
	q.lock.Lock()
	n := q.qlen
	q.lock.Unlock()
	return n
}

// LenLocked is Len for callers already holding the lock.
func (q *Queue) LenLocked() int { return q.qlen }

// IsEmpty reports whether the queue holds no buffers.
func (q *Queue) IsEmpty() bool { return q.Len() == 0 }

// Purge frees every queued buffer back to its own pool. Each buffer is
// dequeued and freed under separate lock sections.
func (q *Queue) Purge() int {
	n := 0
	for b := q.DequeueHead(); b != nil; b = q.DequeueHead() {
		Free(b)
		n++
	}
	return n
}

func ownershipViolation(op string, b *Buffer) error {
	return fmt.Errorf("pool: %s of buffer %d: %w", op, b.handle, api.ErrOwnership)
}
