// File: pool/prio_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Strict-priority transmit scheduler: 32 FIFO levels plus a usage bitmap,
// all guarded by one lock. Bit i of usage is set iff level i is non-empty.

package pool

import (
	"math/bits"

	"github.com/momentics/hioload-rtskb/internal/concurrency"
	"github.com/momentics/hioload-rtskb/internal/normalize"
)

// MaxLevels is the number of levels a PriorityQueue can hold.
const MaxLevels = normalize.MaxLevels

// PriorityQueue serves the lowest-numbered non-empty level first and keeps
// FIFO order inside a level.
type PriorityQueue struct {
	lock    concurrency.SpinLock
	usage   uint32
	levels  int
	count   int
	clamped uint64
	queues  [MaxLevels]Queue
}

// NewPriorityQueue returns an initialized queue over arena a.
func NewPriorityQueue(a *Arena, levels int) *PriorityQueue {
	pq := &PriorityQueue{}
	pq.Init(a, levels)
	return pq
}

// Init resets the queue. levels is clamped into [1, MaxLevels]; the return
// value reports whether clamping happened. All MaxLevels sub-queues are
// always initialized, since buffer priorities are clamped to MaxLevels-1,
// not to levels-1.
func (pq *PriorityQueue) Init(a *Arena, levels int) bool {
	n, clamped := normalize.Levels(levels)
	pq.levels = n
	pq.usage = 0
	pq.count = 0
	pq.clamped = 0
	for i := range pq.queues {
		pq.queues[i].Init(a)
	}
	return clamped
}

// Enqueue appends b to the level named by b.Priority, clamping
// out-of-range priorities to the lowest-precedence level.
func (pq *PriorityQueue) Enqueue(b *Buffer) {
	pq.queues[0].checkEnqueue(b)
	pq.lock.Lock()
	prio, clamped := normalize.Priority(b.Priority)
	if clamped {
		b.Priority = prio
		pq.clamped++
	}
	pq.queues[prio].EnqueueTailLocked(b)
	pq.usage |= 1 << prio
	pq.count++
	pq.lock.Unlock()
}

// DequeueHighest removes the oldest buffer of the highest-precedence
// non-empty level, or returns nil when every level is empty.
func (pq *PriorityQueue) DequeueHighest() *Buffer {
	pq.lock.Lock()
	if pq.usage == 0 {
		pq.lock.Unlock()
		return nil
	}
	prio := bits.TrailingZeros32(pq.usage)
	sub := &pq.queues[prio]
	b := sub.DequeueHeadLocked()
	if sub.LenLocked() == 0 {
		pq.usage &^= 1 << prio
	}
	pq.count--
	pq.lock.Unlock()
	return b
}

// Len reports the number of queued buffers across all levels.
func (pq *PriorityQueue) Len() int {
	pq.lock.Lock()
	n := pq.count
	pq.lock.Unlock()
	return n
}

// IsEmpty reports whether no level holds a buffer.
func (pq *PriorityQueue) IsEmpty() bool { return pq.Usage() == 0 }

// Usage returns the non-empty level bitmap.
func (pq *PriorityQueue) Usage() uint32 {
	pq.lock.Lock()
	u := pq.usage
	pq.lock.Unlock()
	return u
}

// LevelLen reports the number of buffers queued at level prio.
func (pq *PriorityQueue) LevelLen(prio int) int {
	if prio < 0 || prio >= MaxLevels {
		return 0
	}
	pq.lock.Lock()
	n := pq.queues[prio].LenLocked()
	pq.lock.Unlock()
	return n
}

// Levels returns the configured level count.
func (pq *PriorityQueue) Levels() int { return pq.levels }

// Clamped reports how many enqueued buffers had their priority clamped.
func (pq *PriorityQueue) Clamped() uint64 {
	pq.lock.Lock()
	n := pq.clamped
	pq.lock.Unlock()
	return n
}

// Purge frees every queued buffer back to its own pool.
func (pq *PriorityQueue) Purge() int {
	n := 0
	for b := pq.DequeueHighest(); b != nil; b = pq.DequeueHighest() {
		Free(b)
		n++
	}
	return n
}
