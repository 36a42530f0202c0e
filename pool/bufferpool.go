// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BufferPool is a free list of preallocated buffers. Alloc and Free are the
// real-time operations; Extend, Shrink and Release run on the control path
// and may allocate or block.

package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/apex/log"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/internal/mem"
)

// region tracks how many live buffers still point into a storage block.
type region struct {
	mem  *mem.Region
	live int // guarded by Subsystem.mu
}

// BufferPool owns a fixed set of buffers. The set changes only through
// Extend, Shrink and Release, or when Acquire swaps buffer identities.
type BufferPool struct {
	name string
	sys  *Subsystem
	free Queue

	total    atomic.Int64 // buffers owned, free or in flight
	released atomic.Bool

	allocs atomic.Uint64
	frees  atomic.Uint64
	fails  atomic.Uint64
}

var _ api.Resizable = (*BufferPool)(nil)
var _ api.StatsSource = (*BufferPool)(nil)

// Name returns the pool's diagnostic name.
func (p *BufferPool) Name() string { return p.name }

// Subsystem returns the owning subsystem.
func (p *BufferPool) Subsystem() *Subsystem { return p.sys }

// Len reports the number of free buffers.
func (p *BufferPool) Len() int { return p.free.Len() }

// Total reports the number of buffers owned by the pool.
func (p *BufferPool) Total() int { return int(p.total.Load()) }

// Alloc takes a buffer from the free list. size is the payload the caller
// plans to place and must fit the subsystem's buffer size. An empty pool
// yields api.ErrPoolExhausted immediately.
func (p *BufferPool) Alloc(size int) (*Buffer, error) {
	if size < 0 || size > p.sys.cfg.BufferSize {
		return nil, api.ErrInvalidArgument
	}
	b := p.free.DequeueHead()
	if b == nil {
		p.fails.Add(1)
		return nil, api.ErrPoolExhausted
	}
	b.reset()
	p.allocs.Add(1)
	return b, nil
}

// Free returns b to the pool named by its back-reference, which is not
// necessarily the pool it was allocated from. Freeing a buffer that is
// still queued is a fatal ownership violation.
func Free(b *Buffer) {
	if b.queue != nil {
		panic(ownershipViolation("free", b))
	}
	p := b.pool
	p.free.EnqueueTail(b)
	p.frees.Add(1)
}

// Extend adds up to n buffers and returns how many were created. Fewer are
// created when the arena is full or storage cannot be obtained.
func (p *BufferPool) Extend(n int) int {
	if n <= 0 || p.released.Load() {
		return 0
	}
	return p.sys.populate(p, n)
}

// Shrink destroys up to n free buffers and returns how many were removed.
// Buffers in flight are never touched.
func (p *BufferPool) Shrink(n int) int {
	if n <= 0 || p.released.Load() {
		return 0
	}
	s := p.sys
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for ; removed < n; removed++ {
		b := p.free.DequeueHead()
		if b == nil {
			break
		}
		s.destroyLocked(b)
	}
	p.total.Add(int64(-removed))
	if removed < n {
		s.log.WithFields(log.Fields{
			"pool":      p.name,
			"requested": n,
			"removed":   removed,
		}).Warn("pool shrink limited by free buffers")
	}
	return removed
}

// Release destroys every buffer and retires the pool. It refuses, leaving
// the pool intact and usable, while any buffer is outstanding.
func (p *BufferPool) Release() error {
	s := p.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked(p)
}

// Stats returns a snapshot of the pool's accounting.
func (p *BufferPool) Stats() api.BufferPoolStats {
	free := p.free.Len()
	total := p.Total()
	return api.BufferPoolStats{
		Name:   p.name,
		Free:   free,
		Total:  total,
		InUse:  total - free,
		Allocs: p.allocs.Load(),
		Frees:  p.frees.Load(),
		Fails:  p.fails.Load(),
	}
}

func (p *BufferPool) String() string {
	return fmt.Sprintf("pool(%s free=%d total=%d)", p.name, p.Len(), p.Total())
}
