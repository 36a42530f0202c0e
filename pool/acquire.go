// File: pool/acquire.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-pool migration. A buffer handed to another owner (for example a
// received packet delivered into a socket) is paid for with a free buffer
// from that owner's pool, so every pool keeps its size.

package pool

import "github.com/momentics/hioload-rtskb/api"

// Acquire reassigns b to comp. One free buffer is taken from comp and
// given to b's old pool in exchange. When comp is empty nothing changes
// and api.ErrPoolExhausted is returned.
//
// The two lock sections run one after the other, never nested.
func Acquire(b *Buffer, comp *BufferPool) error {
	old := b.pool
	if old == comp {
		return nil
	}
	c := comp.free.DequeueHead()
	if c == nil {
		comp.fails.Add(1)
		return api.ErrPoolExhausted
	}
	c.pool = old
	old.free.EnqueueTail(c)
	b.pool = comp
	return nil
}

// Acquire is the method form of the package-level Acquire.
func (b *Buffer) Acquire(comp *BufferPool) error { return Acquire(b, comp) }
