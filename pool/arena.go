// File: pool/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Arena maps stable handles to buffers. Queues link buffers by handle, so
// membership never depends on raw aliasing pointers between buffers.

package pool

import (
	"sync"
	"sync/atomic"
)

// Handle is the stable index of a buffer inside its subsystem's arena.
type Handle uint32

// NilHandle terminates queue chains.
const NilHandle Handle = ^Handle(0)

// Arena is a fixed table of buffer slots sized at subsystem start.
// Lookups are lock-free; slot assignment happens only on the control path.
type Arena struct {
	slots []atomic.Pointer[Buffer]

	mu    sync.Mutex
	freed []Handle // reclaimed slots, reused LIFO
	next  int      // first slot never handed out
	live  int
}

func newArena(capacity int) *Arena {
	return &Arena{slots: make([]atomic.Pointer[Buffer], capacity)}
}

// Get resolves h, or returns nil for NilHandle and empty slots.
func (a *Arena) Get(h Handle) *Buffer {
	if int(h) >= len(a.slots) {
		return nil
	}
	return a.slots[h].Load()
}

// Cap is the maximum number of buffers the arena can address.
func (a *Arena) Cap() int { return len(a.slots) }

// Live reports the number of occupied slots.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Available reports how many more buffers can be inserted.
func (a *Arena) Available() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots) - a.live
}

// insert assigns b a handle. It returns false when the arena is full.
func (a *Arena) insert(b *Buffer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	var h Handle
	switch {
	case len(a.freed) > 0:
		h = a.freed[len(a.freed)-1]
		a.freed = a.freed[:len(a.freed)-1]
	case a.next < len(a.slots):
		h = Handle(a.next)
		a.next++
	default:
		return false
	}
	b.handle = h
	b.next = NilHandle
	a.slots[h].Store(b)
	a.live++
	return true
}

// remove clears b's slot so the handle can be reused.
func (a *Arena) remove(b *Buffer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Get(b.handle) != b {
		return
	}
	a.slots[b.handle].Store(nil)
	a.freed = append(a.freed, b.handle)
	a.live--
	b.handle = NilHandle
}
