// File: internal/concurrency/spinlock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// spinsBeforeYield bounds busy-waiting before handing the P back to the scheduler.
const spinsBeforeYield = 64

// SpinLock is a test-and-test-and-set lock padded to its own cache line.
// The zero value is an unlocked lock. It must not be copied after first use.
type SpinLock struct {
	_     cpu.CacheLinePad
	state atomic.Uint32
	_     cpu.CacheLinePad
}

// Lock acquires the lock, spinning until it is available.
func (l *SpinLock) Lock() {
	for spins := 0; ; spins++ {
		if l.state.Load() == 0 && l.state.CompareAndSwap(0, 1) {
			return
		}
		if spins >= spinsBeforeYield {
			runtime.Gosched()
			spins = 0
		}
	}
}

// TryLock acquires the lock only if it is free.
func (l *SpinLock) TryLock() bool {
	return l.state.Load() == 0 && l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlocking a free lock is a programming error.
func (l *SpinLock) Unlock() {
	if !l.state.CompareAndSwap(1, 0) {
		panic("concurrency: unlock of unlocked SpinLock")
	}
}

// Locked reports whether the lock is currently held by someone.
func (l *SpinLock) Locked() bool {
	return l.state.Load() != 0
}
