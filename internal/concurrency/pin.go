// File: internal/concurrency/pin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Binding of the calling goroutine's OS thread to one CPU, for loops that
// must not migrate while servicing real-time queues.

package concurrency

import "errors"

// ErrPinUnsupported is returned on platforms without thread affinity control.
var ErrPinUnsupported = errors.New("concurrency: thread pinning not supported")

// PinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to cpu. The returned restore func reinstates the previous
// affinity and unlocks the thread; it must run on the same goroutine.
// On error the goroutine is left unlocked.
func PinCurrentThread(cpu int) (restore func(), err error) {
	return pinCurrentThread(cpu)
}
