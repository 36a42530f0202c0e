//go:build windows

// File: internal/concurrency/pin_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SetThreadAffinityMask is not wrapped by x/sys/windows, so it is resolved
// lazily from kernel32.

package concurrency

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

var procSetThreadAffinityMask = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadAffinityMask")

func pinCurrentThread(cpu int) (func(), error) {
	if cpu < 0 || cpu >= runtime.NumCPU() || cpu >= 64 {
		return nil, fmt.Errorf("pin: cpu %d out of range [0, %d)", cpu, min(runtime.NumCPU(), 64))
	}
	runtime.LockOSThread()

	thread := uintptr(windows.CurrentThread())
	prev, _, err := procSetThreadAffinityMask.Call(thread, uintptr(1)<<uint(cpu))
	if prev == 0 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("pin: SetThreadAffinityMask cpu %d: %w", cpu, err)
	}
	return func() {
		procSetThreadAffinityMask.Call(thread, prev)
		runtime.UnlockOSThread()
	}, nil
}
