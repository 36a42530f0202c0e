// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Short-critical-section primitives for hioload-rtskb.
//
// The real-time data path may not park a goroutine on a lock: every section
// guarded here is O(1) and data independent, so contenders spin and yield
// instead of sleeping. Sections never nest across two locks.
//
// PinCurrentThread keeps a packet loop on one CPU.
package concurrency
