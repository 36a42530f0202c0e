// Package api
// Author: momentics
//
// Fixed-capacity packet buffer pooling contracts for real-time networking.
//
// Pools are populated once outside the hot path; Get/Put style operations
// never allocate and never block. Exhaustion is reported, never waited on.

package api

// BufferPoolStats aggregates free-list accounting for one pool.
type BufferPoolStats struct {
	Name   string
	Free   int // buffers currently in the free queue
	Total  int // buffers owned by the pool (free + in flight)
	InUse  int // Total - Free
	Allocs uint64
	Frees  uint64
	Fails  uint64 // allocations refused because the pool was empty
}

// SubsystemStats exposes the process-level counters kept by a subsystem.
type SubsystemStats struct {
	Pools      int
	PoolsMax   int // high-water mark of Pools
	Buffers    int
	BuffersMax int // high-water mark of Buffers
	MaxPools   int
	MaxBuffers int
	BufferSize int
}

// Resizable is implemented by pools that can grow or shrink on the control path.
// Neither method is safe to call from a real-time context.
type Resizable interface {
	Extend(n int) int
	Shrink(n int) int
	Release() error
	Name() string
}

// StatsSource exposes pool accounting for observability.
type StatsSource interface {
	Stats() BufferPoolStats
}
