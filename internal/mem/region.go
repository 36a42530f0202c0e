// File: internal/mem/region.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package mem provides backing storage regions for buffer pools.
//
// A region is one contiguous block carved into many fixed-size buffers.
// On Linux regions come from anonymous mmap (optionally MAP_HUGETLB), on
// Windows from VirtualAlloc; anything else falls back to the Go heap.
// Allocation and release are control-path operations and may block.
package mem

import "fmt"

// HugePageSize is the hugepage granularity used when hugepages are requested.
const HugePageSize = 2 << 20

// Kind identifies where a region's memory came from.
type Kind uint8

const (
	KindHeap Kind = iota
	KindMmap
	KindHugePage
	KindVirtualAlloc
)

func (k Kind) String() string {
	switch k {
	case KindMmap:
		return "mmap"
	case KindHugePage:
		return "hugepage"
	case KindVirtualAlloc:
		return "virtualalloc"
	default:
		return "heap"
	}
}

// Region is a block of storage of exactly len(Data) usable bytes.
type Region struct {
	Data    []byte
	mapping []byte // full OS mapping; nil for heap regions
	kind    Kind
	freed   bool
}

// Kind reports the allocator that produced the region.
func (r *Region) Kind() Kind { return r.kind }

// Alloc returns a zeroed region of size bytes. When huge is set the
// platform allocator tries hugepages first; every platform falls back to
// ordinary pages and finally to the Go heap, so an error means size was bad.
func Alloc(size int, huge bool) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mem: invalid region size %d", size)
	}
	if r := platformAlloc(size, huge); r != nil {
		return r, nil
	}
	return &Region{Data: make([]byte, size), kind: KindHeap}, nil
}

// Free returns the region to the OS. Freeing twice is a no-op.
func (r *Region) Free() error {
	if r == nil || r.freed {
		return nil
	}
	r.freed = true
	data := r.Data
	r.Data = nil
	if r.kind == KindHeap {
		return nil
	}
	m := r.mapping
	r.mapping = nil
	if m == nil {
		m = data
	}
	return platformFree(r.kind, m)
}
