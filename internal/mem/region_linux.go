//go:build linux

// File: internal/mem/region_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux regions: anonymous private mappings, 2 MiB hugepages when asked.

package mem

import "golang.org/x/sys/unix"

func platformAlloc(size int, huge bool) *Region {
	const prot = unix.PROT_READ | unix.PROT_WRITE
	const flags = unix.MAP_ANONYMOUS | unix.MAP_PRIVATE

	if huge {
		length := ((size + HugePageSize - 1) / HugePageSize) * HugePageSize
		if m, err := unix.Mmap(-1, 0, length, prot, flags|unix.MAP_HUGETLB); err == nil {
			return &Region{Data: m[:size], mapping: m, kind: KindHugePage}
		}
	}
	m, err := unix.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil
	}
	return &Region{Data: m[:size], mapping: m, kind: KindMmap}
}

func platformFree(_ Kind, mapping []byte) error {
	return unix.Munmap(mapping)
}

// PageSize reports the OS base page size.
func PageSize() int {
	return unix.Getpagesize()
}
