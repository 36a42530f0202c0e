//go:build windows

// File: internal/mem/region_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows regions: committed VirtualAlloc blocks.

package mem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func platformAlloc(size int, huge bool) *Region {
	flags := uint32(windows.MEM_RESERVE | windows.MEM_COMMIT)
	if huge {
		length := ((size + HugePageSize - 1) / HugePageSize) * HugePageSize
		addr, err := windows.VirtualAlloc(0, uintptr(length), flags|windows.MEM_LARGE_PAGES, windows.PAGE_READWRITE)
		if err == nil && addr != 0 {
			m := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
			return &Region{Data: m[:size], mapping: m, kind: KindHugePage}
		}
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size), flags, windows.PAGE_READWRITE)
	if err != nil || addr == 0 {
		return nil
	}
	m := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &Region{Data: m, mapping: m, kind: KindVirtualAlloc}
}

func platformFree(_ Kind, mapping []byte) error {
	if len(mapping) == 0 {
		return nil
	}
	return windows.VirtualFree(uintptr(unsafe.Pointer(&mapping[0])), 0, windows.MEM_RELEASE)
}

// PageSize reports the OS base page size.
func PageSize() int {
	return os.Getpagesize()
}
