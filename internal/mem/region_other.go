//go:build !linux && !windows

// File: internal/mem/region_other.go
// Author: momentics <momentics@gmail.com>
//
// Heap-only fallback for platforms without a dedicated allocator.

package mem

import "os"

func platformAlloc(int, bool) *Region { return nil }

func platformFree(Kind, []byte) error { return nil }

// PageSize reports the OS base page size.
func PageSize() int { return os.Getpagesize() }
