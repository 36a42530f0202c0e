//go:build windows
// +build windows

// control/platform_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific metrics/debug introspection points.

package control

import (
	"runtime"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/internal/mem"
)

// RegisterPlatformProbes sets Windows-specific debug probes.
func RegisterPlatformProbes(dp api.Debug) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.page_size", func() any {
		return mem.PageSize()
	})
	dp.RegisterProbe("platform.large_page_minimum", func() any {
		return int(windows.GetLargePageMinimum())
	})
}
