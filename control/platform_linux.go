//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific platform probes: CPU count, page geometry and the
// hugepage reservation buffer storage can draw from.

package control

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/internal/mem"
)

// RegisterPlatformProbes sets Linux-specific debug metrics.
func RegisterPlatformProbes(dp api.Debug) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.page_size", func() any {
		return mem.PageSize()
	})
	dp.RegisterProbe("platform.hugepages_free", func() any {
		return hugePagesFree("/proc/meminfo")
	})
}

// hugePagesFree reads HugePages_Free from a meminfo file, or -1.
func hugePagesFree(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	for _, line := range strings.Split(string(data), "\n") {
		if rest, ok := strings.CutPrefix(line, "HugePages_Free:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return -1
			}
			return n
		}
	}
	return -1
}
