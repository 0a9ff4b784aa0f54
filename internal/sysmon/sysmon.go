// Package sysmon samples host-wide CPU and memory load.
package sysmon

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Load is a single host-wide usage sample. Both fields range from 0 to 100.
type Load struct {
	CPUPercent float64
	MemPercent float64
}

// String renders l as "cpu 12.5% mem 40.0%".
func (l Load) String() string {
	return fmt.Sprintf("cpu %.1f%% mem %.1f%%", l.CPUPercent, l.MemPercent)
}

// Sample reads host load. CPU usage is the delta since the previous call,
// so the first sample of a process may report 0. A source that cannot be
// read leaves its field at zero; the error is returned only when both fail.
func Sample(ctx context.Context) (Load, error) {
	var l Load
	cpuPcts, cpuErr := cpu.PercentWithContext(ctx, 0, false)
	if cpuErr == nil && len(cpuPcts) > 0 {
		l.CPUPercent = clampPercent(cpuPcts[0])
	}
	vmem, memErr := mem.VirtualMemoryWithContext(ctx)
	if memErr == nil && vmem != nil {
		l.MemPercent = clampPercent(vmem.UsedPercent)
	}
	if cpuErr != nil && memErr != nil {
		return l, fmt.Errorf("sampling host load: %w", memErr)
	}
	return l, nil
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
