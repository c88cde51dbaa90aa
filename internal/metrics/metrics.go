// Package metrics samples process resource usage for the per-instance
// bandwidth log line spec.md §4.H step 7 calls for every 5 seconds.
package metrics

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Sample is one point-in-time resource reading for the current process.
type Sample struct {
	CPUPercent float64
	RSSBytes   uint64
}

// Sampler caches the gopsutil process handle for the running binary so
// repeated Sample calls (once per bandwidth-log tick) don't re-resolve the
// pid each time.
type Sampler struct {
	proc *process.Process
}

// NewSampler opens a handle onto the current process.
func NewSampler() (*Sampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("metrics: opening process handle: %w", err)
	}
	return &Sampler{proc: p}, nil
}

// Sample reads current CPU% (since the previous call) and resident set
// size. Errors from gopsutil are non-fatal to the caller: an instance's
// housekeeping log should never abort a tick over a metrics read failure,
// so Sample returns the zero Sample on error rather than propagating it.
func (s *Sampler) Sample(ctx context.Context) Sample {
	cpu, err := s.proc.PercentWithContext(ctx, 0)
	if err != nil {
		cpu = 0
	}
	mem, err := s.proc.MemoryInfoWithContext(ctx)
	var rss uint64
	if err == nil && mem != nil {
		rss = mem.RSS
	}
	return Sample{CPUPercent: cpu, RSSBytes: rss}
}
