// Package sysmon samples the current process's CPU and memory usage for the
// resource overlay. Sampling is telemetry: it never returns an error, and any
// probe that fails contributes a zero reading instead.
package sysmon

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of the process's resource usage.
type Stats struct {
	CPUPercent  float64 // 0.0 .. 100.0, relative to one core
	MemPercent  float64 // 0.0 .. 100.0, resident share of physical memory
	TotalMemory uint64  // physical memory in bytes, 0 when unknown
}

// procStats is the subset of *process.Process the sampler reads
type procStats interface {
	Threads() (map[int32]*cpu.TimesStat, error)
	MemoryInfo() (*process.MemoryInfoStat, error)
}

// Sampler produces usage snapshots for one process. CPU usage is computed
// from per-thread time deltas between consecutive samples, so the first call
// after construction or Reset reports 0.
//
// A Sampler is not safe for concurrent use; it belongs to the event loop
// that ticks it.
type Sampler struct {
	proc procStats
	vmem func() (*mem.VirtualMemoryStat, error)
	now  func() time.Time

	prevBusy map[int32]float64 // cumulative busy seconds per thread
	prevAt   time.Time
}

// NewSampler creates a sampler bound to the current process. If the process
// handle cannot be obtained the sampler still works and reports zeros.
func NewSampler() *Sampler {
	s := &Sampler{
		vmem: mem.VirtualMemory,
		now:  time.Now,
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = proc
	}
	return s
}

// Sample collects one snapshot. Failed probes yield zero readings.
func (s *Sampler) Sample() Stats {
	var stats Stats

	if s.proc == nil {
		return stats
	}

	if mi, err := s.proc.MemoryInfo(); err == nil && mi != nil {
		if vm, err := s.vmem(); err == nil && vm != nil && vm.Total > 0 {
			stats.MemPercent = float64(mi.RSS) / float64(vm.Total) * 100
			stats.TotalMemory = vm.Total
		}
	}

	stats.CPUPercent = s.sampleCPU()

	return stats
}

// sampleCPU diffs per-thread cumulative CPU times against the previous
// sample. Threads that vanished since then drop out; new threads count from
// their next sample. A failed thread enumeration leaves the previous state
// untouched so the next successful sample spans the gap.
func (s *Sampler) sampleCPU() float64 {
	threads, err := s.proc.Threads()
	if err != nil {
		return 0
	}

	at := s.now()
	busy := make(map[int32]float64, len(threads))
	var delta float64
	for tid, ts := range threads {
		if ts == nil {
			continue
		}
		b := ts.User + ts.System
		busy[tid] = b
		if prev, ok := s.prevBusy[tid]; ok && b > prev {
			delta += b - prev
		}
	}

	var pct float64
	if s.prevBusy != nil && !s.prevAt.IsZero() {
		if elapsed := at.Sub(s.prevAt).Seconds(); elapsed > 0 {
			pct = delta / elapsed * 100
		}
	}

	s.prevBusy = busy
	s.prevAt = at

	return clampPercent(pct)
}

// Reset clears the delta state; the next Sample reports 0 CPU again.
func (s *Sampler) Reset() {
	s.prevBusy = nil
	s.prevAt = time.Time{}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
