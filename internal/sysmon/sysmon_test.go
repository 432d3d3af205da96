package sysmon

import (
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProc struct {
	threads    map[int32]*cpu.TimesStat
	threadsErr error
	mem        *process.MemoryInfoStat
	memErr     error
}

func (f *fakeProc) Threads() (map[int32]*cpu.TimesStat, error) {
	return f.threads, f.threadsErr
}

func (f *fakeProc) MemoryInfo() (*process.MemoryInfoStat, error) {
	return f.mem, f.memErr
}

// threadTimes builds cumulative per-thread CPU times from busy seconds
func threadTimes(busy map[int32]float64) map[int32]*cpu.TimesStat {
	out := make(map[int32]*cpu.TimesStat, len(busy))
	for tid, b := range busy {
		out[tid] = &cpu.TimesStat{User: b / 2, System: b / 2}
	}
	return out
}

// testSampler wires a sampler to fakes and a manual clock
func testSampler(proc procStats, totalMem uint64) (*Sampler, *time.Time) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &Sampler{
		proc: proc,
		vmem: func() (*mem.VirtualMemoryStat, error) {
			if totalMem == 0 {
				return nil, errors.New("no vmem")
			}
			return &mem.VirtualMemoryStat{Total: totalMem}, nil
		},
		now: func() time.Time { return clock },
	}
	return s, &clock
}

func TestFirstSampleReportsZeroCPU(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 50, 2: 75}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, _ := testSampler(proc, 8<<30)

	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)
}

func TestIdleProcessReportsZeros(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 10}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	// No CPU time accrued between samples
	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)
	assert.Equal(t, 0.0, got.MemPercent)
}

func TestBusyThreadsSumAcrossThreads(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 10, 2: 20}),
		mem:     &process.MemoryInfoStat{RSS: 1 << 20},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	// Each thread burned 100ms over the 1s interval
	proc.threads = threadTimes(map[int32]float64{1: 10.1, 2: 20.1})
	got := s.Sample()
	assert.InDelta(t, 20.0, got.CPUPercent, 0.001)
}

func TestOverloadClampsToExactlyOneHundred(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 0, 2: 0, 3: 0, 4: 0}),
		mem:     &process.MemoryInfoStat{RSS: 1 << 20},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	// Four threads each burned 2.5s of CPU inside a 1s interval
	proc.threads = threadTimes(map[int32]float64{1: 2.5, 2: 2.5, 3: 2.5, 4: 2.5})
	got := s.Sample()
	assert.Equal(t, 100.0, got.CPUPercent)
}

func TestMemoryIsResidentShareOfTotal(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 0}),
		mem:     &process.MemoryInfoStat{RSS: 1 << 30},
	}
	s, _ := testSampler(proc, 8<<30)

	got := s.Sample()
	assert.InDelta(t, 12.5, got.MemPercent, 0.001)
	assert.Equal(t, uint64(8<<30), got.TotalMemory)
}

func TestMemoryZeroWhenProcessProbeFails(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 0}),
		memErr:  errors.New("proc gone"),
	}
	s, _ := testSampler(proc, 8<<30)

	got := s.Sample()
	assert.Equal(t, 0.0, got.MemPercent)
	assert.Equal(t, uint64(0), got.TotalMemory)
}

func TestMemoryZeroWhenHostTotalUnknown(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 0}),
		mem:     &process.MemoryInfoStat{RSS: 1 << 30},
	}
	s, _ := testSampler(proc, 0)

	got := s.Sample()
	assert.Equal(t, 0.0, got.MemPercent)
	assert.Equal(t, uint64(0), got.TotalMemory)
}

func TestCPUZeroWhenThreadListFails(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 1}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	proc.threadsErr = errors.New("permission denied")
	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)

	// The next successful sample spans the whole gap since the last good one
	*clock = clock.Add(time.Second)
	proc.threadsErr = nil
	proc.threads = threadTimes(map[int32]float64{1: 2})
	got = s.Sample()
	assert.InDelta(t, 50.0, got.CPUPercent, 0.001)
}

func TestVanishedThreadDoesNotSkewSample(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 5, 2: 40}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	// Thread 2 exited; thread 1 stayed idle
	proc.threads = threadTimes(map[int32]float64{1: 5})
	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)
}

func TestNewThreadCountsFromItsNextSample(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 1}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	// A thread with a long-accrued counter appears; its backlog must not
	// count as usage of this interval
	proc.threads = threadTimes(map[int32]float64{1: 1, 2: 900})
	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)

	*clock = clock.Add(time.Second)
	proc.threads = threadTimes(map[int32]float64{1: 1, 2: 900.5})
	got = s.Sample()
	assert.InDelta(t, 50.0, got.CPUPercent, 0.001)
}

func TestBackwardsCountersIgnored(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 10}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)

	proc.threads = threadTimes(map[int32]float64{1: 9})
	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)
}

func TestResetForgetsHistory(t *testing.T) {
	proc := &fakeProc{
		threads: threadTimes(map[int32]float64{1: 1}),
		mem:     &process.MemoryInfoStat{RSS: 0},
	}
	s, clock := testSampler(proc, 8<<30)

	s.Sample()
	*clock = clock.Add(time.Second)
	s.Reset()

	proc.threads = threadTimes(map[int32]float64{1: 100})
	got := s.Sample()
	assert.Equal(t, 0.0, got.CPUPercent)
}

func TestSamplerWithoutProcessReportsZeros(t *testing.T) {
	s := &Sampler{}

	got := s.Sample()
	assert.Equal(t, Stats{}, got)
}

func TestLiveSampler(t *testing.T) {
	s := NewSampler()
	require.NotNil(t, s)

	first := s.Sample()
	assert.Equal(t, 0.0, first.CPUPercent)
	assert.GreaterOrEqual(t, first.MemPercent, 0.0)
	assert.LessOrEqual(t, first.MemPercent, 100.0)

	second := s.Sample()
	assert.GreaterOrEqual(t, second.CPUPercent, 0.0)
	assert.LessOrEqual(t, second.CPUPercent, 100.0)
}
