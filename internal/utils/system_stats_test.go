package utils

import (
	"errors"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024 / 2, "1.50 GB"},
		{2048 * 1024 * 1024 * 1024, "2048.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestCPUSamplerCaches(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	s := &cpuSampler{
		interval: time.Second,
		now:      func() time.Time { return clock },
		measure: func() (float64, error) {
			calls++
			if calls == 3 {
				return 0, errors.New("unavailable")
			}
			return float64(calls * 10), nil
		},
	}

	if got := s.usage(); got != 10 {
		t.Errorf("first sample = %v", got)
	}
	clock = clock.Add(500 * time.Millisecond)
	if got := s.usage(); got != 10 || calls != 1 {
		t.Errorf("cached sample = %v after %d calls", got, calls)
	}
	clock = clock.Add(time.Second)
	if got := s.usage(); got != 20 {
		t.Errorf("fresh sample = %v", got)
	}
	clock = clock.Add(time.Second)
	if got := s.usage(); got != 20 {
		t.Errorf("failed measurement should keep last value, got %v", got)
	}
}

func TestGetSystemStatsCarriesLoop(t *testing.T) {
	loop := LoopStats{Running: true, FramesProcessed: 750, LoopFPS: 25, UptimeSeconds: 30}
	stats := GetSystemStats(loop)
	if stats.NumCPU < 1 || stats.GoRoutines < 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.MemoryHuman == "" || stats.Timestamp.IsZero() {
		t.Errorf("missing fields: %+v", stats)
	}
	if !stats.Loop.Running || stats.Loop.FramesProcessed != 750 || stats.Loop.LoopFPS != 25 {
		t.Errorf("loop = %+v", stats.Loop)
	}
	if stats.Loop.CPUPerFrame < 0 {
		t.Errorf("cpu per frame = %v", stats.Loop.CPUPerFrame)
	}
}

func TestGetSystemStatsIdleLoop(t *testing.T) {
	if got := GetSystemStats(LoopStats{}).Loop.CPUPerFrame; got != 0 {
		t.Errorf("cpu per frame without fps = %v", got)
	}
}
