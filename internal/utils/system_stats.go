package utils

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

// LoopStats beschreibt die Bildschleife aus Sicht der Statusschnittstelle
type LoopStats struct {
	Running         bool    `json:"running"`
	FramesProcessed uint64  `json:"frames_processed"`
	LoopFPS         float64 `json:"loop_fps"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	// Anteil einer Host-CPU pro verarbeitetem Bild, 0 ohne Messwert
	CPUPerFrame float64 `json:"cpu_per_frame"`
}

// SystemStats verbindet Prozess-, Host- und Schleifenzahlen
type SystemStats struct {
	NumCPU      int     `json:"num_cpu"`
	GoRoutines  int     `json:"go_routines"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryAlloc uint64  `json:"memory_alloc"`
	MemoryHuman string  `json:"memory_human"`

	// 0, wenn nicht ermittelbar
	HostMemoryTotal   uint64  `json:"host_memory_total"`
	HostMemoryUsedPct float64 `json:"host_memory_used_percent"`

	Loop      LoopStats `json:"loop"`
	Timestamp time.Time `json:"timestamp"`
}

// FormatBytes formatiert Bytes in lesbare Einheiten (KB, MB, GB)
func FormatBytes(bytes uint64) string {
	units := []string{"KB", "MB", "GB"}
	if bytes < 1024 {
		return fmt.Sprintf("%d Bytes", bytes)
	}
	value := float64(bytes) / 1024
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", value, units[unit])
}

// cpuSampler misst die CPU-Auslastung höchstens einmal pro Intervall,
// damit häufige Statusabfragen die Bildschleife nicht ausbremsen
type cpuSampler struct {
	mu       sync.Mutex
	interval time.Duration
	measure  func() (float64, error)
	now      func() time.Time
	at       time.Time
	last     float64
}

func newCPUSampler(interval time.Duration) *cpuSampler {
	return &cpuSampler{
		interval: interval,
		now:      time.Now,
		measure: func() (float64, error) {
			percentages, err := cpu.Percent(200*time.Millisecond, false)
			if err != nil || len(percentages) == 0 {
				return 0, err
			}
			return percentages[0], nil
		},
	}
}

func (s *cpuSampler) usage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.at.IsZero() && now.Sub(s.at) < s.interval {
		return s.last
	}
	usage, err := s.measure()
	if err != nil {
		log.Warnf("CPU usage unavailable: %v", err)
		return s.last
	}
	s.at, s.last = now, usage
	return usage
}

var processCPU = newCPUSampler(500 * time.Millisecond)

// GetSystemStats erfasst den aktuellen Zustand von Prozess, Host und Bildschleife
func GetSystemStats(loop LoopStats) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &SystemStats{
		NumCPU:      runtime.NumCPU(),
		GoRoutines:  runtime.NumGoroutine(),
		CPUUsage:    processCPU.usage(),
		MemoryAlloc: memStats.Alloc,
		MemoryHuman: FormatBytes(memStats.Alloc),
		Loop:        loop,
		Timestamp:   time.Now(),
	}
	if loop.LoopFPS > 0 {
		stats.Loop.CPUPerFrame = stats.CPUUsage / 100 * float64(stats.NumCPU) / loop.LoopFPS
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemoryTotal = vm.Total
		stats.HostMemoryUsedPct = vm.UsedPercent
	} else {
		log.Debugf("Host memory unavailable: %v", err)
	}

	return stats
}
