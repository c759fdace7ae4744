package monitor

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the loop state for outer surfaces.
type Snapshot struct {
	SessionID      string    `json:"session_id"`
	Running        bool      `json:"running"`
	Classification string    `json:"classification"`
	Counter        int       `json:"counter"`
	Threshold      int       `json:"threshold"`
	EyesVisible    bool      `json:"eyes_visible"`
	Faces          int       `json:"faces"`
	AlarmOn        bool      `json:"alarm_on"`
	AudioLoaded    bool      `json:"audio_loaded"`
	Frames         uint64    `json:"frames"`
	FPS            float64   `json:"fps"`
	StartedAt      time.Time `json:"started_at"`
	LastTransition time.Time `json:"last_transition,omitempty"`
}

// Status holds the latest Snapshot. The loop writes, HTTP handlers read.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStatus returns an empty status.
func NewStatus() *Status {
	return &Status{snap: Snapshot{Classification: "ALERT"}}
}

// Snapshot returns a copy of the current state.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Status) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	s.mu.Unlock()
}

// fpsMeter keeps an exponential moving average of the frame rate.
type fpsMeter struct {
	last time.Time
	fps  float64
}

const fpsSmoothing = 0.1

func (f *fpsMeter) tick(now time.Time) float64 {
	if !f.last.IsZero() {
		if dt := now.Sub(f.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if f.fps == 0 {
				f.fps = inst
			} else {
				f.fps += fpsSmoothing * (inst - f.fps)
			}
		}
	}
	f.last = now
	return f.fps
}
