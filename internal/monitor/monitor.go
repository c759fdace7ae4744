// Package monitor runs the frame loop: capture, detect, classify, alarm, render.
package monitor

import (
	"context"
	"errors"
	"time"

	"drowsiness-guard/internal/drowsiness"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Options configures a Monitor. Zero values are usable.
type Options struct {
	Threshold int
	Sinks     []EventSink
	Status    *Status
	// Clock is used for timestamps and the FPS meter; defaults to time.Now.
	Clock func() time.Time
}

// Monitor drives one detection session. All state is owned by the goroutine
// calling Run; outer surfaces see it through Status and EventSinks.
type Monitor struct {
	source   Source
	detector Detector
	renderer Renderer
	alarm    Alarm
	machine  *drowsiness.StateMachine
	sinks    []EventSink
	status   *Status
	clock    func() time.Time

	sessionID string
	frames    uint64
	lastMiss  int
	fps       fpsMeter
}

// New creates a monitor. A nil renderer runs headless.
func New(source Source, detector Detector, renderer Renderer, alarm Alarm, opts Options) *Monitor {
	if renderer == nil {
		renderer = headless{}
	}
	if opts.Status == nil {
		opts.Status = NewStatus()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Monitor{
		source:    source,
		detector:  detector,
		renderer:  renderer,
		alarm:     alarm,
		machine:   drowsiness.NewStateMachine(opts.Threshold),
		sinks:     opts.Sinks,
		status:    opts.Status,
		clock:     opts.Clock,
		sessionID: uuid.NewString(),
	}
}

// SessionID identifies this run in events and the episode journal.
func (m *Monitor) SessionID() string { return m.sessionID }

// Status returns the shared status snapshot holder.
func (m *Monitor) Status() *Status { return m.status }

// Run processes frames until the stream ends, the renderer reports an exit
// request or ctx is cancelled. The current iteration always completes, and
// the alarm is stopped before the capture is released on every exit path.
func (m *Monitor) Run(ctx context.Context) error {
	started := m.clock()
	m.status.update(func(s *Snapshot) {
		s.SessionID = m.sessionID
		s.Running = true
		s.Threshold = m.machine.Threshold()
		s.StartedAt = started
		s.AudioLoaded = m.alarm.Loaded()
		s.Classification = drowsiness.Alert.String()
	})
	m.emit(Event{Type: EventSessionStarted, At: started})

	defer m.shutdown()

	log.Info("Starting video stream...")
	for {
		if err := ctx.Err(); err != nil {
			log.Info("Stop requested, leaving frame loop")
			return nil
		}

		frame, err := m.source.Read()
		if err != nil {
			if errors.Is(err, ErrStreamEnded) {
				log.Info("Video stream ended")
			} else {
				log.Warnf("Failed to read frame, leaving frame loop: %v", err)
			}
			return nil
		}

		exit := m.step(frame)
		if err := frame.Close(); err != nil {
			log.Debugf("Failed to release frame: %v", err)
		}
		if exit {
			log.Info("Exit requested from display")
			return nil
		}
	}
}

// step handles exactly one frame and reports whether the loop should exit.
func (m *Monitor) step(frame Frame) bool {
	m.frames++
	now := m.clock()

	faces, err := m.detector.Detect(frame)
	if err != nil {
		log.Warnf("Detection failed on frame %d: %v", m.frames, err)
		faces = nil
	}

	visible := drowsiness.EyesVisible(faces)
	res := m.machine.Observe(visible)

	if res.Classification == drowsiness.Drowsy {
		m.alarm.Start()
	} else {
		m.alarm.Stop()
	}

	if res.Changed {
		m.transition(res, now)
	}
	if !visible {
		m.lastMiss = res.Counter
	}

	fps := m.fps.tick(now)
	m.status.update(func(s *Snapshot) {
		s.Classification = res.Classification.String()
		s.Counter = res.Counter
		s.EyesVisible = visible
		s.Faces = len(faces)
		s.AlarmOn = m.alarm.On()
		s.Frames = m.frames
		s.FPS = fps
		if res.Changed {
			s.LastTransition = now
		}
	})

	overlay := Overlay{
		Faces:     faces,
		ShowAlert: res.Classification == drowsiness.Drowsy,
		Counter:   res.Counter,
	}
	if err := m.renderer.Render(frame, overlay); err != nil {
		log.Debugf("Render failed: %v", err)
	}

	return m.renderer.PollExit()
}

func (m *Monitor) transition(res drowsiness.Result, now time.Time) {
	ev := Event{
		Classification: res.Classification.String(),
		Counter:        res.Counter,
		At:             now,
	}
	if res.Classification == drowsiness.Drowsy {
		ev.Type = EventDrowsy
		log.WithFields(log.Fields{
			"counter":   res.Counter,
			"threshold": m.machine.Threshold(),
			"frame":     m.frames,
		}).Warn("Drowsiness detected")
	} else {
		ev.Type = EventAlert
		ev.MissedFrames = m.lastMiss
		log.WithFields(log.Fields{
			"missed_frames": m.lastMiss,
			"frame":         m.frames,
		}).Info("Driver alert again")
	}
	m.emit(ev)
}

func (m *Monitor) shutdown() {
	log.Info("Shutting down...")
	m.alarm.Stop()

	end := Event{Type: EventSessionEnded, At: m.clock()}
	if m.machine.Classification() == drowsiness.Drowsy {
		end.MissedFrames = m.machine.Counter()
	}
	m.emit(end)

	if err := m.source.Close(); err != nil {
		log.Warnf("Failed to release video source: %v", err)
	}
	if err := m.renderer.Close(); err != nil {
		log.Warnf("Failed to close display: %v", err)
	}

	m.status.update(func(s *Snapshot) {
		s.Running = false
		s.AlarmOn = m.alarm.On()
	})
}

func (m *Monitor) emit(ev Event) {
	ev.SessionID = m.sessionID
	ev.Threshold = m.machine.Threshold()
	ev.Frame = m.frames
	ev.AlarmOn = m.alarm.On()
	if ev.Classification == "" {
		ev.Classification = m.machine.Classification().String()
	}
	if ev.Type != EventSessionStarted {
		ev.Counter = m.machine.Counter()
	}

	for _, sink := range m.sinks {
		if err := sink.HandleEvent(ev); err != nil {
			log.WithError(err).Warnf("Event sink failed for %s", ev.Type)
		}
	}
}
