package monitor

import (
	"errors"

	"drowsiness-guard/internal/alarm"
	"drowsiness-guard/internal/drowsiness"
)

// ErrStreamEnded is returned by a Source when no further frames are available.
var ErrStreamEnded = errors.New("video stream ended")

// Frame is an opaque captured image owned by the loop until Close.
type Frame interface {
	Close() error
}

// Source yields frames in capture order. Read blocks until a frame is available.
type Source interface {
	Read() (Frame, error)
	Close() error
}

// Detector finds faces and the eyes inside them.
type Detector interface {
	Detect(frame Frame) ([]drowsiness.Face, error)
}

// Overlay is what the renderer draws on top of a frame.
type Overlay struct {
	Faces     []drowsiness.Face
	ShowAlert bool
	Counter   int
}

// Renderer draws frames and reports whether the user asked to exit.
type Renderer interface {
	Render(frame Frame, overlay Overlay) error
	// PollExit waits briefly for input and returns true on an exit request.
	PollExit() bool
	Close() error
}

// Alarm is the subset of alarm.Controller the loop drives.
type Alarm interface {
	Start() alarm.StartResult
	Stop() bool
	On() bool
	Loaded() bool
}

// EventSink receives classification transitions and session boundaries.
// Errors are logged by the loop and never stop it.
type EventSink interface {
	HandleEvent(event Event) error
}

type headless struct{}

func (headless) Render(Frame, Overlay) error { return nil }
func (headless) PollExit() bool              { return false }
func (headless) Close() error                { return nil }
