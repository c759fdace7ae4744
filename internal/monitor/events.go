package monitor

import "time"

// EventType names the kind of monitor event.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventDrowsy         EventType = "drowsy"
	EventAlert          EventType = "alert"
	EventSessionEnded   EventType = "session_ended"
)

// Event describes a classification transition or a session boundary.
type Event struct {
	Type           EventType `json:"type"`
	SessionID      string    `json:"session_id"`
	Classification string    `json:"classification"`
	Counter        int       `json:"counter"`
	// MissedFrames is the length of the closed-eye run that just ended,
	// set on EventAlert and on EventSessionEnded while drowsy.
	MissedFrames int       `json:"missed_frames,omitempty"`
	Threshold    int       `json:"threshold"`
	Frame        uint64    `json:"frame"`
	AlarmOn      bool      `json:"alarm_on"`
	At           time.Time `json:"at"`
}
