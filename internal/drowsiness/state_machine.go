// Package drowsiness turns per-frame eye visibility into a debounced
// ALERT / DROWSY classification.
package drowsiness

// DefaultThreshold is the number of consecutive frames without visible eyes
// after which the driver is classified as drowsy.
const DefaultThreshold = 25

// Classification is the debounced state of the driver.
type Classification int

const (
	Alert Classification = iota
	Drowsy
)

func (c Classification) String() string {
	switch c {
	case Alert:
		return "ALERT"
	case Drowsy:
		return "DROWSY"
	default:
		return "UNKNOWN"
	}
}

// Result is returned by Observe for every processed frame.
type Result struct {
	Classification Classification
	Counter        int
	// Changed is true when Classification differs from the previous frame.
	Changed bool
}

// StateMachine counts consecutive frames without visible eyes.
// It is not safe for concurrent use; the frame loop owns it.
type StateMachine struct {
	threshold int
	counter   int
	current   Classification
}

// NewStateMachine returns a machine in the ALERT state with a zero counter.
// A non-positive threshold falls back to DefaultThreshold.
func NewStateMachine(threshold int) *StateMachine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &StateMachine{threshold: threshold, current: Alert}
}

// Observe feeds one frame's observation, in frame order.
// A single frame with visible eyes clears the counter; there is no hysteresis.
func (m *StateMachine) Observe(eyesVisible bool) Result {
	next := Alert
	if eyesVisible {
		m.counter = 0
	} else {
		m.counter++
		if m.counter >= m.threshold {
			next = Drowsy
		}
	}

	changed := next != m.current
	m.current = next
	return Result{Classification: next, Counter: m.counter, Changed: changed}
}

// Counter returns the current number of consecutive missed frames.
func (m *StateMachine) Counter() int { return m.counter }

// Threshold returns the configured frame threshold.
func (m *StateMachine) Threshold() int { return m.threshold }

// Classification returns the classification of the last observed frame.
func (m *StateMachine) Classification() Classification { return m.current }
