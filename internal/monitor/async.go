package monitor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrSinkBusy wird zurückgegeben, wenn der Puffer eines AsyncSink voll ist
	ErrSinkBusy = errors.New("event sink busy, event dropped")
	// ErrSinkClosed wird nach Close zurückgegeben
	ErrSinkClosed = errors.New("event sink closed")
)

// AsyncSink entkoppelt eine langsame Senke (Datenbank, Broker) von der
// Bildschleife. HandleEvent blockiert nie; die Zustellung übernimmt eine
// eigene Goroutine in Eingangsreihenfolge.
type AsyncSink struct {
	name   string
	sink   EventSink
	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewAsyncSink startet die Zustell-Goroutine für sink
func NewAsyncSink(name string, sink EventSink, buffer int) *AsyncSink {
	if buffer < 1 {
		buffer = 1
	}
	a := &AsyncSink{
		name:   name,
		sink:   sink,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go a.drain()
	return a
}

// HandleEvent reiht das Ereignis ein, ohne auf die Senke zu warten
func (a *AsyncSink) HandleEvent(ev Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrSinkClosed
	}
	select {
	case a.events <- ev:
		return nil
	default:
		return fmt.Errorf("%s: %w", a.name, ErrSinkBusy)
	}
}

// Close nimmt keine Ereignisse mehr an und wartet höchstens timeout,
// bis die eingereihten Ereignisse zugestellt sind
func (a *AsyncSink) Close(timeout time.Duration) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%s: %d queued events not delivered within %s", a.name, len(a.events), timeout)
	}
}

func (a *AsyncSink) drain() {
	defer close(a.done)
	for ev := range a.events {
		if err := a.sink.HandleEvent(ev); err != nil {
			log.WithError(err).Warnf("Event sink %s failed for %s", a.name, ev.Type)
		}
	}
}
