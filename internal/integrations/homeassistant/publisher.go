package homeassistant

import (
	"fmt"
	"time"

	"drowsiness-guard/internal/monitor"

	log "github.com/sirupsen/logrus"
)

// Unterthemen unterhalb des MQTT-Präfixes
const (
	TopicDrowsy = "drowsy"
	TopicState  = "state"
)

// Zustände des Binärsensors
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// StatePayload wird bei jeder Zustandsänderung auf <prefix>/state veröffentlicht
type StatePayload struct {
	SessionID      string    `json:"session_id"`
	Event          string    `json:"event"`
	Classification string    `json:"classification"`
	Counter        int       `json:"counter"`
	MissedFrames   int       `json:"missed_frames,omitempty"`
	Threshold      int       `json:"threshold"`
	AlarmOn        bool      `json:"alarm_on"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher veröffentlicht Monitor-Ereignisse via MQTT
type Publisher struct {
	client MessagePublisher
}

// NewPublisher erstellt einen neuen MQTT-Publisher für Home Assistant
func NewPublisher(client MessagePublisher) *Publisher {
	return &Publisher{client: client}
}

// HandleEvent implementiert monitor.EventSink
func (p *Publisher) HandleEvent(ev monitor.Event) error {
	state := PayloadOff
	if ev.Type == monitor.EventDrowsy {
		state = PayloadOn
	}

	if err := p.client.PublishRetain(p.client.Topic(TopicDrowsy), state); err != nil {
		return fmt.Errorf("failed to publish drowsy state: %w", err)
	}

	payload := StatePayload{
		SessionID:      ev.SessionID,
		Event:          string(ev.Type),
		Classification: ev.Classification,
		Counter:        ev.Counter,
		MissedFrames:   ev.MissedFrames,
		Threshold:      ev.Threshold,
		AlarmOn:        ev.AlarmOn,
		Timestamp:      ev.At,
	}
	if err := p.client.PublishRetain(p.client.Topic(TopicState), payload); err != nil {
		return fmt.Errorf("failed to publish state: %w", err)
	}

	log.Debugf("Published %s event to MQTT (drowsy=%s)", ev.Type, state)
	return nil
}
