package homeassistant

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Komponententypen und Node-ID für die MQTT Discovery
const (
	ComponentBinarySensor = "binary_sensor"
	ComponentSensor       = "sensor"
	NodeID                = "drowsiness_guard"
)

// MessagePublisher ist der Teil des MQTT-Clients, den die Integration benötigt
type MessagePublisher interface {
	Publish(topic string, payload interface{}) error
	PublishRetain(topic string, payload interface{}) error
	Topic(sub string) string
	StatusTopic() string
}

// Translator liefert die lokalisierten Sensornamen
type Translator interface {
	T(id string) string
}

// SensorConfig repräsentiert die Discovery-Konfiguration einer Entität
type SensorConfig struct {
	Name                string  `json:"name"`
	UniqueID            string  `json:"unique_id"`
	StateTopic          string  `json:"state_topic"`
	DeviceClass         string  `json:"device_class,omitempty"`
	Icon                string  `json:"icon,omitempty"`
	ValueTemplate       string  `json:"value_template,omitempty"`
	UnitOfMeasurement   string  `json:"unit_of_measurement,omitempty"`
	JSONAttributesTopic string  `json:"json_attributes_topic,omitempty"`
	PayloadOn           string  `json:"payload_on,omitempty"`
	PayloadOff          string  `json:"payload_off,omitempty"`
	AvailabilityTopic   string  `json:"availability_topic,omitempty"`
	PayloadAvailable    string  `json:"payload_available,omitempty"`
	PayloadNotAvailable string  `json:"payload_not_available,omitempty"`
	Device              *Device `json:"device,omitempty"`
}

// Device repräsentiert die Geräteinformationen für Home Assistant
type Device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// DiscoveryManager verwaltet die Home Assistant MQTT Discovery
type DiscoveryManager struct {
	client MessagePublisher
	tr     Translator
	prefix string
}

// NewDiscoveryManager erstellt einen neuen Manager; prefix ist das Discovery-Präfix
func NewDiscoveryManager(client MessagePublisher, tr Translator, prefix string) *DiscoveryManager {
	if prefix == "" {
		prefix = "homeassistant"
	}
	return &DiscoveryManager{client: client, tr: tr, prefix: prefix}
}

func (dm *DiscoveryManager) device() *Device {
	return &Device{
		Identifiers:  []string{NodeID},
		Name:         dm.tr.T("window_title"),
		Manufacturer: "drowsiness-guard",
		Model:        "Haar Cascade",
	}
}

// ConfigTopic baut das Discovery-Thema einer Entität
func (dm *DiscoveryManager) ConfigTopic(component, object string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", dm.prefix, component, NodeID, object)
}

// Register veröffentlicht die Discovery-Konfiguration für beide Entitäten
func (dm *DiscoveryManager) Register() error {
	device := dm.device()

	drowsy := SensorConfig{
		Name:                dm.tr.T("sensor_drowsy"),
		UniqueID:            NodeID + "_drowsy",
		StateTopic:          dm.client.Topic(TopicDrowsy),
		DeviceClass:         "problem",
		Icon:                "mdi:sleep",
		JSONAttributesTopic: dm.client.Topic(TopicState),
		PayloadOn:           PayloadOn,
		PayloadOff:          PayloadOff,
		AvailabilityTopic:   dm.client.StatusTopic(),
		PayloadAvailable:    "online",
		PayloadNotAvailable: "offline",
		Device:              device,
	}
	log.Info("Registering Home Assistant binary sensor for drowsiness")
	if err := dm.client.PublishRetain(dm.ConfigTopic(ComponentBinarySensor, "drowsy"), drowsy); err != nil {
		return fmt.Errorf("failed to publish discovery configuration: %w", err)
	}

	counter := SensorConfig{
		Name:                dm.tr.T("sensor_counter"),
		UniqueID:            NodeID + "_counter",
		StateTopic:          dm.client.Topic(TopicState),
		ValueTemplate:       "{{ value_json.counter }}",
		UnitOfMeasurement:   "frames",
		Icon:                "mdi:eye-off",
		AvailabilityTopic:   dm.client.StatusTopic(),
		PayloadAvailable:    "online",
		PayloadNotAvailable: "offline",
		Device:              device,
	}
	log.Info("Registering Home Assistant sensor for closed-eye frames")
	if err := dm.client.PublishRetain(dm.ConfigTopic(ComponentSensor, "counter"), counter); err != nil {
		return fmt.Errorf("failed to publish discovery configuration: %w", err)
	}

	return nil
}
