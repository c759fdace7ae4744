package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"drowsiness-guard/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Verfügbarkeits-Payloads auf <prefix>/status
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// ErrPublishTimeout meldet eine Veröffentlichung ohne Bestätigung innerhalb der Frist
var ErrPublishTimeout = errors.New("MQTT publish timed out")

// DefaultPublishTimeout begrenzt das Warten auf das PUBACK des Brokers
const DefaultPublishTimeout = 2 * time.Second

// Client ist der MQTT-Client, über den Zustandsänderungen veröffentlicht werden
type Client struct {
	config         config.MQTTConfig
	client         mqtt.Client
	publishTimeout time.Duration
	mu             sync.RWMutex
	onConnect      []func()
}

// NewClient erstellt einen neuen MQTT-Client
func NewClient(cfg config.MQTTConfig) *Client {
	return &Client{config: cfg, publishTimeout: DefaultPublishTimeout}
}

// SetPublishTimeout ändert die maximale Wartezeit je Veröffentlichung
func (c *Client) SetPublishTimeout(d time.Duration) {
	if d > 0 {
		c.publishTimeout = d
	}
}

// Topic setzt das konfigurierte Präfix vor ein Unterthema
func (c *Client) Topic(sub string) string {
	return fmt.Sprintf("%s/%s", c.config.TopicPrefix, sub)
}

// StatusTopic ist das Verfügbarkeitsthema inklusive Last Will
func (c *Client) StatusTopic() string {
	return c.Topic("status")
}

// OnConnect registriert eine Funktion, die nach jedem (Wieder-)Verbinden läuft
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = append(c.onConnect, fn)
	c.mu.Unlock()
}

// Start verbindet den Client mit dem Broker
func (c *Client) Start() error {
	if !c.config.Enabled {
		log.Info("MQTT client is disabled in configuration")
		return nil
	}

	opts := mqtt.NewClientOptions()

	brokerURL := fmt.Sprintf("tcp://%s:%d", c.config.Broker, c.config.Port)
	opts.AddBroker(brokerURL)
	opts.SetClientID(c.config.ClientID)

	if c.config.Username != "" {
		opts.SetUsername(c.config.Username)
		opts.SetPassword(c.config.Password)
	}

	// Broker meldet "offline", wenn die Verbindung unerwartet abreißt
	opts.SetWill(c.StatusTopic(), PayloadOffline, 1, true)

	opts.SetOnConnectHandler(c.onConnectHandler)
	opts.SetConnectionLostHandler(c.connectionLostHandler)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)
	opts.SetConnectTimeout(10 * time.Second)

	c.client = mqtt.NewClient(opts)

	log.Infof("Connecting to MQTT broker at %s", brokerURL)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		log.Errorf("Failed to connect to MQTT broker: %v", token.Error())
		return token.Error()
	}

	log.Info("MQTT client connected successfully")
	return nil
}

// Stop meldet "offline" und trennt die Verbindung
func (c *Client) Stop() {
	if c.client == nil || !c.client.IsConnected() {
		return
	}
	if err := c.PublishRetain(c.StatusTopic(), PayloadOffline); err != nil {
		log.Warnf("Failed to publish offline status: %v", err)
	}
	log.Info("Disconnecting MQTT client...")
	c.client.Disconnect(250)
	log.Info("MQTT client disconnected")
}

// IsConnected prüft, ob der Client verbunden ist
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

func (c *Client) onConnectHandler(client mqtt.Client) {
	log.Infof("Connected to MQTT broker at %s:%d", c.config.Broker, c.config.Port)

	token := client.Publish(c.StatusTopic(), 1, true, PayloadOnline)
	if !token.WaitTimeout(c.publishTimeout) {
		log.Warnf("Timed out publishing online status after %s", c.publishTimeout)
	} else if token.Error() != nil {
		log.Errorf("Failed to publish online status: %v", token.Error())
	}

	c.mu.RLock()
	hooks := append([]func(){}, c.onConnect...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		go fn()
	}
}

func (c *Client) connectionLostHandler(client mqtt.Client, err error) {
	log.Errorf("MQTT connection lost: %v", err)
}

// EncodePayload wandelt eine Nutzlast in Bytes; Strukturen werden als JSON kodiert
func EncodePayload(payload interface{}) ([]byte, error) {
	switch p := payload.(type) {
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
		return []byte(fmt.Sprintf("%v", p)), nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload to JSON: %w", err)
		}
		return b, nil
	}
}

// PublishMessage veröffentlicht eine Nachricht an ein MQTT-Topic
func (c *Client) PublishMessage(topic string, payload interface{}, retain bool) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	payloadBytes, err := EncodePayload(payload)
	if err != nil {
		return err
	}

	// Ein Broker ohne PUBACK darf den Aufrufer nicht unbegrenzt blockieren
	token := c.client.Publish(topic, 1, retain, payloadBytes)
	if !token.WaitTimeout(c.publishTimeout) {
		return fmt.Errorf("%w: topic %s after %s", ErrPublishTimeout, topic, c.publishTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, token.Error())
	}

	log.Debugf("Published message to topic: %s", topic)
	return nil
}

// PublishRetain veröffentlicht eine Nachricht mit dem Retain-Flag
func (c *Client) PublishRetain(topic string, payload interface{}) error {
	return c.PublishMessage(topic, payload, true)
}

// Publish veröffentlicht eine Nachricht ohne Retain-Flag
func (c *Client) Publish(topic string, payload interface{}) error {
	return c.PublishMessage(topic, payload, false)
}
