package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config repräsentiert die Hauptkonfiguration der Anwendung
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Drowsiness DrowsinessConfig `mapstructure:"drowsiness"`
	Alarm      AlarmConfig      `mapstructure:"alarm"`
	Display    DisplayConfig    `mapstructure:"display"`
	DB         DBConfig         `mapstructure:"db"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Server     ServerConfig     `mapstructure:"server"`
}

// LogConfig enthält Log-Einstellungen
type LogConfig struct {
	Level    string `mapstructure:"level"`
	File     string `mapstructure:"file"`
	Timezone string `mapstructure:"timezone"` // für Ereignis- und Journal-Zeitstempel; leer = TZ oder UTC
}

// CameraConfig enthält die Einstellungen der Videoquelle
type CameraConfig struct {
	Device string `mapstructure:"device"` // Geräte-ID ("0") oder Datei/URL
	Mirror bool   `mapstructure:"mirror"` // Bild horizontal spiegeln
}

// CascadeConfig enthält die Parameter eines Haar-Cascade-Modells
type CascadeConfig struct {
	CascadePath   string  `mapstructure:"cascade_path"`
	ScaleFactor   float64 `mapstructure:"scale_factor"`
	MinNeighbors  int     `mapstructure:"min_neighbors"`
	MinSizeWidth  int     `mapstructure:"min_size_width"`
	MinSizeHeight int     `mapstructure:"min_size_height"`
}

// DetectorConfig enthält die Modelle für Gesichts- und Augenerkennung
type DetectorConfig struct {
	Face CascadeConfig `mapstructure:"face"`
	Eye  CascadeConfig `mapstructure:"eye"`
}

// DrowsinessConfig enthält die Schwelle für die Müdigkeitserkennung
type DrowsinessConfig struct {
	Threshold int `mapstructure:"threshold"` // aufeinanderfolgende Frames ohne Augen
}

// AlarmConfig enthält die Einstellungen für den akustischen Alarm
type AlarmConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SoundPath string `mapstructure:"sound_path"`
}

// DisplayConfig enthält die Einstellungen für das Vorschaufenster
type DisplayConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	WindowTitle string `mapstructure:"window_title"`
	Language    string `mapstructure:"language"`
	ExitKey     string `mapstructure:"exit_key"`
}

// DBConfig enthält Datenbankeinstellungen für das Episodenjournal
type DBConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	File          string `mapstructure:"file"`
	RetentionDays int    `mapstructure:"retention_days"` // 0 = nie aufräumen
}

// MQTTConfig enthält die Konfiguration für den MQTT-Client
type MQTTConfig struct {
	Enabled       bool                `mapstructure:"enabled"`
	Broker        string              `mapstructure:"broker"`
	Port          int                 `mapstructure:"port"`
	Username      string              `mapstructure:"username"`
	Password      string              `mapstructure:"password"`
	ClientID      string              `mapstructure:"client_id"`
	TopicPrefix   string              `mapstructure:"topic_prefix"`
	HomeAssistant HomeAssistantConfig `mapstructure:"homeassistant"`
}

// HomeAssistantConfig enthält die Konfiguration für die Home Assistant Integration
type HomeAssistantConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DiscoveryPrefix string `mapstructure:"discovery_prefix"`
}

// ServerConfig enthält die Einstellungen der Status-API
type ServerConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // leer = alle Origins erlaubt
}

// Load lädt die Konfiguration aus Datei, Umgebungsvariablen und Standardwerten
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Warnf("Config file %s does not exist, using defaults", configPath)
		} else {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			log.Infof("Config loaded from %s", configPath)
		}
	}

	// Umgebungsvariablen überlagern die Konfiguration, z.B. DROWSY_DROWSINESS_THRESHOLD
	v.SetEnvPrefix("DROWSY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDirectories(&cfg); err != nil {
		return nil, fmt.Errorf("failed to create required directories: %w", err)
	}

	return &cfg, nil
}

// setDefaults legt Standardwerte für die Konfiguration fest
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.timezone", "")

	v.SetDefault("camera.device", "0")
	v.SetDefault("camera.mirror", true)

	// Werte entsprechen den bewährten Haar-Cascade-Parametern
	v.SetDefault("detector.face.cascade_path", "frontalface.xml")
	v.SetDefault("detector.face.scale_factor", 1.1)
	v.SetDefault("detector.face.min_neighbors", 5)
	v.SetDefault("detector.face.min_size_width", 30)
	v.SetDefault("detector.face.min_size_height", 30)
	v.SetDefault("detector.eye.cascade_path", "eye_detector.xml")
	v.SetDefault("detector.eye.scale_factor", 1.1)
	v.SetDefault("detector.eye.min_neighbors", 20)
	v.SetDefault("detector.eye.min_size_width", 10)
	v.SetDefault("detector.eye.min_size_height", 10)

	v.SetDefault("drowsiness.threshold", 25)

	v.SetDefault("alarm.enabled", true)
	v.SetDefault("alarm.sound_path", "alarm.wav")

	v.SetDefault("display.enabled", true)
	v.SetDefault("display.window_title", "")
	v.SetDefault("display.language", "en")
	v.SetDefault("display.exit_key", "q")

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.file", "data/drowsiness.db")
	v.SetDefault("db.retention_days", 30)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.client_id", "drowsiness-guard")
	v.SetDefault("mqtt.topic_prefix", "drowsiness-guard")
	v.SetDefault("mqtt.homeassistant.enabled", false)
	v.SetDefault("mqtt.homeassistant.discovery_prefix", "homeassistant")

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
}

// Validate prüft die Werte, ohne die ein Lauf nicht sinnvoll ist
func (c *Config) Validate() error {
	if c.Drowsiness.Threshold <= 0 {
		return fmt.Errorf("drowsiness.threshold must be positive, got %d", c.Drowsiness.Threshold)
	}
	for name, cc := range map[string]CascadeConfig{"face": c.Detector.Face, "eye": c.Detector.Eye} {
		if cc.CascadePath == "" {
			return fmt.Errorf("detector.%s.cascade_path is required", name)
		}
		if cc.ScaleFactor <= 1.0 {
			return fmt.Errorf("detector.%s.scale_factor must be greater than 1, got %v", name, cc.ScaleFactor)
		}
		if cc.MinNeighbors < 0 {
			return fmt.Errorf("detector.%s.min_neighbors must not be negative", name)
		}
	}
	if c.DB.RetentionDays < 0 {
		return fmt.Errorf("db.retention_days must not be negative")
	}
	if len(c.Display.ExitKey) > 1 {
		return fmt.Errorf("display.exit_key must be a single character, got %q", c.Display.ExitKey)
	}
	return nil
}

// ensureDirectories stellt sicher, dass alle erforderlichen Verzeichnisse existieren
func ensureDirectories(cfg *Config) error {
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if cfg.DB.Enabled && cfg.DB.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.File), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}
