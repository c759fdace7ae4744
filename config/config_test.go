package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Drowsiness.Threshold != 25 {
		t.Errorf("threshold = %d, expected 25", cfg.Drowsiness.Threshold)
	}
	if cfg.Detector.Face.MinNeighbors != 5 || cfg.Detector.Eye.MinNeighbors != 20 {
		t.Errorf("min neighbors = %d/%d, expected 5/20", cfg.Detector.Face.MinNeighbors, cfg.Detector.Eye.MinNeighbors)
	}
	if cfg.Detector.Face.MinSizeWidth != 30 || cfg.Detector.Eye.MinSizeWidth != 10 {
		t.Errorf("min sizes = %d/%d, expected 30/10", cfg.Detector.Face.MinSizeWidth, cfg.Detector.Eye.MinSizeWidth)
	}
	if !cfg.Camera.Mirror {
		t.Errorf("camera.mirror should default to true")
	}
	if cfg.Display.ExitKey != "q" {
		t.Errorf("exit key = %q, expected q", cfg.Display.ExitKey)
	}
	if cfg.DB.RetentionDays != 30 || cfg.Server.Port != 8090 {
		t.Errorf("retention/port = %d/%d, expected 30/8090", cfg.DB.RetentionDays, cfg.Server.Port)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Drowsiness.Threshold != 25 {
		t.Errorf("threshold = %d, expected 25", cfg.Drowsiness.Threshold)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
drowsiness:
  threshold: 12
alarm:
  sound_path: /tmp/beep.mp3
db:
  enabled: true
  file: ` + filepath.Join(dir, "db", "journal.db") + `
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Drowsiness.Threshold != 12 {
		t.Errorf("threshold = %d, expected 12", cfg.Drowsiness.Threshold)
	}
	if cfg.Alarm.SoundPath != "/tmp/beep.mp3" {
		t.Errorf("sound path = %q", cfg.Alarm.SoundPath)
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DROWSY_DROWSINESS_THRESHOLD", "40")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Drowsiness.Threshold != 40 {
		t.Errorf("threshold = %d, expected 40", cfg.Drowsiness.Threshold)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Detector: DetectorConfig{
				Face: CascadeConfig{CascadePath: "f.xml", ScaleFactor: 1.1, MinNeighbors: 5},
				Eye:  CascadeConfig{CascadePath: "e.xml", ScaleFactor: 1.1, MinNeighbors: 20},
			},
			Drowsiness: DrowsinessConfig{Threshold: 25},
			Display:    DisplayConfig{ExitKey: "q"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero threshold", func(c *Config) { c.Drowsiness.Threshold = 0 }, true},
		{"negative threshold", func(c *Config) { c.Drowsiness.Threshold = -3 }, true},
		{"scale factor of one", func(c *Config) { c.Detector.Eye.ScaleFactor = 1.0 }, true},
		{"missing cascade", func(c *Config) { c.Detector.Face.CascadePath = "" }, true},
		{"long exit key", func(c *Config) { c.Display.ExitKey = "quit" }, true},
		{"empty exit key", func(c *Config) { c.Display.ExitKey = "" }, false},
		{"negative retention", func(c *Config) { c.DB.RetentionDays = -1 }, true},
	}

	for _, tt := range tests {
		cfg := valid()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
