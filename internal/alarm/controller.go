// Package alarm owns the audible alarm state and bridges it to an audio backend.
package alarm

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// StartResult beschreibt, was ein Aufruf von Start bewirkt hat
type StartResult int

const (
	Started     StartResult = iota // Wiedergabe wurde gestartet
	AlreadyOn                      // Alarm lief bereits, nichts passiert
	NotLoaded                      // kein Sound geladen, nichts passiert
	StartFailed                    // Backend-Fehler, Alarm bleibt aus
)

func (r StartResult) String() string {
	switch r {
	case Started:
		return "started"
	case AlreadyOn:
		return "already_on"
	case NotLoaded:
		return "not_loaded"
	case StartFailed:
		return "start_failed"
	default:
		return "unknown"
	}
}

// Controller hält den Alarmzustand (an/aus). Start und Stop dürfen in jedem
// Frame aufgerufen werden; nur echte Zustandswechsel erreichen den Player.
// Nicht threadsicher, gehört der Frame-Schleife.
type Controller struct {
	player      Player
	loaded      bool
	on          bool
	startWarned bool
}

// NewController erstellt einen Controller im Zustand AUS
func NewController(player Player) *Controller {
	return &Controller{player: player}
}

// Load bereitet den Alarmton vor. Schlägt das fehl, bleibt der Controller
// dauerhaft stumm und Start wird zum No-op.
func (c *Controller) Load(path string) error {
	c.loaded = false
	if c.player == nil {
		return fmt.Errorf("%w: no audio player configured", ErrNotLoaded)
	}
	if path == "" {
		return fmt.Errorf("%w: empty sound path", ErrNotLoaded)
	}
	if err := c.player.Load(path); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// Start schaltet den Alarm ein, falls er aus ist und ein Sound geladen wurde.
// Backend-Fehler werden protokolliert (einmal als Warnung) und nicht weitergegeben.
func (c *Controller) Start() StartResult {
	if c.on {
		return AlreadyOn
	}
	if !c.loaded {
		return NotLoaded
	}
	if c.player.Playing() {
		// Backend spielt bereits, Zustand nachziehen statt neu zu starten
		c.on = true
		return AlreadyOn
	}

	if err := c.player.Play(); err != nil {
		if !c.startWarned {
			log.Warnf("Could not start alarm playback, continuing with visual alert only: %v", err)
			c.startWarned = true
		} else {
			log.Debugf("Alarm playback still failing: %v", err)
		}
		return StartFailed
	}

	c.on = true
	log.Info("Alarm started")
	return Started
}

// Stop schaltet den Alarm aus. Gibt true zurück, wenn tatsächlich ein
// Wechsel von AN nach AUS stattgefunden hat.
func (c *Controller) Stop() bool {
	if !c.on {
		return false
	}
	if err := c.player.Stop(); err != nil {
		log.Warnf("Error while stopping alarm playback: %v", err)
	}
	c.on = false
	log.Info("Alarm stopped")
	return true
}

// On meldet, ob der Alarm gerade läuft
func (c *Controller) On() bool { return c.on }

// Loaded meldet, ob ein Alarmton geladen ist
func (c *Controller) Loaded() bool { return c.loaded }

// Close stoppt den Alarm und gibt den Player frei
func (c *Controller) Close() error {
	c.Stop()
	if c.player == nil {
		return nil
	}
	if err := c.player.Close(); err != nil && !errors.Is(err, ErrNotLoaded) {
		return fmt.Errorf("failed to close audio player: %w", err)
	}
	return nil
}
