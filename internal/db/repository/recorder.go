package repository

import (
	"encoding/json"
	"fmt"

	"drowsiness-guard/internal/core/models"
	"drowsiness-guard/internal/monitor"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder schreibt Monitor-Ereignisse als Läufe und Episoden in die Datenbank.
// Er wird ausschließlich aus der Frame-Schleife aufgerufen.
type Recorder struct {
	db       *gorm.DB
	settings interface{}
	session  *models.Session
	episode  *models.Episode
}

// NewRecorder erstellt einen Recorder. settings wird beim Start des Laufs als
// JSON am Session-Datensatz abgelegt.
func NewRecorder(db *gorm.DB, settings interface{}) *Recorder {
	return &Recorder{db: db, settings: settings}
}

// HandleEvent implementiert monitor.EventSink
func (r *Recorder) HandleEvent(ev monitor.Event) error {
	switch ev.Type {
	case monitor.EventSessionStarted:
		return r.startSession(ev)
	case monitor.EventDrowsy:
		return r.openEpisode(ev)
	case monitor.EventAlert:
		return r.closeEpisode(ev, ev.MissedFrames)
	case monitor.EventSessionEnded:
		return r.endSession(ev)
	}
	return nil
}

func (r *Recorder) startSession(ev monitor.Event) error {
	settings, err := json.Marshal(r.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal session settings: %w", err)
	}

	session := &models.Session{
		SessionID: ev.SessionID,
		StartedAt: ev.At.UTC(),
		Threshold: ev.Threshold,
		Settings:  datatypes.JSON(settings),
	}
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	r.session = session
	log.Debugf("Recorded session %s", ev.SessionID)
	return nil
}

func (r *Recorder) openEpisode(ev monitor.Event) error {
	episode := &models.Episode{
		SessionID:  ev.SessionID,
		StartedAt:  ev.At.UTC(),
		StartFrame: ev.Frame,
		Threshold:  ev.Threshold,
		AlarmOn:    ev.AlarmOn,
	}
	if err := r.db.Create(episode).Error; err != nil {
		return fmt.Errorf("failed to create episode: %w", err)
	}
	r.episode = episode
	return nil
}

func (r *Recorder) closeEpisode(ev monitor.Event, missed int) error {
	if r.episode == nil {
		return nil
	}
	ended := ev.At.UTC()
	updates := map[string]interface{}{
		"ended_at":      &ended,
		"end_frame":     ev.Frame,
		"missed_frames": missed,
	}
	if err := r.db.Model(r.episode).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to close episode %d: %w", r.episode.ID, err)
	}
	log.WithFields(log.Fields{
		"episode":       r.episode.ID,
		"missed_frames": missed,
	}).Info("Recorded drowsiness episode")
	r.episode = nil
	return nil
}

func (r *Recorder) endSession(ev monitor.Event) error {
	var firstErr error
	if r.episode != nil {
		if err := r.closeEpisode(ev, ev.MissedFrames); err != nil {
			firstErr = err
		}
	}

	if r.session != nil {
		ended := ev.At.UTC()
		err := r.db.Model(r.session).Updates(map[string]interface{}{
			"ended_at": &ended,
			"frames":   ev.Frame,
		}).Error
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close session %s: %w", ev.SessionID, err)
		}
		r.session = nil
	}
	return firstErr
}
