package repository

import (
	"errors"
	"time"

	"drowsiness-guard/internal/core/models"

	"gorm.io/gorm"
)

// DefaultLimit begrenzt Listenabfragen ohne explizites Limit
const DefaultLimit = 50

// Repository kapselt die Lesezugriffe auf das Episodenjournal
type Repository struct {
	db *gorm.DB
}

// New erstellt eine neue Repository-Instanz
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return DefaultLimit
	}
	return limit
}

// ListEpisodes gibt die neuesten Episoden zuerst zurück
func (r *Repository) ListEpisodes(limit int) ([]models.Episode, error) {
	var episodes []models.Episode
	err := r.db.Order("started_at DESC").Order("id DESC").Limit(normalizeLimit(limit)).Find(&episodes).Error
	return episodes, err
}

// ListSessionEpisodes gibt alle Episoden eines Laufs in zeitlicher Reihenfolge zurück
func (r *Repository) ListSessionEpisodes(sessionID string) ([]models.Episode, error) {
	var episodes []models.Episode
	err := r.db.Where("session_id = ?", sessionID).Order("started_at ASC").Order("id ASC").Find(&episodes).Error
	return episodes, err
}

// ListSessions gibt die neuesten Läufe zuerst zurück
func (r *Repository) ListSessions(limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Order("started_at DESC").Order("id DESC").Limit(normalizeLimit(limit)).Find(&sessions).Error
	return sessions, err
}

// GetSession holt einen Lauf anhand seiner UUID; nil, wenn er nicht existiert
func (r *Repository) GetSession(sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetStatistics fasst alle Läufe und Episoden zusammen
func (r *Repository) GetStatistics() (models.Statistics, error) {
	var stats models.Statistics

	if err := r.db.Model(&models.Session{}).Count(&stats.Sessions).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&models.Episode{}).Count(&stats.Episodes).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&models.Episode{}).Where("ended_at IS NULL").Count(&stats.OpenEpisodes).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&models.Episode{}).Where("alarm_on = ?", true).Count(&stats.EpisodesWithAlarm).Error; err != nil {
		return stats, err
	}

	var agg struct {
		Longest int
		Average float64
	}
	err := r.db.Model(&models.Episode{}).
		Where("ended_at IS NOT NULL").
		Select("COALESCE(MAX(missed_frames), 0) AS longest, COALESCE(AVG(missed_frames), 0) AS average").
		Scan(&agg).Error
	if err != nil {
		return stats, err
	}
	stats.LongestMissedRun = agg.Longest
	stats.AverageMissedRun = agg.Average

	return stats, nil
}

// DeleteBefore entfernt Läufe und Episoden, die vor dem Stichtag begonnen haben.
// SQLite vergleicht Zeitstempel als Text, daher wird wie beim Schreiben in UTC verglichen.
func (r *Repository) DeleteBefore(cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	res := r.db.Unscoped().Where("started_at < ? AND ended_at IS NOT NULL", cutoff).Delete(&models.Episode{})
	if res.Error != nil {
		return 0, res.Error
	}
	deleted := res.RowsAffected
	res = r.db.Unscoped().Where("started_at < ? AND ended_at IS NOT NULL", cutoff).Delete(&models.Session{})
	if res.Error != nil {
		return deleted, res.Error
	}
	return deleted + res.RowsAffected, nil
}
