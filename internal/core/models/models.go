package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session repräsentiert einen Lauf der Überwachung vom Start bis zum Beenden
type Session struct {
	gorm.Model
	SessionID string         `gorm:"uniqueIndex;not null"` // UUID des Laufs
	StartedAt time.Time      `gorm:"index"`
	EndedAt   *time.Time     // nil, solange der Lauf aktiv ist
	Frames    uint64         // verarbeitete Frames
	Threshold int            // Frame-Schwelle dieses Laufs
	Settings  datatypes.JSON `gorm:"type:json"` // Erkennungsparameter zum Zeitpunkt des Starts
}

// Episode repräsentiert eine Phase, in der der Fahrer als müde eingestuft war
type Episode struct {
	gorm.Model
	SessionID    string     `gorm:"index;not null"`
	StartedAt    time.Time  `gorm:"index"`
	EndedAt      *time.Time // nil, solange die Episode andauert
	StartFrame   uint64
	EndFrame     uint64
	MissedFrames int  // Länge der Phase ohne sichtbare Augen in Frames
	Threshold    int  // Schwelle, die überschritten wurde
	AlarmOn      bool // ob der akustische Alarm tatsächlich lief
}

// Open meldet, ob die Episode noch nicht abgeschlossen ist
func (e Episode) Open() bool { return e.EndedAt == nil }

// Duration gibt die Dauer einer abgeschlossenen Episode zurück
func (e Episode) Duration() time.Duration {
	if e.EndedAt == nil {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}

// Statistics fasst das Episodenjournal zusammen
type Statistics struct {
	Sessions          int64   `json:"sessions"`
	Episodes          int64   `json:"episodes"`
	OpenEpisodes      int64   `json:"open_episodes"`
	LongestMissedRun  int     `json:"longest_missed_run"`
	AverageMissedRun  float64 `json:"average_missed_run"`
	EpisodesWithAlarm int64   `json:"episodes_with_alarm"`
}
