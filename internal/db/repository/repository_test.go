package repository

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"drowsiness-guard/config"
	"drowsiness-guard/internal/db"
	"drowsiness-guard/internal/monitor"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.Initialize(config.DBConfig{Enabled: true, File: filepath.Join(t.TempDir(), "journal.db")})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close(database) })
	return database
}

func feed(t *testing.T, r *Recorder, events ...monitor.Event) {
	t.Helper()
	for _, ev := range events {
		if err := r.HandleEvent(ev); err != nil {
			t.Fatalf("HandleEvent(%s): %v", ev.Type, err)
		}
	}
}

func TestRecorderJournalsEpisodes(t *testing.T) {
	database := openTestDB(t)
	rec := NewRecorder(database, map[string]int{"threshold": 25})
	repo := New(database)

	start := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	at := func(s int) time.Time { return start.Add(time.Duration(s) * time.Second) }

	feed(t, rec,
		monitor.Event{Type: monitor.EventSessionStarted, SessionID: "s1", Threshold: 25, At: at(0)},
		monitor.Event{Type: monitor.EventDrowsy, SessionID: "s1", Threshold: 25, Frame: 30, AlarmOn: true, At: at(1)},
		monitor.Event{Type: monitor.EventAlert, SessionID: "s1", Threshold: 25, Frame: 41, MissedFrames: 35, At: at(2)},
		monitor.Event{Type: monitor.EventDrowsy, SessionID: "s1", Threshold: 25, Frame: 90, At: at(5)},
		monitor.Event{Type: monitor.EventSessionEnded, SessionID: "s1", Threshold: 25, Frame: 100, MissedFrames: 35, At: at(6)},
	)

	episodes, err := repo.ListSessionEpisodes("s1")
	if err != nil {
		t.Fatalf("ListSessionEpisodes: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("got %d episodes, expected 2", len(episodes))
	}

	first := episodes[0]
	if first.Open() || first.StartFrame != 30 || first.EndFrame != 41 || first.MissedFrames != 35 || !first.AlarmOn {
		t.Errorf("first episode = %+v", first)
	}
	if first.Duration() != time.Second {
		t.Errorf("first episode duration = %v", first.Duration())
	}
	second := episodes[1]
	if second.Open() || second.EndFrame != 100 || second.AlarmOn {
		t.Errorf("second episode should be closed at session end: %+v", second)
	}

	session, err := repo.GetSession("s1")
	if err != nil || session == nil {
		t.Fatalf("GetSession: %v, %v", session, err)
	}
	if session.EndedAt == nil || session.Frames != 100 || session.Threshold != 25 {
		t.Errorf("session = %+v", session)
	}
	var settings map[string]int
	if err := json.Unmarshal(session.Settings, &settings); err != nil || settings["threshold"] != 25 {
		t.Errorf("settings = %s (%v)", string(session.Settings), err)
	}

	stats, err := repo.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if stats.Sessions != 1 || stats.Episodes != 2 || stats.OpenEpisodes != 0 || stats.EpisodesWithAlarm != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LongestMissedRun != 35 {
		t.Errorf("longest run = %d, expected 35", stats.LongestMissedRun)
	}
}

func TestAlertWithoutOpenEpisodeIsIgnored(t *testing.T) {
	database := openTestDB(t)
	rec := NewRecorder(database, nil)

	feed(t, rec, monitor.Event{Type: monitor.EventAlert, SessionID: "s2", At: time.Now()})

	episodes, err := New(database).ListEpisodes(10)
	if err != nil {
		t.Fatalf("ListEpisodes: %v", err)
	}
	if len(episodes) != 0 {
		t.Errorf("got %d episodes, expected 0", len(episodes))
	}
}

func TestGetSessionMissing(t *testing.T) {
	session, err := New(openTestDB(t)).GetSession("nope")
	if err != nil || session != nil {
		t.Errorf("GetSession = %v, %v; expected nil, nil", session, err)
	}
}

func TestListOrderAndDeleteBefore(t *testing.T) {
	database := openTestDB(t)
	rec := NewRecorder(database, nil)
	repo := New(database)

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, start := range []time.Time{old, recent} {
		id := []string{"old", "recent"}[i]
		feed(t, rec,
			monitor.Event{Type: monitor.EventSessionStarted, SessionID: id, At: start},
			monitor.Event{Type: monitor.EventDrowsy, SessionID: id, At: start.Add(time.Minute)},
			monitor.Event{Type: monitor.EventSessionEnded, SessionID: id, At: start.Add(2 * time.Minute)},
		)
	}

	sessions, err := repo.ListSessions(0)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].SessionID != "recent" {
		t.Fatalf("sessions not ordered newest first: %+v", sessions)
	}

	deleted, err := repo.DeleteBefore(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d rows, expected 2", deleted)
	}

	episodes, _ := repo.ListEpisodes(10)
	if len(episodes) != 1 || episodes[0].SessionID != "recent" {
		t.Errorf("remaining episodes = %+v", episodes)
	}
}

func TestDeleteBeforeComparesAcrossZones(t *testing.T) {
	database := openTestDB(t)
	rec := NewRecorder(database, nil)
	repo := New(database)

	berlin := time.FixedZone("CEST", 2*60*60)
	// 08:30 UTC, lokal 10:30
	older := time.Date(2026, 3, 1, 10, 30, 0, 0, berlin)
	// 09:30 UTC, lokal 11:30
	newer := time.Date(2026, 3, 1, 11, 30, 0, 0, berlin)

	for i, start := range []time.Time{older, newer} {
		id := []string{"older", "newer"}[i]
		feed(t, rec,
			monitor.Event{Type: monitor.EventSessionStarted, SessionID: id, At: start},
			monitor.Event{Type: monitor.EventSessionEnded, SessionID: id, At: start.Add(time.Minute)},
		)
	}

	// 09:00 UTC, angegeben in einer dritten Zone
	cutoff := time.Date(2026, 3, 1, 4, 0, 0, 0, time.FixedZone("EST", -5*60*60))
	deleted, err := repo.DeleteBefore(cutoff)
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d rows, expected 1", deleted)
	}

	sessions, err := repo.ListSessions(0)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "newer" {
		t.Fatalf("remaining sessions = %+v", sessions)
	}
	if !sessions[0].StartedAt.Equal(newer) {
		t.Errorf("started_at = %v, expected %v", sessions[0].StartedAt, newer)
	}
}
