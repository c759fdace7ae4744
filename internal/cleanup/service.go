package cleanup

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Pruner löscht abgeschlossene Journal-Einträge vor einem Stichtag
type Pruner interface {
	DeleteBefore(cutoff time.Time) (int64, error)
}

// Service entfernt regelmäßig alte Läufe und Episoden aus dem Journal.
type Service struct {
	pruner        Pruner
	retentionDays int
	checkInterval time.Duration
	now           func() time.Time
	stopChan      chan struct{}
}

// NewService erstellt einen neuen Service. Gibt nil zurück, wenn das Aufräumen
// deaktiviert ist (retentionDays <= 0) oder kein Pruner vorhanden ist.
func NewService(pruner Pruner, retentionDays int, checkInterval time.Duration) *Service {
	if retentionDays <= 0 {
		log.Info("Automatic journal cleanup disabled (retention_days <= 0)")
		return nil
	}
	if pruner == nil {
		log.Error("Cannot initialize cleanup service: journal is not available")
		return nil
	}
	log.Infof("Initializing cleanup service: RetentionDays=%d, CheckInterval=%s", retentionDays, checkInterval)
	return &Service{
		pruner:        pruner,
		retentionDays: retentionDays,
		checkInterval: checkInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

// StartBackgroundCleanup führt sofort einen Durchlauf aus und danach periodisch
func (s *Service) StartBackgroundCleanup() {
	if s == nil {
		return
	}
	go func() {
		s.RunCleanupCycle()

		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunCleanupCycle()
			case <-s.stopChan:
				log.Debug("Stopping background cleanup routine")
				return
			}
		}
	}()
}

// StopBackgroundCleanup beendet die Hintergrund-Routine
func (s *Service) StopBackgroundCleanup() {
	if s == nil || s.stopChan == nil {
		return
	}
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

// RunCleanupCycle löscht alle abgeschlossenen Einträge außerhalb der Aufbewahrungsfrist
// und gibt die Anzahl der gelöschten Zeilen zurück.
func (s *Service) RunCleanupCycle() int64 {
	if s == nil {
		return 0
	}
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.pruner.DeleteBefore(cutoff)
	if err != nil {
		log.Errorf("Cleanup: failed to delete journal entries before %s: %v", cutoff.Format(time.RFC3339), err)
		return deleted
	}
	if deleted > 0 {
		log.Infof("Cleanup: deleted %d journal entries older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted
}
