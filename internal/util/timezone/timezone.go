package timezone

import (
	"os"
	"time"
	_ "time/tzdata" // Zeitzonen auch ohne System-Datenbank

	log "github.com/sirupsen/logrus"
)

// Load ermittelt die Zeitzone für Zeitstempel in Ereignissen und im Journal.
// Ein leerer Name fällt auf die TZ-Umgebungsvariable und danach auf UTC zurück.
func Load(name string) *time.Location {
	if name == "" {
		name = os.Getenv("TZ")
	}
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("Failed to load timezone %s: %v. Falling back to UTC.", name, err)
		return time.UTC
	}
	log.Infof("Using timezone %s", name)
	return loc
}

// Clock gibt eine Uhr zurück, deren Zeitstempel in loc liegen
func Clock(loc *time.Location) func() time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}
