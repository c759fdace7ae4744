package timezone

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("TZ", "")

	if loc := Load(""); loc != time.UTC {
		t.Errorf("empty name: got %v, expected UTC", loc)
	}
	if loc := Load("Not/AZone"); loc != time.UTC {
		t.Errorf("invalid name: got %v, expected UTC", loc)
	}
	if loc := Load("Europe/Berlin"); loc.String() != "Europe/Berlin" {
		t.Errorf("got %v, expected Europe/Berlin", loc)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TZ", "America/New_York")
	if loc := Load(""); loc.String() != "America/New_York" {
		t.Errorf("got %v, expected America/New_York", loc)
	}
}

func TestClock(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	if got := Clock(loc)().Location(); got != loc {
		t.Errorf("clock location = %v", got)
	}
	if got := Clock(nil)().Location(); got != time.UTC {
		t.Errorf("nil location clock = %v", got)
	}
}
