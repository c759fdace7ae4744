package alarm

import (
	"errors"
	"testing"
)

type fakePlayer struct {
	loadErr error
	playErr error
	playing bool
	plays   int
	stops   int
	closed  bool
}

func (p *fakePlayer) Load(path string) error { return p.loadErr }

func (p *fakePlayer) Play() error {
	p.plays++
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Stop() error {
	p.stops++
	p.playing = false
	return nil
}

func (p *fakePlayer) Playing() bool { return p.playing }

func (p *fakePlayer) Close() error {
	p.closed = true
	return nil
}

func loadedController(t *testing.T) (*Controller, *fakePlayer) {
	t.Helper()
	p := &fakePlayer{}
	c := NewController(p)
	if err := c.Load("alarm.wav"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, p
}

func TestStartIsIdempotent(t *testing.T) {
	c, p := loadedController(t)

	if r := c.Start(); r != Started {
		t.Fatalf("first Start = %v, expected started", r)
	}
	for i := 0; i < 10; i++ {
		if r := c.Start(); r != AlreadyOn {
			t.Fatalf("Start #%d = %v, expected already_on", i+2, r)
		}
	}
	if p.plays != 1 {
		t.Errorf("player.Play called %d times, expected 1", p.plays)
	}
	if !c.On() {
		t.Errorf("controller should be on")
	}
}

func TestStopFromOffHasNoSideEffect(t *testing.T) {
	c, p := loadedController(t)

	for i := 0; i < 5; i++ {
		if c.Stop() {
			t.Fatalf("Stop reported a transition while off")
		}
	}
	if p.stops != 0 {
		t.Errorf("player.Stop called %d times, expected 0", p.stops)
	}
}

func TestStopAfterStart(t *testing.T) {
	c, p := loadedController(t)
	c.Start()

	if !c.Stop() {
		t.Fatalf("Stop after Start should transition")
	}
	if c.Stop() {
		t.Fatalf("second Stop should be a no-op")
	}
	if p.stops != 1 {
		t.Errorf("player.Stop called %d times, expected 1", p.stops)
	}
	if c.On() {
		t.Errorf("controller should be off")
	}
}

func TestDegradedAudio(t *testing.T) {
	p := &fakePlayer{loadErr: errors.New("no such file")}
	c := NewController(p)

	if err := c.Load("missing.wav"); err == nil {
		t.Fatalf("expected load error")
	}
	if c.Loaded() {
		t.Fatalf("controller reports loaded after failure")
	}
	for i := 0; i < 3; i++ {
		if r := c.Start(); r != NotLoaded {
			t.Fatalf("Start = %v, expected not_loaded", r)
		}
	}
	if p.plays != 0 {
		t.Errorf("player.Play called %d times, expected 0", p.plays)
	}
	if c.On() {
		t.Errorf("controller must stay off")
	}
}

func TestLoadWithoutPlayerOrPath(t *testing.T) {
	if err := NewController(nil).Load("alarm.wav"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("nil player: err = %v, expected ErrNotLoaded", err)
	}
	if err := NewController(&fakePlayer{}).Load(""); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("empty path: err = %v, expected ErrNotLoaded", err)
	}
	if r := NewController(nil).Start(); r != NotLoaded {
		t.Errorf("Start on nil player = %v", r)
	}
}

func TestStartFailureIsSwallowed(t *testing.T) {
	c, p := loadedController(t)
	p.playErr = errors.New("device busy")

	if r := c.Start(); r != StartFailed {
		t.Fatalf("Start = %v, expected start_failed", r)
	}
	if c.On() {
		t.Fatalf("controller must stay off after failed start")
	}

	p.playErr = nil
	if r := c.Start(); r != Started {
		t.Fatalf("retry Start = %v, expected started", r)
	}
}

func TestStartAdoptsBusyBackend(t *testing.T) {
	c, p := loadedController(t)
	p.playing = true

	if r := c.Start(); r != AlreadyOn {
		t.Fatalf("Start = %v, expected already_on", r)
	}
	if p.plays != 0 {
		t.Errorf("busy backend was restarted")
	}
	if !c.Stop() || p.playing {
		t.Errorf("Stop should silence the adopted playback")
	}
}

func TestCloseStopsAndReleases(t *testing.T) {
	c, p := loadedController(t)
	c.Start()

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.On() || p.playing || !p.closed {
		t.Errorf("Close left on=%v playing=%v closed=%v", c.On(), p.playing, p.closed)
	}
}
