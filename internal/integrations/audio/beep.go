package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"drowsiness-guard/internal/alarm"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat wird für unbekannte Dateiendungen zurückgegeben
var ErrUnsupportedFormat = errors.New("unsupported audio format")

var _ alarm.Player = (*BeepPlayer)(nil)

// BeepPlayer spielt den Alarm über gopxl/beep auf dem Standard-Ausgabegerät
type BeepPlayer struct {
	mu          sync.Mutex
	buffer      *beep.Buffer
	ctrl        *beep.Ctrl
	speakerInit bool
}

// NewBeepPlayer erstellt einen Player ohne geladenen Sound
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{}
}

// Load dekodiert die Datei (wav oder mp3) vollständig in den Speicher und
// initialisiert den Lautsprecher mit deren Abtastrate
func (p *BeepPlayer) Load(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open alarm sound %s: %w", path, err)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to decode alarm sound %s: %w", path, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if buffer.Len() == 0 {
		return fmt.Errorf("alarm sound %s is empty", path)
	}

	if !p.speakerInit {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		p.speakerInit = true
	}

	p.buffer = buffer
	return nil
}

// Play startet die Endlosschleife des geladenen Sounds
func (p *BeepPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buffer == nil || !p.speakerInit {
		return alarm.ErrNotLoaded
	}
	if p.ctrl != nil {
		return nil
	}

	p.ctrl = &beep.Ctrl{Streamer: beep.Loop(-1, p.buffer.Streamer(0, p.buffer.Len()))}
	speaker.Play(p.ctrl)
	return nil
}

// Stop hält die Wiedergabe an
func (p *BeepPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return nil
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	speaker.Clear()
	p.ctrl = nil
	return nil
}

// Playing meldet, ob gerade eine Schleife läuft
func (p *BeepPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil
}

// Close gibt das Audiogerät frei
func (p *BeepPlayer) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.speakerInit {
		speaker.Close()
		p.speakerInit = false
	}
	p.buffer = nil
	return nil
}
