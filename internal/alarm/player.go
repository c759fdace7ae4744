package alarm

import "errors"

// ErrNotLoaded wird zurückgegeben, wenn ohne geladenen Sound abgespielt werden soll
var ErrNotLoaded = errors.New("alarm sound not loaded")

// Player ist die Audio-Fähigkeit hinter dem Controller
type Player interface {
	// Load bereitet eine Audiodatei für die Endloswiedergabe vor
	Load(path string) error
	// Play startet die Endlosschleife
	Play() error
	// Stop hält die Wiedergabe sofort an
	Stop() error
	// Playing meldet, ob das Backend gerade abspielt
	Playing() bool
	Close() error
}
