// Package i18n liefert die übersetzten Texte für Overlay und Home Assistant.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Nachrichten-IDs
const (
	AlertBanner   = "alert_banner"
	WindowTitle   = "window_title"
	SensorDrowsy  = "sensor_drowsy"
	SensorCounter = "sensor_counter"
)

// Hershey-Fonts können nur ASCII darstellen, deshalb enthalten die
// Overlay-Texte keine Umlaute.
//
//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage wird verwendet, wenn die gewünschte Sprache fehlt
const DefaultLanguage = "en"

// Translator hält die Übersetzungen für eine Sprache
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// NewTranslator lädt alle eingebetteten Sprachdateien und wählt lang aus.
// Unbekannte Sprachen fallen auf Englisch zurück.
func NewTranslator(lang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	available := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, path.Join("locales", entry.Name())); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", entry.Name(), err)
		}
		available[strings.TrimSuffix(entry.Name(), ".json")] = true
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	if tag, err := language.Parse(lang); err == nil {
		base, _ := tag.Base()
		lang = base.String()
	}
	if !available[lang] {
		if lang != "" {
			log.Warnf("Language '%s' not available, using '%s'", lang, DefaultLanguage)
		}
		lang = DefaultLanguage
	}

	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, DefaultLanguage),
	}, nil
}

// Language gibt die gewählte Sprache zurück
func (t *Translator) Language() string { return t.lang }

// T übersetzt eine Nachricht; unbekannte IDs werden unverändert zurückgegeben
func (t *Translator) T(id string) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}
