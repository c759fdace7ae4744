package opencv

import (
	"fmt"
	"image"
	"image/color"

	"drowsiness-guard/internal/monitor"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	faceColor   = color.RGBA{0, 0, 255, 0} // blau
	eyeColor    = color.RGBA{0, 255, 0, 0} // grün
	bannerColor = color.RGBA{255, 0, 0, 0} // rot
	bannerPos   = image.Pt(10, 30)
)

const (
	boxThickness    = 2
	bannerScale     = 0.7
	bannerThickness = 2
)

// Window zeigt die Frames mit eingezeichneten Erkennungen an
type Window struct {
	window  *gocv.Window
	banner  string
	exitKey int
}

// NewWindow öffnet ein Vorschaufenster. Ein leerer exitKey deaktiviert das
// Beenden per Tastendruck.
func NewWindow(title, banner, exitKey string) *Window {
	key := -1
	if exitKey != "" {
		key = int(exitKey[0])
	}
	log.Infof("Opening display window %q", title)
	return &Window{
		window:  gocv.NewWindow(title),
		banner:  banner,
		exitKey: key,
	}
}

// Render zeichnet Gesichter, Augen und bei Bedarf das Warnbanner
func (w *Window) Render(frame monitor.Frame, overlay monitor.Overlay) error {
	f, ok := frame.(*Frame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", frame)
	}

	for _, face := range overlay.Faces {
		gocv.Rectangle(&f.mat, face.Box, faceColor, boxThickness)
		for _, eye := range face.Eyes {
			gocv.Rectangle(&f.mat, eye, eyeColor, boxThickness)
		}
	}

	if overlay.ShowAlert {
		gocv.PutText(&f.mat, w.banner, bannerPos, gocv.FontHersheySimplex, bannerScale, bannerColor, bannerThickness)
	}

	w.window.IMShow(f.mat)
	return nil
}

// PollExit wartet kurz auf eine Taste
func (w *Window) PollExit() bool {
	key := w.window.WaitKey(1)
	return w.exitKey >= 0 && key >= 0 && key&0xFF == w.exitKey
}

// Close schließt das Fenster
func (w *Window) Close() error {
	return w.window.Close()
}
