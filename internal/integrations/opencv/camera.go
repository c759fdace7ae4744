package opencv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"drowsiness-guard/config"
	"drowsiness-guard/internal/monitor"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrCameraOpen wird zurückgegeben, wenn die Videoquelle nicht geöffnet werden kann
var ErrCameraOpen = errors.New("failed to open video source")

// Frame ist ein aufgenommenes BGR-Bild
type Frame struct {
	mat gocv.Mat
}

// Mat gibt das zugrunde liegende Bild zurück
func (f *Frame) Mat() gocv.Mat { return f.mat }

// Close gibt den Bildspeicher frei
func (f *Frame) Close() error { return f.mat.Close() }

// Camera liefert Frames einer Kamera, Datei oder eines Streams
type Camera struct {
	capture *gocv.VideoCapture
	device  string
	mirror  bool
}

// OpenCamera öffnet die konfigurierte Quelle. Rein numerische Geräte werden
// als Kameraindex interpretiert.
func OpenCamera(cfg config.CameraConfig) (*Camera, error) {
	var device interface{} = cfg.Device
	if id, err := strconv.Atoi(strings.TrimSpace(cfg.Device)); err == nil {
		device = id
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrCameraOpen, cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w %q", ErrCameraOpen, cfg.Device)
	}

	log.Infof("Opened video source %q (mirror: %v)", cfg.Device, cfg.Mirror)
	return &Camera{capture: capture, device: cfg.Device, mirror: cfg.Mirror}, nil
}

// Read liest den nächsten Frame. Ein fehlgeschlagener Lesevorgang beendet den
// Stream, es gibt keine Wiederholungsversuche.
func (c *Camera) Read() (monitor.Frame, error) {
	if !c.capture.IsOpened() {
		return nil, monitor.ErrStreamEnded
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, monitor.ErrStreamEnded
	}

	if c.mirror {
		mirror(&mat)
	}
	return &Frame{mat: mat}, nil
}

// mirror spiegelt das Bild an der vertikalen Achse
func mirror(mat *gocv.Mat) {
	gocv.Flip(*mat, mat, 1)
}

// Close gibt die Videoquelle frei
func (c *Camera) Close() error {
	log.Debugf("Releasing video source %q", c.device)
	return c.capture.Close()
}
