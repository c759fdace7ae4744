package opencv

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"drowsiness-guard/config"
	"drowsiness-guard/internal/drowsiness"
	"drowsiness-guard/internal/monitor"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrModelLoad wird zurückgegeben, wenn ein Cascade-Modell nicht geladen werden kann
var ErrModelLoad = errors.New("failed to load cascade model")

// cascade bündelt einen Klassifikator mit seinen Erkennungsparametern
type cascade struct {
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	minSize      image.Point
}

func loadCascade(name string, cfg config.CascadeConfig) (*cascade, error) {
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, fmt.Errorf("%w: %s model %s: %v", ErrModelLoad, name, cfg.CascadePath, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("%w: %s model %s", ErrModelLoad, name, cfg.CascadePath)
	}

	log.Infof("Loaded %s cascade from %s (scale %.2f, neighbors %d, min %dx%d)",
		name, cfg.CascadePath, cfg.ScaleFactor, cfg.MinNeighbors, cfg.MinSizeWidth, cfg.MinSizeHeight)

	return &cascade{
		classifier:   classifier,
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbors,
		minSize:      image.Pt(cfg.MinSizeWidth, cfg.MinSizeHeight),
	}, nil
}

func (c *cascade) detect(img gocv.Mat) []image.Rectangle {
	return c.classifier.DetectMultiScaleWithParams(img, c.scaleFactor, c.minNeighbors, 0, c.minSize, image.Point{})
}

// CascadeDetector erkennt Gesichter und darin liegende Augen mit zwei Haar-Cascades
type CascadeDetector struct {
	face        *cascade
	eye         *cascade
	mutex       sync.Mutex
	initialized bool
}

// NewCascadeDetector lädt beide Modelle. Fehlt eines, ist die Erkennung nicht
// funktionsfähig und der Aufrufer muss abbrechen.
func NewCascadeDetector(cfg config.DetectorConfig) (*CascadeDetector, error) {
	log.Info("Loading Haar Cascade models...")

	face, err := loadCascade("face", cfg.Face)
	if err != nil {
		return nil, err
	}
	eye, err := loadCascade("eye", cfg.Eye)
	if err != nil {
		face.classifier.Close()
		return nil, err
	}

	return &CascadeDetector{face: face, eye: eye, initialized: true}, nil
}

// Detect wandelt den Frame in Graustufen und sucht in jedem Gesicht nach Augen.
// Augen-Rechtecke werden in Frame-Koordinaten zurückgegeben.
func (d *CascadeDetector) Detect(frame monitor.Frame) ([]drowsiness.Face, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.initialized {
		return nil, errors.New("cascade detector is closed")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(f.mat, &gray, gocv.ColorBGRToGray)

	rects := d.face.detect(gray)
	faces := make([]drowsiness.Face, 0, len(rects))
	for _, r := range rects {
		roi := gray.Region(r)
		eyes := d.eye.detect(roi)
		roi.Close()

		faces = append(faces, drowsiness.Face{Box: r, Eyes: toFrameCoords(r, eyes)})
	}

	log.Debugf("OpenCV: %d faces, eyes visible: %v", len(faces), drowsiness.EyesVisible(faces))
	return faces, nil
}

// Close gibt die Klassifikatoren frei
func (d *CascadeDetector) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.initialized {
		return nil
	}
	d.face.classifier.Close()
	d.eye.classifier.Close()
	d.initialized = false
	return nil
}

// toFrameCoords verschiebt Augen aus dem Gesichtsausschnitt in Bildkoordinaten
func toFrameCoords(face image.Rectangle, eyes []image.Rectangle) []image.Rectangle {
	for i := range eyes {
		eyes[i] = eyes[i].Add(face.Min)
	}
	return eyes
}
