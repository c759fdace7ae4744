package opencv

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"drowsiness-guard/config"

	"gocv.io/x/gocv"
)

type foreignFrame struct{}

func (foreignFrame) Close() error { return nil }

func TestNewCascadeDetectorMissingModel(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.xml")
	cfg := config.DetectorConfig{
		Face: config.CascadeConfig{CascadePath: missing, ScaleFactor: 1.1, MinNeighbors: 5, MinSizeWidth: 30, MinSizeHeight: 30},
		Eye:  config.CascadeConfig{CascadePath: missing, ScaleFactor: 1.1, MinNeighbors: 20, MinSizeWidth: 10, MinSizeHeight: 10},
	}

	d, err := NewCascadeDetector(cfg)
	if err == nil {
		d.Close()
		t.Fatal("expected error for missing model")
	}
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("error %v does not wrap ErrModelLoad", err)
	}
}

func TestDetectRejectsForeignFrame(t *testing.T) {
	d := &CascadeDetector{}
	if _, err := d.Detect(foreignFrame{}); err == nil {
		t.Error("expected error for unsupported frame type")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	d := &CascadeDetector{}
	if err := d.Close(); err != nil {
		t.Errorf("Close on closed detector: %v", err)
	}
}

func TestToFrameCoords(t *testing.T) {
	face := image.Rect(100, 50, 300, 250)
	eyes := []image.Rectangle{image.Rect(20, 40, 60, 70), image.Rect(120, 40, 160, 70)}

	got := toFrameCoords(face, eyes)
	want := []image.Rectangle{image.Rect(120, 90, 160, 120), image.Rect(220, 90, 260, 120)}
	if len(got) != len(want) {
		t.Fatalf("got %d eyes, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("eye %d = %v, expected %v", i, got[i], want[i])
		}
		if !got[i].In(face) {
			t.Errorf("eye %d %v outside face %v", i, got[i], face)
		}
	}
	if len(toFrameCoords(face, nil)) != 0 {
		t.Error("expected no eyes for empty input")
	}
}

func TestMirrorFlipsHorizontally(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8U)
	defer mat.Close()
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			mat.SetUCharAt(row, col, uint8(10*row+col+1))
		}
	}

	mirror(&mat)

	if mat.Rows() != 2 || mat.Cols() != 3 {
		t.Fatalf("size changed to %dx%d", mat.Rows(), mat.Cols())
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			want := uint8(10*row + (2 - col) + 1)
			if got := mat.GetUCharAt(row, col); got != want {
				t.Errorf("pixel (%d,%d) = %d, expected %d", row, col, got, want)
			}
		}
	}
}
