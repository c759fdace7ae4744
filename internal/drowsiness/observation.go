package drowsiness

import "image"

// MinEyesPerFace is the number of eye regions a face needs for its eyes to
// count as visible.
const MinEyesPerFace = 2

// Face is one detected face with the eye regions found inside it.
// Eye rectangles are in frame coordinates.
type Face struct {
	Box  image.Rectangle
	Eyes []image.Rectangle
}

// EyesOpen reports whether the face shows at least MinEyesPerFace eyes.
func (f Face) EyesOpen() bool {
	return len(f.Eyes) >= MinEyesPerFace
}

// EyesVisible reduces a frame's detections to the single observation fed to
// the state machine: true if any face has its eyes open. Faces are not
// tracked individually, so one alert face masks a drowsy one.
func EyesVisible(faces []Face) bool {
	for _, f := range faces {
		if f.EyesOpen() {
			return true
		}
	}
	return false
}
