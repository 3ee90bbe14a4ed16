// Package pose provides body landmark types, the joint index table, and the
// angle geometry used by the exercise analyzers.
package pose

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose Joint = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	NumLandmarks = 33
)

// Joint identifies one of the 33 named body landmarks.
type Joint int

// Landmark is one detected body point in normalized image coordinates.
// Visibility is a detector confidence in [0,1], not a physical quantity.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Landmarks holds one full landmark set for a frame. A nil *Landmarks means
// no pose was detected. The set is immutable after creation.
type Landmarks [NumLandmarks]Landmark

// Point is a landmark position without its visibility score.
type Point struct {
	X float64
	Y float64
	Z float64
}

// DefaultVisibilityThreshold is the confidence below which a landmark is
// treated as unreliable.
const DefaultVisibilityThreshold = 0.5

// Coordinates returns the position of the given joint, or ok=false when the
// landmark set is absent or the joint index is out of range.
func Coordinates(lms *Landmarks, j Joint) (Point, bool) {
	if lms == nil || j < 0 || j >= NumLandmarks {
		return Point{}, false
	}
	l := lms[j]
	return Point{X: l.X, Y: l.Y, Z: l.Z}, true
}

// Visible reports whether the joint's visibility confidence exceeds the
// threshold. Absent landmark sets are never visible.
func Visible(lms *Landmarks, j Joint, threshold float64) bool {
	if lms == nil || j < 0 || j >= NumLandmarks {
		return false
	}
	return lms[j].Visibility > threshold
}
