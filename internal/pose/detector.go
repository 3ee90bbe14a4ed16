package pose

import "github.com/fitvision/formcoach/pkg/types"

// Detector maps one image frame to a set of body landmarks.
//
// Detect returns (nil, nil) when no pose is found in the frame; that is a
// normal outcome, not an error. Every caller must treat the landmark set as
// possibly absent.
type Detector interface {
	Detect(frame *types.Frame) (*Landmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}
