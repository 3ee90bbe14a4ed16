// Package video implements the batch path: decode a file, analyze every
// frame, optionally write an annotated copy, and report a session summary.
package video

import "github.com/fitvision/formcoach/pkg/types"

// Source is a finite frame stream. Next reports false when no more frames
// can be delivered; the container format does not distinguish a clean end
// of stream from a decode failure, so neither does Source.
type Source interface {
	Next() (*types.Frame, bool)
	Info() types.VideoInfo
	Close() error
}

// Sink consumes annotated frames, typically into an output video file.
type Sink interface {
	Write(frame *types.Frame) error
	Close() error
}
