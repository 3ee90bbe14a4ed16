package types

import "time"

// Frame is one decoded video frame in BGR byte order, row-major,
// 3 bytes per pixel. Frames handed across goroutine boundaries are
// always copies; a published frame is never mutated in place.
type Frame struct {
	Pixels    []byte    // BGR pixel data, len == Width*Height*3
	Width     int       // Frame width in pixels
	Height    int       // Frame height in pixels
	Number    uint64    // Sequential frame number within the source
	Timestamp time.Time // Capture or decode timestamp
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	pixels := make([]byte, len(f.Pixels))
	copy(pixels, f.Pixels)
	return &Frame{
		Pixels:    pixels,
		Width:     f.Width,
		Height:    f.Height,
		Number:    f.Number,
		Timestamp: f.Timestamp,
	}
}

// VideoInfo describes a finite video source.
type VideoInfo struct {
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Duration returns the nominal playback duration in seconds, or 0 when
// the frame rate is unknown.
func (v VideoInfo) Duration() float64 {
	if v.FPS <= 0 {
		return 0
	}
	return float64(v.FrameCount) / v.FPS
}
