package video

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/fitvision/formcoach/pkg/types"
)

// ErrOpenVideo wraps failures to open an input file.
var ErrOpenVideo = errors.New("failed to open video file")

// FileSource decodes frames from a video file via OpenCV.
type FileSource struct {
	cap  *gocv.VideoCapture
	mat  gocv.Mat
	info types.VideoInfo
	n    uint64
}

// OpenFile opens a video file for reading and captures its properties.
func OpenFile(path string) (*FileSource, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenVideo, path, err)
	}
	info := types.VideoInfo{
		FPS:        cap.Get(gocv.VideoCaptureFPS),
		FrameCount: int(cap.Get(gocv.VideoCaptureFrameCount)),
		Width:      int(cap.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}
	return &FileSource{cap: cap, mat: gocv.NewMat(), info: info}, nil
}

// Next decodes the next frame. False means the stream ended or decoding
// failed; the two are indistinguishable at this layer.
func (s *FileSource) Next() (*types.Frame, bool) {
	if ok := s.cap.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, false
	}
	s.n++
	buf := s.mat.ToBytes()
	return &types.Frame{
		Pixels:    buf,
		Width:     s.mat.Cols(),
		Height:    s.mat.Rows(),
		Number:    s.n,
		Timestamp: time.Now(),
	}, true
}

// Info returns the container properties read at open time.
func (s *FileSource) Info() types.VideoInfo { return s.info }

// Close releases the decoder.
func (s *FileSource) Close() error {
	s.mat.Close()
	return s.cap.Close()
}

// FileSink encodes frames into an mp4 file. The writer is created lazily
// from the first frame's dimensions.
type FileSink struct {
	path   string
	fps    float64
	writer *gocv.VideoWriter
}

// CreateFile prepares a sink writing to path at the given frame rate.
func CreateFile(path string, fps float64) *FileSink {
	if fps <= 0 {
		fps = 30
	}
	return &FileSink{path: path, fps: fps}
}

// Write encodes one BGR frame.
func (s *FileSink) Write(frame *types.Frame) error {
	if s.writer == nil {
		w, err := gocv.VideoWriterFile(s.path, "mp4v", s.fps, frame.Width, frame.Height, true)
		if err != nil {
			return fmt.Errorf("create video writer %s: %w", s.path, err)
		}
		s.writer = w
	}
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Pixels)
	if err != nil {
		return fmt.Errorf("frame %d to mat: %w", frame.Number, err)
	}
	defer mat.Close()
	return s.writer.Write(mat)
}

// Close finalizes the output file. Safe when no frame was ever written.
func (s *FileSink) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
