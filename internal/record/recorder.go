// Package record captures annotated live frames into timestamped video
// files. The writer runs on its own goroutine; frame submission never
// blocks the capture loop.
package record

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/metrics"
	"github.com/fitvision/formcoach/internal/video"
	"github.com/fitvision/formcoach/pkg/types"
)

const frameBuffer = 64

// ErrAlreadyRecording is returned by Start while a recording is active.
var ErrAlreadyRecording = errors.New("recording already in progress")

// SinkFactory creates the output sink for a new recording. The default
// writes mp4 files; tests substitute in-memory sinks.
type SinkFactory func(path string, fps float64) (video.Sink, error)

// Status describes the recorder state for the HTTP API.
type Status struct {
	Recording bool      `json:"recording"`
	Path      string    `json:"path,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Frames    uint64    `json:"frames"`
	Dropped   uint64    `json:"dropped"`
}

// Recorder manages at most one active recording at a time.
type Recorder struct {
	dir     string
	fps     float64
	newSink SinkFactory
	m       *metrics.Metrics

	mu        sync.Mutex
	recording bool
	path      string
	startedAt time.Time
	frameCh   chan *types.Frame
	wg        sync.WaitGroup

	frames  atomic.Uint64
	dropped atomic.Uint64
}

// New creates a recorder writing into dir at the given frame rate. A nil
// factory selects the mp4 file sink. metrics may be nil.
func New(dir string, fps float64, factory SinkFactory, m *metrics.Metrics) *Recorder {
	if factory == nil {
		factory = func(path string, fps float64) (video.Sink, error) {
			return video.CreateFile(path, fps), nil
		}
	}
	if fps <= 0 {
		fps = 30
	}
	return &Recorder{dir: dir, fps: fps, newSink: factory, m: m}
}

// Start begins a new timestamped recording.
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return "", ErrAlreadyRecording
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create recordings dir: %w", err)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("recording_%s.mp4", time.Now().Format("20060102_150405")))
	ch := make(chan *types.Frame, frameBuffer)

	r.recording = true
	r.path = path
	r.startedAt = time.Now()
	r.frameCh = ch
	r.frames.Store(0)
	r.dropped.Store(0)
	if r.m != nil {
		r.m.RecordingActive.Store(1)
	}

	r.wg.Add(1)
	go r.writeLoop(path, ch)

	logger.Info("Recorder", "recording started: %s", path)
	return path, nil
}

// SendFrame queues one frame for the active recording. Frames are dropped
// rather than blocking when the writer falls behind. A frame sent while no
// recording is active is discarded silently.
func (r *Recorder) SendFrame(frame *types.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}
	select {
	case r.frameCh <- frame:
		n := r.frames.Add(1)
		if r.m != nil {
			r.m.RecordingFrames.Store(n)
		}
	default:
		r.dropped.Add(1)
	}
}

// Stop finalizes the active recording, draining queued frames before the
// output file is closed. Stopping an idle recorder is a no-op.
func (r *Recorder) Stop() Status {
	r.mu.Lock()
	if !r.recording {
		status := r.statusLocked()
		r.mu.Unlock()
		return status
	}
	close(r.frameCh)
	r.recording = false
	r.mu.Unlock()

	r.wg.Wait()
	if r.m != nil {
		r.m.RecordingActive.Store(0)
	}

	r.mu.Lock()
	status := r.statusLocked()
	r.mu.Unlock()
	logger.Info("Recorder", "recording stopped: %s (%d frames, %d dropped)",
		status.Path, status.Frames, status.Dropped)
	return status
}

// Status reports the current recorder state.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Recorder) statusLocked() Status {
	return Status{
		Recording: r.recording,
		Path:      r.path,
		StartedAt: r.startedAt,
		Frames:    r.frames.Load(),
		Dropped:   r.dropped.Load(),
	}
}

// writeLoop drains the frame channel into the sink. The sink is created
// lazily from the first frame so output dimensions match the live feed.
func (r *Recorder) writeLoop(path string, ch <-chan *types.Frame) {
	defer r.wg.Done()

	var sink video.Sink
	for frame := range ch {
		if sink == nil {
			s, err := r.newSink(path, r.fps)
			if err != nil {
				logger.Error("Recorder", "open sink %s: %v", path, err)
				for range ch {
				}
				return
			}
			sink = s
		}
		if err := sink.Write(frame); err != nil {
			logger.Warn("Recorder", "write frame %d: %v", frame.Number, err)
		}
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Error("Recorder", "close sink %s: %v", path, err)
		}
	}
}
