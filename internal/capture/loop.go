package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fitvision/formcoach/internal/analysis"
	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/metrics"
)

// DefaultPollInterval paces the producer at roughly 30 fps.
const DefaultPollInterval = 33 * time.Millisecond

// Stats reports the producer's cumulative read counters.
type Stats struct {
	FramesRead uint64 `json:"frames_read"`
	ReadMisses uint64 `json:"read_misses"`
}

// Loop owns the camera producer goroutine. Each cycle reads one frame,
// runs it through the analysis pipeline, and swaps the result into the
// latest slot. Readers poll Snapshot for a private copy; the producer
// never blocks on consumers.
type Loop struct {
	open     Opener
	pipeline *analysis.Pipeline
	m        *metrics.Metrics
	interval time.Duration

	framesRead atomic.Uint64
	readMisses atomic.Uint64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	snapMu sync.Mutex
	latest *analysis.FrameResult
}

// NewLoop creates a stopped loop. interval <= 0 selects the default.
// metrics may be nil.
func NewLoop(open Opener, pipeline *analysis.Pipeline, m *metrics.Metrics, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Loop{open: open, pipeline: pipeline, m: m, interval: interval}
}

// Pipeline returns the analysis pipeline driven by this loop.
func (l *Loop) Pipeline() *analysis.Pipeline { return l.pipeline }

// Start opens a camera and launches the producer. A second Start while
// running fails with ErrAlreadyRunning. If the camera cannot be opened the
// loop stays stopped and no state changes.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrAlreadyRunning
	}

	cam, err := l.open()
	if err != nil {
		return err
	}

	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	l.running = true
	go l.run(cam, l.stop, l.done)

	logger.Info("Capture", "camera loop started (interval %s)", l.interval)
	return nil
}

// Stop halts the producer and waits for the camera to be released. Calling
// Stop on a stopped loop, or before any Start, is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	close(l.stop)
	l.running = false
	done := l.done
	l.mu.Unlock()

	<-done
	logger.Info("Capture", "camera loop stopped")
}

// Running reports whether the producer is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Snapshot returns a deep copy of the most recent frame result, or nil when
// no frame has been processed yet. The copy shares no memory with the
// producer, so callers may hold it across further frames.
func (l *Loop) Snapshot() *analysis.FrameResult {
	l.snapMu.Lock()
	defer l.snapMu.Unlock()

	if l.latest == nil {
		return nil
	}
	out := &analysis.FrameResult{
		Frame:    l.latest.Frame.Clone(),
		Analysis: l.latest.Analysis,
	}
	out.Analysis.Angles = copyAngleMap(l.latest.Analysis.Angles)
	out.Analysis.Feedback = append(out.Analysis.Feedback[:0:0], l.latest.Analysis.Feedback...)
	if l.latest.Landmarks != nil {
		lms := *l.latest.Landmarks
		out.Landmarks = &lms
	}
	return out
}

// Stats returns the cumulative producer counters.
func (l *Loop) Stats() Stats {
	return Stats{
		FramesRead: l.framesRead.Load(),
		ReadMisses: l.readMisses.Load(),
	}
}

// run is the producer. The camera is released here, exactly once, after
// the final read completes; Stop observes the release through done.
func (l *Loop) run(cam Camera, stop, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := cam.Close(); err != nil {
			logger.Warn("Capture", "camera close: %v", err)
		}
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		frame, ok := cam.Read()
		if !ok {
			l.readMisses.Add(1)
			if l.m != nil {
				l.m.ReadMisses.Add(1)
			}
			continue
		}
		l.framesRead.Add(1)
		if l.m != nil {
			l.m.FramesRead.Add(1)
		}

		// Process fully outside the snapshot lock; only the pointer swap
		// contends with readers.
		result := l.pipeline.Process(frame)

		l.snapMu.Lock()
		l.latest = &result
		l.snapMu.Unlock()
	}
}

func copyAngleMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
