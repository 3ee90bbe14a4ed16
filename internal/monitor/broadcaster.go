package monitor

import (
	"sync"
	"time"

	"github.com/fitvision/formcoach/internal/analysis"
	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/metrics"
	"github.com/fitvision/formcoach/internal/overlay"
	"github.com/fitvision/formcoach/internal/record"
)

const clientBuffer = 2

// SnapshotFunc returns the latest analyzed frame, or nil when no session
// is producing frames.
type SnapshotFunc func() *analysis.FrameResult

// FrameBroadcaster fans annotated JPEG frames out to stream clients and
// the recorder. Slow clients skip frames instead of stalling the fanout.
type FrameBroadcaster struct {
	snapshot SnapshotFunc
	recorder *record.Recorder
	interval time.Duration
	m        *metrics.Metrics

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	stop    chan struct{}
	done    chan struct{}
}

// NewFrameBroadcaster creates a broadcaster polling snapshot at the given
// cadence. recorder and metrics may be nil.
func NewFrameBroadcaster(snapshot SnapshotFunc, recorder *record.Recorder, interval time.Duration, m *metrics.Metrics) *FrameBroadcaster {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &FrameBroadcaster{
		snapshot: snapshot,
		recorder: recorder,
		interval: interval,
		m:        m,
		clients:  make(map[chan []byte]struct{}),
	}
}

// Start launches the fanout loop.
func (b *FrameBroadcaster) Start() {
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.run(b.stop, b.done)
}

// Stop halts the fanout loop and waits for it to exit.
func (b *FrameBroadcaster) Stop() {
	if b.stop == nil {
		return
	}
	close(b.stop)
	<-b.done
	b.stop = nil
}

// AddClient registers a stream consumer and returns its frame channel.
func (b *FrameBroadcaster) AddClient() chan []byte {
	ch := make(chan []byte, clientBuffer)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	n := len(b.clients)
	b.mu.Unlock()
	if b.m != nil {
		b.m.StreamClients.Store(uint64(n))
	}
	logger.Debug("Broadcaster", "client added, %d active", n)
	return ch
}

// RemoveClient unregisters a consumer and closes its channel.
func (b *FrameBroadcaster) RemoveClient(ch chan []byte) {
	b.mu.Lock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
	n := len(b.clients)
	b.mu.Unlock()
	if b.m != nil {
		b.m.StreamClients.Store(uint64(n))
	}
	logger.Debug("Broadcaster", "client removed, %d active", n)
}

// ClientCount returns the number of connected stream consumers.
func (b *FrameBroadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *FrameBroadcaster) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		recording := b.recorder != nil && b.recorder.Status().Recording
		if b.ClientCount() == 0 && !recording {
			// No consumers, skip the overlay and encode work entirely.
			continue
		}

		snap := b.snapshot()
		if snap == nil {
			continue
		}

		overlay.Draw(snap.Frame, snap.Landmarks, snap.Analysis)
		if recording {
			b.recorder.SendFrame(snap.Frame)
		}

		jpg, err := overlay.EncodeJPEG(snap.Frame)
		if err != nil {
			logger.Warn("Broadcaster", "encode: %v", err)
			continue
		}
		b.broadcast(jpg)
	}
}

// broadcast delivers one frame to every client without blocking: a client
// with a full buffer misses this frame and catches the next.
func (b *FrameBroadcaster) broadcast(jpg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- jpg:
		default:
		}
	}
}
