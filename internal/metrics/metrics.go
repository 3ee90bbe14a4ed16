package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics. Counters are plain atomics so hot
// paths never touch prometheus directly; collectors sample them on scrape.
type Metrics struct {
	// Frame pipeline counters
	FramesRead     atomic.Uint64
	FramesAnalyzed atomic.Uint64
	ReadMisses     atomic.Uint64

	// Detection counters
	PosesDetected atomic.Uint64
	PosesMissed   atomic.Uint64
	DetectErrors  atomic.Uint64

	// Session state
	RepCount        atomic.Uint64 // Current session rep count
	FeedbackEmitted atomic.Uint64

	// Latency tracking
	AnalyzeLatencyMs atomic.Uint64 // Last detect+analyze latency in ms

	// Monitor state
	StreamClients   atomic.Uint64
	RecordingActive atomic.Uint64 // 0 = inactive, 1 = active
	RecordingFrames atomic.Uint64

	registry *prometheus.Registry
}

// New creates a Metrics instance with its prometheus collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerCollectors()
	return m
}

func (m *Metrics) registerCollectors() {
	gauges := []struct {
		name string
		help string
		load func() uint64
	}{
		{"formcoach_frames_read_total", "Total frames read from the frame source", m.FramesRead.Load},
		{"formcoach_frames_analyzed_total", "Total frames run through the analysis pipeline", m.FramesAnalyzed.Load},
		{"formcoach_read_misses_total", "Capture ticks that produced no frame", m.ReadMisses.Load},
		{"formcoach_poses_detected_total", "Frames where the detector found a pose", m.PosesDetected.Load},
		{"formcoach_poses_missed_total", "Frames where no pose was found", m.PosesMissed.Load},
		{"formcoach_detect_errors_total", "Pose detector errors", m.DetectErrors.Load},
		{"formcoach_rep_count", "Repetition count of the current session", m.RepCount.Load},
		{"formcoach_feedback_emitted_total", "Total form feedback items emitted", m.FeedbackEmitted.Load},
		{"formcoach_analyze_latency_ms", "Last detect+analyze latency in milliseconds", m.AnalyzeLatencyMs.Load},
		{"formcoach_stream_clients", "Connected MJPEG stream clients", m.StreamClients.Load},
		{"formcoach_recording_active", "Recording active (0=inactive, 1=active)", m.RecordingActive.Load},
		{"formcoach_recording_frames", "Frames written to the current recording", m.RecordingFrames.Load},
	}

	for _, g := range gauges {
		load := g.load
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return float64(load()) },
		))
	}
}

// UpdateAnalyzeLatency records the duration of one detect+analyze pass.
func (m *Metrics) UpdateAnalyzeLatency(d time.Duration) {
	m.AnalyzeLatencyMs.Store(uint64(d.Milliseconds()))
}

// Handler returns the prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server.
func (m *Metrics) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
