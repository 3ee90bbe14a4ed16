// Package monitor is the live HTTP surface: session control, MJPEG and SSE
// streaming, recording control, and status reporting.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fitvision/formcoach/internal/analysis"
	"github.com/fitvision/formcoach/internal/capture"
	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/metrics"
	"github.com/fitvision/formcoach/internal/pose"
	"github.com/fitvision/formcoach/internal/record"
)

// Server runs the live analysis service. At most one session (and its
// capture loop) is active at a time.
type Server struct {
	cfg         Config
	det         pose.Detector
	openCamera  capture.Opener
	m           *metrics.Metrics
	recorder    *record.Recorder
	broadcaster *FrameBroadcaster

	mu   sync.Mutex
	loop *capture.Loop

	httpSrv *http.Server
}

// NewServer wires the live service. A nil opener uses the local capture
// device from the config. metrics may be nil.
func NewServer(cfg Config, det pose.Detector, opener capture.Opener, m *metrics.Metrics) *Server {
	if opener == nil {
		opener = func() (capture.Camera, error) {
			return capture.OpenDevice(cfg.CameraIndex)
		}
	}
	s := &Server{
		cfg:        cfg,
		det:        det,
		openCamera: opener,
		m:          m,
	}
	s.recorder = record.New(cfg.RecordingsDir, cfg.RecordFPS, nil, m)
	s.broadcaster = NewFrameBroadcaster(s.currentSnapshot, s.recorder, cfg.MJPEGInterval, m)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", s.handleStream)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/status/stream", s.handleStatusStream)
	mux.HandleFunc("/api/session/start", s.handleSessionStart)
	mux.HandleFunc("/api/session/stop", s.handleSessionStop)
	mux.HandleFunc("/api/session/reset", s.handleSessionReset)
	mux.HandleFunc("/api/recording/start", s.handleRecordingStart)
	mux.HandleFunc("/api/recording/stop", s.handleRecordingStop)
	mux.HandleFunc("/api/recording/status", s.handleRecordingStatus)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start launches the broadcaster and the HTTP listener.
func (s *Server) Start() error {
	s.broadcaster.Start()
	s.httpSrv = &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	logger.Info("Monitor", "listening on %s", s.cfg.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP listener, the capture loop, any active
// recording, and the broadcaster, in that order.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}

	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}

	s.recorder.Stop()
	s.broadcaster.Stop()
	return err
}

// currentSnapshot feeds the broadcaster from whichever loop is active.
func (s *Server) currentSnapshot() *analysis.FrameResult {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop == nil {
		return nil
	}
	return loop.Snapshot()
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	streamMJPEG(w, r, s.broadcaster)
}

type statusPayload struct {
	Timestamp     time.Time        `json:"timestamp"`
	SessionActive bool             `json:"session_active"`
	SessionID     string           `json:"session_id,omitempty"`
	Exercise      string           `json:"exercise,omitempty"`
	Result        *exercise.Result `json:"result,omitempty"`
	Capture       capture.Stats    `json:"capture"`
	Recording     record.Status    `json:"recording"`
	StreamClients int              `json:"stream_clients"`
}

func (s *Server) status() statusPayload {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()

	p := statusPayload{
		Timestamp:     time.Now(),
		Recording:     s.recorder.Status(),
		StreamClients: s.broadcaster.ClientCount(),
	}
	if loop != nil {
		session := loop.Pipeline().Session()
		res := session.Snapshot()
		p.SessionActive = loop.Running()
		p.SessionID = session.ID().String()
		p.Exercise = session.Exercise()
		p.Result = &res
		p.Capture = loop.Stats()
	}
	return p
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.status())
}

// handleStatusStream pushes the status payload as server-sent events until
// the client disconnects.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(s.cfg.StatusInterval)
	defer ticker.Stop()

	for {
		payload, err := json.Marshal(s.status())
		if err != nil {
			logger.Warn("Monitor", "status marshal: %v", err)
			return
		}
		writeSSE(w, flusher, payload)

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

type startRequest struct {
	Exercise string `json:"exercise"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Exercise  string `json:"exercise"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRequest
	if r.Body != nil {
		// An empty body selects the configured default exercise.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	name := req.Exercise
	if name == "" {
		name = s.cfg.Exercise
	}

	var opts []exercise.Option
	if s.cfg.VisibilityGate {
		opts = append(opts, exercise.WithVisibilityGate(s.cfg.VisibilityThreshold))
	}
	session, err := exercise.New(name, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loop != nil && s.loop.Running() {
		writeError(w, http.StatusConflict, errors.New("session already running"))
		return
	}

	pipeline := analysis.New(s.det, session, s.m)
	loop := capture.NewLoop(s.openCamera, pipeline, s.m, s.cfg.PollInterval)
	if err := loop.Start(); err != nil {
		// Camera failure leaves any previous (stopped) session in place.
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.loop = loop

	logger.Info("Monitor", "session %s started (%s)", session.ID(), session.Exercise())
	writeJSON(w, startResponse{SessionID: session.ID().String(), Exercise: session.Exercise()})
}

func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()

	if loop == nil {
		writeError(w, http.StatusConflict, errors.New("no session"))
		return
	}

	loop.Stop()
	summary := loop.Pipeline().Session().Summary()
	logger.Info("Monitor", "session %s stopped: %d reps, %.1f%% form accuracy",
		summary.SessionID, summary.TotalReps, summary.FormAccuracy)
	writeJSON(w, summary)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()

	if loop == nil {
		writeError(w, http.StatusConflict, errors.New("no session"))
		return
	}

	session := loop.Pipeline().Session()
	session.Reset()
	res := session.Snapshot()
	writeJSON(w, res)
}

func (s *Server) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path, err := s.recorder.Start()
	if err != nil {
		if errors.Is(err, record.ErrAlreadyRecording) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, map[string]string{"path": path})
}

func (s *Server) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.recorder.Stop())
}

func (s *Server) handleRecordingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.recorder.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Monitor", "write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
