// Command server runs the live exercise coaching service: it captures
// camera frames, sends them to the pose detector, tracks reps and form,
// and serves the MJPEG stream and control API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/metrics"
	"github.com/fitvision/formcoach/internal/monitor"
	"github.com/fitvision/formcoach/internal/pose"
)

func main() {
	var (
		cameraIndex  = flag.Int("camera", 0, "capture device index")
		httpAddr     = flag.String("http", ":8080", "HTTP listen address")
		metricsAddr  = flag.String("metrics", ":9090", "Prometheus listen address (empty disables)")
		detectorURL  = flag.String("detector-url", "http://127.0.0.1:5000", "pose detector base URL")
		exerciseName = flag.String("exercise", "pushup", "default exercise for new sessions")
		recordDir    = flag.String("record-path", "recordings", "directory for recordings")
		pollInterval = flag.Duration("poll-interval", 33*time.Millisecond, "capture loop interval")
		visGate      = flag.Bool("visibility-gate", false, "suppress feedback on low-confidence joints")
		visThreshold = flag.Float64("visibility-threshold", pose.DefaultVisibilityThreshold, "joint confidence floor when gating")
		logLevel     = flag.String("log-level", "info", "log level (debug, info, warn, error, silent)")
		logColor     = flag.Bool("log-color", true, "colorize log output")
	)
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		logger.Init(logger.INFO, nil, *logColor)
		logger.Warn("Main", "%v, defaulting to info", err)
	} else {
		logger.Init(level, nil, *logColor)
	}

	m := metrics.New()
	if *metricsAddr != "" {
		go func() {
			if err := m.StartServer(*metricsAddr); err != nil {
				logger.Error("Main", "metrics server: %v", err)
			}
		}()
	}

	cfg := monitor.DefaultConfig()
	cfg.Addr = *httpAddr
	cfg.CameraIndex = *cameraIndex
	cfg.Exercise = *exerciseName
	cfg.RecordingsDir = *recordDir
	cfg.PollInterval = *pollInterval
	cfg.VisibilityGate = *visGate
	cfg.VisibilityThreshold = *visThreshold

	det := pose.NewHTTPDetector(*detectorURL, 0)
	defer det.Close()

	srv := monitor.NewServer(cfg, det, nil, m)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Main", "received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Main", "shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error("Main", "server: %v", err)
		os.Exit(1)
	}
	logger.Info("Main", "bye")
}
