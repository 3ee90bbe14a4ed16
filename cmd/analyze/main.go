// Command analyze runs the batch pipeline over a video file: every frame
// is analyzed, an annotated copy is optionally written, and the session
// summary is printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitvision/formcoach/internal/analysis"
	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/pose"
	"github.com/fitvision/formcoach/internal/video"
)

func main() {
	var (
		inPath       = flag.String("in", "", "input video file (required)")
		outPath      = flag.String("out", "", "annotated output video file (optional)")
		exerciseName = flag.String("exercise", "pushup", "exercise to analyze")
		detectorURL  = flag.String("detector-url", "http://127.0.0.1:5000", "pose detector base URL")
		timeout      = flag.Duration("detector-timeout", 5*time.Second, "per-frame detector timeout")
		logLevel     = flag.String("log-level", "info", "log level (debug, info, warn, error, silent)")
		logColor     = flag.Bool("log-color", true, "colorize log output")
	)
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		level = logger.INFO
	}
	logger.Init(level, nil, *logColor)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <video> [-out <video>] [-exercise pushup|squat]")
		os.Exit(2)
	}

	if err := run(*inPath, *outPath, *exerciseName, *detectorURL, *timeout); err != nil {
		logger.Error("Analyze", "%v", err)
		os.Exit(1)
	}
}

func run(inPath, outPath, exerciseName, detectorURL string, timeout time.Duration) error {
	session, err := exercise.New(exerciseName)
	if err != nil {
		return err
	}

	src, err := video.OpenFile(inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	det := pose.NewHTTPDetector(detectorURL, timeout)
	defer det.Close()

	var sink video.Sink
	if outPath != "" {
		fsink := video.CreateFile(outPath, src.Info().FPS)
		defer fsink.Close()
		sink = fsink
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipeline := analysis.New(det, session, nil)
	report, err := video.NewProcessor(pipeline).Run(ctx, src, sink)
	if err != nil {
		// A half-written output file is worthless, do not leave it behind.
		if outPath != "" {
			os.Remove(outPath)
		}
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
