package video

import (
	"context"

	"github.com/fitvision/formcoach/internal/analysis"
	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/overlay"
	"github.com/fitvision/formcoach/pkg/types"
)

const progressEvery = 30

// Report is the outcome of one batch run.
type Report struct {
	Summary         exercise.Summary `json:"summary"`
	Video           types.VideoInfo  `json:"video"`
	FramesProcessed int              `json:"frames_processed"`

	// Results holds the per-frame analyses in order. Omitted from the JSON
	// report; callers wanting the timeline read it directly.
	Results []exercise.Result `json:"-"`
}

// Processor drives a full pass over a video source.
type Processor struct {
	pipeline *analysis.Pipeline
}

// NewProcessor creates a batch processor around the given pipeline.
func NewProcessor(pipeline *analysis.Pipeline) *Processor {
	return &Processor{pipeline: pipeline}
}

// Run consumes src until it is exhausted or ctx is cancelled, analyzing
// every frame. When sink is non-nil each frame is annotated and written
// out. The source and sink are not closed here.
//
// Reading fewer frames than the container advertised is logged but not an
// error: a truncated file and a clean end of stream read identically.
func (p *Processor) Run(ctx context.Context, src Source, sink Sink) (Report, error) {
	info := src.Info()
	logger.Info("Video", "processing %dx%d @ %.1f fps, %d frames (%.1fs)",
		info.Width, info.Height, info.FPS, info.FrameCount, info.Duration())

	report := Report{Video: info}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		frame, ok := src.Next()
		if !ok {
			break
		}

		result := p.pipeline.Process(frame)
		report.FramesProcessed++
		report.Results = append(report.Results, result.Analysis)

		if sink != nil {
			overlay.Draw(frame, result.Landmarks, result.Analysis)
			if err := sink.Write(frame); err != nil {
				return report, err
			}
		}

		if report.FramesProcessed%progressEvery == 0 {
			logger.Info("Video", "frame %d/%d, reps %d",
				report.FramesProcessed, info.FrameCount, result.Analysis.RepCount)
		}
	}

	if info.FrameCount > 0 && report.FramesProcessed < info.FrameCount {
		logger.Warn("Video", "decoded %d of %d advertised frames",
			report.FramesProcessed, info.FrameCount)
	}

	report.Summary = p.pipeline.Session().Summary()
	logger.Info("Video", "done: %d frames, %d reps, %.1f%% form accuracy",
		report.FramesProcessed, report.Summary.TotalReps, report.Summary.FormAccuracy)
	return report, nil
}
