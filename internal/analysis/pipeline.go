// Package analysis wires the pose detector and the exercise state machine
// into the per-frame analysis step shared by the live and batch paths.
package analysis

import (
	"time"

	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/logger"
	"github.com/fitvision/formcoach/internal/metrics"
	"github.com/fitvision/formcoach/internal/pose"
	"github.com/fitvision/formcoach/pkg/types"
)

// FrameResult bundles everything produced for one frame: the analysis and
// the raw landmarks needed by overlay rendering.
type FrameResult struct {
	Frame     *types.Frame
	Analysis  exercise.Result
	Landmarks *pose.Landmarks
}

// Pipeline runs detect -> analyze for each frame against one session.
type Pipeline struct {
	det     pose.Detector
	session *exercise.Analyzer
	m       *metrics.Metrics
}

// New creates a pipeline. metrics may be nil.
func New(det pose.Detector, session *exercise.Analyzer, m *metrics.Metrics) *Pipeline {
	return &Pipeline{det: det, session: session, m: m}
}

// Session returns the exercise session this pipeline mutates.
func (p *Pipeline) Session() *exercise.Analyzer { return p.session }

// Process analyzes a single frame. Detector failures degrade to an
// absent-pose frame: the session state and rep count survive untouched.
func (p *Pipeline) Process(frame *types.Frame) FrameResult {
	start := time.Now()

	lms, err := p.det.Detect(frame)
	if err != nil {
		if p.m != nil {
			p.m.DetectErrors.Add(1)
		}
		logger.Warn("Pipeline", "detector error on frame %d: %v", frame.Number, err)
		lms = nil
	}

	res := p.session.Analyze(lms)

	if p.m != nil {
		p.m.FramesAnalyzed.Add(1)
		if lms != nil {
			p.m.PosesDetected.Add(1)
		} else {
			p.m.PosesMissed.Add(1)
		}
		p.m.RepCount.Store(uint64(res.RepCount))
		p.m.FeedbackEmitted.Add(uint64(len(res.Feedback)))
		p.m.UpdateAnalyzeLatency(time.Since(start))
	}

	return FrameResult{Frame: frame, Analysis: res, Landmarks: lms}
}
