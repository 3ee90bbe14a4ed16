package video

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitvision/formcoach/internal/analysis"
	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/pose"
	"github.com/fitvision/formcoach/pkg/types"
)

type sliceSource struct {
	frames []*types.Frame
	info   types.VideoInfo
	next   int
	closed bool
}

func (s *sliceSource) Next() (*types.Frame, bool) {
	if s.next >= len(s.frames) {
		return nil, false
	}
	f := s.frames[s.next]
	s.next++
	return f, true
}

func (s *sliceSource) Info() types.VideoInfo { return s.info }
func (s *sliceSource) Close() error          { s.closed = true; return nil }

type memorySink struct {
	frames []*types.Frame
	closed bool
}

func (s *memorySink) Write(frame *types.Frame) error {
	s.frames = append(s.frames, frame)
	return nil
}

func (s *memorySink) Close() error { s.closed = true; return nil }

type noPoseDetector struct{}

func (noPoseDetector) Detect(*types.Frame) (*pose.Landmarks, error) { return nil, nil }
func (noPoseDetector) Close() error                                 { return nil }

func makeFrames(n int) []*types.Frame {
	frames := make([]*types.Frame, n)
	for i := range frames {
		frames[i] = &types.Frame{
			Pixels: make([]byte, 8*8*3),
			Width:  8, Height: 8,
			Number: uint64(i + 1),
		}
	}
	return frames
}

func newTestProcessor() *Processor {
	session := exercise.NewAnalyzer(exercise.PushUp())
	return NewProcessor(analysis.New(noPoseDetector{}, session, nil))
}

func TestProcessorRun(t *testing.T) {
	t.Parallel()

	t.Run("consumes the whole source", func(t *testing.T) {
		t.Parallel()
		src := &sliceSource{
			frames: makeFrames(5),
			info:   types.VideoInfo{FPS: 30, FrameCount: 5, Width: 8, Height: 8},
		}

		report, err := newTestProcessor().Run(context.Background(), src, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, report.FramesProcessed)
		assert.Len(t, report.Results, 5)
		assert.Equal(t, src.info, report.Video)
		assert.Equal(t, 0, report.Summary.TotalReps)
	})

	t.Run("short source is not an error", func(t *testing.T) {
		t.Parallel()
		// The container advertises more frames than decode delivers; a
		// truncated file reads like a clean end of stream.
		src := &sliceSource{
			frames: makeFrames(3),
			info:   types.VideoInfo{FPS: 30, FrameCount: 10, Width: 8, Height: 8},
		}

		report, err := newTestProcessor().Run(context.Background(), src, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, report.FramesProcessed)
	})

	t.Run("annotated frames reach the sink", func(t *testing.T) {
		t.Parallel()
		src := &sliceSource{
			frames: makeFrames(4),
			info:   types.VideoInfo{FPS: 30, FrameCount: 4, Width: 8, Height: 8},
		}
		sink := &memorySink{}

		report, err := newTestProcessor().Run(context.Background(), src, sink)
		require.NoError(t, err)
		assert.Len(t, sink.frames, report.FramesProcessed)
		assert.False(t, sink.closed, "processor must not close the sink")
	})

	t.Run("cancellation stops mid-stream", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := &sliceSource{
			frames: makeFrames(4),
			info:   types.VideoInfo{FPS: 30, FrameCount: 4, Width: 8, Height: 8},
		}

		report, err := newTestProcessor().Run(ctx, src, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, report.FramesProcessed)
	})

	t.Run("summary reflects the session", func(t *testing.T) {
		t.Parallel()
		src := &sliceSource{
			frames: makeFrames(2),
			info:   types.VideoInfo{FPS: 30, FrameCount: 2, Width: 8, Height: 8},
		}

		report, err := newTestProcessor().Run(context.Background(), src, nil)
		require.NoError(t, err)
		// No pose in any frame: nothing enters the session history.
		assert.Equal(t, 0, report.Summary.TotalFrames)
		assert.Zero(t, report.Summary.FormAccuracy)
	})
}
