package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/metrics"
	"github.com/fitvision/formcoach/internal/pose"
	"github.com/fitvision/formcoach/pkg/types"
)

type scriptedDetector struct {
	results []func() (*pose.Landmarks, error)
	calls   int
}

func (d *scriptedDetector) Detect(_ *types.Frame) (*pose.Landmarks, error) {
	i := d.calls
	d.calls++
	if i >= len(d.results) {
		return nil, nil
	}
	return d.results[i]()
}

func (d *scriptedDetector) Close() error { return nil }

func found(lms *pose.Landmarks) func() (*pose.Landmarks, error) {
	return func() (*pose.Landmarks, error) { return lms, nil }
}

func failed(err error) func() (*pose.Landmarks, error) {
	return func() (*pose.Landmarks, error) { return nil, err }
}

func testFrame(n uint64) *types.Frame {
	return &types.Frame{Pixels: make([]byte, 4*4*3), Width: 4, Height: 4, Number: n}
}

func TestPipelineProcess(t *testing.T) {
	t.Parallel()

	t.Run("detected pose reaches the session", func(t *testing.T) {
		t.Parallel()
		var lms pose.Landmarks
		det := &scriptedDetector{results: []func() (*pose.Landmarks, error){found(&lms)}}
		session := exercise.NewAnalyzer(exercise.PushUp())
		p := New(det, session, nil)

		res := p.Process(testFrame(1))
		assert.Same(t, &lms, res.Landmarks)
		assert.Equal(t, 1, session.FrameCount())
	})

	t.Run("no pose leaves the session history untouched", func(t *testing.T) {
		t.Parallel()
		det := &scriptedDetector{results: []func() (*pose.Landmarks, error){found(nil)}}
		session := exercise.NewAnalyzer(exercise.PushUp())
		p := New(det, session, nil)

		res := p.Process(testFrame(1))
		assert.Nil(t, res.Landmarks)
		assert.Equal(t, 0, session.FrameCount())
		assert.Empty(t, res.Analysis.Feedback)
	})

	t.Run("detector error degrades to an absent pose", func(t *testing.T) {
		t.Parallel()
		m := metrics.New()
		det := &scriptedDetector{results: []func() (*pose.Landmarks, error){
			failed(errors.New("connection refused")),
		}}
		session := exercise.NewAnalyzer(exercise.PushUp())
		p := New(det, session, m)

		res := p.Process(testFrame(1))
		assert.Nil(t, res.Landmarks)
		assert.Equal(t, 0, res.Analysis.RepCount)
		assert.Equal(t, uint64(1), m.DetectErrors.Load())
		assert.Equal(t, uint64(1), m.PosesMissed.Load())
		assert.Equal(t, uint64(0), m.PosesDetected.Load())
	})

	t.Run("counters track frames", func(t *testing.T) {
		t.Parallel()
		var lms pose.Landmarks
		m := metrics.New()
		det := &scriptedDetector{results: []func() (*pose.Landmarks, error){
			found(&lms), found(nil), found(&lms),
		}}
		session := exercise.NewAnalyzer(exercise.PushUp())
		p := New(det, session, m)

		for n := uint64(1); n <= 3; n++ {
			p.Process(testFrame(n))
		}
		require.Equal(t, uint64(3), m.FramesAnalyzed.Load())
		assert.Equal(t, uint64(2), m.PosesDetected.Load())
		assert.Equal(t, uint64(1), m.PosesMissed.Load())
	})
}
