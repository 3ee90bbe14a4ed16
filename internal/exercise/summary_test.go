package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	t.Run("clean session is fully accurate", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		// Controlled reps: rising through the 90..100 band keeps the depth
		// rule quiet on the way out of DOWN.
		for _, deg := range []float64{150, 70, 95, 150, 70, 95, 150} {
			a.Analyze(pushupPose(deg))
		}

		s := a.Summary()
		assert.Equal(t, "pushup", s.Exercise)
		assert.Equal(t, 2, s.TotalReps)
		assert.Equal(t, 7, s.TotalFrames)
		assert.Equal(t, 7, s.CorrectFormFrames)
		assert.InDelta(t, 100, s.FormAccuracy, 1e-9)
		assert.Empty(t, s.Feedback)
	})

	t.Run("every frame flagged is zero accuracy", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		for i := 0; i < 4; i++ {
			a.Analyze(saggingPushupPose(150))
		}

		s := a.Summary()
		assert.Equal(t, 4, s.TotalFrames)
		assert.Equal(t, 0, s.CorrectFormFrames)
		assert.InDelta(t, 0, s.FormAccuracy, 1e-9)
	})

	t.Run("feedback aggregates per message", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		a.Analyze(saggingPushupPose(150))
		a.Analyze(saggingPushupPose(150))
		a.Analyze(pushupPose(150))

		s := a.Summary()
		require.Len(t, s.Feedback, 1)
		stat := s.Feedback["Keep body straight - avoid hip sagging"]
		assert.Equal(t, 2, stat.Count)
		assert.Equal(t, SeverityError, stat.Severity)
		assert.Equal(t, 1, s.CorrectFormFrames)
	})

	t.Run("empty session divides to zero", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(Squat())
		s := a.Summary()
		assert.Equal(t, 0, s.TotalFrames)
		assert.Zero(t, s.FormAccuracy)
	})

	t.Run("absent frames never enter the totals", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		a.Analyze(pushupPose(150))
		a.Analyze(nil)
		a.Analyze(nil)

		s := a.Summary()
		assert.Equal(t, 1, s.TotalFrames)
	})
}
