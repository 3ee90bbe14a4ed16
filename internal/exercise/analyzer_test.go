package exercise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitvision/formcoach/internal/pose"
)

func rotate(x, y, deg float64) (float64, float64) {
	r := deg * math.Pi / 180
	return x*math.Cos(r) - y*math.Sin(r), x*math.Sin(r) + y*math.Cos(r)
}

func setJoint(lms *pose.Landmarks, j pose.Joint, x, y float64) {
	lms[j] = pose.Landmark{X: x, Y: y, Visibility: 1}
}

// pushupPose builds a side-view push-up frame with the requested elbow
// angle. The torso is straight (body alignment 180) and the upper arm sits
// at 45 degrees from the torso, so only the elbow rule can fire.
func pushupPose(elbowDeg float64) *pose.Landmarks {
	var lms pose.Landmarks
	for i := range lms {
		lms[i].Visibility = 1
	}

	const (
		sx, sy = 0.2, 0.5 // shoulder
		hx, hy = 0.5, 0.5 // hip
		kx, ky = 0.8, 0.5 // knee
		reach  = 0.1
	)
	setJoint(&lms, pose.RightShoulder, sx, sy)
	setJoint(&lms, pose.RightHip, hx, hy)
	setJoint(&lms, pose.RightKnee, kx, ky)

	// Upper arm at 45 degrees below the torso line.
	ux, uy := rotate(1, 0, 45)
	ex, ey := sx+reach*ux, sy+reach*uy
	setJoint(&lms, pose.RightElbow, ex, ey)

	// Forearm rotated off the elbow->shoulder ray by the requested angle.
	wx, wy := rotate(-ux, -uy, elbowDeg)
	setJoint(&lms, pose.RightWrist, ex+reach*wx, ey+reach*wy)
	return &lms
}

// saggingPushupPose is pushupPose with the hip dropped below the
// shoulder-knee line, putting body alignment near 143 degrees.
func saggingPushupPose(elbowDeg float64) *pose.Landmarks {
	lms := pushupPose(elbowDeg)
	setJoint(lms, pose.RightHip, 0.5, 0.6)
	return lms
}

// squatPose builds a side-view squat frame with the requested knee angle.
// The torso is upright and the ankle angle is held at 90 degrees, so only
// the knee rule can fire.
func squatPose(kneeDeg float64) *pose.Landmarks {
	var lms pose.Landmarks
	for i := range lms {
		lms[i].Visibility = 1
	}

	const (
		kx, ky = 0.5, 0.5
		reach  = 0.12
	)
	setJoint(&lms, pose.RightKnee, kx, ky)
	setJoint(&lms, pose.RightHip, kx, ky-reach)
	setJoint(&lms, pose.RightShoulder, kx, ky-2*reach)

	// Shin rotated off the knee->hip ray by the knee angle.
	dx, dy := rotate(0, -1, kneeDeg)
	ax, ay := kx+reach*dx, ky+reach*dy
	setJoint(&lms, pose.RightAnkle, ax, ay)

	// Foot perpendicular to the shin keeps the ankle angle at 90.
	fx, fy := rotate(kx-ax, ky-ay, 90)
	setJoint(&lms, pose.RightFootIndex, ax+fx, ay+fy)
	return &lms
}

func TestAnalyzerRepCounting(t *testing.T) {
	t.Parallel()

	t.Run("down then up counts one rep", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())

		res := a.Analyze(pushupPose(150))
		assert.Equal(t, StateUp, res.State)
		assert.Equal(t, 0, res.RepCount)

		res = a.Analyze(pushupPose(70))
		assert.Equal(t, StateDown, res.State)
		assert.Equal(t, 0, res.RepCount)

		res = a.Analyze(pushupPose(150))
		assert.Equal(t, StateUp, res.State)
		assert.Equal(t, 1, res.RepCount)
	})

	t.Run("first transition never counts", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())

		a.Analyze(pushupPose(70))
		res := a.Analyze(pushupPose(150))
		assert.Equal(t, 0, res.RepCount)
	})

	t.Run("staying up counts nothing", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		for i := 0; i < 10; i++ {
			res := a.Analyze(pushupPose(150))
			assert.Equal(t, 0, res.RepCount)
		}
	})

	t.Run("two full reps", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		for _, deg := range []float64{150, 70, 150, 70, 150} {
			a.Analyze(pushupPose(deg))
		}
		assert.Equal(t, 2, a.Snapshot().RepCount)
	})

	t.Run("squat reps count on the knee angle", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(Squat())
		for _, deg := range []float64{170, 90, 170} {
			a.Analyze(squatPose(deg))
		}
		assert.Equal(t, 1, a.Snapshot().RepCount)
	})
}

func TestAnalyzerAbsentLandmarks(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(PushUp())
	a.Analyze(pushupPose(150))
	a.Analyze(pushupPose(70))

	// A frame with no detected pose must not advance anything.
	res := a.Analyze(nil)
	assert.Equal(t, 0, res.RepCount)
	assert.Equal(t, StateDown, res.State)
	assert.Empty(t, res.Angles)
	assert.Empty(t, res.Feedback)
	assert.Equal(t, 2, a.FrameCount())

	// The DOWN -> UP edge still completes after the gap.
	res = a.Analyze(pushupPose(150))
	assert.Equal(t, 1, res.RepCount)
}

func TestAnalyzerDegenerateAngles(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(PushUp())

	// All landmarks coincident: every angle is degenerate, so the frame
	// carries no angles, classifies UP, and fires no rules.
	var lms pose.Landmarks
	res := a.Analyze(&lms)
	assert.Equal(t, StateUp, res.State)
	assert.Empty(t, res.Angles)
	assert.Empty(t, res.Feedback)
	assert.Equal(t, 1, a.FrameCount())
}

func TestAnalyzerFeedback(t *testing.T) {
	t.Parallel()

	t.Run("deep rep draws no depth warning", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		a.Analyze(pushupPose(150))
		res := a.Analyze(pushupPose(70))
		for _, fb := range res.Feedback {
			assert.NotContains(t, fb.Message, "Go deeper")
		}
	})

	t.Run("shallow rise out of down warns", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		a.Analyze(pushupPose(150))
		a.Analyze(pushupPose(70))
		res := a.Analyze(pushupPose(110))

		require.Len(t, res.Feedback, 1)
		assert.Equal(t, "Go deeper - elbows should bend past 90 degrees", res.Feedback[0].Message)
		assert.Equal(t, SeverityWarning, res.Feedback[0].Severity)
		assert.False(t, res.Feedback[0].IsCorrect)
	})

	t.Run("depth warning needs the down state", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		res := a.Analyze(pushupPose(110))
		assert.Empty(t, res.Feedback)
	})

	t.Run("hip sag is an error at any state", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		res := a.Analyze(saggingPushupPose(150))

		require.Len(t, res.Feedback, 1)
		assert.Equal(t, "Keep body straight - avoid hip sagging", res.Feedback[0].Message)
		assert.Equal(t, SeverityError, res.Feedback[0].Severity)
	})

	t.Run("angles are reported per frame", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		res := a.Analyze(pushupPose(70))
		require.Contains(t, res.Angles, "elbow")
		assert.InDelta(t, 70, res.Angles["elbow"], 0.5)
	})
}

func TestAnalyzerVisibilityGate(t *testing.T) {
	t.Parallel()

	shallow := func() *pose.Landmarks {
		lms := pushupPose(110)
		lms[pose.RightWrist].Visibility = 0.1
		return lms
	}

	t.Run("gate suppresses low-confidence rules", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp(), WithVisibilityGate(0.5))
		a.Analyze(pushupPose(150))
		a.Analyze(pushupPose(70))
		res := a.Analyze(shallow())
		assert.Empty(t, res.Feedback)
	})

	t.Run("without the gate the rule fires", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(PushUp())
		a.Analyze(pushupPose(150))
		a.Analyze(pushupPose(70))
		res := a.Analyze(shallow())
		require.Len(t, res.Feedback, 1)
	})
}

func TestAnalyzerReset(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(PushUp())
	for _, deg := range []float64{150, 70, 150} {
		a.Analyze(pushupPose(deg))
	}
	require.Equal(t, 1, a.Snapshot().RepCount)

	a.Reset()
	assert.Equal(t, 0, a.Snapshot().RepCount)
	assert.Equal(t, 0, a.FrameCount())

	// History is gone: the next DOWN -> UP edge is a first transition again.
	a.Analyze(pushupPose(70))
	res := a.Analyze(pushupPose(150))
	assert.Equal(t, 0, res.RepCount)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	t.Run("accepted spellings", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"pushup", "PushUp", "PUSH-UPS", "squat", "Squats"} {
			a, err := New(name)
			require.NoError(t, err, name)
			require.NotNil(t, a)
		}
	})

	t.Run("unknown exercise", func(t *testing.T) {
		t.Parallel()
		_, err := New("deadlift")
		assert.ErrorIs(t, err, ErrUnknownExercise)
	})

	t.Run("sessions get distinct ids", func(t *testing.T) {
		t.Parallel()
		a, err := New("pushup")
		require.NoError(t, err)
		b, err := New("pushup")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID(), b.ID())
	})
}
