package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAngle(t *testing.T) {
	t.Parallel()

	t.Run("right angle", func(t *testing.T) {
		t.Parallel()
		got, err := Angle(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 1, Y: 1})
		require.NoError(t, err)
		assert.InDelta(t, 90, got, 0.5)
	})

	t.Run("straight line", func(t *testing.T) {
		t.Parallel()
		got, err := Angle(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 2, Y: 0})
		require.NoError(t, err)
		assert.InDelta(t, 180, got, 1e-9)
	})

	t.Run("folded back", func(t *testing.T) {
		t.Parallel()
		got, err := Angle(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 0, Y: 0})
		require.NoError(t, err)
		assert.InDelta(t, 0, got, 1e-9)
	})

	t.Run("symmetric in outer points", func(t *testing.T) {
		t.Parallel()
		a := Point{X: 0.1, Y: 0.7}
		b := Point{X: 0.4, Y: 0.3}
		c := Point{X: 0.9, Y: 0.6}
		fwd, err := Angle(a, b, c)
		require.NoError(t, err)
		rev, err := Angle(c, b, a)
		require.NoError(t, err)
		assert.InDelta(t, fwd, rev, 1e-12)
	})

	t.Run("always within 0 to 180", func(t *testing.T) {
		t.Parallel()
		points := []Point{
			{X: 0, Y: 1}, {X: -3, Y: 2}, {X: 5, Y: -7},
			{X: 0.001, Y: 0.002}, {X: 100, Y: 100},
		}
		for _, a := range points {
			for _, c := range points {
				if a == c {
					continue
				}
				got, err := Angle(a, Point{}, c)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 180.0)
			}
		}
	})

	t.Run("depth is ignored", func(t *testing.T) {
		t.Parallel()
		flat, err := Angle(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 1, Y: 1})
		require.NoError(t, err)
		deep, err := Angle(Point{X: 0, Y: 0, Z: 5}, Point{X: 1, Y: 0, Z: -2}, Point{X: 1, Y: 1, Z: 9})
		require.NoError(t, err)
		assert.Equal(t, flat, deep)
	})

	t.Run("coincident vertex is degenerate", func(t *testing.T) {
		t.Parallel()
		b := Point{X: 0.5, Y: 0.5}
		_, err := Angle(b, b, Point{X: 1, Y: 1})
		assert.ErrorIs(t, err, ErrDegenerate)

		_, err = Angle(Point{X: 1, Y: 1}, b, b)
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestCoordinates(t *testing.T) {
	t.Parallel()

	t.Run("absent set", func(t *testing.T) {
		t.Parallel()
		_, ok := Coordinates(nil, RightElbow)
		assert.False(t, ok)
	})

	t.Run("out of range joint", func(t *testing.T) {
		t.Parallel()
		var lms Landmarks
		_, ok := Coordinates(&lms, Joint(NumLandmarks))
		assert.False(t, ok)
		_, ok = Coordinates(&lms, Joint(-1))
		assert.False(t, ok)
	})

	t.Run("present joint", func(t *testing.T) {
		t.Parallel()
		var lms Landmarks
		lms[RightWrist] = Landmark{X: 0.3, Y: 0.6, Z: -0.1, Visibility: 0.9}
		p, ok := Coordinates(&lms, RightWrist)
		require.True(t, ok)
		assert.Equal(t, Point{X: 0.3, Y: 0.6, Z: -0.1}, p)
	})
}

func TestVisible(t *testing.T) {
	t.Parallel()

	var lms Landmarks
	lms[Nose] = Landmark{Visibility: 0.8}
	lms[LeftHip] = Landmark{Visibility: 0.2}

	assert.True(t, Visible(&lms, Nose, DefaultVisibilityThreshold))
	assert.False(t, Visible(&lms, LeftHip, DefaultVisibilityThreshold))
	assert.False(t, Visible(nil, Nose, DefaultVisibilityThreshold))
}
