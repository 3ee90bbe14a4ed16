package pose

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDegenerate is returned by Angle when either ray has zero length and the
// angle at the vertex is undefined. Callers treat it as an absent angle.
var ErrDegenerate = errors.New("pose: degenerate angle: zero-length ray")

// Angle returns the angle at vertex b between rays b->a and b->c, in degrees
// within [0,180]. Only the x,y image-plane coordinates participate; depth is
// ignored, matching the normalized 2D landmark space.
func Angle(a, b, c Point) (float64, error) {
	ba := []float64{a.X - b.X, a.Y - b.Y}
	bc := []float64{c.X - b.X, c.Y - b.Y}

	normBA := floats.Norm(ba, 2)
	normBC := floats.Norm(bc, 2)
	if normBA == 0 || normBC == 0 {
		return 0, ErrDegenerate
	}

	cos := floats.Dot(ba, bc) / (normBA * normBC)
	// Clamp before acos to absorb floating-point error at the boundary.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, nil
}
