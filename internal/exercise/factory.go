package exercise

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownExercise is returned by New for unsupported exercise names.
var ErrUnknownExercise = errors.New("unknown exercise type")

// New creates an analyzer session for the named exercise. Matching is
// case-insensitive; both singular and plural spellings are accepted.
// An unknown name fails fast and never yields a partial session.
func New(exerciseType string, opts ...Option) (*Analyzer, error) {
	switch strings.ToLower(exerciseType) {
	case "pushup", "push-ups":
		return NewAnalyzer(PushUp(), opts...), nil
	case "squat", "squats":
		return NewAnalyzer(Squat(), opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExercise, exerciseType)
	}
}
