// Package exercise implements the per-exercise repetition state machine and
// form feedback rules driving rep counting for a tracked workout session.
package exercise

// State is the discrete body position classified from the current frame.
type State string

const (
	StateUp   State = "up"
	StateDown State = "down"
	// StateTransition is part of the state vocabulary carried in API
	// payloads but is never assigned by the single-threshold classifier.
	StateTransition State = "transition"
)

// Severity grades a feedback item.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Feedback is one structured form cue for the current frame.
type Feedback struct {
	IsCorrect bool     `json:"is_correct"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}
