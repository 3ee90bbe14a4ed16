package exercise

import (
	"sync"

	"github.com/google/uuid"

	"github.com/fitvision/formcoach/internal/pose"
)

// Result is the outcome of analyzing one frame.
type Result struct {
	RepCount int                `json:"rep_count"`
	State    State              `json:"state"`
	Angles   map[string]float64 `json:"angles"`
	Feedback []Feedback         `json:"feedback"`
}

// Analyzer is one exercise-tracking session: it owns the cumulative rep
// count, the current state, and the full per-frame histories. It is safe for
// one producer to call Analyze while other goroutines call Snapshot, Reset,
// or Summary.
type Analyzer struct {
	mu      sync.Mutex
	id      uuid.UUID
	profile Profile

	repCount     int
	state        State
	stateHist    []State
	angleHist    []map[string]float64
	feedbackHist [][]Feedback

	visGate      bool
	visThreshold float64
}

// Option configures an Analyzer at creation.
type Option func(*Analyzer)

// WithVisibilityGate suppresses feedback rules whose source joints fall
// below the given visibility confidence. Off by default: the raw rule set
// fires on coordinates regardless of detection confidence.
func WithVisibilityGate(threshold float64) Option {
	return func(a *Analyzer) {
		a.visGate = true
		a.visThreshold = threshold
	}
}

// NewAnalyzer creates a session for the given exercise profile, starting in
// the UP state with zero reps.
func NewAnalyzer(profile Profile, opts ...Option) *Analyzer {
	a := &Analyzer{
		id:           uuid.New(),
		profile:      profile,
		state:        StateUp,
		visThreshold: pose.DefaultVisibilityThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the session identifier.
func (a *Analyzer) ID() uuid.UUID { return a.id }

// Exercise returns the profile name of this session.
func (a *Analyzer) Exercise() string { return a.profile.Name }

// Analyze consumes one frame's landmark set, advances the state machine,
// and returns the per-frame result.
//
// An absent landmark set leaves the session untouched: the last rep count
// and state are reported with empty angles and feedback, and nothing is
// appended to history.
func (a *Analyzer) Analyze(lms *pose.Landmarks) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if lms == nil {
		return Result{
			RepCount: a.repCount,
			State:    a.state,
			Angles:   map[string]float64{},
			Feedback: []Feedback{},
		}
	}

	angles := a.profile.computeAngles(lms)
	newState := a.profile.classify(angles)

	// A rep completes exactly on a DOWN -> UP edge. The history length
	// check means the first recorded transition can never count.
	if len(a.stateHist) >= 2 && a.stateHist[len(a.stateHist)-1] == StateDown && newState == StateUp {
		a.repCount++
	}

	// State-gated rules read the state the session was in when the frame
	// arrived. Depth checks depend on this: rising out of DOWN with a
	// shallow bend is exactly the frame that should warn.
	feedback := a.evaluateRules(angles, a.state, lms)

	a.state = newState
	a.stateHist = append(a.stateHist, newState)
	a.angleHist = append(a.angleHist, angles)
	a.feedbackHist = append(a.feedbackHist, feedback)

	return Result{
		RepCount: a.repCount,
		State:    a.state,
		Angles:   copyAngles(angles),
		Feedback: append([]Feedback(nil), feedback...),
	}
}

// evaluateRules runs the profile's feedback rules against the frame's angle
// set. Rep counting and feedback read the same angles but are independent.
func (a *Analyzer) evaluateRules(angles map[string]float64, state State, lms *pose.Landmarks) []Feedback {
	feedback := []Feedback{}
	for _, rule := range a.profile.Rules {
		value, ok := angles[rule.Angle]
		if !ok {
			continue
		}
		if rule.State != "" && rule.State != state {
			continue
		}
		if a.visGate && !a.ruleJointsVisible(rule, lms) {
			continue
		}
		fired := value > rule.Threshold
		if rule.Below {
			fired = value < rule.Threshold
		}
		if fired {
			feedback = append(feedback, Feedback{
				IsCorrect: false,
				Message:   rule.Message,
				Severity:  rule.Severity,
			})
		}
	}
	return feedback
}

func (a *Analyzer) ruleJointsVisible(rule Rule, lms *pose.Landmarks) bool {
	joints, ok := a.profile.angleJoints(rule.Angle)
	if !ok {
		return true
	}
	for _, j := range joints {
		if !pose.Visible(lms, j, a.visThreshold) {
			return false
		}
	}
	return true
}

// Reset zeroes the rep count and empties all histories. A subsequent
// Analyze behaves as if no prior frames existed.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.repCount = 0
	a.state = StateUp
	a.stateHist = nil
	a.angleHist = nil
	a.feedbackHist = nil
}

// Snapshot returns the current session view without consuming a frame.
func (a *Analyzer) Snapshot() Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := Result{
		RepCount: a.repCount,
		State:    a.state,
		Angles:   map[string]float64{},
		Feedback: []Feedback{},
	}
	if n := len(a.angleHist); n > 0 {
		res.Angles = copyAngles(a.angleHist[n-1])
	}
	if n := len(a.feedbackHist); n > 0 {
		res.Feedback = append(res.Feedback, a.feedbackHist[n-1]...)
	}
	return res
}

// FrameCount returns how many frames with a detected pose this session has
// analyzed.
func (a *Analyzer) FrameCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.stateHist)
}

func copyAngles(angles map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(angles))
	for k, v := range angles {
		out[k] = v
	}
	return out
}
