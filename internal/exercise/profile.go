package exercise

import "github.com/fitvision/formcoach/internal/pose"

// AngleSpec names one joint angle and the landmark triple it is measured
// from: the angle at vertex B between rays B->A and B->C.
type AngleSpec struct {
	Name    string
	A, B, C pose.Joint
}

// Rule is one form feedback rule. It fires when the named angle crosses the
// threshold in the given direction, optionally gated on the state the
// session held when the frame arrived. Rules never fire on absent angles.
type Rule struct {
	Angle     string
	Below     bool // fire when value < Threshold; otherwise when value > Threshold
	Threshold float64
	State     State // optional gate; empty means any state
	Message   string
	Severity  Severity
}

// Profile defines one exercise variant: the angles to measure, the single
// discriminating angle whose threshold separates DOWN from UP, and the form
// feedback rules.
type Profile struct {
	Name          string
	Angles        []AngleSpec
	StateAngle    string  // discriminating angle name
	DownThreshold float64 // StateAngle below this classifies DOWN
	Rules         []Rule
}

// PushUp is the push-up exercise profile. Angles are measured on the right
// side of the body, assuming the right arm is primary.
func PushUp() Profile {
	return Profile{
		Name: "pushup",
		Angles: []AngleSpec{
			{Name: "elbow", A: pose.RightShoulder, B: pose.RightElbow, C: pose.RightWrist},
			{Name: "shoulder", A: pose.RightElbow, B: pose.RightShoulder, C: pose.RightHip},
			{Name: "body_alignment", A: pose.RightShoulder, B: pose.RightHip, C: pose.RightKnee},
		},
		StateAngle:    "elbow",
		DownThreshold: 90,
		Rules: []Rule{
			{
				Angle: "elbow", Below: false, Threshold: 100, State: StateDown,
				Message:  "Go deeper - elbows should bend past 90 degrees",
				Severity: SeverityWarning,
			},
			{
				Angle: "shoulder", Below: false, Threshold: 90,
				Message:  "Keep elbows closer to body - don't flare them out",
				Severity: SeverityWarning,
			},
			{
				Angle: "body_alignment", Below: true, Threshold: 160,
				Message:  "Keep body straight - avoid hip sagging",
				Severity: SeverityError,
			},
		},
	}
}

// Squat is the squat exercise profile, measured on the right leg.
func Squat() Profile {
	return Profile{
		Name: "squat",
		Angles: []AngleSpec{
			{Name: "knee", A: pose.RightHip, B: pose.RightKnee, C: pose.RightAnkle},
			{Name: "hip", A: pose.RightShoulder, B: pose.RightHip, C: pose.RightKnee},
			{Name: "ankle", A: pose.RightKnee, B: pose.RightAnkle, C: pose.RightFootIndex},
		},
		StateAngle:    "knee",
		DownThreshold: 110,
		Rules: []Rule{
			{
				Angle: "knee", Below: false, Threshold: 120, State: StateDown,
				Message:  "Go deeper - thighs should be parallel to ground",
				Severity: SeverityWarning,
			},
			{
				Angle: "hip", Below: true, Threshold: 45,
				Message:  "Keep chest up - maintain proud posture",
				Severity: SeverityWarning,
			},
			{
				Angle: "ankle", Below: true, Threshold: 60,
				Message:  "Keep heels on the ground",
				Severity: SeverityError,
			},
		},
	}
}

// computeAngles measures every profile angle available from the landmark
// set. Angles whose landmarks are missing or degenerate are absent from the
// returned map, never NaN.
func (p Profile) computeAngles(lms *pose.Landmarks) map[string]float64 {
	angles := make(map[string]float64, len(p.Angles))
	for _, spec := range p.Angles {
		a, okA := pose.Coordinates(lms, spec.A)
		b, okB := pose.Coordinates(lms, spec.B)
		c, okC := pose.Coordinates(lms, spec.C)
		if !okA || !okB || !okC {
			continue
		}
		deg, err := pose.Angle(a, b, c)
		if err != nil {
			continue // degenerate triple, treat as absent
		}
		angles[spec.Name] = deg
	}
	return angles
}

// classify maps the discriminating angle to a state. An absent angle reads
// as fully extended (180 degrees) and therefore classifies UP.
func (p Profile) classify(angles map[string]float64) State {
	value, ok := angles[p.StateAngle]
	if !ok {
		return StateUp
	}
	if value < p.DownThreshold {
		return StateDown
	}
	return StateUp
}

// angleJoints returns the landmark triple measured for the named angle.
func (p Profile) angleJoints(name string) ([3]pose.Joint, bool) {
	for _, spec := range p.Angles {
		if spec.Name == name {
			return [3]pose.Joint{spec.A, spec.B, spec.C}, true
		}
	}
	return [3]pose.Joint{}, false
}
