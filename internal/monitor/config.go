package monitor

import "time"

// Config collects the live server's tunables.
type Config struct {
	Addr           string        // HTTP listen address
	CameraIndex    int           // capture device index
	Exercise       string        // default exercise for new sessions
	StatusInterval time.Duration // SSE status push cadence
	MJPEGInterval  time.Duration // stream frame cadence
	PollInterval   time.Duration // capture loop cadence
	RecordingsDir  string        // where recordings land
	RecordFPS      float64       // recording frame rate

	VisibilityGate      bool    // suppress feedback on low-confidence joints
	VisibilityThreshold float64 // confidence floor when gating
}

// DefaultConfig returns the standard live setup.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		CameraIndex:    0,
		Exercise:       "pushup",
		StatusInterval: 1 * time.Second,
		MJPEGInterval:  100 * time.Millisecond,
		PollInterval:   33 * time.Millisecond,
		RecordingsDir:  "recordings",
		RecordFPS:      30,
	}
}
