// Package capture runs the live camera loop: a producer goroutine reads
// frames from a camera device, pushes them through the analysis pipeline,
// and publishes the latest result for readers to poll.
package capture

import (
	"errors"

	"github.com/fitvision/formcoach/pkg/types"
)

var (
	// ErrAlreadyRunning is returned by Start when a loop is active.
	ErrAlreadyRunning = errors.New("capture loop already running")
	// ErrOpenDevice wraps camera open failures.
	ErrOpenDevice = errors.New("failed to open camera device")
)

// Camera is a frame source for the live loop. Read blocks for the next
// frame and reports false when no frame could be delivered. Close releases
// the underlying device and must be safe to call once after Read stops.
type Camera interface {
	Read() (*types.Frame, bool)
	Close() error
}

// Opener creates a camera on loop start. Keeping acquisition behind a
// constructor lets a stopped loop restart on a fresh device handle.
type Opener func() (Camera, error)
