package capture

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/fitvision/formcoach/pkg/types"
)

const (
	deviceWidth  = 640
	deviceHeight = 480
	deviceFPS    = 30
)

// Device is a Camera backed by a local V4L2/OpenCV capture device.
type Device struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
	n   uint64
}

// OpenDevice opens the camera at the given index and configures the
// standard capture geometry. The device is held until Close.
func OpenDevice(index int) (*Device, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", ErrOpenDevice, index, err)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, deviceWidth)
	cap.Set(gocv.VideoCaptureFrameHeight, deviceHeight)
	cap.Set(gocv.VideoCaptureFPS, deviceFPS)
	return &Device{cap: cap, mat: gocv.NewMat()}, nil
}

// Read grabs the next frame. A false return means the device delivered
// nothing this cycle; the caller decides whether to retry or give up.
func (d *Device) Read() (*types.Frame, bool) {
	if ok := d.cap.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, false
	}
	d.n++
	return matToFrame(&d.mat, d.n), true
}

// Close releases the scratch mat and the device handle.
func (d *Device) Close() error {
	d.mat.Close()
	return d.cap.Close()
}

// matToFrame copies a BGR mat into an owned Frame. gocv mats reuse their
// backing store across reads, so the pixel data must be detached here.
func matToFrame(mat *gocv.Mat, number uint64) *types.Frame {
	buf := mat.ToBytes()
	return &types.Frame{
		Pixels:    buf,
		Width:     mat.Cols(),
		Height:    mat.Rows(),
		Number:    number,
		Timestamp: time.Now(),
	}
}
