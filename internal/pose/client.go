package pose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fitvision/formcoach/pkg/types"
)

// HTTPDetector calls an external pose-landmark service over HTTP. The
// service accepts one JPEG image per POST to /detect and answers with the
// landmark set, or a null landmark list when no pose is found.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
	quality int
}

// detectResponse is the wire shape of the landmark service response.
type detectResponse struct {
	// Landmarks is either null (no pose) or exactly 33 [x, y, z, visibility]
	// entries in MediaPipe index order.
	Landmarks [][]float64 `json:"landmarks"`
}

// NewHTTPDetector creates a detector client for the service at baseURL.
func NewHTTPDetector(baseURL string, timeout time.Duration) *HTTPDetector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		quality: 85,
	}
}

// Detect sends the frame to the landmark service and decodes the result.
// A "no pose found" response yields (nil, nil).
func (d *HTTPDetector) Detect(frame *types.Frame) (*Landmarks, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image(), &jpeg.Options{Quality: d.quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, d.baseURL+"/detect", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}

	if payload.Landmarks == nil {
		return nil, nil // no pose in this frame
	}
	if len(payload.Landmarks) != NumLandmarks {
		return nil, fmt.Errorf("detector returned %d landmarks, want %d", len(payload.Landmarks), NumLandmarks)
	}

	var lms Landmarks
	for i, entry := range payload.Landmarks {
		if len(entry) < 4 {
			return nil, fmt.Errorf("landmark %d has %d values, want 4", i, len(entry))
		}
		lms[i] = Landmark{X: entry[0], Y: entry[1], Z: entry[2], Visibility: entry[3]}
	}
	return &lms, nil
}

// Close implements Detector. The HTTP client holds no per-detector state.
func (d *HTTPDetector) Close() error { return nil }
