package monitor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"sync"

	"github.com/fitvision/formcoach/internal/logger"
)

// streamMJPEG serves a multipart MJPEG stream fed by the broadcaster. The
// handler returns when the client disconnects or the channel closes.
func streamMJPEG(w http.ResponseWriter, r *http.Request, b *FrameBroadcaster) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "close")

	ch := b.AddClient()
	defer b.RemoveClient(ch)

	// First part renders immediately so the client shows something before
	// the session produces a frame.
	if err := writeMJPEGPart(w, blankJPEG()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case jpg, open := <-ch:
			if !open {
				return
			}
			if err := writeMJPEGPart(w, jpg); err != nil {
				logger.Debug("Stream", "client write: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeMJPEGPart(w http.ResponseWriter, jpg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpg)); err != nil {
		return err
	}
	if _, err := w.Write(jpg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}

// writeSSE emits one server-sent event frame.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, payload []byte) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

var (
	blankOnce sync.Once
	blankData []byte
)

// blankJPEG returns a cached 640x480 color-bar placeholder frame.
func blankJPEG() []byte {
	blankOnce.Do(func() {
		bars := []color.RGBA{
			{192, 192, 192, 255},
			{192, 192, 0, 255},
			{0, 192, 192, 255},
			{0, 192, 0, 255},
			{192, 0, 192, 255},
			{192, 0, 0, 255},
			{0, 0, 192, 255},
		}
		img := image.NewRGBA(image.Rect(0, 0, 640, 480))
		for x := 0; x < 640; x++ {
			c := bars[x*len(bars)/640]
			for y := 0; y < 480; y++ {
				img.SetRGBA(x, y, c)
			}
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
			logger.Error("Stream", "encode placeholder: %v", err)
			return
		}
		blankData = buf.Bytes()
	})
	return blankData
}
