// Package overlay annotates frames with the detected skeleton and the
// session readout: rep count, state, measured angles, and form feedback.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/fitvision/formcoach/internal/exercise"
	"github.com/fitvision/formcoach/internal/pose"
	"github.com/fitvision/formcoach/pkg/types"
)

const jpegQuality = 75

var (
	colorSkeleton = color.RGBA{0, 255, 0, 255}
	colorJoint    = color.RGBA{255, 255, 0, 255}
	colorText     = color.RGBA{255, 255, 255, 255}
	colorInfo     = color.RGBA{0, 255, 255, 255}
	colorWarning  = color.RGBA{255, 165, 0, 255}
	colorError    = color.RGBA{255, 0, 0, 255}
)

// skeleton is the subset of landmark connections worth rendering for
// exercise form: arms, torso, and legs.
var skeleton = [][2]pose.Joint{
	{pose.LeftShoulder, pose.RightShoulder},
	{pose.LeftShoulder, pose.LeftElbow},
	{pose.LeftElbow, pose.LeftWrist},
	{pose.RightShoulder, pose.RightElbow},
	{pose.RightElbow, pose.RightWrist},
	{pose.LeftShoulder, pose.LeftHip},
	{pose.RightShoulder, pose.RightHip},
	{pose.LeftHip, pose.RightHip},
	{pose.LeftHip, pose.LeftKnee},
	{pose.LeftKnee, pose.LeftAnkle},
	{pose.LeftAnkle, pose.LeftFootIndex},
	{pose.RightHip, pose.RightKnee},
	{pose.RightKnee, pose.RightAnkle},
	{pose.RightAnkle, pose.RightFootIndex},
}

// Draw annotates the frame in place. A nil landmark set still renders the
// session readout so the stream shows state while no pose is detected.
func Draw(frame *types.Frame, lms *pose.Landmarks, res exercise.Result) {
	img := frame.Image()

	if lms != nil {
		drawSkeleton(img, lms, frame.Width, frame.Height)
	}

	y := 20
	drawText(img, 10, y, colorText, fmt.Sprintf("Reps: %d", res.RepCount))
	y += 18
	drawText(img, 10, y, colorText, fmt.Sprintf("State: %s", res.State))
	for name, value := range res.Angles {
		y += 18
		drawText(img, 10, y, colorInfo, fmt.Sprintf("%s: %.0f", name, value))
	}
	for _, fb := range res.Feedback {
		y += 18
		drawText(img, 10, y, severityColor(fb.Severity), fb.Message)
	}
}

// EncodeJPEG renders the annotated frame as a JPEG for streaming.
func EncodeJPEG(frame *types.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", frame.Number, err)
	}
	return buf.Bytes(), nil
}

func severityColor(s exercise.Severity) color.RGBA {
	switch s {
	case exercise.SeverityError:
		return colorError
	case exercise.SeverityWarning:
		return colorWarning
	default:
		return colorInfo
	}
}

func drawSkeleton(img *types.FrameImage, lms *pose.Landmarks, w, h int) {
	for _, conn := range skeleton {
		a, okA := pose.Coordinates(lms, conn[0])
		b, okB := pose.Coordinates(lms, conn[1])
		if !okA || !okB {
			continue
		}
		drawLine(img,
			int(a.X*float64(w)), int(a.Y*float64(h)),
			int(b.X*float64(w)), int(b.Y*float64(h)),
			colorSkeleton)
	}
	for j := pose.Joint(0); j < pose.NumLandmarks; j++ {
		p, ok := pose.Coordinates(lms, j)
		if !ok {
			continue
		}
		drawDot(img, int(p.X*float64(w)), int(p.Y*float64(h)), colorJoint)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawLine rasterizes a segment with the integer Bresenham walk.
func drawLine(img *types.FrameImage, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setClipped(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawDot(img *types.FrameImage, x, y int, c color.RGBA) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			setClipped(img, x+dx, y+dy, c)
		}
	}
}

func setClipped(img *types.FrameImage, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	img.Set(x, y, c)
}

func drawText(img *types.FrameImage, x, y int, c color.RGBA, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
