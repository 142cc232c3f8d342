// Package overlay draws detections over capture frames and encodes the
// result as JPEG for the dashboard.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/pipeline"
)

var (
	boxColor         = color.RGBA{0, 255, 0, 255}
	approachingColor = color.RGBA{255, 0, 0, 255}
	textColor        = color.RGBA{255, 255, 255, 255}
)

// Config holds renderer configuration.
type Config struct {
	ViewWidth  int  // Output width; 0 uses the frame width
	ViewHeight int  // Output height; 0 uses the frame height
	Quality    int  // JPEG quality 1-100
	Labels     bool // Draw class labels above boxes
}

// DefaultConfig returns frame-sized output at quality 80.
func DefaultConfig() Config {
	return Config{Quality: 80}
}

// Renderer is a pipeline.Sink that produces annotated JPEG frames.
type Renderer struct {
	config  Config
	onFrame func(jpeg []byte, res pipeline.Result)
	logger  *slog.Logger
}

// New creates a renderer that hands each encoded frame to onFrame.
func New(cfg Config, onFrame func(jpeg []byte, res pipeline.Result)) *Renderer {
	return &Renderer{
		config:  cfg,
		onFrame: onFrame,
		logger:  slog.Default().With("component", "overlay.renderer"),
	}
}

// Consume implements pipeline.Sink.
func (r *Renderer) Consume(frame camera.Frame, res pipeline.Result) {
	if r.onFrame == nil {
		return
	}

	src, err := toMat(frame)
	if err != nil {
		r.logger.Debug("frame not renderable", "frame_seq", frame.Seq(), "error", err)
		return
	}
	defer src.Close()

	out, err := r.Render(src, res)
	if err != nil {
		r.logger.Warn("render failed", "frame_seq", frame.Seq(), "error", err)
		return
	}
	defer out.Close()

	jpeg, err := encodeJPEG(out, r.config.Quality)
	if err != nil {
		r.logger.Warn("jpeg encode failed", "frame_seq", frame.Seq(), "error", err)
		return
	}
	r.onFrame(jpeg, res)
}

// Render returns a new Mat: src as the model saw it, fitted into the view
// without stretching, with every detection boxed. The caller closes it.
func (r *Renderer) Render(src gocv.Mat, res pipeline.Result) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("overlay: empty frame")
	}
	if res.ModelWidth <= 0 || res.ModelHeight <= 0 {
		return gocv.NewMat(), fmt.Errorf("overlay: no model size on result")
	}

	viewW, viewH := r.config.ViewWidth, r.config.ViewHeight
	if viewW <= 0 || viewH <= 0 {
		viewW, viewH = src.Cols(), src.Rows()
	}

	vp := pipeline.Fit(float64(res.ModelWidth), float64(res.ModelHeight), float64(viewW), float64(viewH))
	content := vp.Content(float64(res.ModelWidth), float64(res.ModelHeight)).Intersect(image.Rect(0, 0, viewW, viewH))
	if content.Empty() {
		return gocv.NewMat(), fmt.Errorf("overlay: view %dx%d too small", viewW, viewH)
	}

	canvas := gocv.NewMatWithSize(viewH, viewW, gocv.MatTypeCV8UC3)
	canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))

	// Detections live in model space, so draw the frame as the model saw it.
	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(src, &scaled, content.Size(), 0, 0, gocv.InterpolationLinear)

	region := canvas.Region(content)
	scaled.CopyTo(&region)
	region.Close()

	for _, d := range res.Detections {
		rect := vp.Rect(d)
		c, thickness := boxColor, 2
		if d.Approaching {
			c, thickness = approachingColor, 4
		}
		gocv.Rectangle(&canvas, rect, c, thickness)

		if r.config.Labels {
			label := fmt.Sprintf("%s %.0f%%", d.Label, d.Confidence*100)
			gocv.PutText(&canvas, label, image.Pt(rect.Min.X, rect.Min.Y-6), gocv.FontHersheySimplex, 0.5, textColor, 1)
		}
	}

	return canvas, nil
}

// toMat returns a BGR copy of the frame.
func toMat(frame camera.Frame) (gocv.Mat, error) {
	switch f := frame.(type) {
	case interface{ Mat() gocv.Mat }:
		return f.Mat().Clone(), nil
	case interface{ Image() *image.NRGBA }:
		return gocv.ImageToMatRGB(f.Image())
	default:
		return gocv.NewMat(), fmt.Errorf("overlay: unsupported frame type %T", frame)
	}
}

func encodeJPEG(mat gocv.Mat, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = 80
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
