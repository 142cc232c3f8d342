package pipeline

import (
	"image"
	"math"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Viewport maps model-space coordinates onto a display surface.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit scales an imageW x imageH space uniformly into viewW x viewH and
// centers it on the other axis. The image is never stretched.
func Fit(imageW, imageH, viewW, viewH float64) Viewport {
	if imageW <= 0 || imageH <= 0 || viewW <= 0 || viewH <= 0 {
		return Viewport{}
	}
	scale := math.Min(viewW/imageW, viewH/imageH)
	return Viewport{
		Scale:   scale,
		OffsetX: (viewW - imageW*scale) / 2,
		OffsetY: (viewH - imageH*scale) / 2,
	}
}

// Point maps one model-space point.
func (v Viewport) Point(x, y float64) (float64, float64) {
	return x*v.Scale + v.OffsetX, y*v.Scale + v.OffsetY
}

// Map returns the display-space edges of d.
func (v Viewport) Map(d detection.Detection) (left, top, right, bottom float64) {
	l, t, r, b := d.Bounds()
	left, top = v.Point(l, t)
	right, bottom = v.Point(r, b)
	return left, top, right, bottom
}

// Rect returns the display-space box of d rounded to whole pixels.
func (v Viewport) Rect(d detection.Detection) image.Rectangle {
	l, t, r, b := v.Map(d)
	return image.Rect(
		int(math.Round(l)), int(math.Round(t)),
		int(math.Round(r)), int(math.Round(b)),
	)
}

// Content is the display-space area covered by the model image.
func (v Viewport) Content(imageW, imageH float64) image.Rectangle {
	return image.Rect(
		int(math.Round(v.OffsetX)), int(math.Round(v.OffsetY)),
		int(math.Round(v.OffsetX+imageW*v.Scale)), int(math.Round(v.OffsetY+imageH*v.Scale)),
	)
}
