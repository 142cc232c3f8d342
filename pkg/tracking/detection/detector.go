// Package detection decodes raw object-detection model output into bounding
// boxes and removes overlapping duplicates.
//
// All geometry is expressed in model input space (pixels, origin top-left).
// Mapping to a display surface happens later, at render time.
package detection

// Detection is a single bounding box observed in one frame.
type Detection struct {
	ID         int     `json:"id"`
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`

	// Approaching is set by the proximity tracker and only valid for the
	// frame the detection was emitted in.
	Approaching bool `json:"approaching"`
}

// Area returns the area of the bounding box in square pixels.
func (d Detection) Area() float64 {
	return d.Width * d.Height
}

// Bounds returns the box corners as left, top, right, bottom.
func (d Detection) Bounds() (left, top, right, bottom float64) {
	hw, hh := d.Width/2, d.Height/2
	return d.CenterX - hw, d.CenterY - hh, d.CenterX + hw, d.CenterY + hh
}

// IoU returns the intersection-over-union of two boxes.
// Zero-area unions yield 0.
func IoU(a, b Detection) float64 {
	al, at, ar, ab := a.Bounds()
	bl, bt, br, bb := b.Bounds()

	iw := min(ar, br) - max(al, bl)
	ih := min(ab, bb) - max(at, bt)
	inter := max(0, iw) * max(0, ih)

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
