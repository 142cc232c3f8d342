// Package camera is the capture source boundary.
//
// A Source delivers Frames one at a time. Every Frame must be closed by the
// consumer on every path; a Frame is already rotated to upright orientation.
package camera

import "fmt"

// Facing is the physical direction of the camera.
type Facing string

const (
	FacingBack  Facing = "back"
	FacingFront Facing = "front"
)

// Config holds capture configuration.
type Config struct {
	Device   string `json:"device" yaml:"device"`     // Device index ("0") or file/stream URL
	Facing   Facing `json:"facing" yaml:"facing"`     // Front cameras are mirrored by the decoder
	Rotation int    `json:"rotation" yaml:"rotation"` // Clockwise degrees: 0, 90, 180, 270

	Width   int `json:"width" yaml:"width"`     // Requested capture width
	Height  int `json:"height" yaml:"height"`   // Requested capture height
	FPS     int `json:"fps" yaml:"fps"`         // Requested frame rate
	Quality int `json:"quality" yaml:"quality"` // JPEG quality for streamed frames, 1-100
}

// Capture limits.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 3840
	MaxHeight = 2160
	MaxFPS    = 120
)

// DefaultConfig returns the back camera at 720p.
func DefaultConfig() Config {
	return Config{
		Device:   "0",
		Facing:   FacingBack,
		Rotation: 0,
		Width:    1280,
		Height:   720,
		FPS:      30,
		Quality:  80,
	}
}

// Mirrored reports whether the feed is laterally flipped.
func (c Config) Mirrored() bool {
	return c.Facing == FacingFront
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Device == "" {
		errs = append(errs, "device must be set")
	}
	if c.Facing != FacingBack && c.Facing != FacingFront {
		errs = append(errs, "facing must be front or back")
	}
	if !ValidRotation(c.Rotation) {
		errs = append(errs, "rotation must be 0, 90, 180, or 270")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		errs = append(errs, fmt.Sprintf("fps must be between 1 and %d", MaxFPS))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, "quality must be between 1 and 100")
	}

	return errs
}

// ValidRotation reports whether deg is a supported rotation.
func ValidRotation(deg int) bool {
	switch deg {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// RotatedSize returns the frame size after rotating w x h by deg.
func RotatedSize(w, h, deg int) (int, int) {
	if deg == 90 || deg == 270 {
		return h, w
	}
	return w, h
}
