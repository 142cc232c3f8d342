// Package inference defines the boundary to the object-detection model.
//
// The model is a black box: it takes a fixed-size RGB image normalized to
// [0,1] and returns a raw detection tensor. Engines are not retried; a failed
// call surfaces to the caller, which drops the frame.
//
// Example usage:
//
//	engine, _ := onnx.New(onnx.DefaultConfig())
//	defer engine.Close()
//
//	tensor, err := engine.Infer(ctx, input)
package inference

import (
	"context"
	"fmt"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Engine runs the detection model.
type Engine interface {
	// Infer runs one forward pass.
	Infer(ctx context.Context, in Input) (detection.Tensor, error)

	// Name identifies the engine in logs and errors.
	Name() string

	// Close releases model resources.
	Close() error
}

// Input is an interleaved RGB float32 image (HWC) normalized to [0,1].
type Input struct {
	Width  int
	Height int
	Pixels []float32 // len == Width*Height*3, R,G,B per pixel
}

// NewInput allocates a zeroed input of the given size.
func NewInput(width, height int) Input {
	return Input{
		Width:  width,
		Height: height,
		Pixels: make([]float32, width*height*3),
	}
}

// Validate checks the buffer matches the declared size.
func (in Input) Validate() error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadInput, in.Width, in.Height)
	}
	if want := in.Width * in.Height * 3; len(in.Pixels) != want {
		return fmt.Errorf("%w: %d values for %dx%dx3", ErrBadInput, len(in.Pixels), in.Width, in.Height)
	}
	return nil
}

// RGB returns the normalized channels of pixel (x, y).
func (in Input) RGB(x, y int) (r, g, b float32) {
	i := (y*in.Width + x) * 3
	return in.Pixels[i], in.Pixels[i+1], in.Pixels[i+2]
}

// SetRGB stores 8-bit channels at (x, y), scaling them to [0,1].
func (in Input) SetRGB(x, y int, r, g, b uint8) {
	i := (y*in.Width + x) * 3
	in.Pixels[i] = float32(r) / 255
	in.Pixels[i+1] = float32(g) / 255
	in.Pixels[i+2] = float32(b) / 255
}
