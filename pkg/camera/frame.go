package camera

import (
	"context"
	"errors"
	"image"

	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
)

// ErrEndOfStream is returned by Next when a finite source is exhausted.
var ErrEndOfStream = errors.New("camera: end of stream")

// ErrFrameClosed is returned by frames used after Close.
var ErrFrameClosed = errors.New("camera: frame closed")

// Frame is one upright capture frame. It holds native resources in some
// implementations and must be closed exactly once by its consumer.
type Frame interface {
	// Seq is the capture sequence number, starting at 1.
	Seq() uint64

	// Size is the upright frame size after rotation.
	Size() image.Point

	// Input resizes the frame into an RGB model input of width x height.
	Input(width, height int) (inference.Input, error)

	// Close releases the frame.
	Close() error
}

// Source delivers frames serially. Next blocks until a frame is available.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}
