// Package opencv captures frames from a device, file or stream with gocv.
package opencv

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"

	"gocv.io/x/gocv"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
)

// MatFrame is a camera.Frame backed by a BGR gocv.Mat.
type MatFrame struct {
	seq uint64
	mat gocv.Mat

	mu     sync.Mutex
	closed bool
}

// NewMatFrame takes ownership of mat and rotates it clockwise by rotation.
func NewMatFrame(seq uint64, mat gocv.Mat, rotation int) *MatFrame {
	var code gocv.RotateFlag
	switch rotation {
	case 90:
		code = gocv.Rotate90Clockwise
	case 180:
		code = gocv.Rotate180Clockwise
	case 270:
		code = gocv.Rotate90CounterClockwise
	default:
		return &MatFrame{seq: seq, mat: mat}
	}

	rotated := gocv.NewMat()
	gocv.Rotate(mat, &rotated, code)
	mat.Close()
	return &MatFrame{seq: seq, mat: rotated}
}

// Seq implements camera.Frame.
func (f *MatFrame) Seq() uint64 { return f.seq }

// Size implements camera.Frame.
func (f *MatFrame) Size() image.Point { return image.Pt(f.mat.Cols(), f.mat.Rows()) }

// Mat returns the upright BGR frame. It is only valid until Close.
func (f *MatFrame) Mat() gocv.Mat { return f.mat }

// Input implements camera.Frame.
func (f *MatFrame) Input(width, height int) (inference.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return inference.Input{}, camera.ErrFrameClosed
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(f.mat, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	pix := rgb.ToBytes()
	if len(pix) != width*height*3 {
		return inference.Input{}, fmt.Errorf("camera: unexpected frame layout, %d bytes for %dx%d", len(pix), width, height)
	}

	in := inference.NewInput(width, height)
	for i, b := range pix {
		in.Pixels[i] = float32(b) / 255
	}
	return in, nil
}

// Close implements camera.Frame.
func (f *MatFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.mat.Close()
}

// VideoSource reads frames from a gocv.VideoCapture.
type VideoSource struct {
	config camera.Config
	logger *slog.Logger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	seq     uint64
}

// Open opens the configured device. A numeric device is a camera index,
// anything else is passed to OpenCV as a file or stream URL.
func Open(cfg camera.Config) (*VideoSource, error) {
	var device any = cfg.Device
	if idx, err := strconv.Atoi(cfg.Device); err == nil {
		device = idx
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("camera: open %s: %w", cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera: device %s not opened", cfg.Device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))
	// Keep latency low: never queue more than one frame
	capture.Set(gocv.VideoCaptureBufferSize, 1)

	logger := slog.Default().With("component", "camera.opencv")
	logger.Info("capture opened",
		"device", cfg.Device,
		"width", capture.Get(gocv.VideoCaptureFrameWidth),
		"height", capture.Get(gocv.VideoCaptureFrameHeight),
		"rotation", cfg.Rotation,
		"facing", cfg.Facing)

	return &VideoSource{config: cfg, logger: logger, capture: capture}, nil
}

// Next implements camera.Source.
func (s *VideoSource) Next(ctx context.Context) (camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return nil, camera.ErrEndOfStream
	}

	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, camera.ErrEndOfStream
	}
	s.seq++
	return NewMatFrame(s.seq, mat, s.config.Rotation), nil
}

// Close releases the capture device.
func (s *VideoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.capture = nil
	return err
}
