package camera

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
)

// ImageFrame is a Frame backed by an in-memory image.
type ImageFrame struct {
	seq uint64
	img *image.NRGBA

	mu     sync.Mutex
	closed bool
}

// NewImageFrame rotates img clockwise by rotation degrees and wraps it.
func NewImageFrame(seq uint64, img image.Image, rotation int) (*ImageFrame, error) {
	if !ValidRotation(rotation) {
		return nil, fmt.Errorf("camera: unsupported rotation %d", rotation)
	}
	return &ImageFrame{seq: seq, img: Rotate(img, rotation)}, nil
}

// Rotate turns img clockwise by deg. imaging rotates counter-clockwise.
func Rotate(img image.Image, deg int) *image.NRGBA {
	switch deg {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}

// Seq implements Frame.
func (f *ImageFrame) Seq() uint64 { return f.seq }

// Size implements Frame.
func (f *ImageFrame) Size() image.Point { return f.img.Bounds().Size() }

// Image returns the upright image.
func (f *ImageFrame) Image() *image.NRGBA { return f.img }

// Input implements Frame. The image is stretched to the model size.
func (f *ImageFrame) Input(width, height int) (inference.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return inference.Input{}, ErrFrameClosed
	}

	resized := imaging.Resize(f.img, width, height, imaging.Linear)
	in := inference.NewInput(width, height)
	for y := 0; y < height; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+3]
			in.SetRGB(x, y, p[0], p[1], p[2])
		}
	}
	return in, nil
}

// Close implements Frame.
func (f *ImageFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *ImageFrame) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// SliceSource replays a fixed list of images, then returns ErrEndOfStream.
type SliceSource struct {
	images   []image.Image
	rotation int

	mu     sync.Mutex
	next   int
	frames []*ImageFrame
}

// NewSliceSource creates a source over images.
func NewSliceSource(rotation int, images ...image.Image) *SliceSource {
	return &SliceSource{images: images, rotation: rotation}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.images) {
		return nil, ErrEndOfStream
	}
	img := s.images[s.next]
	s.next++

	f, err := NewImageFrame(uint64(s.next), img, s.rotation)
	if err != nil {
		return nil, err
	}
	s.frames = append(s.frames, f)
	return f, nil
}

// Delivered returns every frame handed out so far.
func (s *SliceSource) Delivered() []*ImageFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ImageFrame(nil), s.frames...)
}

// Close implements Source.
func (s *SliceSource) Close() error { return nil }
