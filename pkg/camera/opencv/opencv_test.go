package opencv

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
)

func newBGR(w, h int, b, g, r float64) gocv.Mat {
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(b, g, r, 0))
	return mat
}

func TestMatFrameRotation(t *testing.T) {
	tests := []struct {
		rotation int
		want     image.Point
	}{
		{0, image.Pt(4, 2)},
		{90, image.Pt(2, 4)},
		{180, image.Pt(4, 2)},
		{270, image.Pt(2, 4)},
	}
	for _, tt := range tests {
		f := NewMatFrame(1, newBGR(4, 2, 0, 0, 0), tt.rotation)
		if got := f.Size(); got != tt.want {
			t.Errorf("rotation %d: size %v, want %v", tt.rotation, got, tt.want)
		}
		f.Close()
	}
}

func TestMatFrameInputIsRGB(t *testing.T) {
	// Pure red in BGR order
	f := NewMatFrame(1, newBGR(8, 8, 0, 0, 255), 0)
	defer f.Close()

	in, err := f.Input(4, 4)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("invalid input: %v", err)
	}
	r, g, b := in.RGB(2, 2)
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("pixel = %v,%v,%v, want 1,0,0", r, g, b)
	}
}

func TestMatFrameClose(t *testing.T) {
	f := NewMatFrame(1, newBGR(4, 4, 0, 0, 0), 0)
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := f.Input(4, 4); !errors.Is(err, camera.ErrFrameClosed) {
		t.Errorf("expected ErrFrameClosed, got %v", err)
	}
}
