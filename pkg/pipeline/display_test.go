package pipeline

import (
	"image"
	"testing"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		viewW, viewH float64
		want         Viewport
	}{
		{"same size", 640, 640, Viewport{Scale: 1}},
		{"landscape pillarbox", 1280, 720, Viewport{Scale: 1.125, OffsetX: 280}},
		{"portrait letterbox", 720, 1280, Viewport{Scale: 1.125, OffsetY: 280}},
		{"shrink", 320, 480, Viewport{Scale: 0.5, OffsetY: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(640, 640, tt.viewW, tt.viewH)
			if got != tt.want {
				t.Errorf("Fit = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFitDegenerate(t *testing.T) {
	if got := Fit(0, 640, 100, 100); got != (Viewport{}) {
		t.Errorf("expected zero viewport, got %+v", got)
	}
	if got := Fit(640, 640, 100, 0); got != (Viewport{}) {
		t.Errorf("expected zero viewport, got %+v", got)
	}
}

func TestViewportRect(t *testing.T) {
	v := Fit(640, 640, 1280, 720)
	d := detection.Detection{CenterX: 320, CenterY: 320, Width: 64, Height: 64}

	want := image.Rect(604, 324, 676, 396)
	if got := v.Rect(d); got != want {
		t.Errorf("Rect = %v, want %v", got, want)
	}

	// Aspect ratio is preserved.
	l, tp, r, b := v.Map(d)
	if (r - l) != (b - tp) {
		t.Errorf("mapped box not square: %v x %v", r-l, b-tp)
	}
}

func TestViewportContent(t *testing.T) {
	v := Fit(640, 640, 1280, 720)
	want := image.Rect(280, 0, 1000, 720)
	if got := v.Content(640, 640); got != want {
		t.Errorf("Content = %v, want %v", got, want)
	}
}
