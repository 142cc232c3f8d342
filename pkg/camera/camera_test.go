package camera

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("DefaultConfig invalid: %v", errs)
	}
	if cfg.Mirrored() {
		t.Error("default back camera should not be mirrored")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Errorf("preset %q missing", name)
			continue
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			t.Errorf("preset %q invalid: %v", name, errs)
		}
	}
	if GetPreset("nope") != nil {
		t.Error("unknown preset should be nil")
	}
	if !GetPreset(PresetFront).Mirrored() {
		t.Error("front preset should be mirrored")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rotation", func(c *Config) { c.Rotation = 45 }},
		{"facing", func(c *Config) { c.Facing = "up" }},
		{"width", func(c *Config) { c.Width = 10 }},
		{"height", func(c *Config) { c.Height = 100000 }},
		{"fps", func(c *Config) { c.FPS = 0 }},
		{"device", func(c *Config) { c.Device = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if errs := cfg.Validate(); len(errs) != 1 {
				t.Errorf("expected 1 error, got %v", errs)
			}
		})
	}
}

func TestRotatedSize(t *testing.T) {
	if w, h := RotatedSize(1280, 720, 90); w != 720 || h != 1280 {
		t.Errorf("90: got %dx%d", w, h)
	}
	if w, h := RotatedSize(1280, 720, 180); w != 1280 || h != 720 {
		t.Errorf("180: got %dx%d", w, h)
	}
}

func TestManagerUpdateConfig(t *testing.T) {
	m := NewManager(DefaultConfig())

	var applied Config
	m.OnConfigChange = func(cfg Config) error {
		applied = cfg
		return nil
	}

	err := m.UpdateConfig(map[string]any{
		"preset":   PresetFront,
		"rotation": float64(270),
	})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	got := m.GetConfig()
	if got.Facing != FacingFront || got.Rotation != 270 {
		t.Errorf("unexpected config %+v", got)
	}
	if applied != got {
		t.Error("OnConfigChange not called with new config")
	}

	if err := m.UpdateConfig(map[string]any{"rotation": 45}); err == nil {
		t.Error("expected validation error")
	}
	if m.GetConfig().Rotation != 270 {
		t.Error("invalid update should not be stored")
	}

	if err := m.UpdateConfig(map[string]any{"preset": "nope"}); err == nil {
		t.Error("expected unknown preset error")
	}
}

// redBlue is 2x1: red on the left, blue on the right.
func redBlue() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	return img
}

func TestRotateClockwise(t *testing.T) {
	tests := []struct {
		deg   int
		size  image.Point
		redAt image.Point
	}{
		{0, image.Pt(2, 1), image.Pt(0, 0)},
		{90, image.Pt(1, 2), image.Pt(0, 0)},
		{180, image.Pt(2, 1), image.Pt(1, 0)},
		{270, image.Pt(1, 2), image.Pt(0, 1)},
	}
	for _, tt := range tests {
		out := Rotate(redBlue(), tt.deg)
		if got := out.Bounds().Size(); got != tt.size {
			t.Errorf("%d: size %v, want %v", tt.deg, got, tt.size)
			continue
		}
		c := out.NRGBAAt(tt.redAt.X, tt.redAt.Y)
		if c.R != 255 || c.B != 0 {
			t.Errorf("%d: pixel at %v = %v, want red", tt.deg, tt.redAt, c)
		}
	}
}

func TestImageFrameInput(t *testing.T) {
	f, err := NewImageFrame(1, redBlue(), 0)
	if err != nil {
		t.Fatalf("NewImageFrame: %v", err)
	}

	in, err := f.Input(2, 1)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if err := in.Validate(); err != nil {
		t.Fatalf("invalid input: %v", err)
	}
	if r, g, b := in.RGB(0, 0); r != 1 || g != 0 || b != 0 {
		t.Errorf("pixel 0 = %v,%v,%v, want 1,0,0", r, g, b)
	}
	if r, g, b := in.RGB(1, 0); r != 0 || g != 0 || b != 1 {
		t.Errorf("pixel 1 = %v,%v,%v, want 0,0,1", r, g, b)
	}

	f.Close()
	if _, err := f.Input(2, 1); !errors.Is(err, ErrFrameClosed) {
		t.Errorf("expected ErrFrameClosed, got %v", err)
	}
}

func TestImageFrameBadRotation(t *testing.T) {
	if _, err := NewImageFrame(1, redBlue(), 45); err == nil {
		t.Error("expected error for 45 degrees")
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(90, redBlue(), redBlue())
	ctx := context.Background()

	for want := uint64(1); want <= 2; want++ {
		f, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if f.Seq() != want {
			t.Errorf("seq %d, want %d", f.Seq(), want)
		}
		if f.Size() != image.Pt(1, 2) {
			t.Errorf("size %v, want rotated 1x2", f.Size())
		}
		f.Close()
	}

	if _, err := src.Next(ctx); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("expected ErrEndOfStream, got %v", err)
	}
	for _, f := range src.Delivered() {
		if !f.Closed() {
			t.Errorf("frame %d not closed", f.Seq())
		}
	}
}
