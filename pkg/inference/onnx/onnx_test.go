package onnx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
)

// findModelPath looks for a model next to the repository root.
func findModelPath() string {
	if p := os.Getenv("MOTOSAAS_TEST_MODEL"); p != "" {
		return p
	}
	for _, p := range []string{
		"models/detector.onnx",
		"../../../models/detector.onnx",
	} {
		if abs, err := filepath.Abs(p); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs
			}
		}
	}
	return ""
}

func TestNewInvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/path/model.onnx"

	_, err := New(cfg)
	if !errors.Is(err, inference.ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
}

func TestInfer_OutputLayout(t *testing.T) {
	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("detector model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer engine.Close()

	out, err := engine.Infer(context.Background(), inference.NewInput(cfg.InputWidth, cfg.InputHeight))
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if len(out.Shape) != 3 || out.Shape[0] != 1 || out.Channels() < 5 {
		t.Errorf("Unexpected output shape %v", out.Shape)
	}
}

func TestInfer_WrongSize(t *testing.T) {
	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("detector model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer engine.Close()

	_, err = engine.Infer(context.Background(), inference.NewInput(320, 320))
	if !errors.Is(err, inference.ErrBadInput) {
		t.Errorf("Expected ErrBadInput, got %v", err)
	}
}
