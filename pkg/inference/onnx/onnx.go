// Package onnx runs a YOLO-style ONNX detection model through OpenCV's DNN module.
package onnx

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"unsafe"

	"gocv.io/x/gocv"

	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Backend selects where OpenCV runs the network.
type Backend string

const (
	BackendCPU  Backend = "cpu"
	BackendCUDA Backend = "cuda"
)

// Config holds engine configuration.
type Config struct {
	ModelPath   string
	InputWidth  int
	InputHeight int
	Backend     Backend
}

// DefaultConfig returns production defaults for a 640x640 model.
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/detector.onnx",
		InputWidth:  640,
		InputHeight: 640,
		Backend:     BackendCPU,
	}
}

// Engine wraps a gocv.Net. Calls are serialized; gocv.Net is not safe for
// concurrent use.
type Engine struct {
	config Config

	mu     sync.Mutex
	net    gocv.Net
	closed bool
}

// New loads the model.
func New(cfg Config) (*Engine, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", inference.ErrModelNotFound, cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("onnx: failed to load model from %s", cfg.ModelPath)
	}

	switch cfg.Backend {
	case BackendCUDA:
		net.SetPreferableBackend(gocv.NetBackendCUDA)
		net.SetPreferableTarget(gocv.NetTargetCUDA)
	default:
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
	}

	return &Engine{config: cfg, net: net}, nil
}

// Name implements inference.Engine.
func (e *Engine) Name() string {
	return "onnx-" + string(e.config.Backend)
}

// Infer runs one forward pass. The input must match the model input size.
func (e *Engine) Infer(ctx context.Context, in inference.Input) (detection.Tensor, error) {
	if err := in.Validate(); err != nil {
		return detection.Tensor{}, err
	}
	if in.Width != e.config.InputWidth || in.Height != e.config.InputHeight {
		return detection.Tensor{}, fmt.Errorf("%w: got %dx%d, model wants %dx%d",
			inference.ErrBadInput, in.Width, in.Height, e.config.InputWidth, e.config.InputHeight)
	}
	if err := ctx.Err(); err != nil {
		return detection.Tensor{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return detection.Tensor{}, inference.ErrEngineClosed
	}

	img, err := gocv.NewMatFromBytes(in.Height, in.Width, gocv.MatTypeCV32FC3, float32Bytes(in.Pixels))
	if err != nil {
		return detection.Tensor{}, fmt.Errorf("onnx: wrap input: %w", err)
	}
	defer img.Close()

	// Pixels are already RGB in [0,1]; only the HWC -> NCHW reshuffle is left.
	blob := gocv.BlobFromImage(img, 1.0, image.Pt(in.Width, in.Height), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	output := e.net.Forward("")
	defer output.Close()

	// YOLOv8-style output: [1, 4+classes, boxes]
	shape := output.Size()
	data, err := output.DataPtrFloat32()
	if err != nil {
		return detection.Tensor{}, fmt.Errorf("onnx: read output: %w", err)
	}

	// The Mat owns data; copy before it is closed.
	out := make([]float32, len(data))
	copy(out, data)

	return detection.NewTensor(out, shape...), nil
}

// Close releases the network.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.net.Close()
}

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
