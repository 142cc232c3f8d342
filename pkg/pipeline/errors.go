package pipeline

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when a destroyed pipeline is used.
var ErrClosed = errors.New("pipeline: closed")

// Stage names where a frame can fail.
type Stage string

const (
	StagePreprocess Stage = "preprocess"
	StageInference  Stage = "inference"
	StageDecode     Stage = "decode"
)

// FrameError reports why a frame was dropped.
type FrameError struct {
	Seq   uint64
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return fmt.Sprintf("pipeline: frame %d dropped at %s: %v", e.Seq, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *FrameError) Unwrap() error {
	return e.Err
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
