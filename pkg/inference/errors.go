package inference

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoEngine is returned when a chain is built without engines.
	ErrNoEngine = errors.New("inference: no engine")

	// ErrEngineClosed is returned by engines used after Close.
	ErrEngineClosed = errors.New("inference: engine closed")

	// ErrBadInput is returned when the input buffer does not match its size.
	ErrBadInput = errors.New("inference: bad input")

	// ErrModelNotFound is returned when the model file is missing.
	ErrModelNotFound = errors.New("inference: model not found")
)

// EngineError wraps an error with the engine that produced it.
type EngineError struct {
	Engine string
	Err    error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("inference [%s]: %v", e.Engine, e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with engine context.
func WrapError(engine string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Engine: engine, Err: err}
}

// ChainError aggregates errors from all engines in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "inference chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("inference chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("inference chain: all %d engines failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the underlying errors.
func (e *ChainError) Unwrap() []error {
	return e.Errors
}
