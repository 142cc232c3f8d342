package inference

import (
	"context"
	"sync"
	"time"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Mock implements Engine for testing.
type Mock struct {
	// InferFunc is called when Infer is invoked.
	InferFunc func(ctx context.Context, in Input) (detection.Tensor, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	// EngineName overrides the default "mock" name.
	EngineName string

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Time   time.Time
}

// NewMock creates a mock engine that returns an empty two-class tensor.
func NewMock() *Mock {
	return &Mock{
		InferFunc: func(ctx context.Context, in Input) (detection.Tensor, error) {
			return detection.NewTensor(nil, 1, 6, 0), nil
		},
	}
}

// WithTensor returns a mock that always returns t.
func WithTensor(t detection.Tensor) *Mock {
	return &Mock{
		InferFunc: func(ctx context.Context, in Input) (detection.Tensor, error) {
			return t, nil
		},
	}
}

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		InferFunc: func(ctx context.Context, in Input) (detection.Tensor, error) {
			return detection.Tensor{}, err
		},
	}
}

// Infer calls InferFunc and records the call.
func (m *Mock) Infer(ctx context.Context, in Input) (detection.Tensor, error) {
	m.record("Infer")
	if m.InferFunc != nil {
		return m.InferFunc(ctx, in)
	}
	return detection.Tensor{}, WrapError(m.Name(), ErrEngineClosed)
}

// Name implements Engine.
func (m *Mock) Name() string {
	if m.EngineName != "" {
		return m.EngineName
	}
	return "mock"
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.record("Close")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// record adds a call to the tracking list.
func (m *Mock) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Time:   time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}
