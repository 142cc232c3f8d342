package inference

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Chain tries engines in order until one succeeds, e.g. a GPU engine
// backed by a CPU engine.
type Chain struct {
	engines []Engine
	logger  *slog.Logger
}

// NewChain creates an engine chain.
// At least one engine is required.
func NewChain(engines ...Engine) (*Chain, error) {
	if len(engines) == 0 {
		return nil, ErrNoEngine
	}
	return &Chain{
		engines: engines,
		logger:  slog.Default().With("component", "inference.chain"),
	}, nil
}

// Infer tries each engine until one succeeds.
func (c *Chain) Infer(ctx context.Context, in Input) (detection.Tensor, error) {
	var errs []error

	for i, e := range c.engines {
		out, err := e.Infer(ctx, in)
		if err == nil {
			if i > 0 {
				c.logger.Debug("fallback engine succeeded",
					"engine", e.Name(),
					"engine_index", i,
				)
			}
			return out, nil
		}

		errs = append(errs, WrapError(e.Name(), err))
		c.logger.Warn("engine failed, trying next",
			"engine", e.Name(),
			"engine_index", i,
			"error", err,
		)

		if ctx.Err() != nil {
			return detection.Tensor{}, ctx.Err()
		}
	}

	return detection.Tensor{}, &ChainError{Errors: errs}
}

// Name implements Engine.
func (c *Chain) Name() string {
	return "chain"
}

// Close closes all engines.
func (c *Chain) Close() error {
	var errs []error
	for _, e := range c.engines {
		if err := e.Close(); err != nil {
			errs = append(errs, WrapError(e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
