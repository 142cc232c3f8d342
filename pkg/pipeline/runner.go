package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
)

// Sink receives every frame with its result, detecting or not. The frame is
// only valid during the call.
type Sink interface {
	Consume(frame camera.Frame, res Result)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(frame camera.Frame, res Result)

// Consume implements Sink.
func (f SinkFunc) Consume(frame camera.Frame, res Result) { f(frame, res) }

// Runner pulls frames from a source, one at a time, and feeds them through
// the pipeline. Each frame is closed before the next is requested.
type Runner struct {
	source    camera.Source
	pipeline  *Pipeline
	presenter alert.Presenter
	logger    *slog.Logger

	detecting atomic.Bool

	mu    sync.RWMutex
	sinks []Sink
}

// NewRunner creates a runner with detection enabled.
func NewRunner(source camera.Source, p *Pipeline, presenter alert.Presenter, sinks ...Sink) *Runner {
	r := &Runner{
		source:    source,
		pipeline:  p,
		presenter: presenter,
		logger:    p.logger.With("component", "pipeline.runner"),
		sinks:     sinks,
	}
	r.detecting.Store(true)
	return r
}

// AddSink registers another sink.
func (r *Runner) AddSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
}

// Pipeline returns the pipeline driven by the runner.
func (r *Runner) Pipeline() *Pipeline { return r.pipeline }

// Detecting reports whether frames are being analyzed.
func (r *Runner) Detecting() bool { return r.detecting.Load() }

// SetDetecting starts or stops analysis. Frames keep flowing to sinks
// either way. Stopping resets the pipeline state and hides the alert.
func (r *Runner) SetDetecting(ctx context.Context, on bool) error {
	was := r.detecting.Swap(on)
	if was == on {
		return nil
	}
	r.logger.Info("detection toggled", "detecting", on)
	if !on {
		return r.Reset(ctx)
	}
	return nil
}

// Reset clears tracking and alert state and hides the alert.
func (r *Runner) Reset(ctx context.Context) error {
	r.pipeline.Reset()
	return alert.Dispatch(ctx, r.presenter, alert.SignalHide)
}

// Run processes frames until the source ends or ctx is cancelled.
// End of stream returns nil.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("runner started")
	defer r.logger.Info("runner stopped")

	for {
		err := r.Step(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, camera.ErrEndOfStream):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return err
		}
	}
}

// Step processes exactly one frame.
func (r *Runner) Step(ctx context.Context) error {
	frame, err := r.source.Next(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := frame.Close(); err != nil {
			r.logger.Warn("frame close failed", "frame_seq", frame.Seq(), "error", err)
		}
	}()

	var res Result
	if r.detecting.Load() {
		res = r.pipeline.Analyze(ctx, frame)
		if err := alert.Dispatch(ctx, r.presenter, res.Signal); err != nil {
			r.logger.Warn("alert presenter failed", "signal", res.Signal, "error", err)
		}
	} else {
		res = r.pipeline.newResult(frame.Seq())
		res.FrameSize = frame.Size()
	}

	r.mu.RLock()
	sinks := r.sinks
	r.mu.RUnlock()
	for _, s := range sinks {
		s.Consume(frame, res)
	}
	return nil
}

// Stats returns the pipeline's frame counters.
func (r *Runner) Stats() StatsSnapshot { return r.pipeline.Stats() }

// Session returns the pipeline's current session id.
func (r *Runner) Session() uuid.UUID { return r.pipeline.Session() }
