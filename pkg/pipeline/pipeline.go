// Package pipeline runs the per-frame detection chain.
//
// One frame at a time flows straight through:
//
//	frame -> preprocess -> inference -> decode -> NMS -> track -> alert
//
// A failure or panic before tracking drops the frame: it yields no
// detections and no alert signal, is logged, and the next frame proceeds
// normally. Nothing is retried within a frame.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Pipeline owns the decoder and the cross-frame State.
// Calls are serialized so exactly one frame is in flight.
type Pipeline struct {
	config  Config
	engine  inference.Engine
	decoder *detection.Decoder
	state   *State
	clock   clock.Clock
	logger  *slog.Logger
	stats   Stats

	mu sync.Mutex
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for latency and alert debouncing.
func WithClock(clk clock.Clock) Option {
	return func(p *Pipeline) { p.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a pipeline around engine.
func New(cfg Config, engine inference.Engine, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, inference.ErrNoEngine
	}

	p := &Pipeline{
		config:  cfg,
		engine:  engine,
		decoder: detection.NewDecoder(cfg.Decoder),
		clock:   clock.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	p.state = NewState(cfg, p.clock)

	p.logger.Info("pipeline created",
		"engine", engine.Name(),
		"session", p.state.Session(),
		"model", [2]int{cfg.Decoder.ModelWidth, cfg.Decoder.ModelHeight},
		"labels", len(cfg.Decoder.Labels),
		"mirror", cfg.Decoder.Mirror)

	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.config }

// State returns the cross-frame state.
func (p *Pipeline) State() *State { return p.state }

// Session returns the current session id.
func (p *Pipeline) Session() uuid.UUID { return p.state.Session() }

// Stats returns frame counters.
func (p *Pipeline) Stats() StatsSnapshot { return p.stats.Snapshot() }

// Analyze runs one frame through the full chain. It does not close frame;
// the caller owns it.
func (p *Pipeline) Analyze(ctx context.Context, frame camera.Frame) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.clock.Now()
	res := p.newResult(frame.Seq())
	res.FrameSize = frame.Size()

	if p.state.Closed() {
		res.Err = ErrClosed
		return res
	}

	candidates, err := p.guard(frame.Seq(), func(stage *Stage) ([]detection.Detection, error) {
		*stage = StagePreprocess
		in, err := frame.Input(p.config.Decoder.ModelWidth, p.config.Decoder.ModelHeight)
		if err != nil {
			return nil, err
		}

		*stage = StageInference
		tensor, err := p.engine.Infer(ctx, in)
		if err != nil {
			return nil, err
		}

		*stage = StageDecode
		return p.decoder.Decode(tensor)
	})

	return p.finish(res, candidates, err, start)
}

// ProcessTensor runs an already inferred tensor through decode, NMS,
// tracking and alerting.
func (p *Pipeline) ProcessTensor(seq uint64, t detection.Tensor) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.clock.Now()
	res := p.newResult(seq)
	if p.state.Closed() {
		res.Err = ErrClosed
		return res
	}

	candidates, err := p.guard(seq, func(stage *Stage) ([]detection.Detection, error) {
		*stage = StageDecode
		return p.decoder.Decode(t)
	})

	return p.finish(res, candidates, err, start)
}

// Reset clears tracking history and the alert timestamp and starts a new
// session. Frame counters are kept.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Reset()
	p.logger.Info("pipeline reset", "session", p.state.Session())
}

// Close destroys the state and closes the engine.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.state.Close(), p.engine.Close())
}

func (p *Pipeline) newResult(seq uint64) Result {
	return Result{
		Session:     p.state.Session(),
		Seq:         seq,
		Detections:  []detection.Detection{},
		Signal:      alert.SignalNone,
		ModelWidth:  p.config.Decoder.ModelWidth,
		ModelHeight: p.config.Decoder.ModelHeight,
	}
}

// guard runs fn, converting errors and panics into a *FrameError tagged
// with the stage fn had reached.
func (p *Pipeline) guard(seq uint64, fn func(stage *Stage) ([]detection.Detection, error)) (dets []detection.Detection, err error) {
	stage := StagePreprocess
	defer func() {
		if r := recover(); r != nil {
			dets = nil
			err = &FrameError{Seq: seq, Stage: stage, Err: &PanicError{Value: r}}
		}
	}()

	dets, err = fn(&stage)
	if err != nil {
		return nil, &FrameError{Seq: seq, Stage: stage, Err: err}
	}
	return dets, nil
}

func (p *Pipeline) finish(res Result, candidates []detection.Detection, err error, start time.Time) Result {
	if err != nil {
		res.Err = err
		res.Latency = p.clock.Since(start)
		p.stats.record(res)
		p.logger.Warn("frame dropped", "frame_seq", res.Seq, "error", err)
		return res
	}

	survivors := detection.Suppress(candidates, p.config.IoUThreshold)
	res.Detections = p.state.tracker.Track(survivors)
	res.Signal = p.state.debouncer.Observe(res.Detections)
	res.Latency = p.clock.Since(start)
	p.stats.record(res)

	if len(candidates) > 0 {
		p.logger.Debug("frame analyzed",
			"frame_seq", res.Seq,
			"candidates", len(candidates),
			"kept", len(res.Detections),
			"signal", res.Signal,
			"latency", res.Latency)
	}
	return res
}
