package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/JuzJuJazzy/motoSaaS/internal/config"
	"github.com/JuzJuJazzy/motoSaaS/internal/log"
	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/camera/opencv"
	"github.com/JuzJuJazzy/motoSaaS/pkg/inference"
	"github.com/JuzJuJazzy/motoSaaS/pkg/inference/onnx"
	"github.com/JuzJuJazzy/motoSaaS/pkg/overlay"
	"github.com/JuzJuJazzy/motoSaaS/pkg/pipeline"
	"github.com/JuzJuJazzy/motoSaaS/pkg/web"
)

// app wires capture, pipeline, presenters and the dashboard.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	source   *switchableSource
	pipeline *pipeline.Pipeline
	runner   *pipeline.Runner
	cameras  *camera.Manager
	web      *web.Server

	closers  []io.Closer
	shutdown sync.Once
}

func newApp(cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: log.Component("app")}

	engine, err := newEngine(cfg.Model)
	if err != nil {
		return nil, err
	}

	a.pipeline, err = pipeline.New(cfg.Pipeline(), engine, pipeline.WithLogger(log.L()))
	if err != nil {
		engine.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.pipeline)

	src, err := opencv.Open(cfg.Camera)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.source = &switchableSource{current: src}
	a.closers = append(a.closers, a.source)

	a.cameras = camera.NewManager(cfg.Camera)
	a.cameras.OnConfigChange = a.reopenCamera

	presenters := alert.Fanout{alert.NewLogPresenter(log.L())}
	if cfg.Web.Enabled {
		a.web = web.NewServer(web.Config{Port: cfg.Web.Port, StaticDir: cfg.Web.StaticDir}, nil, a.cameras)
		a.web.SetSettings(cfg)
		presenters = append(presenters, a.web)
	}
	if cfg.Alert.MQTT.Enabled {
		p, err := alert.DialMQTT(context.Background(), cfg.MQTT())
		if err != nil {
			a.Shutdown()
			return nil, err
		}
		presenters = append(presenters, p)
		a.closers = append(a.closers, p)
	}
	if cfg.Alert.WSURL != "" {
		p, err := alert.DialWS(context.Background(), cfg.Alert.WSURL, cfg.Alert.MQTT.ClientID)
		if err != nil {
			a.Shutdown()
			return nil, err
		}
		presenters = append(presenters, p)
		a.closers = append(a.closers, p)
	}

	a.runner = pipeline.NewRunner(a.source, a.pipeline, alert.NewLatch(presenters))

	if a.web != nil {
		a.web.SetController(a.runner)
		a.runner.AddSink(a.web)
		renderer := overlay.New(overlay.Config{
			ViewWidth:  cfg.Web.ViewWidth,
			ViewHeight: cfg.Web.ViewHeight,
			Quality:    cfg.Camera.Quality,
		}, a.web.SendCameraFrame)
		a.runner.AddSink(renderer)
	}

	a.logger.Info("initialized",
		"engine", engine.Name(),
		"device", cfg.Camera.Device,
		"labels", len(cfg.Model.Labels),
		"presenters", len(presenters))
	return a, nil
}

// newEngine loads the model. A CUDA engine falls back to the CPU one.
func newEngine(m config.ModelConfig) (inference.Engine, error) {
	base := onnx.Config{ModelPath: m.Path, InputWidth: m.Width, InputHeight: m.Height, Backend: onnx.BackendCPU}

	var engines []inference.Engine
	if onnx.Backend(m.Backend) == onnx.BackendCUDA {
		gpu := base
		gpu.Backend = onnx.BackendCUDA
		e, err := onnx.New(gpu)
		if err != nil {
			log.Component("app").Warn("cuda engine unavailable, using cpu", "error", err)
		} else {
			engines = append(engines, e)
		}
	}

	cpu, err := onnx.New(base)
	if err != nil {
		for _, e := range engines {
			e.Close()
		}
		return nil, err
	}
	engines = append(engines, cpu)

	if len(engines) == 1 {
		return cpu, nil
	}
	return inference.NewChain(engines...)
}

// Run serves the dashboard and processes frames until ctx is done.
func (a *app) Run(ctx context.Context) error {
	if a.web != nil {
		a.web.StartAsync(ctx)
	}
	err := a.runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown releases everything in reverse order of acquisition.
func (a *app) Shutdown() {
	a.shutdown.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i].Close(); err != nil {
				a.logger.Warn("close failed", "error", err)
			}
		}
		a.logger.Info("shutdown complete")
	})
}

// reopenCamera swaps in a capture source for cfg. Facing fixes the decoder's
// mirroring, so changing it needs a restart.
func (a *app) reopenCamera(cfg camera.Config) error {
	if cfg.Mirrored() != a.cfg.Camera.Mirrored() {
		return fmt.Errorf("changing camera facing requires a restart")
	}
	src, err := opencv.Open(cfg)
	if err != nil {
		return err
	}
	a.source.swap(src)
	a.logger.Info("camera reopened", "device", cfg.Device, "rotation", cfg.Rotation)
	return nil
}

// switchableSource lets the capture device change under a running Runner.
type switchableSource struct {
	mu      sync.Mutex
	current camera.Source
}

func (s *switchableSource) Next(ctx context.Context) (camera.Frame, error) {
	for {
		src := s.get()
		f, err := src.Next(ctx)
		// A swap closes the old source under us; keep going on the new one.
		if errors.Is(err, camera.ErrEndOfStream) && s.get() != src {
			continue
		}
		return f, err
	}
}

func (s *switchableSource) get() camera.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *switchableSource) swap(src camera.Source) {
	s.mu.Lock()
	old := s.current
	s.current = src
	s.mu.Unlock()
	old.Close()
}

func (s *switchableSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Close()
}
