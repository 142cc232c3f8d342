// Package web serves the live detection dashboard.
//
// The server is both a pipeline.Sink (per-frame detections) and an
// alert.Presenter (show/hide), and pushes both to browsers over websockets
// alongside the annotated camera feed.
package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/hub"
	"github.com/JuzJuJazzy/motoSaaS/pkg/pipeline"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

const maxEvents = 500

// Controller starts, stops and resets detection.
// *pipeline.Runner satisfies it.
type Controller interface {
	Detecting() bool
	SetDetecting(ctx context.Context, on bool) error
	Reset(ctx context.Context) error
	Stats() pipeline.StatsSnapshot
	Session() uuid.UUID
}

// Status is the dashboard's view of the system.
type Status struct {
	Detecting    bool                   `json:"detecting"`
	AlertVisible bool                   `json:"alert_visible"`
	Session      string                 `json:"session,omitempty"`
	LastSeq      uint64                 `json:"last_seq"`
	Stats        pipeline.StatsSnapshot `json:"stats"`
	Clients      map[string]int         `json:"clients"`
}

// FrameUpdate is pushed on /ws/detections for every frame.
type FrameUpdate struct {
	Session     string                `json:"session"`
	Seq         uint64                `json:"seq"`
	Signal      string                `json:"signal"`
	Detections  []detection.Detection `json:"detections"`
	ModelWidth  int                   `json:"model_width"`
	ModelHeight int                   `json:"model_height"`
	FrameWidth  int                   `json:"frame_width"`
	FrameHeight int                   `json:"frame_height"`
	LatencyMS   float64               `json:"latency_ms"`
	Error       string                `json:"error,omitempty"`
}

// AlertUpdate is pushed on /ws/alerts whenever the warning changes.
type AlertUpdate struct {
	Visible bool      `json:"visible"`
	Time    time.Time `json:"time"`
}

// Event is a line in the dashboard's event log.
type Event struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // alert, control, error
	Message string `json:"message"`
}

// Config holds server configuration.
type Config struct {
	Port      string
	StaticDir string // Served at / when set
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	config Config
	logger *slog.Logger

	controller Controller
	cameras    *camera.Manager
	settings   any

	mu           sync.RWMutex
	alertVisible bool
	last         *FrameUpdate

	events   []Event
	eventsMu sync.RWMutex

	detectionsHub *hub.Hub
	alertsHub     *hub.Hub
	cameraHub     *hub.Hub
}

// NewServer creates the dashboard. controller and cameras may be nil; the
// routes that need them then answer 503.
func NewServer(cfg Config, controller Controller, cameras *camera.Manager) *Server {
	s := &Server{
		config:        cfg,
		logger:        slog.Default().With("component", "web"),
		controller:    controller,
		cameras:       cameras,
		events:        make([]Event, 0, maxEvents),
		detectionsHub: hub.New("detections"),
		alertsHub:     hub.NewSticky("alerts"),
		cameraHub:     hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "motoSaaS",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/detections", s.handleDetections)
	api.Get("/events", s.handleEvents)
	api.Post("/reset", s.handleReset)
	api.Post("/detect/start", s.handleDetect(true))
	api.Post("/detect/stop", s.handleDetect(false))
	api.Get("/camera", s.handleGetCamera)
	api.Put("/camera", s.handleUpdateCamera)
	api.Get("/camera/presets", s.handleCameraPresets)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/detections", websocket.New(s.serveHub(s.detectionsHub)))
	app.Get("/ws/alerts", websocket.New(s.serveHub(s.alertsHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// SetController attaches the detection controller after construction.
func (s *Server) SetController(c Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller = c
}

// SetSettings sets what /api/config reports.
func (s *Server) SetSettings(v any) { s.settings = v }

// Start runs the hubs and serves until ctx is done or Listen fails.
func (s *Server) Start(ctx context.Context) error {
	go s.detectionsHub.Run(ctx)
	go s.alertsHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("dashboard listening", "url", "http://localhost:"+s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// Consume implements pipeline.Sink.
func (s *Server) Consume(frame camera.Frame, res pipeline.Result) {
	update := FrameUpdate{
		Session:     res.Session.String(),
		Seq:         res.Seq,
		Signal:      res.Signal.String(),
		Detections:  res.Detections,
		ModelWidth:  res.ModelWidth,
		ModelHeight: res.ModelHeight,
		FrameWidth:  res.FrameSize.X,
		FrameHeight: res.FrameSize.Y,
		LatencyMS:   float64(res.Latency) / float64(time.Millisecond),
	}
	if res.Err != nil {
		update.Error = res.Err.Error()
	}

	s.mu.Lock()
	s.last = &update
	s.mu.Unlock()

	if err := s.detectionsHub.BroadcastJSON(update); err != nil {
		s.logger.Warn("broadcast detections failed", "error", err)
	}
}

// SendCameraFrame pushes an encoded frame to camera viewers.
func (s *Server) SendCameraFrame(jpeg []byte, _ pipeline.Result) {
	if s.cameraHub.ClientCount() == 0 {
		return
	}
	s.cameraHub.BroadcastBinary(jpeg)
}

// Show implements alert.Presenter.
func (s *Server) Show(ctx context.Context) error { return s.setAlert(true) }

// Hide implements alert.Presenter.
func (s *Server) Hide(ctx context.Context) error { return s.setAlert(false) }

func (s *Server) setAlert(visible bool) error {
	s.mu.Lock()
	changed := s.alertVisible != visible
	s.alertVisible = visible
	s.mu.Unlock()

	if !changed {
		return nil
	}
	if visible {
		s.AddEvent("alert", "Object approaching")
	} else {
		s.AddEvent("alert", "Clear")
	}
	return s.alertsHub.BroadcastJSON(AlertUpdate{Visible: visible, Time: time.Now().UTC()})
}

// AlertVisible reports the presented alert state.
func (s *Server) AlertVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alertVisible
}

// AddEvent appends to the event log.
func (s *Server) AddEvent(kind, message string) {
	entry := Event{
		Time:    time.Now().Format("15:04:05"),
		Type:    kind,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
