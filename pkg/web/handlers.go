package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/hub"
)

// handleStatus returns the current system state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	status := Status{
		AlertVisible: s.AlertVisible(),
		Clients: map[string]int{
			"detections": s.detectionsHub.ClientCount(),
			"alerts":     s.alertsHub.ClientCount(),
			"camera":     s.cameraHub.ClientCount(),
		},
	}

	s.mu.RLock()
	if s.last != nil {
		status.LastSeq = s.last.Seq
	}
	s.mu.RUnlock()

	if ctrl := s.getController(); ctrl != nil {
		status.Detecting = ctrl.Detecting()
		status.Session = ctrl.Session().String()
		status.Stats = ctrl.Stats()
	}
	return c.JSON(status)
}

// handleConfig returns the effective configuration
func (s *Server) handleConfig(c *fiber.Ctx) error {
	if s.settings == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(s.settings)
}

// handleDetections returns the latest frame update
func (s *Server) handleDetections(c *fiber.Ctx) error {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	return c.JSON(last)
}

// handleEvents returns recent events
func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

// handleReset clears tracking and alert state
func (s *Server) handleReset(c *fiber.Ctx) error {
	ctrl := s.getController()
	if ctrl == nil {
		return notConfigured(c, "detection")
	}
	if err := ctrl.Reset(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	s.AddEvent("control", "State reset")
	return c.JSON(fiber.Map{"session": ctrl.Session().String()})
}

// handleDetect starts or stops detection
func (s *Server) handleDetect(on bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl := s.getController()
		if ctrl == nil {
			return notConfigured(c, "detection")
		}
		if err := ctrl.SetDetecting(c.UserContext(), on); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if on {
			s.AddEvent("control", "Detection started")
		} else {
			s.AddEvent("control", "Detection stopped")
		}
		return c.JSON(fiber.Map{"detecting": ctrl.Detecting()})
	}
}

// handleGetCamera returns the capture configuration
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	if s.cameras == nil {
		return notConfigured(c, "camera")
	}
	return c.JSON(s.cameras.GetConfig())
}

// handleUpdateCamera applies a partial capture configuration
func (s *Server) handleUpdateCamera(c *fiber.Ctx) error {
	if s.cameras == nil {
		return notConfigured(c, "camera")
	}

	params := make(map[string]any)
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if err := s.cameras.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	s.AddEvent("control", "Camera reconfigured")
	return c.JSON(s.cameras.GetConfig())
}

// handleCameraPresets lists capture presets
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"names":   camera.PresetNames(),
		"presets": camera.Presets(),
	})
}

// serveHub attaches a websocket to h until it disconnects.
func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := hub.NewClient(h, conn)
		if client == nil {
			conn.Close()
			return
		}
		client.Run()
	}
}

func (s *Server) getController() Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controller
}

func notConfigured(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": what + " not configured"})
}
