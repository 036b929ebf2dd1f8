package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/photonbench/go-beamview/pkg/camera"
	"github.com/photonbench/go-beamview/pkg/pipeline"
)

// statusCode maps pipeline and device errors onto HTTP semantics:
// precondition violations are conflicts, device faults are upstream
// failures.
func statusCode(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrBadState):
		return fiber.StatusConflict
	case errors.Is(err, pipeline.ErrNoFrame):
		return fiber.StatusConflict
	case errors.Is(err, camera.ErrNoDevice),
		errors.Is(err, camera.ErrNotConnected),
		errors.Is(err, camera.ErrNotStreaming):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusCode(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// handleStatus reports the lifecycle state and latest measurement.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	m := s.session.LastMeasurement()
	return c.JSON(fiber.Map{
		"state":       s.session.State().String(),
		"exposure_us": s.session.Exposure(),
		"measurement": MeasurementUpdate{
			Found:       m.Found,
			DisplayX:    m.Display.X,
			DisplayY:    m.Display.Y,
			NativeX:     m.Native.X,
			NativeY:     m.Native.Y,
			Diameter:    m.Diameter,
			Circularity: m.Circularity,
			Seq:         m.Seq,
		},
		"preview_clients": s.previewHub.ClientCount(),
	})
}

// handleConnect opens and configures the device.
func (s *Server) handleConnect(c *fiber.Ctx) error {
	warnings, err := s.session.Connect()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"state":    s.session.State().String(),
		"warnings": warnings,
	})
}

// handleStart begins acquisition.
func (s *Server) handleStart(c *fiber.Ctx) error {
	if err := s.session.Start(); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"state": s.session.State().String()})
}

// handleStop halts acquisition and drains the queue.
func (s *Server) handleStop(c *fiber.Ctx) error {
	if err := s.session.Stop(); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"state": s.session.State().String()})
}

// handleClose releases the device.
func (s *Server) handleClose(c *fiber.Ctx) error {
	if err := s.session.Close(); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"state": s.session.State().String()})
}

// handleSave snapshots the latest frame to the configured directory.
func (s *Server) handleSave(c *fiber.Ctx) error {
	path, err := s.session.Save(s.saveDir)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"path": path})
}

// ExposureRequest is the body for POST /api/exposure.
type ExposureRequest struct {
	Value float64 `json:"value"`
}

// handleExposure updates the exposure setting. The applied value is
// returned since out-of-range requests are clamped, and a best-effort
// device write failure is reported alongside the accepted value.
func (s *Server) handleExposure(c *fiber.Ctx) error {
	var req ExposureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body: expected {\"value\": <microseconds>}",
		})
	}

	applied, err := s.session.SetExposure(req.Value)
	resp := fiber.Map{"exposure_us": applied}
	if err != nil {
		resp["write_error"] = err.Error()
	}
	return c.JSON(resp)
}
