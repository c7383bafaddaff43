package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/overlay"
	"github.com/teslashibe/go-mirror/pkg/settings"
	"github.com/teslashibe/go-mirror/pkg/tracking"
	"github.com/teslashibe/go-mirror/pkg/widgets"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	return c.JSON(s.deps.Controller.Snapshot())
}

func (s *Server) handleOverlay(c *fiber.Ctx) error {
	return c.JSON(overlay.RenderSnapshot(s.deps.Controller.Snapshot()))
}

func (s *Server) handleDisplay(c *fiber.Ctx) error {
	return c.JSON(s.deps.Controller.Display())
}

func (s *Server) handleReprobe(c *fiber.Ctx) error {
	return c.JSON(s.deps.Controller.Reprobe())
}

// Camera actions keep acquisition failures in the snapshot; only a closed
// controller or a cancelled request comes back as an error.
func (s *Server) cameraAction(c *fiber.Ctx, err error) error {
	if err != nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(s.deps.Controller.Snapshot())
}

func (s *Server) handleCameraStart(c *fiber.Ctx) error {
	return s.cameraAction(c, s.deps.Controller.StartCamera(c.UserContext()))
}

func (s *Server) handleCameraStop(c *fiber.Ctx) error {
	s.deps.Controller.StopCamera()
	return s.cameraAction(c, nil)
}

func (s *Server) handleCameraRetry(c *fiber.Ctx) error {
	return s.cameraAction(c, s.deps.Controller.RetryCamera(c.UserContext()))
}

func (s *Server) handleCameraPermission(c *fiber.Ctx) error {
	return s.cameraAction(c, s.deps.Controller.RequestPermission(c.UserContext()))
}

func (s *Server) handleCameraFrame(c *fiber.Ctx) error {
	jpeg, err := s.deps.Controller.CaptureJPEG()
	if err != nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(jpeg)
}

type trackingRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleTracking(c *fiber.Ctx) error {
	var req trackingRequest
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return errorJSON(c, fiber.StatusBadRequest, `body must be {"enabled": true|false}`)
	}
	s.deps.Controller.ToggleTracking(*req.Enabled)
	return c.JSON(s.deps.Controller.Snapshot())
}

func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.deps.Controller.Tuning())
}

func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	var req tracking.TuningParams
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid tuning parameters")
	}
	return c.JSON(s.deps.Controller.SetTuning(req))
}

type presentationRequest struct {
	BrightnessDelta int `json:"brightness_delta"`
	ContrastDelta   int `json:"contrast_delta"`
}

func (s *Server) handlePresentation(c *fiber.Ctx) error {
	var req presentationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid presentation adjustment")
	}
	p := s.deps.Controller.AdjustPresentation(req.BrightnessDelta, req.ContrastDelta)
	return c.JSON(fiber.Map{"presentation": p, "css_filter": p.CSSFilter()})
}

type selectionRequest struct {
	Mode   string `json:"mode"`
	Filter string `json:"filter"`
	Guide  string `json:"guide"`
}

func (s *Server) selection(c *fiber.Ctx, apply func(selectionRequest) error) error {
	var req selectionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := apply(req); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, mirror.ErrUnknownMode) || errors.Is(err, mirror.ErrUnknownFilter) || errors.Is(err, mirror.ErrUnknownGuide) {
			status = fiber.StatusBadRequest
		}
		return errorJSON(c, status, err.Error())
	}
	return c.JSON(overlay.RenderSnapshot(s.deps.Controller.Snapshot()))
}

func (s *Server) handleMode(c *fiber.Ctx) error {
	return s.selection(c, func(r selectionRequest) error { return s.deps.Controller.SetMode(r.Mode) })
}

func (s *Server) handleModeCycle(c *fiber.Ctx) error {
	s.deps.Controller.CycleMode()
	return c.JSON(overlay.RenderSnapshot(s.deps.Controller.Snapshot()))
}

func (s *Server) handleFilter(c *fiber.Ctx) error {
	return s.selection(c, func(r selectionRequest) error { return s.deps.Controller.SetFilter(r.Filter) })
}

func (s *Server) handleGuide(c *fiber.Ctx) error {
	return s.selection(c, func(r selectionRequest) error { return s.deps.Controller.SetGuide(r.Guide) })
}

func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	if s.deps.Settings == nil {
		return errorJSON(c, fiber.StatusNotFound, "settings not configured")
	}
	return c.JSON(s.deps.Settings.Load())
}

// handlePutSettings saves the dashboard fields. Mode, filter, guide,
// tracking and presentation belong to the controller and are ignored here.
func (s *Server) handlePutSettings(c *fiber.Ctx) error {
	if s.deps.Settings == nil {
		return errorJSON(c, fiber.StatusNotFound, "settings not configured")
	}
	// Fields missing from the body keep their saved values.
	req := s.deps.Settings.Load()
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid settings")
	}

	out, err := s.deps.Settings.Update(func(st *settings.Settings) {
		st.Timezone = req.Timezone
		st.Units = req.Units
		st.Language = req.Language
		st.Theme = req.Theme
		st.UpdateIntervalMS = req.UpdateIntervalMS
		st.AutoSleep = req.AutoSleep
		st.MotionDetection = req.MotionDetection
		st.VoiceControl = req.VoiceControl
	})
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(out)
}

func (s *Server) handleGetWidgets(c *fiber.Ctx) error {
	if s.deps.Board == nil {
		return c.JSON([]widgets.Panel{})
	}
	return c.JSON(s.deps.Board.Panels())
}

func (s *Server) handleSetWidget(c *fiber.Ctx) error {
	if s.deps.Board == nil {
		return errorJSON(c, fiber.StatusNotFound, "widgets not configured")
	}
	var req trackingRequest
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return errorJSON(c, fiber.StatusBadRequest, `body must be {"enabled": true|false}`)
	}

	id := c.Params("id")
	if err := s.deps.Board.SetEnabled(id, *req.Enabled); err != nil {
		if errors.Is(err, widgets.ErrUnknownWidget) {
			return errorJSON(c, fiber.StatusNotFound, err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	if s.deps.Settings != nil {
		if _, err := s.deps.Settings.SetWidget(id, *req.Enabled); err != nil {
			s.logger.Warn("could not save widget setting", "widget", id, "error", err)
		}
	}
	return c.JSON(fiber.Map{"id": id, "enabled": *req.Enabled})
}

func (s *Server) handleCalendarAuth(c *fiber.Ctx) error {
	if s.deps.Calendar == nil {
		return errorJSON(c, fiber.StatusNotFound, "calendar not configured")
	}
	return c.JSON(fiber.Map{
		"connected": s.deps.Calendar.IsAuthenticated(),
		"auth_url":  s.deps.Calendar.AuthURL(),
	})
}

func (s *Server) handleCalendarCallback(c *fiber.Ctx) error {
	if s.deps.Calendar == nil {
		return errorJSON(c, fiber.StatusNotFound, "calendar not configured")
	}
	if msg := c.Query("error"); msg != "" {
		return errorJSON(c, fiber.StatusBadRequest, "authorization declined: "+msg)
	}
	code := c.Query("code")
	if code == "" {
		return errorJSON(c, fiber.StatusBadRequest, "missing code")
	}
	if err := s.deps.Calendar.HandleCallback(c.UserContext(), c.Query("state"), code); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if s.deps.Board != nil {
		if _, err := s.deps.Board.Refresh("calendar"); err != nil {
			s.logger.Debug("calendar widget not on board", "error", err)
		}
	}
	return c.SendString("Calendar connected. You can close this window.")
}
