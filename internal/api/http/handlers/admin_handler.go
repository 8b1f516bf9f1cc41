package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/cleantownship/cleantown-service/internal/api/dto"
	"github.com/cleantownship/cleantown-service/internal/service"
	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

// AdminHandler exposes the reporter directory to administrators.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// ListReporters GET /admin/reporters.
func (h *AdminHandler) ListReporters(c *fiber.Ctx) error {
	reporters, err := h.auth.ListReporters(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ReporterResponse, 0, len(reporters))
	for i := range reporters {
		items = append(items, dto.NewReporterResponse(&reporters[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetReporter GET /admin/reporters/:email.
func (h *AdminHandler) GetReporter(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil || email == "" {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": "Please enter a valid email"})
	}
	reporter, err := h.auth.GetReporter(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReporterResponse(reporter)})
}
