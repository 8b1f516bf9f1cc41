package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cleantownship/cleantown-service/internal/api/dto"
	"github.com/cleantownship/cleantown-service/internal/auth"
	"github.com/cleantownship/cleantown-service/internal/service"
	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

// DashboardHandler backs the dashboard screen.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

// Get handles GET /dashboard.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	view, err := h.dashboard.Build(c.UserContext(), sess)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(view)})
}
