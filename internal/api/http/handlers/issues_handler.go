package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cleantownship/cleantown-service/internal/api/dto"
	"github.com/cleantownship/cleantown-service/internal/auth"
	"github.com/cleantownship/cleantown-service/internal/service"
	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

// IssuesHandler backs the issue-submission screen.
type IssuesHandler struct {
	issues *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{issues: issueService}
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.issues.Submit(c.UserContext(), sess, service.IssueInput{
		Address:  req.Address,
		Desc:     req.Desc,
		ImageURI: req.ImageURI,
		Datetime: req.Datetime,
		Coords:   req.Coords,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIssueResponse(*issue)})
}

// ListIssues GET /issues returns the caller's own issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	issues, err := h.issues.ListOwn(c.UserContext(), sess)
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for _, issue := range issues {
		items = append(items, dto.NewIssueResponse(issue))
	}
	return c.JSON(fiber.Map{"data": items})
}
