package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/service"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// DashboardHandler serves the role-scoped dashboard.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Get GET /dashboard.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	dashboard, err := h.service.Get(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}
