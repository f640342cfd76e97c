package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bcm-risk-service/internal/api/dto"
	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/service"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// RisksHandler manages risk register endpoints.
type RisksHandler struct {
	service *service.RiskService
}

// NewRisksHandler constructs handler.
func NewRisksHandler(riskService *service.RiskService) *RisksHandler {
	return &RisksHandler{service: riskService}
}

// Create POST /risks.
func (h *RisksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseRiskRequest(c)
	if err != nil {
		return err
	}
	risk, err := h.service.Create(c.Context(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.RiskSummary(risk)})
}

// List GET /risks.
func (h *RisksHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	input := service.RiskListInput{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   parseInt(c.Query("page"), 1),
	}
	if raw := c.Query("severity"); raw != "" {
		severity := domain.Severity(raw)
		if !severity.Valid() {
			return apperrors.NewValidationError("invalid severity filter", map[string]any{"severity": raw})
		}
		input.Severity = &severity
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		input.Status = &status
	}

	page, err := h.service.List(c.Context(), principal, input)
	if err != nil {
		return err
	}
	items := make([]dto.RiskResponse, 0, len(page.Risks))
	for i := range page.Risks {
		items = append(items, dto.RiskSummary(&page.Risks[i]))
	}
	return c.JSON(fiber.Map{"data": dto.RiskListResponse{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}})
}

// Get GET /risks/:id.
func (h *RisksHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	risk, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RiskSummary(risk)})
}

// Update PUT /risks/:id.
func (h *RisksHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseRiskRequest(c)
	if err != nil {
		return err
	}
	risk, err := h.service.Update(c.Context(), principal, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RiskSummary(risk)})
}

// Delete DELETE /risks/:id.
func (h *RisksHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Lock POST /risks/:id/lock.
func (h *RisksHandler) Lock(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	risk, err := h.service.Lock(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RiskSummary(risk)})
}

// Unlock POST /risks/:id/unlock.
func (h *RisksHandler) Unlock(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	risk, err := h.service.Unlock(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RiskSummary(risk)})
}

func parseRiskRequest(c *fiber.Ctx) (service.RiskInput, error) {
	var req dto.RiskRequest
	if err := c.BodyParser(&req); err != nil {
		return service.RiskInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return service.RiskInput{}, apperrors.NewValidationError("invalid payload", details)
	}
	return service.RiskInput{
		DepartmentID:       req.DepartmentID,
		ExpectedProblem:    req.ExpectedProblem,
		Impact:             req.Impact,
		ResolutionDuration: req.ResolutionDuration,
		ResolutionUnit:     domain.DurationUnit(req.ResolutionUnit),
		MitigationNotes:    req.MitigationNotes,
		Severity:           domain.Severity(req.Severity),
		Status:             domain.Status(req.Status),
	}, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
