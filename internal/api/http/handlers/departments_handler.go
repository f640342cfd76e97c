package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bcm-risk-service/internal/api/dto"
	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/service"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// DepartmentsHandler manages department endpoints.
type DepartmentsHandler struct {
	service *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	departments, err := h.service.List(c.Context(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, dto.DepartmentSummary(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	dept, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentSummary(dept)})
}

// Create POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	input, err := parseDepartmentRequest(c)
	if err != nil {
		return err
	}
	dept, err := h.service.Create(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.DepartmentSummary(dept)})
}

// Update PUT /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	input, err := parseDepartmentRequest(c)
	if err != nil {
		return err
	}
	dept, err := h.service.Update(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentSummary(dept)})
}

func parseDepartmentRequest(c *fiber.Ctx) (service.DepartmentInput, error) {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return service.DepartmentInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return service.DepartmentInput{}, apperrors.NewValidationError("invalid payload", details)
	}
	return service.DepartmentInput{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		HeadName:     req.HeadName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     req.IsActive,
	}, nil
}
