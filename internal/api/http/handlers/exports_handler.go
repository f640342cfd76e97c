package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/service"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// ExportsHandler serves the admin-only file exports.
type ExportsHandler struct {
	service *service.ExportService
}

// NewExportsHandler constructs handler.
func NewExportsHandler(exportService *service.ExportService) *ExportsHandler {
	return &ExportsHandler{service: exportService}
}

// Excel GET /exports/risks.xlsx.
func (h *ExportsHandler) Excel(c *fiber.Ctx) error {
	filter := service.ExportFilter{}
	if raw := c.Query("department"); raw != "" {
		department := raw
		filter.DepartmentID = &department
	}
	if raw := c.Query("severity"); raw != "" {
		severity := domain.Severity(raw)
		if !severity.Valid() {
			return apperrors.NewValidationError("invalid severity filter", map[string]any{"severity": raw})
		}
		filter.Severity = &severity
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Status = &status
	}

	var buf bytes.Buffer
	if err := h.service.WriteExcel(c.Context(), &buf, filter); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=bcm_risks_report.xlsx`)
	return c.Send(buf.Bytes())
}

// PDF GET /exports/report.pdf.
func (h *ExportsHandler) PDF(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.WritePDF(c.Context(), &buf); err != nil {
		return err
	}
	filename := fmt.Sprintf("bcm_risk_report_%s.pdf", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(buf.Bytes())
}
