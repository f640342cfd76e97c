package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/export"
	"github.com/spec-kit/bcm-risk-service/internal/report"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

const topDepartmentLimit = 5

// ExportFilter narrows the spreadsheet export. All fields optional.
type ExportFilter struct {
	DepartmentID *string
	Severity     *domain.Severity
	Status       *domain.Status
}

// ExportService produces the admin-only XLSX and PDF exports.
type ExportService struct {
	risks       repository.RiskRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	logger      *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(
	risks repository.RiskRepository,
	departments repository.DepartmentRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{risks: risks, departments: departments, users: users, logger: logger}
}

// WriteExcel streams the filtered risk register as an XLSX workbook.
func (s *ExportService) WriteExcel(ctx context.Context, w io.Writer, filter ExportFilter) error {
	if filter.Severity != nil && !filter.Severity.Valid() {
		return apperrors.NewValidationError("invalid severity filter", nil)
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return apperrors.NewValidationError("invalid status filter", nil)
	}

	risks, err := s.risks.ListWithFilter(ctx, repository.RiskFilter{
		DepartmentID: filter.DepartmentID,
		Severity:     filter.Severity,
		Status:       filter.Status,
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	deptNames := make(map[string]string, len(departments))
	for _, dept := range departments {
		deptNames[dept.ID] = dept.Name
	}

	rows := export.BuildRows(risks, deptNames, s.creatorNames(ctx, risks))
	if err := export.WriteWorkbook(w, rows); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// WritePDF streams the executive risk report as a PDF.
func (s *ExportService) WritePDF(ctx context.Context, w io.Writer) error {
	risks, err := s.risks.ListWithFilter(ctx, repository.RiskFilter{})
	if err != nil {
		return apperrors.MapError(err)
	}
	departments, err := s.departments.ListActive(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}

	stats := report.Compute(risks)

	data := export.ReportData{
		GeneratedAt: time.Now(),
		Stats:       stats,
		Breakdown:   report.DepartmentBreakdown(departments, risks),
	}
	// Chart failures degrade the report instead of failing the export.
	if data.StatusChart, err = export.StatusPie(stats); err != nil {
		s.logger.Warn("status chart render failed", zap.Error(err))
	}
	if data.SeverityChart, err = export.SeverityPie(stats); err != nil {
		s.logger.Warn("severity chart render failed", zap.Error(err))
	}
	top := report.TopDepartments(departments, risks, topDepartmentLimit)
	if data.DepartmentChart, err = export.TopDepartmentsBar(top); err != nil {
		s.logger.Warn("department chart render failed", zap.Error(err))
	}
	matrix := report.ComputeStatusBySeverity(risks)
	if data.BySeverityChart, err = export.StatusBySeverityBar(matrix); err != nil {
		s.logger.Warn("severity matrix chart render failed", zap.Error(err))
	}

	if err := export.WritePDF(w, data); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// creatorNames resolves each distinct creator once.
func (s *ExportService) creatorNames(ctx context.Context, risks []domain.Risk) map[string]string {
	names := make(map[string]string)
	for i := range risks {
		createdBy := risks[i].CreatedBy
		if createdBy == nil {
			continue
		}
		if _, seen := names[*createdBy]; seen {
			continue
		}
		user, err := s.users.GetByID(ctx, *createdBy)
		if err != nil {
			names[*createdBy] = ""
			continue
		}
		names[*createdBy] = user.FullName()
	}
	return names
}
