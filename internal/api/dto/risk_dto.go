package dto

import (
	"time"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// RiskRequest payload for create and update. Department is ignored for
// department users, whose risks always land in their own department.
type RiskRequest struct {
	DepartmentID       string  `json:"department_id"`
	ExpectedProblem    string  `json:"expected_problem" validate:"required"`
	Impact             string  `json:"impact" validate:"required"`
	ResolutionDuration int     `json:"estimated_resolution_duration" validate:"required,gt=0"`
	ResolutionUnit     string  `json:"resolution_duration_unit" validate:"omitempty,oneof=HOURS DAYS WEEKS"`
	MitigationNotes    *string `json:"mitigation_notes"`
	Severity           string  `json:"severity" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Status             string  `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}

// RiskResponse is the API shape of a risk.
type RiskResponse struct {
	ID                 string              `json:"id"`
	DepartmentID       string              `json:"department_id"`
	ExpectedProblem    string              `json:"expected_problem"`
	Impact             string              `json:"impact"`
	ResolutionDuration int                 `json:"estimated_resolution_duration"`
	ResolutionUnit     domain.DurationUnit `json:"resolution_duration_unit"`
	ResolutionDisplay  string              `json:"resolution_display"`
	MitigationNotes    *string             `json:"mitigation_notes"`
	Severity           domain.Severity     `json:"severity"`
	Status             domain.Status       `json:"status"`
	IsLocked           bool                `json:"is_locked"`
	LockedBy           *string             `json:"locked_by"`
	LockedAt           *time.Time          `json:"locked_at"`
	CreatedBy          *string             `json:"created_by"`
	UpdatedBy          *string             `json:"updated_by"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// RiskListResponse is one page of risks with pagination metadata.
type RiskListResponse struct {
	Items      []RiskResponse `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int            `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// RiskSummary converts a domain risk.
func RiskSummary(risk *domain.Risk) RiskResponse {
	return RiskResponse{
		ID:                 risk.ID,
		DepartmentID:       risk.DepartmentID,
		ExpectedProblem:    risk.ExpectedProblem,
		Impact:             risk.Impact,
		ResolutionDuration: risk.ResolutionDuration,
		ResolutionUnit:     risk.ResolutionUnit,
		ResolutionDisplay:  risk.DurationDisplay(),
		MitigationNotes:    risk.MitigationNotes,
		Severity:           risk.Severity,
		Status:             risk.Status,
		IsLocked:           risk.IsLocked,
		LockedBy:           risk.LockedBy,
		LockedAt:           risk.LockedAt,
		CreatedBy:          risk.CreatedBy,
		UpdatedBy:          risk.UpdatedBy,
		CreatedAt:          risk.CreatedAt,
		UpdatedAt:          risk.UpdatedAt,
	}
}
