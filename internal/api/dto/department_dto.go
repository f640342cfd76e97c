package dto

import (
	"time"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// DepartmentRequest payload for admin create and update.
type DepartmentRequest struct {
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required,max=20"`
	Description  string `json:"description"`
	HeadName     string `json:"head_name"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
	IsActive     *bool  `json:"is_active"`
}

// DepartmentResponse is the API shape of a department.
type DepartmentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	HeadName     string    `json:"head_name"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DepartmentSummary converts a domain department.
func DepartmentSummary(dept *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:           dept.ID,
		Name:         dept.Name,
		Code:         dept.Code,
		Description:  dept.Description,
		HeadName:     dept.HeadName,
		ContactEmail: dept.ContactEmail,
		ContactPhone: dept.ContactPhone,
		IsActive:     dept.IsActive,
		CreatedAt:    dept.CreatedAt,
		UpdatedAt:    dept.UpdatedAt,
	}
}
