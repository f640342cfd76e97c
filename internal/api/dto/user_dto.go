package dto

import (
	"time"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the account summary.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Role         domain.Role     `json:"role"`
	DepartmentID *string         `json:"department_id"`
	Language     domain.Language `json:"language"`
}

// UserSummary converts a domain user.
func UserSummary(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName(),
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		Language:     user.Language,
	}
}
