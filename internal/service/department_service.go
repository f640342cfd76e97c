package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// DepartmentService manages the department registry. Listing is open to
// every authenticated role (department pickers need it); writes are
// admin-only at the route gate.
type DepartmentService struct {
	departments repository.DepartmentRepository
	logger      *zap.Logger
}

// NewDepartmentService constructs the service.
func NewDepartmentService(departments repository.DepartmentRepository, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{departments: departments, logger: logger}
}

// DepartmentInput describes the mutable department fields.
type DepartmentInput struct {
	Name         string
	Code         string
	Description  string
	HeadName     string
	ContactEmail string
	ContactPhone string
	IsActive     *bool
}

// List returns departments ordered by name. Admins see inactive ones too;
// everyone else gets the active set.
func (s *DepartmentService) List(ctx context.Context, actor *domain.User) ([]domain.Department, error) {
	var (
		departments []domain.Department
		err         error
	)
	if actor.Role == domain.RoleAdmin {
		departments, err = s.departments.List(ctx)
	} else {
		departments, err = s.departments.ListActive(ctx)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return departments, nil
}

// Get fetches one department.
func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// Create registers a department. Codes are unique.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	if input.Name == "" || input.Code == "" {
		return nil, apperrors.NewValidationError("name and code are required", nil)
	}
	if _, err := s.departments.GetByCode(ctx, input.Code); err == nil {
		return nil, apperrors.NewConflict("department code already exists", map[string]any{"code": input.Code})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	dept := &domain.Department{
		Name:         input.Name,
		Code:         input.Code,
		Description:  input.Description,
		HeadName:     input.HeadName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		IsActive:     active,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("department created", zap.String("code", dept.Code))
	return dept, nil
}

// Update edits a department. Deactivation never cascades to risks or
// users.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if input.Name == "" || input.Code == "" {
		return nil, apperrors.NewValidationError("name and code are required", nil)
	}
	if input.Code != dept.Code {
		if _, err := s.departments.GetByCode(ctx, input.Code); err == nil {
			return nil, apperrors.NewConflict("department code already exists", map[string]any{"code": input.Code})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}

	dept.Name = input.Name
	dept.Code = input.Code
	dept.Description = input.Description
	dept.HeadName = input.HeadName
	dept.ContactEmail = input.ContactEmail
	dept.ContactPhone = input.ContactPhone
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}
