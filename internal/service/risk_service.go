package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/events"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

// PageSize is the fixed page size for risk listings.
const PageSize = 20

// RiskService coordinates the risk register workflows: creation, editing,
// the admin lock overlay and role-scoped listing.
type RiskService struct {
	risks       repository.RiskRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// RiskDependencies bundles collaborators for the risk service.
type RiskDependencies struct {
	RiskRepo       repository.RiskRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewRiskService constructs the service.
func NewRiskService(deps RiskDependencies) *RiskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{
		risks:       deps.RiskRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// RiskInput describes the mutable risk fields for create and update.
type RiskInput struct {
	DepartmentID       string
	ExpectedProblem    string
	Impact             string
	ResolutionDuration int
	ResolutionUnit     domain.DurationUnit
	MitigationNotes    *string
	Severity           domain.Severity
	Status             domain.Status
}

// RiskListInput captures listing criteria from the caller.
type RiskListInput struct {
	Severity *domain.Severity
	Status   *domain.Status
	Search   string
	Page     int
}

// RiskPage is one page of a role-scoped listing.
type RiskPage struct {
	Risks      []domain.Risk
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

func (in *RiskInput) validate() error {
	details := map[string]any{}
	if in.ExpectedProblem == "" {
		details["expected_problem"] = "required"
	}
	if in.Impact == "" {
		details["impact"] = "required"
	}
	if in.ResolutionDuration <= 0 {
		details["estimated_resolution_duration"] = "must be a positive integer"
	}
	if in.ResolutionUnit == "" {
		in.ResolutionUnit = domain.UnitHours
	} else if !in.ResolutionUnit.Valid() {
		details["resolution_duration_unit"] = "invalid unit"
	}
	if in.Severity == "" {
		in.Severity = domain.SeverityMedium
	} else if !in.Severity.Valid() {
		details["severity"] = "invalid severity"
	}
	// No transition graph: any of the four statuses is accepted at any time.
	if in.Status == "" {
		in.Status = domain.StatusOpen
	} else if !in.Status.Valid() {
		details["status"] = "invalid status"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid risk payload", details)
	}
	return nil
}

// Create records a new risk. A department user's risk always lands in
// their own department no matter what the payload says; an admin picks the
// department explicitly.
func (s *RiskService) Create(ctx context.Context, actor *domain.User, input RiskInput) (*domain.Risk, error) {
	var departmentID string
	switch actor.Role {
	case domain.RoleDepartmentUser:
		if actor.DepartmentID == nil {
			return nil, apperrors.NewValidationError("account has no department assigned", nil)
		}
		departmentID = *actor.DepartmentID
	case domain.RoleAdmin:
		if input.DepartmentID == "" {
			return nil, apperrors.NewValidationError("department_id required", map[string]any{"department_id": "required"})
		}
		departmentID = input.DepartmentID
	default:
		return nil, apperrors.NewForbidden("you do not have permission to create risks")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleAdmin && !dept.IsActive {
		return nil, apperrors.NewValidationError("department is inactive", map[string]any{"department_id": "inactive"})
	}

	risk := &domain.Risk{
		DepartmentID:       dept.ID,
		ExpectedProblem:    input.ExpectedProblem,
		Impact:             input.Impact,
		ResolutionDuration: input.ResolutionDuration,
		ResolutionUnit:     input.ResolutionUnit,
		MitigationNotes:    input.MitigationNotes,
		Severity:           input.Severity,
		Status:             input.Status,
		CreatedBy:          &actor.ID,
		UpdatedBy:          &actor.ID,
	}
	if err := s.risks.Create(ctx, risk); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventRiskCreated,
		RiskID: risk.ID,
		Actor:  events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.RiskChangedPayload{
			DepartmentName:  dept.Name,
			ExpectedProblem: risk.ExpectedProblem,
			Severity:        risk.Severity,
			Status:          risk.Status,
			Resolution:      risk.DurationDisplay(),
			CreatorName:     actor.FullName(),
			CreatedAt:       risk.CreatedAt,
			Action:          "created",
		},
	})
	return risk, nil
}

// Get returns the risk if the actor may view it. Out-of-scope access is a
// forbidden signal, deliberately distinguishable from not-found.
func (s *RiskService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Risk, error) {
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !domain.CanViewRisk(actor, risk) {
		s.logDenial(actor, risk.ID, "view")
		return nil, apperrors.NewForbidden("you do not have permission to view this risk")
	}
	return risk, nil
}

// Update edits an existing risk, enforcing the edit policy (locked risks
// reject department users).
func (s *RiskService) Update(ctx context.Context, actor *domain.User, id string, input RiskInput) (*domain.Risk, error) {
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !domain.CanEditRisk(actor, risk) {
		s.logDenial(actor, risk.ID, "edit")
		return nil, apperrors.NewForbidden("you do not have permission to edit this risk")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	// Only admins may move a risk between departments.
	if actor.Role == domain.RoleAdmin && input.DepartmentID != "" && input.DepartmentID != risk.DepartmentID {
		if _, err := s.departments.GetByID(ctx, input.DepartmentID); err != nil {
			return nil, apperrors.MapError(err)
		}
		risk.DepartmentID = input.DepartmentID
	}

	risk.ExpectedProblem = input.ExpectedProblem
	risk.Impact = input.Impact
	risk.ResolutionDuration = input.ResolutionDuration
	risk.ResolutionUnit = input.ResolutionUnit
	risk.MitigationNotes = input.MitigationNotes
	risk.Severity = input.Severity
	risk.Status = input.Status
	risk.UpdatedBy = &actor.ID

	if err := s.risks.Update(ctx, risk); err != nil {
		return nil, apperrors.MapError(err)
	}

	dept, err := s.departments.GetByID(ctx, risk.DepartmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:   events.EventRiskUpdated,
		RiskID: risk.ID,
		Actor:  events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.RiskChangedPayload{
			DepartmentName:  dept.Name,
			ExpectedProblem: risk.ExpectedProblem,
			Severity:        risk.Severity,
			Status:          risk.Status,
			Resolution:      risk.DurationDisplay(),
			CreatorName:     s.creatorName(ctx, risk),
			CreatedAt:       risk.CreatedAt,
			Action:          "updated",
		},
	})
	return risk, nil
}

// Delete removes a risk. Admin only.
func (s *RiskService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor.Role != domain.RoleAdmin {
		s.logDenial(actor, id, "delete")
		return apperrors.NewForbidden("only admins can delete risks")
	}
	if err := s.risks.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:   events.EventRiskDeleted,
		RiskID: id,
		Actor:  events.Actor{UserID: actor.ID, Role: actor.Role},
	})
	return nil
}

// Lock freezes a risk against department edits. Idempotent: locking an
// already locked risk refreshes locked_by and locked_at.
func (s *RiskService) Lock(ctx context.Context, actor *domain.User, id string) (*domain.Risk, error) {
	if actor.Role != domain.RoleAdmin {
		s.logDenial(actor, id, "lock")
		return nil, apperrors.NewForbidden("only admins can lock risks")
	}
	if err := s.risks.Lock(ctx, id, actor.ID, time.Now()); err != nil {
		return nil, apperrors.MapError(err)
	}
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventRiskLocked,
		RiskID:  id,
		Actor:   events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.RiskLockPayload{Locked: true, LockedBy: &actor.ID},
	})
	return risk, nil
}

// Unlock clears the lock so department users can edit again.
func (s *RiskService) Unlock(ctx context.Context, actor *domain.User, id string) (*domain.Risk, error) {
	if actor.Role != domain.RoleAdmin {
		s.logDenial(actor, id, "unlock")
		return nil, apperrors.NewForbidden("only admins can unlock risks")
	}
	if err := s.risks.Unlock(ctx, id); err != nil {
		return nil, apperrors.MapError(err)
	}
	risk, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventRiskUnlocked,
		RiskID:  id,
		Actor:   events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.RiskLockPayload{Locked: false},
	})
	return risk, nil
}

// List returns the actor's role-scoped page of risks: admins and viewers
// see all departments, department users only their own, anything else an
// empty set. Out-of-range pages clamp to the nearest valid page.
func (s *RiskService) List(ctx context.Context, actor *domain.User, input RiskListInput) (*RiskPage, error) {
	filter := repository.RiskFilter{
		Severity: input.Severity,
		Status:   input.Status,
	}
	if input.Search != "" {
		search := input.Search
		filter.Search = &search
	}

	switch actor.Role {
	case domain.RoleAdmin, domain.RoleViewer:
	case domain.RoleDepartmentUser:
		if actor.DepartmentID == nil {
			return emptyPage(), nil
		}
		filter.DepartmentID = actor.DepartmentID
	default:
		return emptyPage(), nil
	}

	total, err := s.risks.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	page, totalPages := ClampPage(input.Page, total, PageSize)
	filter.Limit = PageSize
	filter.Offset = (page - 1) * PageSize

	risks, err := s.risks.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &RiskPage{
		Risks:      risks,
		Page:       page,
		PageSize:   PageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// ClampPage normalizes a requested page number against the total record
// count: pages below 1 become 1, pages past the end become the last page.
func ClampPage(page, total, pageSize int) (int, int) {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}

func emptyPage() *RiskPage {
	return &RiskPage{Risks: []domain.Risk{}, Page: 1, PageSize: PageSize, TotalPages: 1}
}

func (s *RiskService) creatorName(ctx context.Context, risk *domain.Risk) string {
	if risk.CreatedBy == nil {
		return "N/A"
	}
	creator, err := s.users.GetByID(ctx, *risk.CreatedBy)
	if err != nil {
		return "N/A"
	}
	return creator.FullName()
}

func (s *RiskService) logDenial(actor *domain.User, riskID, action string) {
	s.logger.Warn("access denied",
		zap.String("action", action),
		zap.String("risk_id", riskID),
		zap.String("user_id", actor.ID),
		zap.String("role", string(actor.Role)))
}

func (s *RiskService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
