package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/auth"
	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
)

// Seeder loads the initial departments, accounts and sample risks.
// Every record is get-or-create, so running it again changes nothing.
type Seeder struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
	risks       repository.RiskRepository
	bcryptCost  int
	logger      *zap.Logger
}

// New constructs a seeder.
func New(
	departments repository.DepartmentRepository,
	users repository.UserRepository,
	risks repository.RiskRepository,
	bcryptCost int,
	logger *zap.Logger,
) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		departments: departments,
		users:       users,
		risks:       risks,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Result counts what a run actually created.
type Result struct {
	DepartmentsCreated int
	UsersCreated       int
	RisksCreated       int
}

type departmentSeed struct {
	name     string
	code     string
	headName string
}

var departmentSeeds = []departmentSeed{
	{"Information Technology", "IT", "John Smith"},
	{"Human Resources", "HR", "Jane Doe"},
	{"Finance", "FIN", "Michael Johnson"},
	{"Operations", "OPS", "Sarah Williams"},
	{"Marketing", "MKT", "David Brown"},
	{"Legal", "LEG", "Emily Davis"},
	{"Customer Service", "CS", "Robert Wilson"},
	{"Research & Development", "RD", "Lisa Anderson"},
}

type userSeed struct {
	username  string
	password  string
	email     string
	firstName string
	lastName  string
	role      domain.Role
	deptCode  string
	isStaff   bool
}

var userSeeds = []userSeed{
	{"admin", "admin123", "admin@bcm.com", "BCM", "Manager", domain.RoleAdmin, "", true},
	{"it_user", "password123", "it_user@bcm.com", "Tom", "Hardy", domain.RoleDepartmentUser, "IT", false},
	{"hr_user", "password123", "hr_user@bcm.com", "Alice", "Cooper", domain.RoleDepartmentUser, "HR", false},
	{"fin_user", "password123", "fin_user@bcm.com", "Bob", "Martin", domain.RoleDepartmentUser, "FIN", false},
	{"ops_user", "password123", "ops_user@bcm.com", "Carol", "White", domain.RoleDepartmentUser, "OPS", false},
	{"viewer", "viewer123", "viewer@bcm.com", "Audit", "Viewer", domain.RoleViewer, "", false},
}

type riskSeed struct {
	deptCode        string
	expectedProblem string
	impact          string
	severity        domain.Severity
	status          domain.Status
	duration        int
	unit            domain.DurationUnit
	mitigation      string
}

var riskSeeds = []riskSeed{
	{
		deptCode:        "IT",
		expectedProblem: "Server failure during peak hours causing system downtime",
		impact:          "Complete loss of access to critical systems affecting all departments",
		severity:        domain.SeverityCritical,
		status:          domain.StatusOpen,
		duration:        4,
		unit:            domain.UnitHours,
		mitigation:      "Implement redundant servers and automated failover system",
	},
	{
		deptCode:        "HR",
		expectedProblem: "Loss of employee records due to data corruption",
		impact:          "Unable to process payroll and maintain compliance with labor laws",
		severity:        domain.SeverityHigh,
		status:          domain.StatusInProgress,
		duration:        2,
		unit:            domain.UnitDays,
		mitigation:      "Daily backups to cloud storage with encryption",
	},
	{
		deptCode:        "FIN",
		expectedProblem: "Unauthorized access to financial systems",
		impact:          "Potential financial fraud and regulatory penalties",
		severity:        domain.SeverityCritical,
		status:          domain.StatusOpen,
		duration:        24,
		unit:            domain.UnitHours,
		mitigation:      "Implement multi-factor authentication and access logging",
	},
	{
		deptCode:        "OPS",
		expectedProblem: "Supply chain disruption from vendor bankruptcy",
		impact:          "Production delays and inability to fulfill customer orders",
		severity:        domain.SeverityMedium,
		status:          domain.StatusOpen,
		duration:        1,
		unit:            domain.UnitWeeks,
		mitigation:      "Maintain relationships with backup vendors",
	},
}

// Run seeds departments, users and sample risks in order, since risks
// reference both.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	deptByCode, err := s.seedDepartments(ctx, result)
	if err != nil {
		return nil, err
	}
	admin, err := s.seedUsers(ctx, deptByCode, result)
	if err != nil {
		return nil, err
	}
	if err := s.seedRisks(ctx, deptByCode, admin, result); err != nil {
		return nil, err
	}

	s.logger.Info("seeding completed",
		zap.Int("departments_created", result.DepartmentsCreated),
		zap.Int("users_created", result.UsersCreated),
		zap.Int("risks_created", result.RisksCreated))
	return result, nil
}

func (s *Seeder) seedDepartments(ctx context.Context, result *Result) (map[string]*domain.Department, error) {
	byCode := make(map[string]*domain.Department, len(departmentSeeds))
	for _, entry := range departmentSeeds {
		existing, err := s.departments.GetByCode(ctx, entry.code)
		if err == nil {
			byCode[entry.code] = existing
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		dept := &domain.Department{
			Name:     entry.name,
			Code:     entry.code,
			HeadName: entry.headName,
			IsActive: true,
		}
		if err := s.departments.Create(ctx, dept); err != nil {
			return nil, err
		}
		byCode[entry.code] = dept
		result.DepartmentsCreated++
		s.logger.Info("created department", zap.String("code", dept.Code), zap.String("name", dept.Name))
	}
	return byCode, nil
}

func (s *Seeder) seedUsers(ctx context.Context, deptByCode map[string]*domain.Department, result *Result) (*domain.User, error) {
	var admin *domain.User
	for _, entry := range userSeeds {
		existing, err := s.users.GetByUsername(ctx, entry.username)
		if err == nil {
			if entry.role == domain.RoleAdmin && admin == nil {
				admin = existing
			}
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}

		hash, err := auth.HashPassword(entry.password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user := &domain.User{
			Username:     entry.username,
			Email:        entry.email,
			PasswordHash: hash,
			FirstName:    entry.firstName,
			LastName:     entry.lastName,
			Role:         entry.role,
			Language:     domain.LanguageEnglish,
			IsStaff:      entry.isStaff,
			IsActive:     true,
		}
		if entry.deptCode != "" {
			dept, ok := deptByCode[entry.deptCode]
			if !ok {
				return nil, errors.New("seed user references unknown department " + entry.deptCode)
			}
			user.DepartmentID = &dept.ID
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		if entry.role == domain.RoleAdmin && admin == nil {
			admin = user
		}
		result.UsersCreated++
		s.logger.Info("created user", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	}
	return admin, nil
}

func (s *Seeder) seedRisks(ctx context.Context, deptByCode map[string]*domain.Department, admin *domain.User, result *Result) error {
	for _, entry := range riskSeeds {
		dept, ok := deptByCode[entry.deptCode]
		if !ok {
			return errors.New("seed risk references unknown department " + entry.deptCode)
		}

		exists, err := s.riskExists(ctx, dept.ID, entry.expectedProblem)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		mitigation := entry.mitigation
		risk := &domain.Risk{
			DepartmentID:       dept.ID,
			ExpectedProblem:    entry.expectedProblem,
			Impact:             entry.impact,
			ResolutionDuration: entry.duration,
			ResolutionUnit:     entry.unit,
			MitigationNotes:    &mitigation,
			Severity:           entry.severity,
			Status:             entry.status,
		}
		if admin != nil {
			risk.CreatedBy = &admin.ID
			risk.UpdatedBy = &admin.ID
		}
		if err := s.risks.Create(ctx, risk); err != nil {
			return err
		}
		result.RisksCreated++
		s.logger.Info("created risk", zap.String("department", dept.Code))
	}
	return nil
}

// riskExists checks for a risk keyed on department and problem statement.
func (s *Seeder) riskExists(ctx context.Context, departmentID, expectedProblem string) (bool, error) {
	search := expectedProblem
	matches, err := s.risks.ListWithFilter(ctx, repository.RiskFilter{
		DepartmentID: &departmentID,
		Search:       &search,
	})
	if err != nil {
		return false, err
	}
	for i := range matches {
		if matches[i].ExpectedProblem == expectedProblem {
			return true, nil
		}
	}
	return false, nil
}
