package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/persistence"
	"github.com/spec-kit/bcm-risk-service/internal/report"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
	apperrors "github.com/spec-kit/bcm-risk-service/pkg/util"
)

const recentRiskLimit = 10

// DepartmentStat is one department's slice of the admin dashboard.
type DepartmentStat struct {
	Department    domain.Department `json:"department"`
	TotalRisks    int               `json:"total_risks"`
	OpenRisks     int               `json:"open_risks"`
	CriticalRisks int               `json:"critical_risks"`
}

// AdminDashboard aggregates organization-wide figures. Viewers get the
// same dashboard, read-only.
type AdminDashboard struct {
	TotalRisks         int                    `json:"total_risks"`
	OpenRisks          int                    `json:"open_risks"`
	CriticalRisks      int                    `json:"critical_risks"`
	DepartmentStats    []DepartmentStat       `json:"dept_stats"`
	SeverityStats      []report.SeverityCount `json:"severity_stats"`
	RecentRisks        []domain.Risk          `json:"recent_risks"`
	AvgResolutionHours float64                `json:"avg_resolution_hours"`
}

// DepartmentDashboard aggregates figures for a single department.
type DepartmentDashboard struct {
	Department    domain.Department      `json:"department"`
	TotalRisks    int                    `json:"total_risks"`
	OpenRisks     int                    `json:"open_risks"`
	CriticalRisks int                    `json:"critical_risks"`
	LockedRisks   int                    `json:"locked_risks"`
	SeverityStats []report.SeverityCount `json:"severity_stats"`
	RecentRisks   []domain.Risk          `json:"recent_risks"`
}

// Dashboard is the role-shaped payload returned to the caller. Exactly one
// of Admin or Department is set; a department user without a department
// gets neither.
type Dashboard struct {
	Role       domain.Role          `json:"role"`
	Admin      *AdminDashboard      `json:"admin,omitempty"`
	Department *DepartmentDashboard `json:"department,omitempty"`
}

// DashboardService assembles role-scoped dashboards with a best-effort
// Redis cache in front of the aggregation.
type DashboardService struct {
	risks       repository.RiskRepository
	departments repository.DepartmentRepository
	cache       *persistence.Redis
	ttl         time.Duration
	logger      *zap.Logger
}

// NewDashboardService constructs the service. cache may be nil.
func NewDashboardService(
	risks repository.RiskRepository,
	departments repository.DepartmentRepository,
	cache *persistence.Redis,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{risks: risks, departments: departments, cache: cache, ttl: ttl, logger: logger}
}

// Get returns the dashboard shaped for the actor's role.
func (s *DashboardService) Get(ctx context.Context, actor *domain.User) (*Dashboard, error) {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleViewer:
		admin, err := s.adminDashboard(ctx)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Role: actor.Role, Admin: admin}, nil
	case domain.RoleDepartmentUser:
		if actor.DepartmentID == nil {
			return &Dashboard{Role: actor.Role}, nil
		}
		dept, err := s.departmentDashboard(ctx, *actor.DepartmentID)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Role: actor.Role, Department: dept}, nil
	default:
		return &Dashboard{Role: actor.Role}, nil
	}
}

func (s *DashboardService) adminDashboard(ctx context.Context) (*AdminDashboard, error) {
	const cacheKey = "dashboard:admin"
	var cached AdminDashboard
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	risks, err := s.risks.ListWithFilter(ctx, repository.RiskFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	departments, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := report.Compute(risks)

	deptStats := make([]DepartmentStat, 0, len(departments))
	for _, dept := range departments {
		stat := DepartmentStat{Department: dept}
		for i := range risks {
			r := &risks[i]
			if r.DepartmentID != dept.ID {
				continue
			}
			stat.TotalRisks++
			if r.Status == domain.StatusOpen {
				stat.OpenRisks++
			}
			if r.Severity == domain.SeverityCritical {
				stat.CriticalRisks++
			}
		}
		deptStats = append(deptStats, stat)
	}

	dashboard := &AdminDashboard{
		TotalRisks:         stats.Total,
		OpenRisks:          stats.Open,
		CriticalRisks:      stats.Critical,
		DepartmentStats:    deptStats,
		SeverityStats:      report.SeverityDistribution(risks),
		RecentRisks:        recentRisks(risks),
		AvgResolutionHours: stats.AvgResolutionRaw,
	}
	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

func (s *DashboardService) departmentDashboard(ctx context.Context, departmentID string) (*DepartmentDashboard, error) {
	cacheKey := "dashboard:dept:" + departmentID
	var cached DepartmentDashboard
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	risks, err := s.risks.ListWithFilter(ctx, repository.RiskFilter{DepartmentID: &departmentID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := report.Compute(risks)
	dashboard := &DepartmentDashboard{
		Department:    *dept,
		TotalRisks:    stats.Total,
		OpenRisks:     stats.Open,
		CriticalRisks: stats.Critical,
		LockedRisks:   stats.Locked,
		SeverityStats: report.SeverityDistribution(risks),
		RecentRisks:   recentRisks(risks),
	}
	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Invalidate drops cached dashboards after a risk write.
func (s *DashboardService) Invalidate(ctx context.Context, departmentID string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	keys := []string{"dashboard:admin"}
	if departmentID != "" {
		keys = append(keys, "dashboard:dept:"+departmentID)
	}
	if err := s.cache.Client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// recentRisks keeps the ten newest entries; listings already come back
// newest first.
func recentRisks(risks []domain.Risk) []domain.Risk {
	if len(risks) > recentRiskLimit {
		risks = risks[:recentRiskLimit]
	}
	out := make([]domain.Risk, len(risks))
	copy(out, risks)
	return out
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cache.Client == nil {
		return false
	}
	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("corrupt dashboard cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
