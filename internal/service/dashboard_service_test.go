package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
)

func dashboardFixture(t *testing.T) (*DashboardService, *riskFixture) {
	t.Helper()
	f := newRiskFixture(t)
	// nil cache: aggregation must work without Redis
	return NewDashboardService(f.risks, f.depts, nil, 0, nil), f
}

func TestAdminDashboardAggregatesAllDepartments(t *testing.T) {
	dashboards, f := dashboardFixture(t)
	ctx := context.Background()

	input := validInput(f.itDept.ID)
	input.Severity = domain.SeverityCritical
	_, err := f.service.Create(ctx, f.itUser, input)
	require.NoError(t, err)

	input = validInput(f.itDept.ID)
	input.ExpectedProblem = "second it problem"
	input.Status = domain.StatusResolved
	_, err = f.service.Create(ctx, f.itUser, input)
	require.NoError(t, err)

	input = validInput(f.hrDept.ID)
	input.ExpectedProblem = "hr problem"
	_, err = f.service.Create(ctx, f.hrUser, input)
	require.NoError(t, err)

	dashboard, err := dashboards.Get(ctx, f.admin)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Admin)
	assert.Nil(t, dashboard.Department)

	admin := dashboard.Admin
	assert.Equal(t, 3, admin.TotalRisks)
	assert.Equal(t, 2, admin.OpenRisks)
	assert.Equal(t, 1, admin.CriticalRisks)
	assert.Len(t, admin.RecentRisks, 3)

	// per-department rows cover every active department, including HR
	require.Len(t, admin.DepartmentStats, 2)
	byCode := map[string]DepartmentStat{}
	for _, stat := range admin.DepartmentStats {
		byCode[stat.Department.Code] = stat
	}
	assert.Equal(t, 2, byCode["IT"].TotalRisks)
	assert.Equal(t, 1, byCode["IT"].CriticalRisks)
	assert.Equal(t, 1, byCode["HR"].TotalRisks)
}

func TestViewerGetsAdminDashboard(t *testing.T) {
	dashboards, f := dashboardFixture(t)
	ctx := context.Background()
	_, err := f.service.Create(ctx, f.itUser, validInput(f.itDept.ID))
	require.NoError(t, err)

	dashboard, err := dashboards.Get(ctx, f.viewer)

	require.NoError(t, err)
	require.NotNil(t, dashboard.Admin)
	assert.Equal(t, 1, dashboard.Admin.TotalRisks)
}

func TestDepartmentUserDashboardScopedToOwnDepartment(t *testing.T) {
	dashboards, f := dashboardFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		input := validInput(f.itDept.ID)
		input.ExpectedProblem = fmt.Sprintf("it problem %d", i)
		_, err := f.service.Create(ctx, f.itUser, input)
		require.NoError(t, err)
	}
	input := validInput(f.hrDept.ID)
	input.ExpectedProblem = "hr problem"
	_, err := f.service.Create(ctx, f.hrUser, input)
	require.NoError(t, err)

	risks, err := f.risks.ListWithFilter(ctx, repository.RiskFilter{DepartmentID: &f.itDept.ID})
	require.NoError(t, err)
	_, err = f.service.Lock(ctx, f.admin, risks[0].ID)
	require.NoError(t, err)

	dashboard, err := dashboards.Get(ctx, f.itUser)
	require.NoError(t, err)
	assert.Nil(t, dashboard.Admin)
	require.NotNil(t, dashboard.Department)

	dept := dashboard.Department
	assert.Equal(t, "IT", dept.Department.Code)
	assert.Equal(t, 12, dept.TotalRisks)
	assert.Equal(t, 1, dept.LockedRisks)
	assert.Len(t, dept.RecentRisks, 10, "recent list caps at ten")
}

func TestDepartmentUserWithoutDepartmentGetsEmptyDashboard(t *testing.T) {
	dashboards, _ := dashboardFixture(t)

	orphan := &domain.User{ID: "user-o", Role: domain.RoleDepartmentUser}
	dashboard, err := dashboards.Get(context.Background(), orphan)

	require.NoError(t, err)
	assert.Nil(t, dashboard.Admin)
	assert.Nil(t, dashboard.Department)
}
