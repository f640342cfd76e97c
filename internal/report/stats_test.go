package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

func TestComputeEmptySet(t *testing.T) {
	stats := Compute(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.OpenPct)
	assert.Equal(t, 0.0, stats.CriticalPct)
	assert.Equal(t, 0.0, stats.AvgResolutionRaw)
}

func TestComputeCountsAndPercentages(t *testing.T) {
	risks := []domain.Risk{
		{Status: domain.StatusOpen, Severity: domain.SeverityCritical, ResolutionDuration: 4, IsLocked: true},
		{Status: domain.StatusOpen, Severity: domain.SeverityHigh, ResolutionDuration: 2},
		{Status: domain.StatusInProgress, Severity: domain.SeverityMedium, ResolutionDuration: 1},
	}

	stats := Compute(risks)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Critical)
	assert.Equal(t, 1, stats.Locked)
	assert.Equal(t, 66.7, stats.OpenPct)
	assert.Equal(t, 33.3, stats.InProgressPct)
	assert.Equal(t, 33.3, stats.CriticalPct)
}

// Durations recorded in different units are averaged as raw numbers; 4
// hours, 2 days and 1 week average to (4+2+1)/3.
func TestAvgResolutionIsUnitNaive(t *testing.T) {
	risks := []domain.Risk{
		{ResolutionDuration: 4, ResolutionUnit: domain.UnitHours},
		{ResolutionDuration: 2, ResolutionUnit: domain.UnitDays},
		{ResolutionDuration: 1, ResolutionUnit: domain.UnitWeeks},
	}

	stats := Compute(risks)
	assert.Equal(t, 2.3, stats.AvgResolutionRaw)
}

func TestSeverityDistributionIncludesZeroLevels(t *testing.T) {
	risks := []domain.Risk{
		{Severity: domain.SeverityHigh},
		{Severity: domain.SeverityHigh},
		{Severity: domain.SeverityLow},
	}

	dist := SeverityDistribution(risks)

	assert.Equal(t, []SeverityCount{
		{domain.SeverityLow, 1},
		{domain.SeverityMedium, 0},
		{domain.SeverityHigh, 2},
		{domain.SeverityCritical, 0},
	}, dist)
}

func TestTopDepartments(t *testing.T) {
	departments := []domain.Department{
		{ID: "d1", Code: "IT"},
		{ID: "d2", Code: "HR"},
		{ID: "d3", Code: "FIN"},
		{ID: "d4", Code: "OPS"},
	}
	risks := []domain.Risk{
		{DepartmentID: "d2"},
		{DepartmentID: "d2"},
		{DepartmentID: "d2"},
		{DepartmentID: "d1"},
		{DepartmentID: "d3"},
	}

	top := TopDepartments(departments, risks, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "HR", top[0].Department.Code)
	assert.Equal(t, 3, top[0].Count)
	// d1 and d3 tie at one risk each; the stable sort keeps input order
	assert.Equal(t, "IT", top[1].Department.Code)
}

func TestTopDepartmentsExcludesZeroCounts(t *testing.T) {
	departments := []domain.Department{{ID: "d1", Code: "IT"}, {ID: "d2", Code: "HR"}}
	risks := []domain.Risk{{DepartmentID: "d1"}}

	top := TopDepartments(departments, risks, 5)

	assert.Len(t, top, 1)
	assert.Equal(t, "IT", top[0].Department.Code)
}

func TestComputeStatusBySeverity(t *testing.T) {
	risks := []domain.Risk{
		{Severity: domain.SeverityLow, Status: domain.StatusOpen},
		{Severity: domain.SeverityCritical, Status: domain.StatusOpen},
		{Severity: domain.SeverityCritical, Status: domain.StatusInProgress},
		{Severity: domain.SeverityCritical, Status: domain.StatusResolved},
	}

	m := ComputeStatusBySeverity(risks)

	assert.Equal(t, domain.Severities, m.Severities)
	assert.Equal(t, []int{1, 0, 0, 1}, m.Open)
	assert.Equal(t, []int{0, 0, 0, 1}, m.InProgress)
}

func TestDepartmentBreakdownTruncatesNames(t *testing.T) {
	departments := []domain.Department{
		{ID: "d1", Name: "Department With A Very Long Name Indeed", Code: "LONG"},
	}
	risks := []domain.Risk{
		{DepartmentID: "d1", Status: domain.StatusOpen, Severity: domain.SeverityCritical},
		{DepartmentID: "d1", Status: domain.StatusClosed, Severity: domain.SeverityHigh},
	}

	rows := DepartmentBreakdown(departments, risks)

	assert.Len(t, rows, 1)
	assert.Equal(t, "Department With A Very Lo", rows[0].Name)
	assert.Len(t, rows[0].Name, 25)
	assert.Equal(t, 2, rows[0].Total)
	assert.Equal(t, 1, rows[0].Open)
	assert.Equal(t, 1, rows[0].Critical)
	assert.Equal(t, 1, rows[0].High)
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 33.3, Percentage(1, 3))
	assert.Equal(t, 66.7, Percentage(2, 3))
	assert.Equal(t, 100.0, Percentage(3, 3))
}
