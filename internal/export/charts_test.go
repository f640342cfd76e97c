package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/report"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestStatusPieRendersPNG(t *testing.T) {
	stats := report.Stats{Open: 3, InProgress: 1, Resolved: 2}

	png, err := StatusPie(stats)

	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestPiesSkipAllZeroSets(t *testing.T) {
	png, err := StatusPie(report.Stats{})
	require.NoError(t, err)
	assert.Nil(t, png)

	png, err = SeverityPie(report.Stats{})
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestTopDepartmentsBarSkipsEmptyInput(t *testing.T) {
	png, err := TopDepartmentsBar(nil)
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestTopDepartmentsBarRendersPNG(t *testing.T) {
	top := []report.DepartmentCount{
		{Department: domain.Department{Code: "IT"}, Count: 5},
		{Department: domain.Department{Code: "HR"}, Count: 2},
	}

	png, err := TopDepartmentsBar(top)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestStatusBySeverityBarSkipsAllZeroMatrix(t *testing.T) {
	matrix := report.ComputeStatusBySeverity(nil)

	png, err := StatusBySeverityBar(matrix)

	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestPDFReportRenders(t *testing.T) {
	risks := []domain.Risk{
		{Status: domain.StatusOpen, Severity: domain.SeverityCritical, DepartmentID: "d1", ResolutionDuration: 4},
		{Status: domain.StatusResolved, Severity: domain.SeverityLow, DepartmentID: "d1", ResolutionDuration: 2},
	}
	departments := []domain.Department{{ID: "d1", Name: "Information Technology", Code: "IT", IsActive: true}}
	stats := report.Compute(risks)

	statusPNG, err := StatusPie(stats)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WritePDF(&buf, ReportData{
		Stats:       stats,
		Breakdown:   report.DepartmentBreakdown(departments, risks),
		StatusChart: statusPNG,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
