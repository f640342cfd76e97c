package export

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spec-kit/bcm-risk-service/internal/report"
)

// Chart palette, matching the dashboard UI colors.
var (
	colorOpen       = drawing.ColorFromHex("ef4444")
	colorInProgress = drawing.ColorFromHex("3b82f6")
	colorResolved   = drawing.ColorFromHex("22c55e")
	colorClosed     = drawing.ColorFromHex("6b7280")

	colorCritical = drawing.ColorFromHex("dc2626")
	colorHigh     = drawing.ColorFromHex("f59e0b")
	colorMedium   = drawing.ColorFromHex("eab308")
	colorLow      = drawing.ColorFromHex("3b82f6")

	colorBar = drawing.ColorFromHex("22c55e")
)

// StatusPie renders the status distribution pie. Returns nil bytes when
// every slice is zero, which the PDF treats as "skip this chart".
func StatusPie(stats report.Stats) ([]byte, error) {
	values := []chart.Value{
		{Value: float64(stats.Open), Label: "Open", Style: chart.Style{FillColor: colorOpen}},
		{Value: float64(stats.InProgress), Label: "In Progress", Style: chart.Style{FillColor: colorInProgress}},
		{Value: float64(stats.Resolved), Label: "Resolved", Style: chart.Style{FillColor: colorResolved}},
		{Value: float64(stats.Closed), Label: "Closed", Style: chart.Style{FillColor: colorClosed}},
	}
	return renderPie("Risk Status Distribution", values)
}

// SeverityPie renders the severity distribution pie, highest severity
// first.
func SeverityPie(stats report.Stats) ([]byte, error) {
	values := []chart.Value{
		{Value: float64(stats.Critical), Label: "Critical", Style: chart.Style{FillColor: colorCritical}},
		{Value: float64(stats.High), Label: "High", Style: chart.Style{FillColor: colorHigh}},
		{Value: float64(stats.Medium), Label: "Medium", Style: chart.Style{FillColor: colorMedium}},
		{Value: float64(stats.Low), Label: "Low", Style: chart.Style{FillColor: colorLow}},
	}
	return renderPie("Severity Distribution", values)
}

// TopDepartmentsBar renders risk counts for the busiest departments,
// labeled by department code.
func TopDepartmentsBar(top []report.DepartmentCount) ([]byte, error) {
	if len(top) == 0 {
		return nil, nil
	}
	bars := make([]chart.Value, 0, len(top))
	for _, entry := range top {
		bars = append(bars, chart.Value{
			Value: float64(entry.Count),
			Label: entry.Department.Code,
			Style: chart.Style{FillColor: colorBar},
		})
	}
	return renderBars("Top 5 Departments by Risk Count", bars)
}

// StatusBySeverityBar renders OPEN and IN_PROGRESS counts side by side for
// each severity level.
func StatusBySeverityBar(m report.StatusBySeverity) ([]byte, error) {
	bars := make([]chart.Value, 0, len(m.Severities)*2)
	var total int
	for i, sev := range m.Severities {
		bars = append(bars,
			chart.Value{
				Value: float64(m.Open[i]),
				Label: fmt.Sprintf("%s Open", sev),
				Style: chart.Style{FillColor: colorOpen},
			},
			chart.Value{
				Value: float64(m.InProgress[i]),
				Label: fmt.Sprintf("%s In Prog", sev),
				Style: chart.Style{FillColor: colorInProgress},
			},
		)
		total += m.Open[i] + m.InProgress[i]
	}
	if total == 0 {
		return nil, nil
	}
	return renderBars("Risk Status by Severity", bars)
}

func renderPie(title string, values []chart.Value) ([]byte, error) {
	// PieChart cannot render an all-zero set.
	nonZero := values[:0]
	for _, v := range values {
		if v.Value > 0 {
			nonZero = append(nonZero, v)
		}
	}
	if len(nonZero) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  512,
		Height: 512,
		Values: nonZero,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderBars(title string, bars []chart.Value) ([]byte, error) {
	graph := chart.BarChart{
		Title:    title,
		Width:    640,
		Height:   420,
		BarWidth: 40,
		Bars:     bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
