package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/spec-kit/bcm-risk-service/internal/report"
)

// ReportData is everything the executive PDF needs, pre-aggregated.
type ReportData struct {
	GeneratedAt time.Time
	Stats       report.Stats
	Breakdown   []report.DepartmentBreakdownRow

	// Rendered chart PNGs. Nil entries are skipped.
	StatusChart     []byte
	SeverityChart   []byte
	DepartmentChart []byte
	BySeverityChart []byte
}

// WritePDF renders the executive risk report: title page with the summary
// table, the analytics charts, then the per-department breakdown.
func WritePDF(w io.Writer, data ReportData) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(22, 163, 74)
	pdf.CellFormat(0, 10, "Business Continuity Management", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 10, "Risk Assessment Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	generated := data.GeneratedAt.Format("January 2, 2006 at 15:04")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on: %s", generated), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	writeHeading(pdf, "Executive Summary")
	writeSummaryTable(pdf, data.Stats)
	pdf.Ln(10)

	writeHeading(pdf, "Risk Analytics & Visualizations")
	writeCharts(pdf, data)

	pdf.AddPage()
	writeHeading(pdf, "Department Risk Breakdown")
	writeBreakdownTable(pdf, data.Breakdown)

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 4, "This report is confidential and for internal use only.", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, "Generated by BCM Risk Management System", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

func writeHeading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(22, 163, 74)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func writeSummaryTable(pdf *fpdf.Fpdf, stats report.Stats) {
	type summaryRow struct {
		metric string
		count  int
		pct    string
	}
	rows := []summaryRow{
		{"Total Risks", stats.Total, "100%"},
		{"Open Risks", stats.Open, fmt.Sprintf("%.1f%%", stats.OpenPct)},
		{"In Progress", stats.InProgress, fmt.Sprintf("%.1f%%", stats.InProgressPct)},
		{"Resolved Risks", stats.Resolved, fmt.Sprintf("%.1f%%", stats.ResolvedPct)},
		{"Critical Severity", stats.Critical, fmt.Sprintf("%.1f%%", stats.CriticalPct)},
		{"High Severity", stats.High, fmt.Sprintf("%.1f%%", stats.HighPct)},
	}

	colWidths := []float64{80, 40, 40}
	tableHeader(pdf, []string{"Metric", "Count", "Percentage"}, colWidths)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		setRowFill(pdf, i)
		pdf.CellFormat(colWidths[0], 7, row.metric, "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[1], 7, fmt.Sprintf("%d", row.count), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[2], 7, row.pct, "1", 1, "C", true, 0, "")
	}
}

func writeCharts(pdf *fpdf.Fpdf, data ReportData) {
	charts := []struct {
		name string
		png  []byte
		w, h float64
	}{
		{"chart-status", data.StatusChart, 88, 88},
		{"chart-severity", data.SeverityChart, 88, 88},
		{"chart-departments", data.DepartmentChart, 88, 58},
		{"chart-by-severity", data.BySeverityChart, 88, 58},
	}

	left := pdf.GetX()
	col := 0
	rowTop := pdf.GetY()
	var rowHeight float64
	for _, c := range charts {
		if len(c.png) == 0 {
			continue
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(c.name, opts, bytes.NewReader(c.png))

		x := left + float64(col)*(88+8)
		pdf.ImageOptions(c.name, x, rowTop, c.w, c.h, false, opts, 0, "")
		if c.h > rowHeight {
			rowHeight = c.h
		}
		col++
		if col == 2 {
			col = 0
			rowTop += rowHeight + 6
			rowHeight = 0
		}
	}
	if col != 0 {
		rowTop += rowHeight + 6
	}
	pdf.SetY(rowTop)
}

func writeBreakdownTable(pdf *fpdf.Fpdf, rows []report.DepartmentBreakdownRow) {
	colWidths := []float64{64, 22, 20, 20, 22, 20}
	tableHeader(pdf, []string{"Department", "Code", "Total", "Open", "Critical", "High"}, colWidths)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		setRowFill(pdf, i)
		pdf.CellFormat(colWidths[0], 7, row.Name, "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[1], 7, row.Code, "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[2], 7, fmt.Sprintf("%d", row.Total), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[3], 7, fmt.Sprintf("%d", row.Open), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[4], 7, fmt.Sprintf("%d", row.Critical), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[5], 7, fmt.Sprintf("%d", row.High), "1", 1, "C", true, 0, "")
	}
}

func tableHeader(pdf *fpdf.Fpdf, labels []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(22, 163, 74)
	for i, label := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, label, "1", ln, "C", true, 0, "")
	}
}

func setRowFill(pdf *fpdf.Fpdf, index int) {
	if index%2 == 0 {
		pdf.SetFillColor(255, 255, 255)
	} else {
		pdf.SetFillColor(229, 231, 235)
	}
}
