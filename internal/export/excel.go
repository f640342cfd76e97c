package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/report"
)

const sheetName = "BCM Risks Report"

var excelHeaders = []any{
	"Department", "Expected Problem", "Impact", "Severity", "Status",
	"Resolution Duration", "Created By", "Created At", "Locked",
}

// Row is one spreadsheet line, already formatted for presentation.
type Row struct {
	Department         string
	ExpectedProblem    string
	Impact             string
	Severity           string
	Status             string
	ResolutionDuration string
	CreatedBy          string
	CreatedAt          string
	Locked             string
}

// BuildRows formats risks for the spreadsheet. Free-text fields are cut to
// 100 characters; a missing creator shows as N/A.
func BuildRows(risks []domain.Risk, departmentNames map[string]string, creatorNames map[string]string) []Row {
	rows := make([]Row, 0, len(risks))
	for i := range risks {
		r := &risks[i]

		creator := "N/A"
		if r.CreatedBy != nil {
			if name, ok := creatorNames[*r.CreatedBy]; ok && name != "" {
				creator = name
			}
		}
		locked := "No"
		if r.IsLocked {
			locked = "Yes"
		}

		rows = append(rows, Row{
			Department:         departmentNames[r.DepartmentID],
			ExpectedProblem:    report.Truncate(r.ExpectedProblem, 100),
			Impact:             report.Truncate(r.Impact, 100),
			Severity:           r.Severity.Label(),
			Status:             r.Status.Label(),
			ResolutionDuration: r.DurationDisplay(),
			CreatedBy:          creator,
			CreatedAt:          r.CreatedAt.Format("2006-01-02 15:04"),
			Locked:             locked,
		})
	}
	return rows
}

// WriteWorkbook streams an XLSX workbook containing the header row and the
// given rows to w.
func WriteWorkbook(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &excelHeaders); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			row.Department,
			row.ExpectedProblem,
			row.Impact,
			row.Severity,
			row.Status,
			row.ResolutionDuration,
			row.CreatedBy,
			row.CreatedAt,
			row.Locked,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}
