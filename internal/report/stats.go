package report

import (
	"math"
	"sort"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// Stats summarizes a set of risks. All percentages are of the total and
// report 0 when the set is empty.
type Stats struct {
	Total int

	Open       int
	InProgress int
	Resolved   int
	Closed     int

	OpenPct       float64
	InProgressPct float64
	ResolvedPct   float64

	Low      int
	Medium   int
	High     int
	Critical int

	CriticalPct float64
	HighPct     float64

	Locked int

	// AvgResolutionRaw is the mean of estimated_resolution_duration values
	// with no unit normalization (hours, days and weeks are averaged as
	// raw numbers), rounded to one decimal. 0 when the set is empty.
	AvgResolutionRaw float64
}

// Compute derives Stats from the given risks.
func Compute(risks []domain.Risk) Stats {
	var s Stats
	s.Total = len(risks)

	var durationSum int
	for i := range risks {
		r := &risks[i]
		switch r.Status {
		case domain.StatusOpen:
			s.Open++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusResolved:
			s.Resolved++
		case domain.StatusClosed:
			s.Closed++
		}
		switch r.Severity {
		case domain.SeverityLow:
			s.Low++
		case domain.SeverityMedium:
			s.Medium++
		case domain.SeverityHigh:
			s.High++
		case domain.SeverityCritical:
			s.Critical++
		}
		if r.IsLocked {
			s.Locked++
		}
		durationSum += r.ResolutionDuration
	}

	s.OpenPct = Percentage(s.Open, s.Total)
	s.InProgressPct = Percentage(s.InProgress, s.Total)
	s.ResolvedPct = Percentage(s.Resolved, s.Total)
	s.CriticalPct = Percentage(s.Critical, s.Total)
	s.HighPct = Percentage(s.High, s.Total)

	if s.Total > 0 {
		s.AvgResolutionRaw = Round1(float64(durationSum) / float64(s.Total))
	}
	return s
}

// Percentage returns count/total as a percentage rounded to one decimal,
// guarding the total==0 case as 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(float64(count) / float64(total) * 100)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SeverityCount pairs a severity level with its count.
type SeverityCount struct {
	Severity domain.Severity
	Count    int
}

// SeverityDistribution returns counts for all four levels in ascending
// severity order, including zero entries.
func SeverityDistribution(risks []domain.Risk) []SeverityCount {
	counts := map[domain.Severity]int{}
	for i := range risks {
		counts[risks[i].Severity]++
	}
	out := make([]SeverityCount, 0, len(domain.Severities))
	for _, sev := range domain.Severities {
		out = append(out, SeverityCount{Severity: sev, Count: counts[sev]})
	}
	return out
}

// DepartmentCount pairs a department with its risk count.
type DepartmentCount struct {
	Department domain.Department
	Count      int
}

// TopDepartments returns up to limit departments ranked by risk count,
// descending, excluding departments with no risks. Ties keep the incoming
// department order (the sort is stable).
func TopDepartments(departments []domain.Department, risks []domain.Risk, limit int) []DepartmentCount {
	byDept := map[string]int{}
	for i := range risks {
		byDept[risks[i].DepartmentID]++
	}

	ranked := make([]DepartmentCount, 0, len(departments))
	for _, dept := range departments {
		if count := byDept[dept.ID]; count > 0 {
			ranked = append(ranked, DepartmentCount{Department: dept, Count: count})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// StatusBySeverity holds OPEN and IN_PROGRESS counts for each severity
// level, ordered LOW, MEDIUM, HIGH, CRITICAL.
type StatusBySeverity struct {
	Severities []domain.Severity
	Open       []int
	InProgress []int
}

// ComputeStatusBySeverity builds the grouped comparison used by the
// executive report's fourth chart.
func ComputeStatusBySeverity(risks []domain.Risk) StatusBySeverity {
	m := StatusBySeverity{
		Severities: domain.Severities,
		Open:       make([]int, len(domain.Severities)),
		InProgress: make([]int, len(domain.Severities)),
	}
	index := map[domain.Severity]int{}
	for i, sev := range domain.Severities {
		index[sev] = i
	}
	for i := range risks {
		r := &risks[i]
		pos, ok := index[r.Severity]
		if !ok {
			continue
		}
		switch r.Status {
		case domain.StatusOpen:
			m.Open[pos]++
		case domain.StatusInProgress:
			m.InProgress[pos]++
		}
	}
	return m
}

// DepartmentBreakdownRow is one line of the per-department table.
type DepartmentBreakdownRow struct {
	Name     string
	Code     string
	Total    int
	Open     int
	Critical int
	High     int
}

// DepartmentBreakdown builds per-department rows in the incoming
// department order. Names are truncated to 25 characters.
func DepartmentBreakdown(departments []domain.Department, risks []domain.Risk) []DepartmentBreakdownRow {
	rows := make([]DepartmentBreakdownRow, 0, len(departments))
	for _, dept := range departments {
		row := DepartmentBreakdownRow{
			Name: Truncate(dept.Name, 25),
			Code: dept.Code,
		}
		for i := range risks {
			r := &risks[i]
			if r.DepartmentID != dept.ID {
				continue
			}
			row.Total++
			if r.Status == domain.StatusOpen {
				row.Open++
			}
			switch r.Severity {
			case domain.SeverityCritical:
				row.Critical++
			case domain.SeverityHigh:
				row.High++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
