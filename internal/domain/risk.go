package domain

import (
	"fmt"
	"time"
)

// Status enumerates lifecycle states for risks. There is no enforced
// transition graph: any authorized editor may set any of the four values.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Valid reports whether the status is a member of the enum.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Label returns the human-readable status name.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	case StatusClosed:
		return "Closed"
	}
	return string(s)
}

// Severity ranks risk impact, LOW < MEDIUM < HIGH < CRITICAL.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists all severity levels in ascending order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether the severity is a member of the enum.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Label returns the human-readable severity name.
func (s Severity) Label() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	}
	return string(s)
}

// DurationUnit is the unit for estimated resolution durations.
type DurationUnit string

const (
	UnitHours DurationUnit = "HOURS"
	UnitDays  DurationUnit = "DAYS"
	UnitWeeks DurationUnit = "WEEKS"
)

// Valid reports whether the unit is a member of the enum.
func (u DurationUnit) Valid() bool {
	switch u {
	case UnitHours, UnitDays, UnitWeeks:
		return true
	}
	return false
}

// Label returns the human-readable unit name.
func (u DurationUnit) Label() string {
	switch u {
	case UnitHours:
		return "Hours"
	case UnitDays:
		return "Days"
	case UnitWeeks:
		return "Weeks"
	}
	return string(u)
}

// Risk is the aggregate for a risk identified by a department.
// LockedBy and LockedAt are both set or both null, never one without the
// other; a locked risk rejects edits from department users until unlocked.
type Risk struct {
	ID                 string
	DepartmentID       string
	ExpectedProblem    string
	Impact             string
	ResolutionDuration int
	ResolutionUnit     DurationUnit
	MitigationNotes    *string
	Severity           Severity
	Status             Status
	IsLocked           bool
	LockedBy           *string
	LockedAt           *time.Time
	CreatedBy          *string
	UpdatedBy          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ResolutionHours normalizes the estimated resolution duration to hours so
// risks recorded in different units can be compared.
func (r *Risk) ResolutionHours() int {
	switch r.ResolutionUnit {
	case UnitHours:
		return r.ResolutionDuration
	case UnitDays:
		return r.ResolutionDuration * 24
	case UnitWeeks:
		return r.ResolutionDuration * 24 * 7
	}
	return 0
}

// DurationDisplay formats the estimate as "{n} {Unit}", e.g. "2 Days".
func (r *Risk) DurationDisplay() string {
	return fmt.Sprintf("%d %s", r.ResolutionDuration, r.ResolutionUnit.Label())
}
