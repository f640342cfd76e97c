package events

import (
	"time"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRiskCreated  EventType = "risk_created"
	EventRiskUpdated  EventType = "risk_updated"
	EventRiskLocked   EventType = "risk_locked"
	EventRiskUnlocked EventType = "risk_unlocked"
	EventRiskDeleted  EventType = "risk_deleted"
)

// Actor identifies the user behind an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted after a successful write.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RiskID    string      `json:"risk_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RiskChangedPayload carries everything the notification email needs so
// consumers never have to read the store again.
type RiskChangedPayload struct {
	DepartmentName  string          `json:"department_name"`
	ExpectedProblem string          `json:"expected_problem"`
	Severity        domain.Severity `json:"severity"`
	Status          domain.Status   `json:"status"`
	Resolution      string          `json:"resolution"`
	CreatorName     string          `json:"creator_name"`
	CreatedAt       time.Time       `json:"created_at"`
	Action          string          `json:"action"`
}

// RiskLockPayload describes lock state changes.
type RiskLockPayload struct {
	Locked   bool    `json:"locked"`
	LockedBy *string `json:"locked_by,omitempty"`
}
