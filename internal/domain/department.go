package domain

import "time"

// Department represents an organizational unit that owns a portfolio of risks.
// Name and code are globally unique. Deactivating a department keeps its data;
// deleting one cascades to its risks and detaches its users.
type Department struct {
	ID           string
	Name         string
	Code         string
	Description  string
	HeadName     string
	ContactEmail string
	ContactPhone string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
