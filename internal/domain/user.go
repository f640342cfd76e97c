package domain

import (
	"strings"
	"time"
)

// Role is the closed set of access roles.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleDepartmentUser Role = "DEPARTMENT_USER"
	RoleViewer         Role = "VIEWER"
)

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDepartmentUser, RoleViewer:
		return true
	}
	return false
}

// Language enumerates supported UI languages.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// Valid reports whether the language code is supported.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageArabic
}

// User is an account with a role, an optional department binding and a
// language preference. DEPARTMENT_USER accounts are expected to carry a
// department; ADMIN and VIEWER scope is global.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	DepartmentID *string
	Language     Language
	IsStaff      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
