package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCanViewRisk(t *testing.T) {
	risk := &Risk{ID: "r1", DepartmentID: "dept-it"}

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"admin sees everything", &User{Role: RoleAdmin}, true},
		{"viewer sees everything", &User{Role: RoleViewer}, true},
		{"department user same department", &User{Role: RoleDepartmentUser, DepartmentID: strPtr("dept-it")}, true},
		{"department user other department", &User{Role: RoleDepartmentUser, DepartmentID: strPtr("dept-hr")}, false},
		{"department user without department", &User{Role: RoleDepartmentUser}, false},
		{"unknown role", &User{Role: Role("SUPERVISOR")}, false},
		{"nil user", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewRisk(tt.user, risk))
		})
	}
}

func TestCanEditRisk(t *testing.T) {
	unlocked := &Risk{ID: "r1", DepartmentID: "dept-it"}
	locked := &Risk{ID: "r2", DepartmentID: "dept-it", IsLocked: true}

	deptUser := &User{Role: RoleDepartmentUser, DepartmentID: strPtr("dept-it")}

	assert.True(t, CanEditRisk(&User{Role: RoleAdmin}, unlocked))
	assert.True(t, CanEditRisk(&User{Role: RoleAdmin}, locked), "lock never binds admins")

	assert.True(t, CanEditRisk(deptUser, unlocked))
	assert.False(t, CanEditRisk(deptUser, locked), "lock rejects department users")

	otherDept := &User{Role: RoleDepartmentUser, DepartmentID: strPtr("dept-hr")}
	assert.False(t, CanEditRisk(otherDept, unlocked))

	assert.False(t, CanEditRisk(&User{Role: RoleViewer}, unlocked))
	assert.False(t, CanEditRisk(&User{Role: Role("SUPERVISOR")}, unlocked))
	assert.False(t, CanEditRisk(nil, unlocked))
}
