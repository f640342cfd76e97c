package domain

// CanViewRisk decides whether the user may see the risk. Admins and viewers
// see everything; department users only their own department's records.
func CanViewRisk(user *User, risk *Risk) bool {
	if user == nil || risk == nil {
		return false
	}
	switch user.Role {
	case RoleAdmin, RoleViewer:
		return true
	case RoleDepartmentUser:
		return user.DepartmentID != nil && *user.DepartmentID == risk.DepartmentID
	}
	return false
}

// CanEditRisk decides whether the user may mutate the risk. Admins always
// can; department users only within their department and while the record
// is unlocked; viewers never can.
func CanEditRisk(user *User, risk *Risk) bool {
	if user == nil || risk == nil {
		return false
	}
	switch user.Role {
	case RoleAdmin:
		return true
	case RoleDepartmentUser:
		if user.DepartmentID == nil || *user.DepartmentID != risk.DepartmentID {
			return false
		}
		return !risk.IsLocked
	case RoleViewer:
		return false
	}
	return false
}
