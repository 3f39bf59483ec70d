package models

// Role is the closed set of account roles.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleMLAStaff  Role = "mlastaff"
	RoleDept      Role = "dept"
	RoleDeptStaff Role = "dept_staff"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role, in privilege order.
var Roles = []Role{RoleCitizen, RoleDeptStaff, RoleDept, RoleMLAStaff, RoleAdmin}

// ParseRole returns the role named by s and whether it is valid.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCitizen, RoleMLAStaff, RoleDept, RoleDeptStaff, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanModerate covers privileged routes: admins and department heads.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleDept
}

// CanAssignIssues reports whether r may set an issue's department or handler.
func (r Role) CanAssignIssues() bool {
	return r == RoleAdmin || r == RoleDept
}

// CanManageHierarchy reports whether r may create or modify constituencies,
// panchayats and departments.
func (r Role) CanManageHierarchy() bool {
	return r == RoleAdmin
}

// CanViewConstituencyReports covers the MLA dashboard and AI suggestions.
func (r Role) CanViewConstituencyReports() bool {
	return r == RoleAdmin || r == RoleMLAStaff
}

// CanLeadDepartment reports whether a user with r may be a department head.
func (r Role) CanLeadDepartment() bool { return r == RoleDept }

// CanJoinDepartment reports whether a user with r may be department staff.
func (r Role) CanJoinDepartment() bool { return r == RoleDeptStaff }
