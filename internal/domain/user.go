package domain

import "time"

// Role enumerates what a user may do in the workflow.
type Role string

const (
	RoleEndUser         Role = "END_USER"
	RoleApprover        Role = "APPROVER"
	RoleAgent           Role = "AGENT"
	RoleDepartmentStaff Role = "DEPARTMENT_STAFF"
	RoleAdmin           Role = "ADMIN"

	// RoleSystem is never assigned to a stored user. It marks transitions the
	// service applies on its own, such as routing a new ticket into approval.
	RoleSystem Role = "SYSTEM"
)

// User is the domain model for everyone who touches a ticket: requesters,
// approvers, agents, department staff and administrators. Agents and
// department staff belong to exactly one department.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff reports whether the user operates on tickets they did not raise.
func (u *User) IsStaff() bool {
	switch u.Role {
	case RoleAgent, RoleDepartmentStaff, RoleAdmin, RoleApprover:
		return true
	}
	return false
}
