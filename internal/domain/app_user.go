package domain

import "time"

// Role enumerates operator roles issued by the identity provider.
type Role string

const (
	RoleRegistration  Role = "registration"
	RoleForensics     Role = "forensics"
	RoleForensicsHead Role = "forensics_head"
	RoleAdmin         Role = "admin"
)

// ValidRole reports whether r is a recognized role.
func ValidRole(r Role) bool {
	switch r {
	case RoleRegistration, RoleForensics, RoleForensicsHead, RoleAdmin:
		return true
	}
	return false
}

// AppUser is the role-bearing principal every core operation receives
// explicitly. Role is immutable once issued.
type AppUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ForensicsEmployee is a read-time view over an AppUser with the derived
// active caseload. Never persisted; computed on demand by the scheduler.
type ForensicsEmployee struct {
	ID              string
	Name            string
	Email           string
	Role            Role
	CurrentCaseLoad int
}
