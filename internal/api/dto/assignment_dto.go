package dto

import "github.com/spec-kit/forensic-case-service/internal/domain"

// AssignCaseRequest payload. Assignment binds by employee ID.
type AssignCaseRequest struct {
	EmployeeID string `json:"employee_id"`
}

// RosterEntry is one forensics employee with live workload.
type RosterEntry struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            domain.Role `json:"role"`
	CurrentCaseLoad int         `json:"current_case_load"`
}
