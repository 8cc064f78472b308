package domain

import "time"

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusNew        CaseStatus = "new"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusCompleted  CaseStatus = "completed"
)

// CasePriority enumerates intake urgency.
type CasePriority string

const (
	CasePriorityNormal CasePriority = "normal"
	CasePriorityUrgent CasePriority = "urgent"
)

// Departments lists the forensic departments a case may be routed to.
var Departments = []string{"Digital Forensics", "Biology", "Chemistry"}

// KnownDepartment reports whether name is a recognized department.
func KnownDepartment(name string) bool {
	for _, dept := range Departments {
		if dept == name {
			return true
		}
	}
	return false
}

// Person identifies an individual tied to a case. Name is the only
// required field; identity documents are recorded when available.
type Person struct {
	Name        string `json:"name"`
	CPRNo       string `json:"cprNo"`
	PassportNo  string `json:"passportNo"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`
}

// IntakeDetails captures the registration-desk paperwork around a case.
// Dates are kept as ISO strings (YYYY-MM-DD) and times as HH:MM exactly
// as entered at intake.
type IntakeDetails struct {
	ReceivedDate       string
	ReceivedTime       string
	SenderName         string
	FromDept           string
	PoliceNo           string
	SenderCaseNo       string
	PoliceStation      string
	SubmittedBy        string
	SubmitterPoliceNo  string
	PersonInCharge     string
	SampleCount        int
	SampleReceiver     string
	ExpectedFinishDate string
	CaseEnteredBy      string
}

// Case is the aggregate for one intake-to-resolution forensic matter.
// Assignment binds to an employee ID; the display name is resolved at
// the read boundary.
type Case struct {
	ID           string
	CaseNumber   string
	Title        string
	Description  string
	Status       CaseStatus
	Priority     CasePriority
	Department   string
	AssignedToID *string
	CreatedBy    string
	Persons      []Person
	Intake       IntakeDetails
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// Assigned reports whether the case is bound to an employee.
func (c *Case) Assigned() bool {
	return c.AssignedToID != nil && *c.AssignedToID != ""
}
