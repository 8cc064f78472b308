package events

import (
	"time"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated         EventType = "case_created"
	EventCaseAssigned        EventType = "case_assigned"
	EventCaseStatusChanged   EventType = "case_status_changed"
	EventCasePriorityChanged EventType = "case_priority_changed"
	EventEvidenceAttached    EventType = "evidence_attached"
	EventSpecimenAdded       EventType = "specimen_added"
	EventTestAdded           EventType = "test_added"
)

// Actor identifies the principal behind an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	CaseNumber string              `json:"case_number"`
	Department string              `json:"department"`
	Priority   domain.CasePriority `json:"priority"`
	Title      string              `json:"title"`
}

// CaseAssignedPayload payload.
type CaseAssignedPayload struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
}

// CasePriorityChangedPayload payload.
type CasePriorityChangedPayload struct {
	OldPriority domain.CasePriority `json:"old_priority"`
	NewPriority domain.CasePriority `json:"new_priority"`
}

// EvidenceAttachedPayload payload.
type EvidenceAttachedPayload struct {
	EvidenceID string              `json:"evidence_id"`
	Kind       domain.EvidenceKind `json:"kind"`
	FileName   string              `json:"file_name"`
}

// SpecimenAddedPayload payload.
type SpecimenAddedPayload struct {
	SpecimenID string `json:"specimen_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// TestAddedPayload payload.
type TestAddedPayload struct {
	TestID     string `json:"test_id"`
	SpecimenID string `json:"specimen_id"`
	Name       string `json:"name"`
	Repeats    int    `json:"repeats"`
}
