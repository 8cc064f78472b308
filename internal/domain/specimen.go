package domain

import "time"

// TestStatus enumerates states of a lab test.
type TestStatus string

const (
	TestStatusPending    TestStatus = "pending"
	TestStatusInProgress TestStatus = "in_progress"
	TestStatusCompleted  TestStatus = "completed"
)

// ValidTestStatus reports whether s is a recognized test status.
func ValidTestStatus(s TestStatus) bool {
	switch s {
	case TestStatusPending, TestStatusInProgress, TestStatusCompleted:
		return true
	}
	return false
}

// Specimen is a physical item collected under a case. Owned exclusively
// by its case; removing a specimen removes its tests with it.
type Specimen struct {
	ID             string
	CaseID         string
	Name           string
	Description    string
	Type           string
	Quantity       int
	CollectionDate string
	Tests          []Test
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Test is a lab procedure run against a specimen. Results and Status are
// independent: recording preliminary results does not move the status.
type Test struct {
	ID          string
	SpecimenID  string
	Name        string
	Description string
	Repeats     int
	Status      TestStatus
	Results     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
