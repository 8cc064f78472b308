package dto

import (
	"time"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// EvidenceResponse metadata for one stored artifact.
type EvidenceResponse struct {
	ID         string              `json:"id"`
	CaseID     string              `json:"case_id"`
	Kind       domain.EvidenceKind `json:"kind"`
	FileName   string              `json:"file_name"`
	MediaType  string              `json:"media_type"`
	SizeBytes  int64               `json:"size_bytes"`
	Notes      string              `json:"notes,omitempty"`
	UploadedBy string              `json:"uploaded_by"`
	UploadedAt time.Time           `json:"uploaded_at"`
	URL        string              `json:"url,omitempty"`
}

// SkippedFileResponse reports a file rejected from an attach batch.
type SkippedFileResponse struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// AttachEvidenceResponse reports the per-file batch outcome.
type AttachEvidenceResponse struct {
	Attached []EvidenceResponse    `json:"attached"`
	Skipped  []SkippedFileResponse `json:"skipped"`
}

// CreateSpecimenRequest payload.
type CreateSpecimenRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	Quantity       int    `json:"quantity"`
	CollectionDate string `json:"collection_date"`
}

// SpecimenResponse with its tests.
type SpecimenResponse struct {
	ID             string         `json:"id"`
	CaseID         string         `json:"case_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Type           string         `json:"type,omitempty"`
	Quantity       int            `json:"quantity"`
	CollectionDate string         `json:"collection_date,omitempty"`
	Tests          []TestResponse `json:"tests"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CreateTestRequest payload.
type CreateTestRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Repeats     int               `json:"repeats"`
	Status      domain.TestStatus `json:"status"`
	Results     string            `json:"results"`
}

// UpdateTestRequest payload; absent fields are left unchanged.
type UpdateTestRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Repeats     *int               `json:"repeats"`
	Status      *domain.TestStatus `json:"status"`
	Results     *string            `json:"results"`
}

// TestResponse for one lab test.
type TestResponse struct {
	ID          string            `json:"id"`
	SpecimenID  string            `json:"specimen_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Repeats     int               `json:"repeats"`
	Status      domain.TestStatus `json:"status"`
	Results     string            `json:"results,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
