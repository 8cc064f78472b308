package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/events"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	"github.com/spec-kit/forensic-case-service/internal/storage"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// EvidenceService manages the evidentiary workload attached to a case:
// uploaded evidence files, specimens, and the tests run against
// specimens. All of it remains editable regardless of case status.
type EvidenceService struct {
	cases      repository.CaseRepository
	specimens  repository.SpecimenRepository
	tests      repository.TestRepository
	evidence   repository.EvidenceRepository
	blobs      storage.BlobStore
	dispatcher events.Dispatcher
}

// EvidenceDependencies bundles collaborators for the evidence service.
type EvidenceDependencies struct {
	CaseRepo     repository.CaseRepository
	SpecimenRepo repository.SpecimenRepository
	TestRepo     repository.TestRepository
	EvidenceRepo repository.EvidenceRepository
	BlobStore    storage.BlobStore
	Dispatcher   events.Dispatcher
}

// NewEvidenceService constructs the service.
func NewEvidenceService(deps EvidenceDependencies) *EvidenceService {
	return &EvidenceService{
		cases:      deps.CaseRepo,
		specimens:  deps.SpecimenRepo,
		tests:      deps.TestRepo,
		evidence:   deps.EvidenceRepo,
		blobs:      deps.BlobStore,
		dispatcher: deps.Dispatcher,
	}
}

// EvidenceFileInput is one file in an attach batch.
type EvidenceFileInput struct {
	FileName  string
	MediaType string
	SizeBytes int64
	Body      io.Reader
}

// SkippedFile records why a file in a batch was not stored.
type SkippedFile struct {
	FileName string
	Reason   string
}

// AttachResult reports the per-file outcome of an attach batch.
type AttachResult struct {
	Attached []domain.Evidence
	Skipped  []SkippedFile
}

// SpecimenInput describes a specimen to register against a case.
type SpecimenInput struct {
	Name           string
	Description    string
	Type           string
	Quantity       int
	CollectionDate string
}

// TestInput describes a test to register against a specimen.
type TestInput struct {
	Name        string
	Description string
	Repeats     int
	Status      domain.TestStatus
	Results     string
}

// TestUpdateInput carries partial updates to a test. Nil fields are
// left unchanged.
type TestUpdateInput struct {
	Name        *string
	Description *string
	Repeats     *int
	Status      *domain.TestStatus
	Results     *string
}

// EvidenceView pairs a stored evidence record with a retrieval URL.
type EvidenceView struct {
	domain.Evidence
	URL string
}

// AttachEvidence stores a batch of files against a case. Files with a
// media type outside the image/report allow-lists are skipped and
// reported, never stored; valid files in the same batch still go
// through. A single disallowed file is rejected outright.
func (s *EvidenceService) AttachEvidence(ctx context.Context, principal *domain.AppUser, caseID string, files []EvidenceFileInput, notes string) (*AttachResult, error) {
	if !domain.CanManageEvidence(principal) {
		return nil, apperrors.NewUnauthorized("role may not manage evidence")
	}
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return nil, mapStoreError(err, "case")
	}
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files supplied",
			map[string]any{"files": "at least one file is required"})
	}

	result := &AttachResult{}
	for _, file := range files {
		kind, ok := domain.EvidenceKindForMediaType(file.MediaType)
		if !ok {
			if len(files) == 1 {
				return nil, apperrors.NewUnsupportedMediaType(file.MediaType)
			}
			result.Skipped = append(result.Skipped, SkippedFile{
				FileName: file.FileName,
				Reason:   apperrors.CodeUnsupportedMediaType,
			})
			continue
		}

		key := evidenceKey(caseID, file.FileName)
		ref, err := s.blobs.Put(ctx, key, file.Body, file.MediaType)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{
				FileName: file.FileName,
				Reason:   apperrors.CodeStorageUnavailable,
			})
			continue
		}

		record := domain.Evidence{
			CaseID:     caseID,
			Kind:       kind,
			FileName:   file.FileName,
			MediaType:  file.MediaType,
			SizeBytes:  file.SizeBytes,
			StorageRef: ref,
			Notes:      notes,
			UploadedBy: principal.ID,
			UploadedAt: time.Now(),
		}
		if err := s.evidence.Create(ctx, &record); err != nil {
			// Orphaned blobs are cheaper than dangling records.
			_ = s.blobs.Delete(ctx, ref)
			result.Skipped = append(result.Skipped, SkippedFile{
				FileName: file.FileName,
				Reason:   apperrors.CodeStorageUnavailable,
			})
			continue
		}
		result.Attached = append(result.Attached, record)

		publishEvent(ctx, s.dispatcher, events.Event{
			Type:   events.EventEvidenceAttached,
			CaseID: caseID,
			Actor:  actorFor(principal),
			Payload: events.EvidenceAttachedPayload{
				EvidenceID: record.ID,
				Kind:       record.Kind,
				FileName:   record.FileName,
			},
		})
	}
	return result, nil
}

// ListCaseEvidence returns a case's evidence with retrieval URLs.
func (s *EvidenceService) ListCaseEvidence(ctx context.Context, principal *domain.AppUser, caseID string) ([]EvidenceView, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	if !domain.CanViewCase(principal, c) {
		return nil, apperrors.NewUnauthorized("case not visible to this role")
	}

	records, err := s.evidence.ListByCase(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "evidence")
	}
	views := make([]EvidenceView, 0, len(records))
	for _, record := range records {
		url, err := s.blobs.PublicURL(ctx, record.StorageRef)
		if err != nil {
			return nil, apperrors.NewStorageUnavailable(err)
		}
		views = append(views, EvidenceView{Evidence: record, URL: url})
	}
	return views, nil
}

// RemoveEvidence deletes an evidence file and its record. The blob is
// removed first so a storage failure leaves the record intact.
func (s *EvidenceService) RemoveEvidence(ctx context.Context, principal *domain.AppUser, evidenceID string) error {
	if !domain.CanManageEvidence(principal) {
		return apperrors.NewUnauthorized("role may not manage evidence")
	}
	record, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return mapStoreError(err, "evidence")
	}
	if err := s.blobs.Delete(ctx, record.StorageRef); err != nil {
		return apperrors.NewStorageUnavailable(err)
	}
	if err := s.evidence.Delete(ctx, evidenceID); err != nil {
		return mapStoreError(err, "evidence")
	}
	return nil
}

// AddSpecimen registers a specimen against an existing case.
func (s *EvidenceService) AddSpecimen(ctx context.Context, principal *domain.AppUser, caseID string, input SpecimenInput) (*domain.Specimen, error) {
	if !domain.CanManageEvidence(principal) {
		return nil, apperrors.NewUnauthorized("role may not manage specimens")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("specimen validation failed",
			map[string]any{"name": "this field is required"})
	}
	if input.Quantity < 1 {
		return nil, apperrors.NewInvalidQuantity("quantity", input.Quantity)
	}
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return nil, mapStoreError(err, "case")
	}

	specimen := &domain.Specimen{
		CaseID:         caseID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Type:           input.Type,
		Quantity:       input.Quantity,
		CollectionDate: input.CollectionDate,
	}
	if err := s.specimens.Create(ctx, specimen); err != nil {
		return nil, mapStoreError(err, "specimen")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventSpecimenAdded,
		CaseID: caseID,
		Actor:  actorFor(principal),
		Payload: events.SpecimenAddedPayload{
			SpecimenID: specimen.ID,
			Name:       specimen.Name,
			Quantity:   specimen.Quantity,
		},
	})
	return specimen, nil
}

// ListCaseSpecimens returns specimens for a case with their tests
// populated.
func (s *EvidenceService) ListCaseSpecimens(ctx context.Context, principal *domain.AppUser, caseID string) ([]domain.Specimen, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	if !domain.CanViewCase(principal, c) {
		return nil, apperrors.NewUnauthorized("case not visible to this role")
	}

	specimens, err := s.specimens.ListByCase(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "specimen")
	}
	for i := range specimens {
		tests, err := s.tests.ListBySpecimen(ctx, specimens[i].ID)
		if err != nil {
			return nil, mapStoreError(err, "test")
		}
		specimens[i].Tests = tests
	}
	return specimens, nil
}

// RemoveSpecimen deletes a specimen together with every test recorded
// against it, in one transaction. A half-deleted specimen is never
// observable.
func (s *EvidenceService) RemoveSpecimen(ctx context.Context, principal *domain.AppUser, specimenID string) error {
	if !domain.CanManageEvidence(principal) {
		return apperrors.NewUnauthorized("role may not manage specimens")
	}
	if err := s.specimens.DeleteCascade(ctx, specimenID); err != nil {
		return mapStoreError(err, "specimen")
	}
	return nil
}

// AddTest registers a test against an existing specimen.
func (s *EvidenceService) AddTest(ctx context.Context, principal *domain.AppUser, specimenID string, input TestInput) (*domain.Test, error) {
	if !domain.CanManageEvidence(principal) {
		return nil, apperrors.NewUnauthorized("role may not manage tests")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("test validation failed",
			map[string]any{"name": "this field is required"})
	}
	if input.Repeats < 1 {
		return nil, apperrors.NewInvalidQuantity("repeats", input.Repeats)
	}
	status := input.Status
	if status == "" {
		status = domain.TestStatusPending
	}
	if !domain.ValidTestStatus(status) {
		return nil, apperrors.NewValidationError("test validation failed",
			map[string]any{"status": "unknown test status"})
	}
	specimen, err := s.specimens.GetByID(ctx, specimenID)
	if err != nil {
		return nil, mapStoreError(err, "specimen")
	}

	test := &domain.Test{
		SpecimenID:  specimenID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Repeats:     input.Repeats,
		Status:      status,
		Results:     input.Results,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, mapStoreError(err, "test")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventTestAdded,
		CaseID: specimen.CaseID,
		Actor:  actorFor(principal),
		Payload: events.TestAddedPayload{
			TestID:     test.ID,
			SpecimenID: specimenID,
			Name:       test.Name,
			Repeats:    test.Repeats,
		},
	})
	return test, nil
}

// UpdateTest applies partial changes to a test. Recording results does
// not move the parent case's status; completion stays an explicit act.
func (s *EvidenceService) UpdateTest(ctx context.Context, principal *domain.AppUser, testID string, input TestUpdateInput) (*domain.Test, error) {
	if !domain.CanManageEvidence(principal) {
		return nil, apperrors.NewUnauthorized("role may not manage tests")
	}
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, mapStoreError(err, "test")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("test validation failed",
				map[string]any{"name": "this field is required"})
		}
		test.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		test.Description = *input.Description
	}
	if input.Repeats != nil {
		if *input.Repeats < 1 {
			return nil, apperrors.NewInvalidQuantity("repeats", *input.Repeats)
		}
		test.Repeats = *input.Repeats
	}
	if input.Status != nil {
		if !domain.ValidTestStatus(*input.Status) {
			return nil, apperrors.NewValidationError("test validation failed",
				map[string]any{"status": "unknown test status"})
		}
		test.Status = *input.Status
	}
	if input.Results != nil {
		test.Results = *input.Results
	}

	if err := s.tests.Update(ctx, test); err != nil {
		return nil, mapStoreError(err, "test")
	}
	return test, nil
}

// RemoveTest deletes a single test.
func (s *EvidenceService) RemoveTest(ctx context.Context, principal *domain.AppUser, testID string) error {
	if !domain.CanManageEvidence(principal) {
		return apperrors.NewUnauthorized("role may not manage tests")
	}
	if err := s.tests.Delete(ctx, testID); err != nil {
		return mapStoreError(err, "test")
	}
	return nil
}

// evidenceKey builds a collision-free object key keeping the original
// extension for content sniffing downstream.
func evidenceKey(caseID, fileName string) string {
	return fmt.Sprintf("evidence/%s/%s%s", caseID, uuid.NewString(), path.Ext(fileName))
}
