package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forensic-case-service/internal/api/dto"
	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/service"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// EvidenceHandler manages evidence files, specimens, and tests.
type EvidenceHandler struct {
	service *service.EvidenceService
}

// NewEvidenceHandler constructs handler.
func NewEvidenceHandler(evidenceService *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{service: evidenceService}
}

// AttachEvidence POST /cases/:id/evidence. Multipart; the "files" field
// may repeat.
func (h *EvidenceHandler) AttachEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return apperrors.NewValidationError("no files supplied",
			map[string]any{"files": "at least one file is required"})
	}

	files := make([]service.EvidenceFileInput, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable file in upload",
				map[string]any{"files": header.Filename})
		}
		opened = append(opened, f)
		files = append(files, service.EvidenceFileInput{
			FileName:  header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Body:      f,
		})
	}

	notes := ""
	if values := form.Value["notes"]; len(values) > 0 {
		notes = values[0]
	}

	result, err := h.service.AttachEvidence(c.UserContext(), principal, c.Params("id"), files, notes)
	if err != nil {
		return err
	}

	response := dto.AttachEvidenceResponse{
		Attached: make([]dto.EvidenceResponse, 0, len(result.Attached)),
		Skipped:  make([]dto.SkippedFileResponse, 0, len(result.Skipped)),
	}
	for _, record := range result.Attached {
		response.Attached = append(response.Attached, evidenceResponse(record, ""))
	}
	for _, skip := range result.Skipped {
		response.Skipped = append(response.Skipped, dto.SkippedFileResponse{
			FileName: skip.FileName,
			Reason:   skip.Reason,
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": response})
}

// ListEvidence GET /cases/:id/evidence.
func (h *EvidenceHandler) ListEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	views, err := h.service.ListCaseEvidence(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EvidenceResponse, 0, len(views))
	for _, view := range views {
		items = append(items, evidenceResponse(view.Evidence, view.URL))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RemoveEvidence DELETE /evidence/:id.
func (h *EvidenceHandler) RemoveEvidence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.RemoveEvidence(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddSpecimen POST /cases/:id/specimens.
func (h *EvidenceHandler) AddSpecimen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateSpecimenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	specimen, err := h.service.AddSpecimen(c.UserContext(), principal, c.Params("id"), service.SpecimenInput{
		Name:           req.Name,
		Description:    req.Description,
		Type:           req.Type,
		Quantity:       req.Quantity,
		CollectionDate: req.CollectionDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": specimenResponse(*specimen)})
}

// ListSpecimens GET /cases/:id/specimens.
func (h *EvidenceHandler) ListSpecimens(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	specimens, err := h.service.ListCaseSpecimens(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.SpecimenResponse, 0, len(specimens))
	for i := range specimens {
		items = append(items, specimenResponse(specimens[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RemoveSpecimen DELETE /specimens/:id. Removes the specimen's tests
// with it.
func (h *EvidenceHandler) RemoveSpecimen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.RemoveSpecimen(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddTest POST /specimens/:id/tests.
func (h *EvidenceHandler) AddTest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	test, err := h.service.AddTest(c.UserContext(), principal, c.Params("id"), service.TestInput{
		Name:        req.Name,
		Description: req.Description,
		Repeats:     req.Repeats,
		Status:      req.Status,
		Results:     req.Results,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": testResponse(*test)})
}

// UpdateTest PATCH /tests/:id.
func (h *EvidenceHandler) UpdateTest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	test, err := h.service.UpdateTest(c.UserContext(), principal, c.Params("id"), service.TestUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Repeats:     req.Repeats,
		Status:      req.Status,
		Results:     req.Results,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": testResponse(*test)})
}

// RemoveTest DELETE /tests/:id.
func (h *EvidenceHandler) RemoveTest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.RemoveTest(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func evidenceResponse(record domain.Evidence, url string) dto.EvidenceResponse {
	return dto.EvidenceResponse{
		ID:         record.ID,
		CaseID:     record.CaseID,
		Kind:       record.Kind,
		FileName:   record.FileName,
		MediaType:  record.MediaType,
		SizeBytes:  record.SizeBytes,
		Notes:      record.Notes,
		UploadedBy: record.UploadedBy,
		UploadedAt: record.UploadedAt,
		URL:        url,
	}
}

func specimenResponse(specimen domain.Specimen) dto.SpecimenResponse {
	tests := make([]dto.TestResponse, 0, len(specimen.Tests))
	for _, test := range specimen.Tests {
		tests = append(tests, testResponse(test))
	}
	return dto.SpecimenResponse{
		ID:             specimen.ID,
		CaseID:         specimen.CaseID,
		Name:           specimen.Name,
		Description:    specimen.Description,
		Type:           specimen.Type,
		Quantity:       specimen.Quantity,
		CollectionDate: specimen.CollectionDate,
		Tests:          tests,
		CreatedAt:      specimen.CreatedAt,
		UpdatedAt:      specimen.UpdatedAt,
	}
}

func testResponse(test domain.Test) dto.TestResponse {
	return dto.TestResponse{
		ID:          test.ID,
		SpecimenID:  test.SpecimenID,
		Name:        test.Name,
		Description: test.Description,
		Repeats:     test.Repeats,
		Status:      test.Status,
		Results:     test.Results,
		CreatedAt:   test.CreatedAt,
		UpdatedAt:   test.UpdatedAt,
	}
}
