package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forensic-case-service/internal/api/dto"
	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/service"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// CasesHandler manages case lifecycle endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.service.CreateCase(c.UserContext(), principal, service.CaseCreateInput{
		CaseNumber:  req.CaseNumber,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Department:  req.Department,
		Persons:     dto.ToPersons(req.Persons),
		Intake:      dto.ToIntake(req.Intake),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": caseDetail(service.CaseView{Case: *created}),
	})
}

// ListCases GET /cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter, err := parseCaseQuery(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListCases(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.CaseSummary, 0, len(views))
	for i := range views {
		items = append(items, caseSummary(views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCase GET /cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	view, err := h.service.GetCase(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetail(*view)})
}

// SetPriority PATCH /cases/:id/priority.
func (h *CasesHandler) SetPriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SetPriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.SetPriority(c.UserContext(), principal, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(service.CaseView{Case: *updated})})
}

// CompleteCase POST /cases/:id/complete.
func (h *CasesHandler) CompleteCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	completed, err := h.service.CompleteCase(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(service.CaseView{Case: *completed})})
}

func parseCaseQuery(c *fiber.Ctx) (service.CaseListFilter, error) {
	filter := service.CaseListFilter{}

	if raw := c.Query("status"); raw != "" {
		status := domain.CaseStatus(raw)
		switch status {
		case domain.CaseStatusNew, domain.CaseStatusInProgress, domain.CaseStatusCompleted:
			filter.Status = &status
		default:
			return filter, apperrors.NewValidationError("invalid query",
				map[string]any{"status": "unknown status"})
		}
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.CasePriority(raw)
		switch priority {
		case domain.CasePriorityNormal, domain.CasePriorityUrgent:
			filter.Priority = &priority
		default:
			return filter, apperrors.NewValidationError("invalid query",
				map[string]any{"priority": "unknown priority"})
		}
	}
	if raw := c.Query("department"); raw != "" {
		department := raw
		filter.Department = &department
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return filter, apperrors.NewValidationError("invalid query",
				map[string]any{"page_size": "must be a positive integer"})
		}
		filter.Limit = size
		if rawPage := c.Query("page"); rawPage != "" {
			page, err := strconv.Atoi(rawPage)
			if err != nil || page < 1 {
				return filter, apperrors.NewValidationError("invalid query",
					map[string]any{"page": "must be a positive integer"})
			}
			filter.Offset = (page - 1) * size
		}
	}
	return filter, nil
}

func caseSummary(view service.CaseView) dto.CaseSummary {
	return dto.CaseSummary{
		ID:             view.ID,
		CaseNumber:     view.CaseNumber,
		Title:          view.Title,
		Status:         view.Status,
		Priority:       view.Priority,
		Department:     view.Department,
		AssignedToID:   view.AssignedToID,
		AssignedToName: view.AssignedToName,
		CreatedAt:      view.CreatedAt,
		UpdatedAt:      view.UpdatedAt,
		CompletedAt:    view.CompletedAt,
	}
}

func caseDetail(view service.CaseView) dto.CaseDetailResponse {
	return dto.CaseDetailResponse{
		CaseSummary: caseSummary(view),
		Description: view.Description,
		CreatedBy:   view.CreatedBy,
		Persons:     dto.FromPersons(view.Persons),
		Intake:      dto.FromIntake(view.Intake),
	}
}
