package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forensic-case-service/internal/api/dto"
	"github.com/spec-kit/forensic-case-service/internal/auth"
	"github.com/spec-kit/forensic-case-service/internal/service"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// AssignmentsHandler manages dispatch endpoints for the forensics head.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// ListUnassigned GET /assignments/unassigned.
func (h *AssignmentsHandler) ListUnassigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	cases, err := h.service.ListUnassignedCases(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.CaseSummary, 0, len(cases))
	for i := range cases {
		items = append(items, caseSummary(service.CaseView{Case: cases[i]}))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListRoster GET /assignments/roster.
func (h *AssignmentsHandler) ListRoster(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	roster, err := h.service.ListForensicsRoster(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.RosterEntry, 0, len(roster))
	for _, employee := range roster {
		items = append(items, dto.RosterEntry{
			ID:              employee.ID,
			Name:            employee.Name,
			Email:           employee.Email,
			Role:            employee.Role,
			CurrentCaseLoad: employee.CurrentCaseLoad,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign POST /cases/:id/assign.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID == "" {
		return apperrors.NewValidationError("employee_id required",
			map[string]any{"employee_id": "this field is required"})
	}

	assigned, err := h.service.Assign(c.UserContext(), principal, c.Params("id"), req.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(service.CaseView{Case: *assigned})})
}
