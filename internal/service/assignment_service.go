package service

import (
	"context"
	"errors"

	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/events"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// AssignmentService implements dispatch: triage of unassigned cases,
// the forensics roster with live workload, and the assignment act
// itself. Assignment binds a case to an employee by identifier, so a
// later display-name change never detaches history.
type AssignmentService struct {
	cases      repository.CaseRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories for the assignment
// service.
type AssignmentDependencies struct {
	CaseRepo   repository.CaseRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		cases:      deps.CaseRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListUnassignedCases returns the triage queue, newest first.
func (s *AssignmentService) ListUnassignedCases(ctx context.Context, principal *domain.AppUser) ([]domain.Case, error) {
	if !domain.CanAssignCases(principal) {
		return nil, apperrors.NewUnauthorized("role may not triage cases")
	}
	cases, err := s.cases.ListUnassigned(ctx)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	return cases, nil
}

// ListForensicsRoster returns active forensics personnel with their
// current in-progress workload, so the head can balance assignments.
func (s *AssignmentService) ListForensicsRoster(ctx context.Context, principal *domain.AppUser) ([]domain.ForensicsEmployee, error) {
	if !domain.CanAssignCases(principal) {
		return nil, apperrors.NewUnauthorized("role may not view the roster")
	}
	users, err := s.users.ListByRoles(ctx, domain.RoleForensics, domain.RoleForensicsHead)
	if err != nil {
		return nil, mapStoreError(err, "employee")
	}

	roster := make([]domain.ForensicsEmployee, 0, len(users))
	for _, user := range users {
		if !user.Active {
			continue
		}
		load, err := s.cases.CountInProgressByAssignee(ctx, user.ID)
		if err != nil {
			return nil, mapStoreError(err, "case")
		}
		roster = append(roster, domain.ForensicsEmployee{
			ID:              user.ID,
			Name:            user.Name,
			Email:           user.Email,
			Role:            user.Role,
			CurrentCaseLoad: load,
		})
	}
	return roster, nil
}

// Assign hands an unassigned case to a forensics employee and moves it
// to in_progress in one conditional write. Losing a concurrent race
// reports an assignment conflict rather than silently reassigning.
func (s *AssignmentService) Assign(ctx context.Context, principal *domain.AppUser, caseID, employeeID string) (*domain.Case, error) {
	if !domain.CanAssignCases(principal) {
		return nil, apperrors.NewUnauthorized("role may not assign cases")
	}

	employee, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employeeId": employeeID})
		}
		return nil, mapStoreError(err, "employee")
	}
	if employee.Role != domain.RoleForensics && employee.Role != domain.RoleForensicsHead {
		return nil, apperrors.NewConflict("employee is not forensics personnel",
			map[string]any{"employeeId": employeeID, "role": employee.Role})
	}
	if !employee.Active {
		return nil, apperrors.NewConflict("employee is deactivated",
			map[string]any{"employeeId": employeeID})
	}

	assigned, err := s.cases.AssignIfUnassigned(ctx, caseID, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("case", map[string]any{"caseId": caseID})
		case errors.Is(err, repository.ErrConflict):
			return nil, apperrors.NewAssignmentConflict(caseID)
		default:
			return nil, mapStoreError(err, "case")
		}
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:   events.EventCaseAssigned,
		CaseID: assigned.ID,
		Actor:  actorFor(principal),
		Payload: events.CaseAssignedPayload{
			AssigneeID:   employee.ID,
			AssigneeName: employee.Name,
		},
	})
	return assigned, nil
}
