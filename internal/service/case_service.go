package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/events"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

// CaseService coordinates the case lifecycle: intake, priority,
// completion, and role-scoped reads. Assignment lives in
// AssignmentService; both share the conditional-update repository
// primitives.
type CaseService struct {
	cases      repository.CaseRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// CaseDependencies bundles repositories for the case service.
type CaseDependencies struct {
	CaseRepo   repository.CaseRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	return &CaseService{
		cases:      deps.CaseRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CaseCreateInput describes the intake payload.
type CaseCreateInput struct {
	CaseNumber  string
	Title       string
	Description string
	Priority    domain.CasePriority
	Department  string
	Persons     []domain.Person
	Intake      domain.IntakeDetails
}

// CaseListFilter describes optional equality filters, applied after
// role scoping. Nil means "all".
type CaseListFilter struct {
	Status     *domain.CaseStatus
	Priority   *domain.CasePriority
	Department *string
	Limit      int
	Offset     int
}

// CaseView is a read-side projection: the case plus the assignee's
// display name resolved at the read boundary.
type CaseView struct {
	domain.Case
	AssignedToName *string
}

// CreateCase registers a new case at status new. Validation reports
// every invalid field together in a field-keyed map.
func (s *CaseService) CreateCase(ctx context.Context, principal *domain.AppUser, input CaseCreateInput) (*domain.Case, error) {
	if !domain.CanCreateCase(principal) {
		return nil, apperrors.NewUnauthorized("role may not create cases")
	}

	details := map[string]any{}
	requiredStrings := []struct {
		field string
		value string
	}{
		{"caseNumber", input.CaseNumber},
		{"title", input.Title},
		{"department", input.Department},
		{"receivedDate", input.Intake.ReceivedDate},
		{"receivedTime", input.Intake.ReceivedTime},
		{"personInCharge", input.Intake.PersonInCharge},
		{"sampleReceiver", input.Intake.SampleReceiver},
		{"expectedFinishDate", input.Intake.ExpectedFinishDate},
		{"caseEnteredBy", input.Intake.CaseEnteredBy},
	}
	for _, req := range requiredStrings {
		if strings.TrimSpace(req.value) == "" {
			details[req.field] = "this field is required"
		}
	}
	if input.Department != "" && !domain.KnownDepartment(input.Department) {
		details["department"] = "unknown department"
	}
	if input.Priority != "" && input.Priority != domain.CasePriorityNormal && input.Priority != domain.CasePriorityUrgent {
		details["priority"] = "must be normal or urgent"
	}
	if input.Intake.SampleCount < 0 {
		details["sampleCount"] = "must not be negative"
	}
	if len(input.Persons) == 0 {
		details["persons"] = "at least one person is required"
	}
	for i, person := range input.Persons {
		if strings.TrimSpace(person.Name) == "" {
			details[fmt.Sprintf("persons[%d].name", i)] = "name is required"
		}
	}

	if strings.TrimSpace(input.CaseNumber) != "" {
		_, err := s.cases.GetByCaseNumber(ctx, input.CaseNumber)
		switch {
		case err == nil:
			details["caseNumber"] = "already in use"
		case errors.Is(err, repository.ErrNotFound):
			// available
		default:
			return nil, mapStoreError(err, "case")
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("case validation failed", details)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.CasePriorityNormal
	}

	newCase := &domain.Case{
		CaseNumber:  strings.TrimSpace(input.CaseNumber),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.CaseStatusNew,
		Priority:    priority,
		Department:  input.Department,
		CreatedBy:   principal.ID,
		Persons:     input.Persons,
		Intake:      input.Intake,
	}

	if err := s.cases.Create(ctx, newCase); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewValidationError("case validation failed",
				map[string]any{"caseNumber": "already in use"})
		}
		return nil, mapStoreError(err, "case")
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventCaseCreated,
		CaseID: newCase.ID,
		Actor:  actorFor(principal),
		Payload: events.CaseCreatedPayload{
			CaseNumber: newCase.CaseNumber,
			Department: newCase.Department,
			Priority:   newCase.Priority,
			Title:      newCase.Title,
		},
	})
	return newCase, nil
}

// GetCase fetches a single case, enforcing the read scope.
func (s *CaseService) GetCase(ctx context.Context, principal *domain.AppUser, caseID string) (*CaseView, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	if !domain.CanViewCase(principal, c) {
		return nil, apperrors.NewUnauthorized("case not visible to this role")
	}
	views, err := s.resolveAssignees(ctx, []domain.Case{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListCases applies role-scoped visibility first, then the optional
// conjunctive equality filters. Newest-created first, stable on ties by
// identifier.
func (s *CaseService) ListCases(ctx context.Context, principal *domain.AppUser, filter CaseListFilter) ([]CaseView, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("principal required")
	}
	repoFilter := repository.CaseFilter{
		Status:     filter.Status,
		Priority:   filter.Priority,
		Department: filter.Department,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch principal.Role {
	case domain.RoleRegistration, domain.RoleAdmin:
		// full visibility
	case domain.RoleForensics:
		id := principal.ID
		repoFilter.AssignedToID = &id
	case domain.RoleForensicsHead:
		id := principal.ID
		repoFilter.AssigneeOrUnassigned = &id
	default:
		return nil, apperrors.NewUnauthorized("unknown role")
	}

	cases, err := s.cases.List(ctx, repoFilter)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	return s.resolveAssignees(ctx, cases)
}

// SetPriority toggles case priority in any lifecycle state. Status is
// unaffected.
func (s *CaseService) SetPriority(ctx context.Context, principal *domain.AppUser, caseID string, priority domain.CasePriority) (*domain.Case, error) {
	if !domain.CanSetPriority(principal) {
		return nil, apperrors.NewUnauthorized("role may not change priority")
	}
	if priority != domain.CasePriorityNormal && priority != domain.CasePriorityUrgent {
		return nil, apperrors.NewValidationError("invalid priority",
			map[string]any{"priority": "must be normal or urgent"})
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	if c.Priority == priority {
		return c, nil
	}
	oldPriority := c.Priority
	c.Priority = priority
	if err := s.cases.Update(ctx, c); err != nil {
		return nil, mapStoreError(err, "case")
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventCasePriorityChanged,
		CaseID: c.ID,
		Actor:  actorFor(principal),
		Payload: events.CasePriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: priority,
		},
	})
	return c, nil
}

// CompleteCase moves an in-progress case to completed. Only the owning
// forensics principal (or an admin) may complete. Completing an
// already-completed case is a no-op reporting success without touching
// timestamps; a new case cannot be completed.
func (s *CaseService) CompleteCase(ctx context.Context, principal *domain.AppUser, caseID string) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, mapStoreError(err, "case")
	}
	if !domain.CanCompleteCase(principal, c) {
		return nil, apperrors.NewUnauthorized("only the assigned forensics employee may complete this case")
	}

	switch c.Status {
	case domain.CaseStatusCompleted:
		return c, nil
	case domain.CaseStatusNew:
		return nil, apperrors.NewInvalidTransition(string(domain.CaseStatusNew), string(domain.CaseStatusCompleted))
	}

	completed, err := s.cases.CompleteIfInProgress(ctx, caseID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race: re-read and treat a concurrent completion
			// as the idempotent success it would have been.
			current, getErr := s.cases.GetByID(ctx, caseID)
			if getErr != nil {
				return nil, mapStoreError(getErr, "case")
			}
			if current.Status == domain.CaseStatusCompleted {
				return current, nil
			}
			return nil, apperrors.NewInvalidTransition(string(current.Status), string(domain.CaseStatusCompleted))
		}
		return nil, mapStoreError(err, "case")
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventCaseStatusChanged,
		CaseID: completed.ID,
		Actor:  actorFor(principal),
		Payload: events.CaseStatusChangedPayload{
			OldStatus: domain.CaseStatusInProgress,
			NewStatus: domain.CaseStatusCompleted,
		},
	})
	return completed, nil
}

// resolveAssignees attaches assignee display names, resolving each
// employee ID once per call.
func (s *CaseService) resolveAssignees(ctx context.Context, cases []domain.Case) ([]CaseView, error) {
	names := map[string]string{}
	views := make([]CaseView, 0, len(cases))
	for i := range cases {
		view := CaseView{Case: cases[i]}
		if cases[i].AssignedToID != nil {
			id := *cases[i].AssignedToID
			name, ok := names[id]
			if !ok {
				user, err := s.users.GetByID(ctx, id)
				if err != nil {
					if !errors.Is(err, repository.ErrNotFound) {
						return nil, mapStoreError(err, "employee")
					}
					// Assignee record gone; leave the name blank
					// rather than failing the whole read.
					name = ""
				} else {
					name = user.Name
				}
				names[id] = name
			}
			if name != "" {
				resolved := name
				view.AssignedToName = &resolved
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

func actorFor(principal *domain.AppUser) events.Actor {
	if principal == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: principal.ID, Role: principal.Role}
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

// mapStoreError converts repository sentinels into the public
// taxonomy.
func mapStoreError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrUnavailable):
		return apperrors.NewStorageUnavailable(err)
	default:
		return apperrors.MapError(err)
	}
}
