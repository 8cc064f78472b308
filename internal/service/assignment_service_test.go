package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/events"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

type AssignmentServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *repository.MemoryStore
	svc     *AssignmentService
	caseSvc *CaseService

	clerk *domain.AppUser
	emp   *domain.AppUser
	emp2  *domain.AppUser
	head  *domain.AppUser
}

func TestAssignmentServiceSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceSuite))
}

func (s *AssignmentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	s.svc = NewAssignmentService(AssignmentDependencies{
		CaseRepo:   s.store.Cases(),
		UserRepo:   s.store.Users(),
		Dispatcher: dispatcher,
	})
	s.caseSvc = NewCaseService(CaseDependencies{
		CaseRepo:   s.store.Cases(),
		UserRepo:   s.store.Users(),
		Dispatcher: dispatcher,
	})

	s.clerk = s.seedUser("Clerk", "clerk@lab.test", domain.RoleRegistration, true)
	s.emp = s.seedUser("Alice", "alice@lab.test", domain.RoleForensics, true)
	s.emp2 = s.seedUser("Bob", "bob@lab.test", domain.RoleForensics, true)
	s.head = s.seedUser("Head", "head@lab.test", domain.RoleForensicsHead, true)
}

func (s *AssignmentServiceSuite) seedUser(name, email string, role domain.Role, active bool) *domain.AppUser {
	user := &domain.AppUser{Name: name, Email: email, PasswordHash: "hash", Role: role, Active: active}
	s.Require().NoError(s.store.Users().Create(s.ctx, user))
	return user
}

func (s *AssignmentServiceSuite) seedCase(number string) *domain.Case {
	created, err := s.caseSvc.CreateCase(s.ctx, s.clerk, validCaseInput(number))
	s.Require().NoError(err)
	return created
}

func (s *AssignmentServiceSuite) TestAssignMovesCaseInProgress() {
	c := s.seedCase("C-1001")

	assigned, err := s.svc.Assign(s.ctx, s.head, c.ID, s.emp.ID)
	s.Require().NoError(err)
	s.Equal(domain.CaseStatusInProgress, assigned.Status)
	s.Require().NotNil(assigned.AssignedToID)
	s.Equal(s.emp.ID, *assigned.AssignedToID)
}

func (s *AssignmentServiceSuite) TestAssignRejectsNonHead() {
	c := s.seedCase("C-1001")
	_, err := s.svc.Assign(s.ctx, s.emp, c.ID, s.emp.ID)
	s.Equal(apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func (s *AssignmentServiceSuite) TestAssignUnknownEmployee() {
	c := s.seedCase("C-1001")
	_, err := s.svc.Assign(s.ctx, s.head, c.ID, "missing")
	s.Equal(apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func (s *AssignmentServiceSuite) TestAssignNonForensicsEmployee() {
	c := s.seedCase("C-1001")
	_, err := s.svc.Assign(s.ctx, s.head, c.ID, s.clerk.ID)
	s.Equal(apperrors.CodeConflict, apperrors.CodeOf(err))
}

func (s *AssignmentServiceSuite) TestAssignDeactivatedEmployee() {
	inactive := s.seedUser("Gone", "gone@lab.test", domain.RoleForensics, false)
	c := s.seedCase("C-1001")
	_, err := s.svc.Assign(s.ctx, s.head, c.ID, inactive.ID)
	s.Equal(apperrors.CodeConflict, apperrors.CodeOf(err))
}

func (s *AssignmentServiceSuite) TestAssignAlreadyAssignedConflicts() {
	c := s.seedCase("C-1001")
	_, err := s.svc.Assign(s.ctx, s.head, c.ID, s.emp.ID)
	s.Require().NoError(err)

	_, err = s.svc.Assign(s.ctx, s.head, c.ID, s.emp2.ID)
	s.Equal(apperrors.CodeAssignmentConflict, apperrors.CodeOf(err))

	// the original assignment survives the lost attempt
	got, getErr := s.store.Cases().GetByID(s.ctx, c.ID)
	s.Require().NoError(getErr)
	s.Equal(s.emp.ID, *got.AssignedToID)
}

func (s *AssignmentServiceSuite) TestConcurrentAssignSingleWinner() {
	c := s.seedCase("C-race")
	employees := []*domain.AppUser{s.emp, s.emp2}

	var wg sync.WaitGroup
	results := make(chan string, len(employees))
	for _, employee := range employees {
		wg.Add(1)
		go func(emp *domain.AppUser) {
			defer wg.Done()
			if _, err := s.svc.Assign(s.ctx, s.head, c.ID, emp.ID); err == nil {
				results <- emp.ID
			}
		}(employee)
	}
	wg.Wait()
	close(results)

	var winners []string
	for id := range results {
		winners = append(winners, id)
	}
	s.Require().Len(winners, 1)

	got, err := s.store.Cases().GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(winners[0], *got.AssignedToID)
}

func (s *AssignmentServiceSuite) TestListUnassigned() {
	s.seedCase("C-1")
	c2 := s.seedCase("C-2")
	_, err := s.svc.Assign(s.ctx, s.head, c2.ID, s.emp.ID)
	s.Require().NoError(err)

	unassigned, err := s.svc.ListUnassignedCases(s.ctx, s.head)
	s.Require().NoError(err)
	s.Require().Len(unassigned, 1)
	s.Equal("C-1", unassigned[0].CaseNumber)

	_, err = s.svc.ListUnassignedCases(s.ctx, s.emp)
	s.Equal(apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func (s *AssignmentServiceSuite) TestListUnassignedNewestIntakeFirst() {
	s.seedCase("C-1")
	s.seedCase("C-2")
	s.seedCase("C-3")

	unassigned, err := s.svc.ListUnassignedCases(s.ctx, s.head)
	s.Require().NoError(err)
	s.Require().Len(unassigned, 3)
	for i := 1; i < len(unassigned); i++ {
		s.False(unassigned[i-1].CreatedAt.Before(unassigned[i].CreatedAt),
			"case %s listed before newer case %s", unassigned[i-1].CaseNumber, unassigned[i].CaseNumber)
	}
}

func (s *AssignmentServiceSuite) TestRosterReportsCaseload() {
	inactive := s.seedUser("Gone", "gone@lab.test", domain.RoleForensics, false)
	_ = inactive

	for _, number := range []string{"C-1", "C-2"} {
		c := s.seedCase(number)
		_, err := s.svc.Assign(s.ctx, s.head, c.ID, s.emp.ID)
		s.Require().NoError(err)
	}
	done := s.seedCase("C-3")
	_, err := s.svc.Assign(s.ctx, s.head, done.ID, s.emp.ID)
	s.Require().NoError(err)
	_, err = s.caseSvc.CompleteCase(s.ctx, s.emp, done.ID)
	s.Require().NoError(err)

	roster, err := s.svc.ListForensicsRoster(s.ctx, s.head)
	s.Require().NoError(err)
	// Alice, Bob, Head; the deactivated account is excluded
	s.Require().Len(roster, 3)

	byName := map[string]domain.ForensicsEmployee{}
	for _, entry := range roster {
		byName[entry.Name] = entry
	}
	s.Equal(2, byName["Alice"].CurrentCaseLoad)
	s.Equal(0, byName["Bob"].CurrentCaseLoad)
	s.Equal(0, byName["Head"].CurrentCaseLoad)
}
