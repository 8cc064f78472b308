package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/forensic-case-service/internal/domain"
	"github.com/spec-kit/forensic-case-service/internal/events"
	"github.com/spec-kit/forensic-case-service/internal/repository"
	apperrors "github.com/spec-kit/forensic-case-service/pkg/util"
)

type CaseServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.MemoryStore
	svc   *CaseService

	clerk *domain.AppUser
	emp   *domain.AppUser
	emp2  *domain.AppUser
	head  *domain.AppUser
	admin *domain.AppUser
}

func TestCaseServiceSuite(t *testing.T) {
	suite.Run(t, new(CaseServiceSuite))
}

func (s *CaseServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.svc = NewCaseService(CaseDependencies{
		CaseRepo:   s.store.Cases(),
		UserRepo:   s.store.Users(),
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	s.clerk = s.seedUser("Clerk", "clerk@lab.test", domain.RoleRegistration)
	s.emp = s.seedUser("Alice", "alice@lab.test", domain.RoleForensics)
	s.emp2 = s.seedUser("Bob", "bob@lab.test", domain.RoleForensics)
	s.head = s.seedUser("Head", "head@lab.test", domain.RoleForensicsHead)
	s.admin = s.seedUser("Admin", "admin@lab.test", domain.RoleAdmin)
}

func (s *CaseServiceSuite) seedUser(name, email string, role domain.Role) *domain.AppUser {
	user := &domain.AppUser{Name: name, Email: email, PasswordHash: "hash", Role: role, Active: true}
	s.Require().NoError(s.store.Users().Create(s.ctx, user))
	return user
}

func validCaseInput(number string) CaseCreateInput {
	return CaseCreateInput{
		CaseNumber: number,
		Title:      "Seized laptop analysis",
		Priority:   domain.CasePriorityNormal,
		Department: "Digital Forensics",
		Persons:    []domain.Person{{Name: "John Doe", Nationality: "Bahraini"}},
		Intake: domain.IntakeDetails{
			ReceivedDate:       "2024-03-01",
			ReceivedTime:       "10:30",
			SenderName:         "Central Station",
			PersonInCharge:     "Sgt. Ahmed",
			SampleCount:        1,
			SampleReceiver:     "Lab Desk",
			ExpectedFinishDate: "2024-03-15",
			CaseEnteredBy:      "Clerk",
		},
	}
}

func (s *CaseServiceSuite) TestCreateCaseSuccess() {
	created, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal(domain.CaseStatusNew, created.Status)
	s.Equal(domain.CasePriorityNormal, created.Priority)
	s.Nil(created.AssignedToID)
	s.Equal(s.clerk.ID, created.CreatedBy)
}

func (s *CaseServiceSuite) TestCreateCaseDefaultsPriority() {
	input := validCaseInput("C-1001")
	input.Priority = ""
	created, err := s.svc.CreateCase(s.ctx, s.clerk, input)
	s.Require().NoError(err)
	s.Equal(domain.CasePriorityNormal, created.Priority)
}

func (s *CaseServiceSuite) TestCreateCaseCollectsEveryFieldError() {
	_, err := s.svc.CreateCase(s.ctx, s.clerk, CaseCreateInput{
		Intake: domain.IntakeDetails{SampleCount: -1},
	})
	s.Require().Error(err)

	domainErr := apperrors.ToDomainError(err)
	s.Equal(apperrors.CodeValidationFailed, domainErr.Code)
	for _, field := range []string{
		"caseNumber", "title", "department",
		"receivedDate", "receivedTime", "personInCharge",
		"sampleReceiver", "expectedFinishDate", "caseEnteredBy",
		"sampleCount", "persons",
	} {
		s.Contains(domainErr.Details, field)
	}
}

func (s *CaseServiceSuite) TestCreateCasePersonErrorsAreIndexed() {
	input := validCaseInput("C-1001")
	input.Persons = []domain.Person{{Name: "John Doe"}, {Name: "  "}}
	_, err := s.svc.CreateCase(s.ctx, s.clerk, input)
	s.Require().Error(err)

	domainErr := apperrors.ToDomainError(err)
	s.Equal(apperrors.CodeValidationFailed, domainErr.Code)
	s.Contains(domainErr.Details, "persons[1].name")
	s.NotContains(domainErr.Details, "persons[0].name")
}

func (s *CaseServiceSuite) TestCreateCaseUnknownDepartment() {
	input := validCaseInput("C-1001")
	input.Department = "Astrology"
	_, err := s.svc.CreateCase(s.ctx, s.clerk, input)
	s.Require().Error(err)
	s.Contains(apperrors.ToDomainError(err).Details, "department")
}

func (s *CaseServiceSuite) TestCreateCaseDuplicateNumber() {
	_, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)

	_, err = s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().Error(err)
	domainErr := apperrors.ToDomainError(err)
	s.Equal(apperrors.CodeValidationFailed, domainErr.Code)
	s.Contains(domainErr.Details, "caseNumber")
}

func (s *CaseServiceSuite) TestCreateCaseForbiddenForForensics() {
	_, err := s.svc.CreateCase(s.ctx, s.emp, validCaseInput("C-1001"))
	s.Equal(apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func (s *CaseServiceSuite) TestCompleteCaseByOwner() {
	created, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)
	_, err = s.store.Cases().AssignIfUnassigned(s.ctx, created.ID, s.emp.ID)
	s.Require().NoError(err)

	completed, err := s.svc.CompleteCase(s.ctx, s.emp, created.ID)
	s.Require().NoError(err)
	s.Equal(domain.CaseStatusCompleted, completed.Status)
	s.Require().NotNil(completed.CompletedAt)

	// completing again is a no-op that preserves the timestamp
	time.Sleep(2 * time.Millisecond)
	again, err := s.svc.CompleteCase(s.ctx, s.emp, created.ID)
	s.Require().NoError(err)
	s.True(again.CompletedAt.Equal(*completed.CompletedAt))
}

func (s *CaseServiceSuite) TestCompleteCaseByNonOwnerRejected() {
	created, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)
	_, err = s.store.Cases().AssignIfUnassigned(s.ctx, created.ID, s.emp.ID)
	s.Require().NoError(err)

	_, err = s.svc.CompleteCase(s.ctx, s.emp2, created.ID)
	s.Equal(apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func (s *CaseServiceSuite) TestCompleteNewCaseIsInvalidTransition() {
	created, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)

	_, err = s.svc.CompleteCase(s.ctx, s.admin, created.ID)
	s.Equal(apperrors.CodeInvalidTransition, apperrors.CodeOf(err))
}

func (s *CaseServiceSuite) TestCompleteMissingCase() {
	_, err := s.svc.CompleteCase(s.ctx, s.admin, "missing")
	s.Equal(apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func (s *CaseServiceSuite) TestSetPriority() {
	created, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)

	updated, err := s.svc.SetPriority(s.ctx, s.clerk, created.ID, domain.CasePriorityUrgent)
	s.Require().NoError(err)
	s.Equal(domain.CasePriorityUrgent, updated.Priority)
	s.Equal(domain.CaseStatusNew, updated.Status)

	_, err = s.svc.SetPriority(s.ctx, s.clerk, created.ID, "extreme")
	s.Equal(apperrors.CodeValidationFailed, apperrors.CodeOf(err))

	_, err = s.svc.SetPriority(s.ctx, s.emp, created.ID, domain.CasePriorityNormal)
	s.Equal(apperrors.CodeUnauthorized, apperrors.CodeOf(err))
}

func (s *CaseServiceSuite) TestListCasesScopedByRole() {
	assignedCase, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1"))
	s.Require().NoError(err)
	otherCase, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-2"))
	s.Require().NoError(err)
	_, err = s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-3"))
	s.Require().NoError(err)

	_, err = s.store.Cases().AssignIfUnassigned(s.ctx, assignedCase.ID, s.emp.ID)
	s.Require().NoError(err)
	_, err = s.store.Cases().AssignIfUnassigned(s.ctx, otherCase.ID, s.emp2.ID)
	s.Require().NoError(err)

	all, err := s.svc.ListCases(s.ctx, s.clerk, CaseListFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	mine, err := s.svc.ListCases(s.ctx, s.emp, CaseListFilter{})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("C-1", mine[0].CaseNumber)
	s.Require().NotNil(mine[0].AssignedToName)
	s.Equal("Alice", *mine[0].AssignedToName)

	// head sees own assignments plus the unassigned pool, not Bob's case
	triage, err := s.svc.ListCases(s.ctx, s.head, CaseListFilter{})
	s.Require().NoError(err)
	s.Require().Len(triage, 1)
	s.Equal("C-3", triage[0].CaseNumber)
}

func (s *CaseServiceSuite) TestGetCaseVisibility() {
	created, err := s.svc.CreateCase(s.ctx, s.clerk, validCaseInput("C-1001"))
	s.Require().NoError(err)
	_, err = s.store.Cases().AssignIfUnassigned(s.ctx, created.ID, s.emp.ID)
	s.Require().NoError(err)

	view, err := s.svc.GetCase(s.ctx, s.emp, created.ID)
	s.Require().NoError(err)
	s.Equal("C-1001", view.CaseNumber)
	s.Require().NotNil(view.AssignedToName)
	s.Equal("Alice", *view.AssignedToName)

	_, err = s.svc.GetCase(s.ctx, s.emp2, created.ID)
	s.Equal(apperrors.CodeUnauthorized, apperrors.CodeOf(err))

	_, err = s.svc.GetCase(s.ctx, s.clerk, "missing")
	s.Equal(apperrors.CodeNotFound, apperrors.CodeOf(err))
}
