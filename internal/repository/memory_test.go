package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

func newCase(number string) *domain.Case {
	return &domain.Case{
		CaseNumber: number,
		Title:      "case " + number,
		Status:     domain.CaseStatusNew,
		Priority:   domain.CasePriorityNormal,
		Department: "Biology",
		CreatedBy:  "creator",
		Persons:    []domain.Person{{Name: "John Doe"}},
	}
}

func TestCaseCreateAndGet(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	c := newCase("C-1001")
	require.NoError(t, cases.Create(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "C-1001", got.CaseNumber)
	assert.Equal(t, domain.CaseStatusNew, got.Status)
	assert.Len(t, got.Persons, 1)

	byNumber, err := cases.GetByCaseNumber(ctx, "C-1001")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byNumber.ID)

	_, err = cases.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCaseNumberUniqueness(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	require.NoError(t, cases.Create(ctx, newCase("C-1001")))
	err := cases.Create(ctx, newCase("C-1001"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCaseListFilters(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	urgent := newCase("C-1")
	urgent.Priority = domain.CasePriorityUrgent
	urgent.Department = "Chemistry"
	require.NoError(t, cases.Create(ctx, urgent))
	require.NoError(t, cases.Create(ctx, newCase("C-2")))
	require.NoError(t, cases.Create(ctx, newCase("C-3")))

	all, err := cases.List(ctx, CaseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	p := domain.CasePriorityUrgent
	got, err := cases.List(ctx, CaseFilter{Priority: &p})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C-1", got[0].CaseNumber)

	dept := "Biology"
	got, err = cases.List(ctx, CaseFilter{Department: &dept})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = cases.List(ctx, CaseFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCaseListUnassignedNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cases := store.Cases()

	older := newCase("C-1")
	middle := newCase("C-2")
	newest := newCase("C-3")
	for _, c := range []*domain.Case{older, middle, newest} {
		require.NoError(t, cases.Create(ctx, c))
	}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.cases[older.ID].CreatedAt = base.Add(-2 * time.Hour)
	store.cases[middle.ID].CreatedAt = base.Add(-time.Hour)
	store.cases[newest.ID].CreatedAt = base

	listed, err := cases.ListUnassigned(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, newest.ID, listed[0].ID)
	assert.Equal(t, middle.ID, listed[1].ID)
	assert.Equal(t, older.ID, listed[2].ID)

	listed, err = cases.List(ctx, CaseFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, newest.ID, listed[0].ID)
}

func TestCaseListTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cases := store.Cases()

	ids := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		c := newCase(fmt.Sprintf("C-%d", i))
		require.NoError(t, cases.Create(ctx, c))
		ids = append(ids, c.ID)
	}
	same := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range ids {
		store.cases[id].CreatedAt = same
	}
	sort.Strings(ids)

	listed, err := cases.List(ctx, CaseFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, id := range ids {
		assert.Equal(t, id, listed[i].ID)
	}
}

func TestAssignIfUnassigned(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	c := newCase("C-1001")
	require.NoError(t, cases.Create(ctx, c))

	assigned, err := cases.AssignIfUnassigned(ctx, c.ID, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedToID)
	assert.Equal(t, "emp-1", *assigned.AssignedToID)
	assert.Equal(t, domain.CaseStatusInProgress, assigned.Status)

	// second assignment loses
	_, err = cases.AssignIfUnassigned(ctx, c.ID, "emp-2")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = cases.AssignIfUnassigned(ctx, "missing", "emp-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignRaceSingleWinner(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	c := newCase("C-race")
	require.NoError(t, cases.Create(ctx, c))

	const contenders = 8
	var wg sync.WaitGroup
	wins := make(chan string, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := cases.AssignIfUnassigned(ctx, c.ID, fmt.Sprintf("emp-%d", n)); err == nil {
				wins <- fmt.Sprintf("emp-%d", n)
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	winners := make([]string, 0, contenders)
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	got, err := cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], *got.AssignedToID)
}

func TestCompleteIfInProgress(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	c := newCase("C-1001")
	require.NoError(t, cases.Create(ctx, c))

	// not yet in progress
	_, err := cases.CompleteIfInProgress(ctx, c.ID, time.Now())
	assert.ErrorIs(t, err, ErrConflict)

	_, err = cases.AssignIfUnassigned(ctx, c.ID, "emp-1")
	require.NoError(t, err)

	at := time.Now()
	done, err := cases.CompleteIfInProgress(ctx, c.ID, at)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.WithinDuration(t, at, *done.CompletedAt, time.Second)

	// already completed
	_, err = cases.CompleteIfInProgress(ctx, c.ID, time.Now())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCountInProgressByAssignee(t *testing.T) {
	ctx := context.Background()
	cases := NewMemoryStore().Cases()

	for i := 0; i < 3; i++ {
		c := newCase(fmt.Sprintf("C-%d", i))
		require.NoError(t, cases.Create(ctx, c))
		_, err := cases.AssignIfUnassigned(ctx, c.ID, "emp-1")
		require.NoError(t, err)
		if i == 0 {
			_, err = cases.CompleteIfInProgress(ctx, c.ID, time.Now())
			require.NoError(t, err)
		}
	}

	count, err := cases.CountInProgressByAssignee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = cases.CountInProgressByAssignee(ctx, "emp-2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSpecimenCascadeDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cases, specimens, tests := store.Cases(), store.Specimens(), store.Tests()

	c := newCase("C-1001")
	require.NoError(t, cases.Create(ctx, c))

	specimen := &domain.Specimen{CaseID: c.ID, Name: "blood sample", Quantity: 2}
	require.NoError(t, specimens.Create(ctx, specimen))

	for i := 0; i < 2; i++ {
		test := &domain.Test{
			SpecimenID: specimen.ID,
			Name:       fmt.Sprintf("dna-%d", i),
			Repeats:    1,
			Status:     domain.TestStatusPending,
		}
		require.NoError(t, tests.Create(ctx, test))
	}

	listed, err := tests.ListBySpecimen(ctx, specimen.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	require.NoError(t, specimens.DeleteCascade(ctx, specimen.ID))

	_, err = specimens.GetByID(ctx, specimen.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	listed, err = tests.ListBySpecimen(ctx, specimen.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, specimens.DeleteCascade(ctx, specimen.ID), ErrNotFound)
}

func TestSpecimenRequiresCase(t *testing.T) {
	ctx := context.Background()
	specimens := NewMemoryStore().Specimens()

	err := specimens.Create(ctx, &domain.Specimen{CaseID: "missing", Name: "x", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserEmailUniquenessAndRoster(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	alice := &domain.AppUser{Name: "Alice", Email: "alice@lab.test", PasswordHash: "h", Role: domain.RoleForensics, Active: true}
	require.NoError(t, users.Create(ctx, alice))

	dup := &domain.AppUser{Name: "Alice 2", Email: "alice@lab.test", PasswordHash: "h", Role: domain.RoleForensics, Active: true}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicate)

	head := &domain.AppUser{Name: "Head", Email: "head@lab.test", PasswordHash: "h", Role: domain.RoleForensicsHead, Active: true}
	clerk := &domain.AppUser{Name: "Clerk", Email: "clerk@lab.test", PasswordHash: "h", Role: domain.RoleRegistration, Active: true}
	require.NoError(t, users.Create(ctx, head))
	require.NoError(t, users.Create(ctx, clerk))

	roster, err := users.ListByRoles(ctx, domain.RoleForensics, domain.RoleForensicsHead)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	// ordered by name
	assert.Equal(t, "Alice", roster[0].Name)
	assert.Equal(t, "Head", roster[1].Name)
}

func TestEvidenceLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cases, evidence := store.Cases(), store.Evidence()

	c := newCase("C-1001")
	require.NoError(t, cases.Create(ctx, c))

	record := &domain.Evidence{
		CaseID:     c.ID,
		Kind:       domain.EvidenceKindImage,
		FileName:   "scene.jpg",
		MediaType:  "image/jpeg",
		SizeBytes:  128,
		StorageRef: "evidence/x/scene.jpg",
		UploadedBy: "emp-1",
		UploadedAt: time.Now(),
	}
	require.NoError(t, evidence.Create(ctx, record))
	require.NotEmpty(t, record.ID)

	listed, err := evidence.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, evidence.Delete(ctx, record.ID))
	assert.ErrorIs(t, evidence.Delete(ctx, record.ID), ErrNotFound)
}
