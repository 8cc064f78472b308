package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// MemoryStore holds shared in-memory state for every repository
// interface. The typed views returned by Cases, Users, Specimens, Tests
// and Evidence mirror the conditional-update semantics of the postgres
// tier; the store backs the unit suites and local runs without a
// database.
type MemoryStore struct {
	mu          sync.Mutex
	cases       map[string]*domain.Case
	caseNumbers map[string]string
	users       map[string]*domain.AppUser
	emails      map[string]string
	specimens   map[string]*domain.Specimen
	tests       map[string]*domain.Test
	evidence    map[string]*domain.Evidence
}

// NewMemoryStore initializes an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:       make(map[string]*domain.Case),
		caseNumbers: make(map[string]string),
		users:       make(map[string]*domain.AppUser),
		emails:      make(map[string]string),
		specimens:   make(map[string]*domain.Specimen),
		tests:       make(map[string]*domain.Test),
		evidence:    make(map[string]*domain.Evidence),
	}
}

// Cases returns the case repository view.
func (m *MemoryStore) Cases() CaseRepository { return memCaseRepo{m} }

// Users returns the user repository view.
func (m *MemoryStore) Users() UserRepository { return memUserRepo{m} }

// Specimens returns the specimen repository view.
func (m *MemoryStore) Specimens() SpecimenRepository { return memSpecimenRepo{m} }

// Tests returns the test repository view.
func (m *MemoryStore) Tests() TestRepository { return memTestRepo{m} }

// Evidence returns the evidence repository view.
func (m *MemoryStore) Evidence() EvidenceRepository { return memEvidenceRepo{m} }

type memCaseRepo struct{ *MemoryStore }
type memUserRepo struct{ *MemoryStore }
type memSpecimenRepo struct{ *MemoryStore }
type memTestRepo struct{ *MemoryStore }
type memEvidenceRepo struct{ *MemoryStore }

var (
	_ CaseRepository     = memCaseRepo{}
	_ UserRepository     = memUserRepo{}
	_ SpecimenRepository = memSpecimenRepo{}
	_ TestRepository     = memTestRepo{}
	_ EvidenceRepository = memEvidenceRepo{}
)

// --- cases ---

func (r memCaseRepo) Create(ctx context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caseNumbers[c.CaseNumber]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	stored := *c
	stored.Persons = append([]domain.Person(nil), c.Persons...)
	r.cases[c.ID] = &stored
	r.caseNumbers[c.CaseNumber] = c.ID
	return nil
}

func (r memCaseRepo) Update(ctx context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.cases[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	stored := *c
	stored.Persons = append([]domain.Person(nil), c.Persons...)
	r.cases[c.ID] = &stored
	return nil
}

func (r memCaseRepo) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCase(c), nil
}

func (r memCaseRepo) GetByCaseNumber(ctx context.Context, caseNumber string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.caseNumbers[caseNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCase(r.cases[id]), nil
}

func (r memCaseRepo) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Case
	for _, c := range r.cases {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && c.Priority != *filter.Priority {
			continue
		}
		if filter.Department != nil && c.Department != *filter.Department {
			continue
		}
		if filter.AssignedToID != nil {
			if c.AssignedToID == nil || *c.AssignedToID != *filter.AssignedToID {
				continue
			}
		}
		if filter.AssigneeOrUnassigned != nil {
			if c.AssignedToID != nil && *c.AssignedToID != *filter.AssigneeOrUnassigned {
				continue
			}
		}
		result = append(result, *copyCase(c))
	}
	sortCasesNewestFirst(result)
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r memCaseRepo) ListUnassigned(ctx context.Context) ([]domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Case
	for _, c := range r.cases {
		if c.AssignedToID == nil && c.Status == domain.CaseStatusNew {
			result = append(result, *copyCase(c))
		}
	}
	sortCasesNewestFirst(result)
	return result, nil
}

func (r memCaseRepo) AssignIfUnassigned(ctx context.Context, caseID, employeeID string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.AssignedToID != nil || c.Status != domain.CaseStatusNew {
		return nil, ErrConflict
	}
	assignee := employeeID
	c.AssignedToID = &assignee
	c.Status = domain.CaseStatusInProgress
	c.UpdatedAt = time.Now()
	return copyCase(c), nil
}

func (r memCaseRepo) CompleteIfInProgress(ctx context.Context, caseID string, at time.Time) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.Status != domain.CaseStatusInProgress {
		return nil, ErrConflict
	}
	c.Status = domain.CaseStatusCompleted
	completed := at
	c.CompletedAt = &completed
	c.UpdatedAt = time.Now()
	return copyCase(c), nil
}

func (r memCaseRepo) CountInProgressByAssignee(ctx context.Context, employeeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.cases {
		if c.Status == domain.CaseStatusInProgress && c.AssignedToID != nil && *c.AssignedToID == employeeID {
			count++
		}
	}
	return count, nil
}

// --- users ---

func (r memUserRepo) Create(ctx context.Context, user *domain.AppUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emails[user.Email]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	r.emails[user.Email] = user.ID
	return nil
}

func (r memUserRepo) Update(ctx context.Context, user *domain.AppUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Email != user.Email {
		if _, taken := r.emails[user.Email]; taken {
			return ErrDuplicate
		}
		delete(r.emails, existing.Email)
		r.emails[user.Email] = user.ID
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r memUserRepo) GetByID(ctx context.Context, id string) (*domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r memUserRepo) ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}
	var result []domain.AppUser
	for _, user := range r.users {
		if _, ok := wanted[user.Role]; ok {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// --- specimens ---

func (r memSpecimenRepo) Create(ctx context.Context, s *domain.Specimen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cases[s.CaseID]; !ok {
		return ErrNotFound
	}
	now := time.Now()
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
	stored := *s
	stored.Tests = nil
	r.specimens[s.ID] = &stored
	return nil
}

func (r memSpecimenRepo) GetByID(ctx context.Context, id string) (*domain.Specimen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.specimens[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r memSpecimenRepo) ListByCase(ctx context.Context, caseID string) ([]domain.Specimen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Specimen
	for _, s := range r.specimens {
		if s.CaseID == caseID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r memSpecimenRepo) DeleteCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specimens[id]; !ok {
		return ErrNotFound
	}
	for testID, t := range r.tests {
		if t.SpecimenID == id {
			delete(r.tests, testID)
		}
	}
	delete(r.specimens, id)
	return nil
}

// --- tests ---

func (r memTestRepo) Create(ctx context.Context, t *domain.Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specimens[t.SpecimenID]; !ok {
		return ErrNotFound
	}
	now := time.Now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	r.tests[t.ID] = &stored
	return nil
}

func (r memTestRepo) Update(ctx context.Context, t *domain.Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tests[t.ID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now()
	stored := *t
	r.tests[t.ID] = &stored
	return nil
}

func (r memTestRepo) GetByID(ctx context.Context, id string) (*domain.Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r memTestRepo) ListBySpecimen(ctx context.Context, specimenID string) ([]domain.Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Test
	for _, t := range r.tests {
		if t.SpecimenID == specimenID {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r memTestRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tests[id]; !ok {
		return ErrNotFound
	}
	delete(r.tests, id)
	return nil
}

// --- evidence ---

func (r memEvidenceRepo) Create(ctx context.Context, e *domain.Evidence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cases[e.CaseID]; !ok {
		return ErrNotFound
	}
	e.ID = uuid.NewString()
	e.UploadedAt = time.Now()
	stored := *e
	r.evidence[e.ID] = &stored
	return nil
}

func (r memEvidenceRepo) GetByID(ctx context.Context, id string) (*domain.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.evidence[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r memEvidenceRepo) ListByCase(ctx context.Context, caseID string) ([]domain.Evidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Evidence
	for _, e := range r.evidence {
		if e.CaseID == caseID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].UploadedAt.After(result[j].UploadedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r memEvidenceRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.evidence[id]; !ok {
		return ErrNotFound
	}
	delete(r.evidence, id)
	return nil
}

// --- helpers ---

func copyCase(c *domain.Case) *domain.Case {
	copied := *c
	copied.Persons = append([]domain.Person(nil), c.Persons...)
	if c.AssignedToID != nil {
		assignee := *c.AssignedToID
		copied.AssignedToID = &assignee
	}
	if c.CompletedAt != nil {
		at := *c.CompletedAt
		copied.CompletedAt = &at
	}
	return &copied
}

func sortCasesNewestFirst(cases []domain.Case) {
	sort.Slice(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.After(cases[j].CreatedAt)
		}
		return cases[i].ID < cases[j].ID
	})
}

func paginate(cases []domain.Case, limit, offset int) []domain.Case {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(cases) {
		return nil
	}
	cases = cases[offset:]
	if limit > 0 && limit < len(cases) {
		cases = cases[:limit]
	}
	return cases
}
