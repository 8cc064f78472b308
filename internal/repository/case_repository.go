package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// CaseFilter captures listing parameters. All equality filters are
// conjunctive; nil means not filtered. AssigneeOrUnassigned widens an
// assignee filter to also include unassigned cases (head triage scope).
type CaseFilter struct {
	Status               *domain.CaseStatus
	Priority             *domain.CasePriority
	Department           *string
	AssignedToID         *string
	AssigneeOrUnassigned *string
	Limit                int
	Offset               int
}

// CaseRepository encapsulates case persistence, including the
// conditional-update primitives the scheduler and lifecycle engine rely
// on.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByCaseNumber(ctx context.Context, caseNumber string) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	ListUnassigned(ctx context.Context) ([]domain.Case, error)
	// AssignIfUnassigned atomically binds the case to the employee and
	// moves it to in_progress, succeeding only when the case is still
	// unassigned at commit time. Returns ErrConflict on a lost race.
	AssignIfUnassigned(ctx context.Context, caseID, employeeID string) (*domain.Case, error)
	// CompleteIfInProgress atomically completes the case, succeeding
	// only when its status is still in_progress at commit time.
	CompleteIfInProgress(ctx context.Context, caseID string, at time.Time) (*domain.Case, error)
	CountInProgressByAssignee(ctx context.Context, employeeID string) (int, error)
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates the repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `id, case_number, title, description, status, priority, department,
       assigned_to_id, created_by, persons,
       received_date, received_time, sender_name, from_dept, police_no, sender_case_no,
       police_station, submitted_by, submitter_police_no, person_in_charge, sample_count,
       sample_receiver, expected_finish_date, case_entered_by,
       created_at, updated_at, completed_at`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (case_number, title, description, status, priority, department,
            assigned_to_id, created_by, persons,
            received_date, received_time, sender_name, from_dept, police_no, sender_case_no,
            police_station, submitted_by, submitter_police_no, person_in_charge, sample_count,
            sample_receiver, expected_finish_date, case_entered_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		c.CaseNumber,
		c.Title,
		c.Description,
		c.Status,
		c.Priority,
		c.Department,
		c.AssignedToID,
		c.CreatedBy,
		c.Persons,
		c.Intake.ReceivedDate,
		c.Intake.ReceivedTime,
		c.Intake.SenderName,
		c.Intake.FromDept,
		c.Intake.PoliceNo,
		c.Intake.SenderCaseNo,
		c.Intake.PoliceStation,
		c.Intake.SubmittedBy,
		c.Intake.SubmitterPoliceNo,
		c.Intake.PersonInCharge,
		c.Intake.SampleCount,
		c.Intake.SampleReceiver,
		c.Intake.ExpectedFinishDate,
		c.Intake.CaseEnteredBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapPgError(err)
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET title=$1, description=$2, status=$3, priority=$4, department=$5,
            assigned_to_id=$6, persons=$7, completed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		c.Title,
		c.Description,
		c.Status,
		c.Priority,
		c.Department,
		c.AssignedToID,
		c.Persons,
		c.CompletedAt,
		c.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE id=$1`, caseColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) GetByCaseNumber(ctx context.Context, caseNumber string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE case_number=$1`, caseColumns)
	return r.fetchSingle(ctx, query, caseNumber)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	c, err := scanCase(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return c, nil
}

func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	base := fmt.Sprintf(`SELECT %s FROM cases`, caseColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.AssigneeOrUnassigned != nil {
		args = append(args, *filter.AssigneeOrUnassigned)
		clauses = append(clauses, fmt.Sprintf("(assigned_to_id=$%d OR assigned_to_id IS NULL)", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// Most recently created first, stable on ties by identifier.
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanCases(rows)
}

func (r *caseRepository) ListUnassigned(ctx context.Context) ([]domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases
        WHERE assigned_to_id IS NULL AND status=$1
        ORDER BY created_at DESC, id`, caseColumns)
	rows, err := r.pool.Query(ctx, query, domain.CaseStatusNew)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanCases(rows)
}

func (r *caseRepository) AssignIfUnassigned(ctx context.Context, caseID, employeeID string) (*domain.Case, error) {
	query := fmt.Sprintf(`
        UPDATE cases SET assigned_to_id=$1, status=$2, updated_at=NOW()
        WHERE id=$3 AND assigned_to_id IS NULL AND status=$4
        RETURNING %s`, caseColumns)
	row := r.pool.QueryRow(ctx, query, employeeID, domain.CaseStatusInProgress, caseID, domain.CaseStatusNew)
	c, err := scanCase(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError(err)
	}
	// No row updated: either the case does not exist or it was
	// assigned concurrently. Distinguish for the caller.
	if _, getErr := r.GetByID(ctx, caseID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func (r *caseRepository) CompleteIfInProgress(ctx context.Context, caseID string, at time.Time) (*domain.Case, error) {
	query := fmt.Sprintf(`
        UPDATE cases SET status=$1, completed_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4
        RETURNING %s`, caseColumns)
	row := r.pool.QueryRow(ctx, query, domain.CaseStatusCompleted, at, caseID, domain.CaseStatusInProgress)
	c, err := scanCase(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError(err)
	}
	if _, getErr := r.GetByID(ctx, caseID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func (r *caseRepository) CountInProgressByAssignee(ctx context.Context, employeeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM cases WHERE assigned_to_id=$1 AND status=$2`
	var count int
	if err := r.pool.QueryRow(ctx, query, employeeID, domain.CaseStatusInProgress).Scan(&count); err != nil {
		return 0, mapPgError(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.Priority,
		&c.Department,
		&c.AssignedToID,
		&c.CreatedBy,
		&c.Persons,
		&c.Intake.ReceivedDate,
		&c.Intake.ReceivedTime,
		&c.Intake.SenderName,
		&c.Intake.FromDept,
		&c.Intake.PoliceNo,
		&c.Intake.SenderCaseNo,
		&c.Intake.PoliceStation,
		&c.Intake.SubmittedBy,
		&c.Intake.SubmitterPoliceNo,
		&c.Intake.PersonInCharge,
		&c.Intake.SampleCount,
		&c.Intake.SampleReceiver,
		&c.Intake.ExpectedFinishDate,
		&c.Intake.CaseEnteredBy,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCases(rows pgx.Rows) ([]domain.Case, error) {
	var result []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// mapPgError converts driver errors to the repository sentinels.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
