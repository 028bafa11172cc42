package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

// PostgresStore persists assessments in PostgreSQL. Execute takes a row lock
// (SELECT ... FOR UPDATE) so validation and mutation form one atomic unit,
// mirroring the mutex held by the in-memory store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const assessmentColumns = `id, customer_id, risk_score, risk_level, result, explanation,
	factors, flagged_for_manual_review, status, assessed_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, a *RiskAssessment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO risk_assessments (`+assessmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(a.ID), uuid.UUID(a.CustomerID), a.RiskScore, string(a.RiskLevel), string(a.Result),
		a.Explanation, a.Factors, a.FlaggedForManualReview, string(a.Status), a.AssessedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, assessmentID id.AssessmentID) (*RiskAssessment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+assessmentColumns+` FROM risk_assessments WHERE id = $1`, uuid.UUID(assessmentID))
	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]RiskAssessment, error) {
	return s.query(ctx, `SELECT `+assessmentColumns+` FROM risk_assessments ORDER BY assessed_at DESC`)
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]RiskAssessment, error) {
	return s.query(ctx, `SELECT `+assessmentColumns+` FROM risk_assessments WHERE customer_id = $1 ORDER BY assessed_at DESC`, uuid.UUID(customerID))
}

func (s *PostgresStore) ListByResult(ctx context.Context, result Result) ([]RiskAssessment, error) {
	return s.query(ctx, `SELECT `+assessmentColumns+` FROM risk_assessments WHERE result = $1 ORDER BY assessed_at DESC`, string(result))
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]RiskAssessment, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []RiskAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Execute atomically validates and mutates an assessment under a row lock.
func (s *PostgresStore) Execute(ctx context.Context, assessmentID id.AssessmentID, validate func(*RiskAssessment) error, mutate func(*RiskAssessment)) (*RiskAssessment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin assessment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+assessmentColumns+` FROM risk_assessments WHERE id = $1 FOR UPDATE`, uuid.UUID(assessmentID))
	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock assessment: %w", err)
	}

	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)

	_, err = tx.Exec(ctx, `
		UPDATE risk_assessments SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(a.ID), string(a.Status), a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update assessment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit assessment tx: %w", err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*RiskAssessment, error) {
	var a RiskAssessment
	var assessmentID, customerID uuid.UUID
	var level, result, status string
	if err := row.Scan(&assessmentID, &customerID, &a.RiskScore, &level, &result,
		&a.Explanation, &a.Factors, &a.FlaggedForManualReview, &status, &a.AssessedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.AssessmentID(assessmentID)
	a.CustomerID = id.CustomerID(customerID)
	a.RiskLevel = RiskLevel(level)
	a.Result = Result(result)
	a.Status = Status(status)
	return &a, nil
}
