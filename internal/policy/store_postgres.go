package policy

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

// PostgresStore persists policies in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const policyColumns = `id, customer_id, decision_id, policy_number, coverage_amount,
	premium_amount, start_date, end_date, status, issue_date`

func (s *PostgresStore) Create(ctx context.Context, p *Policy) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO policies (`+policyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(p.ID), uuid.UUID(p.CustomerID), uuid.UUID(p.DecisionID), p.PolicyNumber,
		p.CoverageAmount, p.PremiumAmount, p.StartDate, p.EndDate, string(p.Status), p.IssueDate,
	)
	if err != nil {
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, policyID id.PolicyID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM policies WHERE id = $1`, uuid.UUID(policyID))
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, policyID id.PolicyID) (*Policy, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+policyColumns+` FROM policies WHERE id = $1`, uuid.UUID(policyID))
	p, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Exists(ctx context.Context, policyID id.PolicyID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM policies WHERE id = $1)`, uuid.UUID(policyID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check policy exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Policy, error) {
	return s.query(ctx, `SELECT `+policyColumns+` FROM policies ORDER BY issue_date DESC`)
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]Policy, error) {
	return s.query(ctx, `SELECT `+policyColumns+` FROM policies WHERE customer_id = $1 ORDER BY issue_date DESC`, uuid.UUID(customerID))
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM policies WHERE status = 'ACTIVE'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count policies: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Policy, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var out []Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*Policy, error) {
	var p Policy
	var policyID, customerID, decisionID uuid.UUID
	var status string
	if err := row.Scan(&policyID, &customerID, &decisionID, &p.PolicyNumber, &p.CoverageAmount,
		&p.PremiumAmount, &p.StartDate, &p.EndDate, &status, &p.IssueDate); err != nil {
		return nil, err
	}
	p.ID = id.PolicyID(policyID)
	p.CustomerID = id.CustomerID(customerID)
	p.DecisionID = id.DecisionID(decisionID)
	p.Status = Status(status)
	return &p, nil
}
