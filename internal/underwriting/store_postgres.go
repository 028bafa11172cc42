package underwriting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "riskguard/pkg/domain"
	"riskguard/pkg/platform/sentinel"
)

// PostgresStore persists decisions in PostgreSQL. The outcome variant is
// flattened into nullable columns and rebuilt from the status on scan. A
// unique index on assessment_id enforces the one-decision-per-assessment
// invariant at the storage layer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const decisionColumns = `id, customer_id, assessment_id, status, reason, underwriter_notes,
	decided_by, sent_to_underwriting_date, approval_date, decision_date, held_at, policy_id`

const uniqueViolation = "23505"

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, d *Decision) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO underwriting_decisions (`+decisionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		flattenDecision(d)...,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create decision: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, decisionID id.DecisionID) (*Decision, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+decisionColumns+` FROM underwriting_decisions WHERE id = $1`, uuid.UUID(decisionID))
	return s.scanOne(row, "find decision")
}

func (s *PostgresStore) FindByAssessment(ctx context.Context, assessmentID id.AssessmentID) (*Decision, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+decisionColumns+` FROM underwriting_decisions WHERE assessment_id = $1`, uuid.UUID(assessmentID))
	return s.scanOne(row, "find decision by assessment")
}

func (s *PostgresStore) scanOne(row rowScanner, op string) (*Decision, error) {
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Decision, error) {
	return s.query(ctx, `SELECT `+decisionColumns+` FROM underwriting_decisions ORDER BY sent_to_underwriting_date DESC`)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status DecisionStatus) ([]*Decision, error) {
	return s.query(ctx, `SELECT `+decisionColumns+` FROM underwriting_decisions WHERE status = $1 ORDER BY sent_to_underwriting_date DESC`, string(status))
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*Decision, error) {
	return s.query(ctx, `SELECT `+decisionColumns+` FROM underwriting_decisions WHERE customer_id = $1 ORDER BY sent_to_underwriting_date DESC`, uuid.UUID(customerID))
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]*Decision, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Execute atomically validates and mutates a decision under a row lock, so
// guarded transitions get exactly one winner under concurrency.
func (s *PostgresStore) Execute(ctx context.Context, decisionID id.DecisionID, validate func(*Decision) error, mutate func(*Decision) error) (*Decision, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+decisionColumns+` FROM underwriting_decisions WHERE id = $1 FOR UPDATE`, uuid.UUID(decisionID))
	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock decision: %w", err)
	}

	if err := validate(d); err != nil {
		return nil, err
	}
	if err := mutate(d); err != nil {
		return nil, err
	}

	reason, approvalDate, decisionDate, heldAt, policyID := flattenOutcome(d)
	_, err = tx.Exec(ctx, `
		UPDATE underwriting_decisions
		SET status = $2, reason = $3, underwriter_notes = $4, decided_by = $5,
			approval_date = $6, decision_date = $7, held_at = $8, policy_id = $9
		WHERE id = $1`,
		uuid.UUID(d.ID), string(d.Status()), reason, d.UnderwriterNotes, d.DecidedBy,
		approvalDate, decisionDate, heldAt, policyID,
	)
	if err != nil {
		return nil, fmt.Errorf("update decision: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit decision tx: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Delete(ctx context.Context, decisionID id.DecisionID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM underwriting_decisions WHERE id = $1`, uuid.UUID(decisionID))
	if err != nil {
		return fmt.Errorf("delete decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// flattenOutcome maps the outcome variant onto the nullable column values.
func flattenOutcome(d *Decision) (reason *string, approvalDate, decisionDate, heldAt *time.Time, policyID *uuid.UUID) {
	switch o := d.Outcome.(type) {
	case Approved:
		if o.Reason != "" {
			reason = &o.Reason
		}
		approvalDate = &o.ApprovalDate
		pid := uuid.UUID(o.PolicyID)
		policyID = &pid
	case Declined:
		reason = &o.Reason
		decisionDate = &o.DecisionDate
	case OnHold:
		heldAt = &o.HeldAt
	}
	return reason, approvalDate, decisionDate, heldAt, policyID
}

// flattenDecision maps a decision onto the full decisionColumns order.
func flattenDecision(d *Decision) []any {
	reason, approvalDate, decisionDate, heldAt, policyID := flattenOutcome(d)
	return []any{
		uuid.UUID(d.ID), uuid.UUID(d.CustomerID), uuid.UUID(d.AssessmentID), string(d.Status()),
		reason, d.UnderwriterNotes, d.DecidedBy, d.SentToUnderwritingDate,
		approvalDate, decisionDate, heldAt, policyID,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*Decision, error) {
	var (
		d            Decision
		decisionID   uuid.UUID
		customerID   uuid.UUID
		assessmentID uuid.UUID
		status       string
		reason       *string
		approvalDate *time.Time
		decisionDate *time.Time
		heldAt       *time.Time
		policyID     *uuid.UUID
	)
	if err := row.Scan(&decisionID, &customerID, &assessmentID, &status, &reason, &d.UnderwriterNotes,
		&d.DecidedBy, &d.SentToUnderwritingDate, &approvalDate, &decisionDate, &heldAt, &policyID); err != nil {
		return nil, err
	}
	d.ID = id.DecisionID(decisionID)
	d.CustomerID = id.CustomerID(customerID)
	d.AssessmentID = id.AssessmentID(assessmentID)

	switch DecisionStatus(status) {
	case StatusApproved:
		o := Approved{ApprovalDate: derefTime(approvalDate)}
		if reason != nil {
			o.Reason = *reason
		}
		if policyID != nil {
			o.PolicyID = id.PolicyID(*policyID)
		}
		d.Outcome = o
	case StatusDeclined:
		o := Declined{DecisionDate: derefTime(decisionDate)}
		if reason != nil {
			o.Reason = *reason
		}
		d.Outcome = o
	case StatusOnHold:
		d.Outcome = OnHold{HeldAt: derefTime(heldAt)}
	}
	return &d, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
