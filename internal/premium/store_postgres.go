package premium

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	id "riskguard/pkg/domain"
)

// PostgresPaymentStore persists premium payments in PostgreSQL.
type PostgresPaymentStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentStore(pool *pgxpool.Pool) *PostgresPaymentStore {
	return &PostgresPaymentStore{pool: pool}
}

func (s *PostgresPaymentStore) Create(ctx context.Context, p *Payment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO premium_payments (id, policy_id, amount, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(p.ID), uuid.UUID(p.PolicyID), p.Amount, p.Method, p.Reference, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (s *PostgresPaymentStore) ListByPolicy(ctx context.Context, policyID id.PolicyID) ([]Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, policy_id, amount, method, reference, paid_at
		FROM premium_payments
		WHERE policy_id = $1
		ORDER BY paid_at ASC`, uuid.UUID(policyID))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var paymentID, polID uuid.UUID
		if err := rows.Scan(&paymentID, &polID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.ID = id.PaymentID(paymentID)
		p.PolicyID = id.PolicyID(polID)
		out = append(out, p)
	}
	return out, rows.Err()
}
