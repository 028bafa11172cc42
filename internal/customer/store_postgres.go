package customer

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

// PostgresStore persists customers in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const customerColumns = `id, name, date_of_birth, insurance_type, document_verified,
	email, phone, address, city, state, zip_code, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *Customer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(c.ID), c.Name, c.DateOfBirth, string(c.InsuranceType), c.DocumentVerified,
		c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, customerID id.CustomerID) (*Customer, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1`, uuid.UUID(customerID))
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, c *Customer) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET name = $2, date_of_birth = $3, insurance_type = $4, document_verified = $5,
		    email = $6, phone = $7, address = $8, city = $9, state = $10, zip_code = $11,
		    updated_at = $12
		WHERE id = $1`,
		uuid.UUID(c.ID), c.Name, c.DateOfBirth, string(c.InsuranceType), c.DocumentVerified,
		c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, customerID id.CustomerID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, uuid.UUID(customerID))
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*Customer, error) {
	var c Customer
	var customerID uuid.UUID
	var insuranceType string
	if err := row.Scan(&customerID, &c.Name, &c.DateOfBirth, &insuranceType, &c.DocumentVerified,
		&c.Email, &c.Phone, &c.Address, &c.City, &c.State, &c.ZipCode, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CustomerID(customerID)
	c.InsuranceType = InsuranceType(insuranceType)
	return &c, nil
}
