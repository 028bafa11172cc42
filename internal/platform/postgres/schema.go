package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the idempotent DDL for all module tables. Applied on startup
// so a fresh database is usable without an external migration step.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	id                uuid PRIMARY KEY,
	name              text NOT NULL,
	date_of_birth     timestamptz,
	insurance_type    text NOT NULL,
	document_verified boolean NOT NULL DEFAULT false,
	email             text NOT NULL DEFAULT '',
	phone             text NOT NULL DEFAULT '',
	address           text NOT NULL DEFAULT '',
	city              text NOT NULL DEFAULT '',
	state             text NOT NULL DEFAULT '',
	zip_code          text NOT NULL DEFAULT '',
	created_at        timestamptz NOT NULL,
	updated_at        timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS risk_assessments (
	id                        uuid PRIMARY KEY,
	customer_id               uuid NOT NULL,
	risk_score                integer NOT NULL,
	risk_level                text NOT NULL,
	result                    text NOT NULL,
	explanation               text NOT NULL DEFAULT '',
	factors                   text[] NOT NULL DEFAULT '{}',
	flagged_for_manual_review boolean NOT NULL DEFAULT false,
	status                    text NOT NULL,
	assessed_at               timestamptz NOT NULL,
	updated_at                timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS risk_assessments_customer_idx ON risk_assessments (customer_id);
CREATE INDEX IF NOT EXISTS risk_assessments_result_idx ON risk_assessments (result);

CREATE TABLE IF NOT EXISTS underwriting_decisions (
	id                        uuid PRIMARY KEY,
	customer_id               uuid NOT NULL,
	assessment_id             uuid NOT NULL UNIQUE,
	status                    text NOT NULL,
	reason                    text,
	underwriter_notes         text NOT NULL DEFAULT '',
	decided_by                text NOT NULL DEFAULT '',
	sent_to_underwriting_date timestamptz NOT NULL,
	approval_date             timestamptz,
	decision_date             timestamptz,
	held_at                   timestamptz,
	policy_id                 uuid
);
CREATE INDEX IF NOT EXISTS underwriting_decisions_status_idx ON underwriting_decisions (status);
CREATE INDEX IF NOT EXISTS underwriting_decisions_customer_idx ON underwriting_decisions (customer_id);

CREATE TABLE IF NOT EXISTS policies (
	id              uuid PRIMARY KEY,
	customer_id     uuid NOT NULL,
	decision_id     uuid NOT NULL,
	policy_number   text NOT NULL,
	coverage_amount double precision NOT NULL,
	premium_amount  double precision NOT NULL,
	start_date      timestamptz NOT NULL,
	end_date        timestamptz NOT NULL,
	status          text NOT NULL,
	issue_date      timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS policies_customer_idx ON policies (customer_id);

CREATE TABLE IF NOT EXISTS premium_payments (
	id        uuid PRIMARY KEY,
	policy_id uuid NOT NULL,
	amount    double precision NOT NULL,
	method    text NOT NULL,
	reference text NOT NULL DEFAULT '',
	paid_at   timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS premium_payments_policy_idx ON premium_payments (policy_id);

CREATE TABLE IF NOT EXISTS audit_events (
	seq         bigserial PRIMARY KEY,
	action      text NOT NULL,
	entity_type text NOT NULL,
	entity_id   text NOT NULL,
	actor       text NOT NULL,
	occurred_at timestamptz NOT NULL,
	details     text NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_entity_type_idx ON audit_events (entity_type);
`

// EnsureSchema applies the DDL. Safe to run on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
