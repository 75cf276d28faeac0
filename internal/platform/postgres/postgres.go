// Package postgres owns the database handle and schema management shared by
// the Postgres-backed stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the schema idempotently. The service owns its tables; a
// dedicated migration tool is not warranted at this size.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lenders (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS lender_programs (
			id UUID PRIMARY KEY,
			lender_id UUID NOT NULL REFERENCES lenders(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			min_loan_amount NUMERIC,
			max_loan_amount NUMERIC,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS policy_criteria (
			id UUID PRIMARY KEY,
			program_id UUID NOT NULL REFERENCES lender_programs(id) ON DELETE CASCADE,
			position INT NOT NULL,
			attribute_key TEXT NOT NULL,
			operator TEXT NOT NULL,
			value JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS businesses (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			industry TEXT NOT NULL,
			state CHAR(2) NOT NULL,
			years_in_business INT NOT NULL,
			annual_revenue NUMERIC,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS personal_guarantors (
			id UUID PRIMARY KEY,
			business_id UUID NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			fico_score INT NOT NULL,
			bankruptcy_flag BOOLEAN NOT NULL DEFAULT FALSE,
			bankruptcy_date DATE,
			collections_flag BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS business_credit (
			id UUID PRIMARY KEY,
			business_id UUID NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			paynet_score INT,
			trade_lines INT
		)`,
		`CREATE TABLE IF NOT EXISTS loan_requests (
			id UUID PRIMARY KEY,
			business_id UUID NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			amount NUMERIC NOT NULL,
			term_months INT NOT NULL,
			equipment_type TEXT,
			equipment_year INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS match_results (
			id UUID PRIMARY KEY,
			loan_request_id UUID NOT NULL REFERENCES loan_requests(id) ON DELETE CASCADE,
			position INT NOT NULL DEFAULT 0,
			lender_id UUID NOT NULL,
			program_id UUID NOT NULL,
			eligible BOOLEAN NOT NULL,
			fit_score INT NOT NULL,
			rejection_reasons JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_programs_lender ON lender_programs(lender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_criteria_program ON policy_criteria(program_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_loan_request ON match_results(loan_request_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
