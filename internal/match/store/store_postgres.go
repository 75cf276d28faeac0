package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"loanmatch/internal/match"
)

// Postgres persists match results in the match_results table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) SaveResults(ctx context.Context, results []match.MatchResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save results: %w", err)
	}
	defer tx.Rollback()

	// Position pins the canonical lender-then-program order; created_at alone
	// cannot, since a whole run shares one timestamp.
	const query = `
		INSERT INTO match_results
			(id, loan_request_id, position, lender_id, program_id, eligible, fit_score, rejection_reasons, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i, r := range results {
		reasons, err := json.Marshal(r.RejectionReasons)
		if err != nil {
			return fmt.Errorf("marshal rejection reasons: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query,
			r.ID, r.LoanRequestID, i, r.LenderID, r.ProgramID,
			r.Eligible, r.FitScore, reasons, r.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert match result: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save results: %w", err)
	}
	return nil
}

func (s *Postgres) ListByLoanRequest(ctx context.Context, loanRequestID uuid.UUID) ([]match.MatchResult, error) {
	const query = `
		SELECT id, loan_request_id, lender_id, program_id, eligible, fit_score, rejection_reasons, created_at
		FROM match_results
		WHERE loan_request_id = $1
		ORDER BY created_at, position
	`
	rows, err := s.db.QueryContext(ctx, query, loanRequestID)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	var results []match.MatchResult
	for rows.Next() {
		var r match.MatchResult
		var reasons []byte
		if err := rows.Scan(&r.ID, &r.LoanRequestID, &r.LenderID, &r.ProgramID,
			&r.Eligible, &r.FitScore, &reasons, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		if err := json.Unmarshal(reasons, &r.RejectionReasons); err != nil {
			return nil, fmt.Errorf("unmarshal rejection reasons: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Postgres) DeleteByLoanRequest(ctx context.Context, loanRequestID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM match_results WHERE loan_request_id = $1`, loanRequestID); err != nil {
		return fmt.Errorf("delete match results: %w", err)
	}
	return nil
}
