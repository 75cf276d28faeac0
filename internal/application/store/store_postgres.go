package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"loanmatch/internal/application/models"
	"loanmatch/pkg/platform/sentinel"
)

// Postgres persists application aggregates across the businesses,
// personal_guarantors, business_credit, and loan_requests tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) SaveApplication(ctx context.Context, app *models.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save application: %w", err)
	}
	defer tx.Rollback()

	b := app.Business
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO businesses (id, name, industry, state, years_in_business, annual_revenue, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.Name, b.Industry, b.State, b.YearsInBusiness, b.AnnualRevenue, b.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert business: %w", err)
	}

	g := app.Guarantor
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO personal_guarantors (id, business_id, fico_score, bankruptcy_flag, bankruptcy_date, collections_flag)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, b.ID, g.FicoScore, g.BankruptcyFlag, g.BankruptcyDate, g.CollectionsFlag,
	); err != nil {
		return fmt.Errorf("insert guarantor: %w", err)
	}

	if c := app.BusinessCredit; c != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO business_credit (id, business_id, paynet_score, trade_lines)
			 VALUES ($1, $2, $3, $4)`,
			c.ID, b.ID, c.PaynetScore, c.TradeLines,
		); err != nil {
			return fmt.Errorf("insert business credit: %w", err)
		}
	}

	lr := app.LoanRequest
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO loan_requests (id, business_id, amount, term_months, equipment_type, equipment_year, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		lr.ID, b.ID, lr.Amount, lr.TermMonths, lr.EquipmentType, lr.EquipmentYear, lr.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert loan request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save application: %w", err)
	}
	return nil
}

func (s *Postgres) FindApplication(ctx context.Context, id uuid.UUID) (models.Application, error) {
	var app models.Application
	b := &app.Business
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, industry, state, years_in_business, annual_revenue, created_at
		 FROM businesses WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Industry, &b.State, &b.YearsInBusiness, &b.AnnualRevenue, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Application{}, sentinel.ErrNotFound
		}
		return models.Application{}, fmt.Errorf("find business: %w", err)
	}
	app.ID = b.ID
	app.CreatedAt = b.CreatedAt

	if err := s.hydrate(ctx, &app); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *Postgres) ListApplications(ctx context.Context, offset, limit int) ([]models.Application, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, industry, state, years_in_business, annual_revenue, created_at
		 FROM businesses
		 ORDER BY created_at DESC, id
		 OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var app models.Application
		b := &app.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.Industry, &b.State, &b.YearsInBusiness, &b.AnnualRevenue, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		app.ID = b.ID
		app.CreatedAt = b.CreatedAt
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range apps {
		if err := s.hydrate(ctx, &apps[i]); err != nil {
			return nil, err
		}
	}
	return apps, nil
}

func (s *Postgres) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	// Guarantor, credit record, loan request, and match results cascade from
	// the business row.
	res, err := s.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) hydrate(ctx context.Context, app *models.Application) error {
	g := &app.Guarantor
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fico_score, bankruptcy_flag, bankruptcy_date, collections_flag
		 FROM personal_guarantors WHERE business_id = $1`, app.ID,
	).Scan(&g.ID, &g.FicoScore, &g.BankruptcyFlag, &g.BankruptcyDate, &g.CollectionsFlag)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find guarantor: %w", err)
	}

	var credit models.BusinessCredit
	err = s.db.QueryRowContext(ctx,
		`SELECT id, paynet_score, trade_lines FROM business_credit WHERE business_id = $1`, app.ID,
	).Scan(&credit.ID, &credit.PaynetScore, &credit.TradeLines)
	switch {
	case err == nil:
		app.BusinessCredit = &credit
	case errors.Is(err, sql.ErrNoRows):
		app.BusinessCredit = nil
	default:
		return fmt.Errorf("find business credit: %w", err)
	}

	lr := &app.LoanRequest
	err = s.db.QueryRowContext(ctx,
		`SELECT id, amount, term_months, equipment_type, equipment_year, created_at
		 FROM loan_requests WHERE business_id = $1`, app.ID,
	).Scan(&lr.ID, &lr.Amount, &lr.TermMonths, &lr.EquipmentType, &lr.EquipmentYear, &lr.CreatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find loan request: %w", err)
	}
	return nil
}
