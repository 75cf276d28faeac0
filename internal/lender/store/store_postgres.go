package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"loanmatch/internal/lender/models"
	"loanmatch/internal/match"
	"loanmatch/pkg/platform/sentinel"
)

// Postgres persists the catalog across the lenders, lender_programs, and
// policy_criteria tables. Criterion values round-trip through a JSONB column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateLender(ctx context.Context, lender *models.Lender) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create lender: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lenders (id, name, is_active, created_at) VALUES ($1, $2, $3, $4)`,
		lender.ID, lender.Name, lender.IsActive, lender.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert lender: %w", err)
	}
	for i := range lender.Programs {
		if err := insertProgram(ctx, tx, &lender.Programs[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create lender: %w", err)
	}
	return nil
}

func (s *Postgres) CreateProgram(ctx context.Context, program *models.Program) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create program: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lenders WHERE id = $1)`, program.LenderID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check lender exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	if err := insertProgram(ctx, tx, program); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create program: %w", err)
	}
	return nil
}

func insertProgram(ctx context.Context, tx *sql.Tx, program *models.Program) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lender_programs (id, lender_id, name, min_loan_amount, max_loan_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		program.ID, program.LenderID, program.Name,
		program.MinLoanAmount, program.MaxLoanAmount, program.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	for i := range program.Criteria {
		c := &program.Criteria[i]
		value, err := json.Marshal(c.Value)
		if err != nil {
			return fmt.Errorf("marshal criterion value: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO policy_criteria (id, program_id, position, attribute_key, operator, value)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.ProgramID, c.Position, c.AttributeKey, c.Operator, value,
		); err != nil {
			return fmt.Errorf("insert criterion: %w", err)
		}
	}
	return nil
}

func (s *Postgres) FindLender(ctx context.Context, id uuid.UUID) (models.Lender, error) {
	var lender models.Lender
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_active, created_at FROM lenders WHERE id = $1`, id,
	).Scan(&lender.ID, &lender.Name, &lender.IsActive, &lender.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Lender{}, sentinel.ErrNotFound
		}
		return models.Lender{}, fmt.Errorf("find lender: %w", err)
	}
	if err := s.hydrate(ctx, []*models.Lender{&lender}); err != nil {
		return models.Lender{}, err
	}
	return lender, nil
}

func (s *Postgres) ListLenders(ctx context.Context) ([]models.Lender, error) {
	return s.list(ctx, false)
}

func (s *Postgres) ListActive(ctx context.Context) ([]models.Lender, error) {
	return s.list(ctx, true)
}

func (s *Postgres) list(ctx context.Context, activeOnly bool) ([]models.Lender, error) {
	query := `SELECT id, name, is_active, created_at FROM lenders`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list lenders: %w", err)
	}
	defer rows.Close()

	var lenders []models.Lender
	for rows.Next() {
		var l models.Lender
		if err := rows.Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lender: %w", err)
		}
		lenders = append(lenders, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*models.Lender, len(lenders))
	for i := range lenders {
		refs[i] = &lenders[i]
	}
	if err := s.hydrate(ctx, refs); err != nil {
		return nil, err
	}
	return lenders, nil
}

// hydrate loads programs (creation order) and criteria (attachment order)
// for the given lenders.
func (s *Postgres) hydrate(ctx context.Context, lenders []*models.Lender) error {
	if len(lenders) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Lender, len(lenders))
	ids := make([]uuid.UUID, 0, len(lenders))
	for _, l := range lenders {
		l.Programs = []models.Program{}
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lender_id, name, min_loan_amount, max_loan_amount, created_at
		 FROM lender_programs
		 WHERE lender_id = ANY($1::uuid[])
		 ORDER BY created_at, id`, pqUUIDArray(ids))
	if err != nil {
		return fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	// Programs are staged separately and attached to their lenders only after
	// all criteria are loaded. Pointers into lender.Programs would be stranded
	// by the appends that grow it.
	var programs []*models.Program
	byProgramID := make(map[uuid.UUID]*models.Program)
	for rows.Next() {
		p := new(models.Program)
		if err := rows.Scan(&p.ID, &p.LenderID, &p.Name, &p.MinLoanAmount, &p.MaxLoanAmount, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan program: %w", err)
		}
		p.Criteria = []models.Criterion{}
		programs = append(programs, p)
		byProgramID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(programs) > 0 {
		programIDs := make([]uuid.UUID, 0, len(programs))
		for _, p := range programs {
			programIDs = append(programIDs, p.ID)
		}
		crows, err := s.db.QueryContext(ctx,
			`SELECT id, program_id, position, attribute_key, operator, value
			 FROM policy_criteria
			 WHERE program_id = ANY($1::uuid[])
			 ORDER BY program_id, position`, pqUUIDArray(programIDs))
		if err != nil {
			return fmt.Errorf("list criteria: %w", err)
		}
		defer crows.Close()

		for crows.Next() {
			var c models.Criterion
			var raw []byte
			if err := crows.Scan(&c.ID, &c.ProgramID, &c.Position, &c.AttributeKey, &c.Operator, &raw); err != nil {
				return fmt.Errorf("scan criterion: %w", err)
			}
			var v match.Value
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("unmarshal criterion value: %w", err)
			}
			c.Value = v
			byProgramID[c.ProgramID].Criteria = append(byProgramID[c.ProgramID].Criteria, c)
		}
		if err := crows.Err(); err != nil {
			return err
		}
	}

	for _, p := range programs {
		lender := byID[p.LenderID]
		lender.Programs = append(lender.Programs, *p)
	}
	return nil
}

// pqUUIDArray adapts a UUID slice for an ANY($n::uuid[]) parameter.
func pqUUIDArray(ids []uuid.UUID) any {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}
