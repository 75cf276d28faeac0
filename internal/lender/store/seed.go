package store

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"loanmatch/internal/lender/models"
	"loanmatch/internal/match"
	"loanmatch/pkg/requestcontext"
)

type seedFile struct {
	Lenders []seedLender `yaml:"lenders"`
}

type seedLender struct {
	Name     string        `yaml:"name"`
	Active   bool          `yaml:"active"`
	Programs []seedProgram `yaml:"programs"`
}

type seedProgram struct {
	Name          string       `yaml:"name"`
	MinLoanAmount *float64     `yaml:"min_loan_amount"`
	MaxLoanAmount *float64     `yaml:"max_loan_amount"`
	Policies      []seedPolicy `yaml:"policies"`
}

type seedPolicy struct {
	CriteriaType string      `yaml:"criteria_type"`
	Operator     string      `yaml:"operator"`
	Value        match.Value `yaml:"value"`
}

// Seed loads a reference catalog from a YAML file into an empty store. A
// non-empty store is left untouched so restarts never duplicate lenders.
func Seed(ctx context.Context, s Store, path string) (int, error) {
	existing, err := s.ListLenders(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list existing lenders: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("seed: parse %s: %w", path, err)
	}

	now := requestcontext.Now(ctx)
	for _, sl := range file.Lenders {
		lender := models.Lender{
			ID:        uuid.New(),
			Name:      sl.Name,
			IsActive:  sl.Active,
			CreatedAt: now,
		}
		for _, sp := range sl.Programs {
			program := models.Program{
				ID:            uuid.New(),
				LenderID:      lender.ID,
				Name:          sp.Name,
				MinLoanAmount: sp.MinLoanAmount,
				MaxLoanAmount: sp.MaxLoanAmount,
				CreatedAt:     now,
			}
			for i, pol := range sp.Policies {
				program.Criteria = append(program.Criteria, models.Criterion{
					ID:           uuid.New(),
					ProgramID:    program.ID,
					Position:     i,
					AttributeKey: pol.CriteriaType,
					Operator:     pol.Operator,
					Value:        pol.Value,
				})
			}
			lender.Programs = append(lender.Programs, program)
		}
		if err := s.CreateLender(ctx, &lender); err != nil {
			return 0, fmt.Errorf("seed: create lender %q: %w", sl.Name, err)
		}
	}
	return len(file.Lenders), nil
}
