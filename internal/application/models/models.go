// Package models defines the loan application aggregate: the business, its
// personal guarantor, optional business credit, and the loan request.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "loanmatch/pkg/domain-errors"
)

// Business is the applying company.
type Business struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Industry        string    `json:"industry"`
	State           string    `json:"state"`
	YearsInBusiness int       `json:"years_in_business"`
	AnnualRevenue   *float64  `json:"annual_revenue,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Guarantor is the personal guarantor backing the application.
type Guarantor struct {
	ID              uuid.UUID  `json:"id"`
	FicoScore       int        `json:"fico_score"`
	BankruptcyFlag  bool       `json:"bankruptcy_flag"`
	BankruptcyDate  *time.Time `json:"bankruptcy_date,omitempty"`
	CollectionsFlag bool       `json:"collections_flag"`
}

// BusinessCredit carries optional commercial credit bureau data.
type BusinessCredit struct {
	ID          uuid.UUID `json:"id"`
	PaynetScore *int      `json:"paynet_score,omitempty"`
	TradeLines  *int      `json:"trade_lines,omitempty"`
}

// LoanRequest is the financing ask.
type LoanRequest struct {
	ID            uuid.UUID `json:"id"`
	Amount        float64   `json:"amount"`
	TermMonths    int       `json:"term_months"`
	EquipmentType *string   `json:"equipment_type,omitempty"`
	EquipmentYear *int      `json:"equipment_year,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Application aggregates one submission. Its ID is the business ID; the loan
// request carries its own ID, which match results reference.
type Application struct {
	ID             uuid.UUID       `json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	Business       Business        `json:"business"`
	Guarantor      Guarantor       `json:"guarantor"`
	BusinessCredit *BusinessCredit `json:"business_credit,omitempty"`
	LoanRequest    LoanRequest     `json:"loan_request"`
}

// Validate enforces the inbound application invariants. The engine itself
// degrades gracefully on bad data; this keeps garbage out of storage.
func (a Application) Validate() error {
	if a.Business.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "business name is required")
	}
	if a.Business.Industry == "" {
		return dErrors.New(dErrors.CodeBadRequest, "business industry is required")
	}
	if len(a.Business.State) != 2 {
		return dErrors.New(dErrors.CodeBadRequest, "state must be a 2-letter code")
	}
	if a.Business.YearsInBusiness < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "years_in_business must be >= 0")
	}
	if a.Business.AnnualRevenue != nil && *a.Business.AnnualRevenue < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "annual_revenue must be >= 0")
	}
	if a.Guarantor.FicoScore < 300 || a.Guarantor.FicoScore > 850 {
		return dErrors.New(dErrors.CodeBadRequest, "fico_score must be between 300 and 850")
	}
	if a.LoanRequest.Amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "loan amount must be > 0")
	}
	if a.LoanRequest.TermMonths <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "term_months must be > 0")
	}
	return nil
}

// MatchSummary is the presentation shape for one program verdict, with
// identities resolved to display names.
type MatchSummary struct {
	LenderName       string   `json:"lender_name"`
	ProgramName      string   `json:"program_name"`
	Eligible         bool     `json:"eligible"`
	FitScore         int      `json:"fit_score"`
	RejectionReasons []string `json:"rejection_reasons"`
}
