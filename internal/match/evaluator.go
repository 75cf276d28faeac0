package match

import "fmt"

const (
	baseScore          = 100
	failedRulePenalty  = 20
	revenueBonus       = 10
	revenueCoverFactor = 2
)

// Verdict is the outcome of evaluating one program against one application.
type Verdict struct {
	Eligible         bool
	FitScore         int
	RejectionReasons []string
}

// EvaluateProgram checks the loan amount against the program bounds and every
// criterion in attachment order. All checks run; nothing short-circuits, so
// the full reason list is always produced.
func EvaluateProgram(program Program, amount float64, attrs map[string]Value) Verdict {
	reasons := []string{}

	if program.MinAmount != nil && amount < *program.MinAmount {
		reasons = append(reasons, fmt.Sprintf("Loan amount too low (Min: %s)", formatAmount(*program.MinAmount)))
	}
	if program.MaxAmount != nil && amount > *program.MaxAmount {
		reasons = append(reasons, fmt.Sprintf("Loan amount too high (Max: %s)", formatAmount(*program.MaxAmount)))
	}

	score := baseScore
	for _, criterion := range program.Criteria {
		if !CheckRule(attrs[criterion.AttributeKey], criterion.Operator, criterion.Target) {
			reasons = append(reasons, fmt.Sprintf("Failed %s check: %s %s",
				criterion.AttributeKey, criterion.Operator, criterion.Target))
			score -= failedRulePenalty
		}
	}

	if len(reasons) > 0 {
		// The running deductions above never surface here: a rejected program
		// always reports a zero score.
		// TODO: decide with product whether partial scores should surface for
		// near-miss programs instead of a flat 0.
		return Verdict{Eligible: false, FitScore: 0, RejectionReasons: reasons}
	}

	if revenue, ok := attrs["annual_revenue"].Number(); ok && revenue > amount*revenueCoverFactor {
		score += revenueBonus
	}
	if score > baseScore {
		score = baseScore
	}
	return Verdict{Eligible: true, FitScore: score, RejectionReasons: []string{}}
}

func formatAmount(f float64) string {
	return NumberValue(f).String()
}
