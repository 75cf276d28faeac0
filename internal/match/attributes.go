package match

import (
	"time"

	"loanmatch/internal/application/models"
)

// noBankruptcySentinel stands in for "no bankruptcy ever happened": large
// enough that any "years_since_bankruptcy >= N" policy passes.
const noBankruptcySentinel = 999

// ResolveAttributes flattens an application into the named attributes that
// policy criteria reference. It never fails: missing source fields resolve to
// absent values, and unknown keys looked up in the returned map are absent by
// construction (the zero Value).
func ResolveAttributes(app models.Application, now time.Time) map[string]Value {
	attrs := map[string]Value{
		"fico_score":             NumberValue(float64(app.Guarantor.FicoScore)),
		"years_in_business":      NumberValue(float64(app.Business.YearsInBusiness)),
		"annual_revenue":         optionalFloat(app.Business.AnnualRevenue),
		"industry":               StringValue(app.Business.Industry),
		"state":                  StringValue(app.Business.State),
		"equipment_year":         optionalInt(app.LoanRequest.EquipmentYear),
		"equipment_age":          NumberValue(equipmentAge(app.LoanRequest.EquipmentYear, now)),
		"equipment_type":         optionalString(app.LoanRequest.EquipmentType),
		"bankruptcy":             BoolValue(app.Guarantor.BankruptcyFlag),
		"years_since_bankruptcy": NumberValue(yearsSinceBankruptcy(app.Guarantor, now)),
	}

	// Bureau fields default to 0 when no credit record was supplied at all;
	// a supplied record with missing fields stays missing.
	if app.BusinessCredit == nil {
		attrs["paynet_score"] = NumberValue(0)
		attrs["trade_lines"] = NumberValue(0)
	} else {
		attrs["paynet_score"] = optionalInt(app.BusinessCredit.PaynetScore)
		attrs["trade_lines"] = optionalInt(app.BusinessCredit.TradeLines)
	}
	return attrs
}

// yearsSinceBankruptcy derives the recency attribute. No bankruptcy maps to
// the sentinel; a flagged bankruptcy without a date is presumed to have
// happened today, the most conservative reading.
func yearsSinceBankruptcy(g models.Guarantor, now time.Time) float64 {
	if !g.BankruptcyFlag {
		return noBankruptcySentinel
	}
	if g.BankruptcyDate == nil {
		return 0
	}
	days := wholeDaysBetween(*g.BankruptcyDate, now)
	return float64(days) / 365.25
}

func equipmentAge(year *int, now time.Time) float64 {
	if year == nil {
		return 0
	}
	return float64(now.Year() - *year)
}

// wholeDaysBetween counts calendar days from a to b, ignoring time of day.
func wholeDaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

func optionalFloat(f *float64) Value {
	if f == nil {
		return Value{}
	}
	return NumberValue(*f)
}

func optionalInt(i *int) Value {
	if i == nil {
		return Value{}
	}
	return NumberValue(float64(*i))
}

func optionalString(s *string) Value {
	if s == nil {
		return Value{}
	}
	return StringValue(*s)
}
