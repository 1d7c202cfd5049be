package projection

import (
	"fmt"
	"math"
)

// FieldError reports one problem with one input field. Field is the JSON path
// of the offending value, e.g. "debts[0].termMonths".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

var validPaymentMonths = map[int]bool{3: true, 6: true, 11: true, 12: true}

type validator struct {
	issues []FieldError
}

func (v *validator) add(field, format string, args ...any) {
	v.issues = append(v.issues, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) amount(field string, value float64) {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		v.add(field, "must be a finite number")
	case value < 0:
		v.add(field, "must not be negative")
	}
}

func (v *validator) finite(field string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		v.add(field, "must be a finite number")
	}
}

// Validate checks the assumptions field by field. It never stops at the first
// problem and never blocks Project; callers decide what to do with the issues.
func Validate(a Assumptions) []FieldError {
	v := &validator{}

	v.finite("openingCash", a.OpeningCash)
	v.finite("equity", a.Equity)

	for i, d := range a.RevenueDrivers {
		prefix := fmt.Sprintf("revenueDrivers[%d]", i)
		v.amount(prefix+".units", d.Units)
		v.amount(prefix+".price", d.Price)
		v.finite(prefix+".monthlyGrowthPct", d.MonthlyGrowthPct)
		if d.MonthlyGrowthPct <= -1 {
			v.add(prefix+".monthlyGrowthPct", "must be greater than -100%%")
		}
	}

	for i, c := range a.VariableCosts {
		v.amount(fmt.Sprintf("variableCosts[%d].pctOfSales", i), c.PctOfSales)
	}
	if rate := variableCostRate(a.VariableCosts); rate > 1 {
		v.add("variableCosts", "combined rate %.2f exceeds sales", rate)
	}

	for i, p := range a.Payroll {
		prefix := fmt.Sprintf("payroll[%d]", i)
		v.amount(prefix+".grossPerMonth", p.GrossPerMonth)
		v.amount(prefix+".onCostPct", p.OnCostPct)
	}

	for i, o := range a.Opex {
		prefix := fmt.Sprintf("opex[%d]", i)
		v.amount(prefix+".amountYear1", o.AmountYear1)
		v.finite(prefix+".indexPctPerYear", o.IndexPctPerYear)
	}

	for i, c := range a.Capex {
		prefix := fmt.Sprintf("capex[%d]", i)
		v.amount(prefix+".amount", c.Amount)
		if c.DeprMonths <= 0 {
			v.add(prefix+".deprMonths", "must be at least 1")
		}
		if !inHorizon(c.StartMonth) {
			v.add(prefix+".startMonth", "must be between 1 and %d", Months)
		}
	}

	for i, d := range a.Debts {
		prefix := fmt.Sprintf("debts[%d]", i)
		v.amount(prefix+".amount", d.Amount)
		v.amount(prefix+".rate", d.Rate)
		if d.TermMonths <= 0 {
			v.add(prefix+".termMonths", "must be at least 1")
		}
		if d.GraceMonths < 0 {
			v.add(prefix+".graceMonths", "must not be negative")
		} else if d.TermMonths > 0 && d.GraceMonths >= d.TermMonths {
			v.add(prefix+".graceMonths", "must be shorter than the term")
		}
		if d.Method != Annuity && d.Method != Linear {
			v.add(prefix+".method", "must be %q or %q", Annuity, Linear)
		}
	}

	v.amount("taxes.citRatePct", a.Taxes.CITRatePct)
	if a.Taxes.CITRatePct > 1 {
		v.add("taxes.citRatePct", "must be a fraction between 0 and 1")
	}
	if !validPaymentMonths[a.Taxes.CITPaymentMonth] {
		v.add("taxes.citPaymentMonth", "must be one of 3, 6, 11 or 12")
	}

	v.amount("workingCapital.dsoDays", a.WorkingCapital.DSODays)
	v.amount("workingCapital.dpoDays", a.WorkingCapital.DPODays)
	v.amount("workingCapital.dioDays", a.WorkingCapital.DIODays)

	return v.issues
}
