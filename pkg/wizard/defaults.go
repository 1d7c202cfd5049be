package wizard

import "github.com/klokku/finplan/pkg/projection"

// DefaultCompany is the company name a new session starts with.
const DefaultCompany = "Mijn SRL"

// DefaultAssumptions is the sample plan a new session is seeded with.
func DefaultAssumptions() projection.Assumptions {
	return projection.Assumptions{
		OpeningCash: 25000,
		Equity:      25000,
		RevenueDrivers: []projection.RevenueDriver{
			{Name: "Retainers", StartMonth: 2, Units: 10, Price: 2000, MonthlyGrowthPct: 0.03},
		},
		VariableCosts: []projection.VariableCost{
			{Name: "Subcontracting", PctOfSales: 0.25},
		},
		Payroll: []projection.PayrollItem{
			{Role: "Director", GrossPerMonth: 3500, OnCostPct: 0.3, StartMonth: 1},
		},
		Opex: []projection.OpexItem{
			{Name: "Rent", AmountYear1: 14400, IndexPctPerYear: 0.02, StartMonth: 1},
			{Name: "Software", AmountYear1: 4800, IndexPctPerYear: 0.02, StartMonth: 1},
		},
		Capex: []projection.CapexItem{
			{Name: "IT", Amount: 30000, StartMonth: 1, DeprMonths: 36},
		},
		Debts: []projection.DebtItem{
			{Name: "Bank loan", Amount: 75000, Rate: 0.055, TermMonths: 60, GraceMonths: 6, Method: projection.Annuity, StartMonth: 1},
		},
		Taxes: projection.Taxes{
			CITRatePct:      0.25,
			CITPaymentMonth: 11,
		},
		WorkingCapital: projection.WorkingCapital{
			DSODays: 45,
			DPODays: 30,
		},
	}
}
