package projection

import "math"

// Project turns assumptions into a 36-month projection. It is a pure
// function of its input: no validation is done and degenerate input
// (zero terms, zero depreciation periods) propagates as NaN or Inf.
func Project(a Assumptions) Projection {
	var p Projection

	p.Revenue = revenueSeries(a.RevenueDrivers)
	p.VariableCost = variableCostSeries(p.Revenue, variableCostRate(a.VariableCosts))
	p.Payroll = payrollSeries(a.Payroll)
	p.Opex = opexSeries(a.Opex)
	p.Capex, p.Depreciation = capexSeries(a.Capex)

	debt := debtService(a.Debts)
	p.Interest = debt.Interest
	p.Principal = debt.Principal
	p.Outstanding = debt.Outstanding

	for i := 0; i < Months; i++ {
		p.GrossMargin[i] = p.Revenue[i] - p.VariableCost[i]
		p.EBIT[i] = p.GrossMargin[i] - p.Payroll[i] - p.Opex[i] - p.Depreciation[i]
		p.EBT[i] = p.EBIT[i] - p.Interest[i]
	}

	rate := effectiveRate(a.Taxes)
	p.TaxYear = yearlyTax(p.EBT, rate)
	p.TaxPaid = taxPayments(p.TaxYear, a.Taxes.CITPaymentMonth)

	p.WorkingCapitalDelta = workingCapitalDelta(p.Revenue, p.VariableCost, a.WorkingCapital)

	for i := 0; i < Months; i++ {
		p.Cashflow[i] = p.EBIT[i] + p.Depreciation[i] - p.Principal[i] - p.Capex[i] - p.TaxPaid[i] - p.WorkingCapitalDelta[i]
	}
	p.Cash[0] = a.OpeningCash + p.Cashflow[0]
	for i := 1; i < Months; i++ {
		p.Cash[i] = p.Cash[i-1] + p.Cashflow[i]
	}

	p.Yearly = yearlyStatements(&p, rate)
	p.Snapshots = snapshots(&p, a.Equity, rate)

	return p
}

// yearlyStatements re-derives the P&L per year from the monthly series. Tax
// here is the statement expense, independent of when it is paid.
func yearlyStatements(p *Projection, rate float64) [Years]YearlyPL {
	var pl [Years]YearlyPL
	for y := 1; y <= Years; y++ {
		sales := p.Revenue.Year(y)
		vc := p.VariableCost.Year(y)
		gm := sales - vc
		payroll := p.Payroll.Year(y)
		opex := p.Opex.Year(y)
		depr := p.Depreciation.Year(y)
		interest := p.Interest.Year(y)
		ebit := gm - payroll - opex - depr
		ebt := ebit - interest
		taxExpense := math.Max(0, ebt) * rate

		pl[y-1] = YearlyPL{
			Year:         y,
			Sales:        sales,
			VariableCost: vc,
			GrossMargin:  gm,
			Payroll:      payroll,
			Opex:         opex,
			Depreciation: depr,
			Interest:     interest,
			EBIT:         ebit,
			EBT:          ebt,
			TaxExpense:   taxExpense,
			Result:       ebt - taxExpense,
		}
	}
	return pl
}

// snapshots builds the net-asset positions at months 12, 24 and 36. Equity
// taxes the cumulative EBT to date, which can differ from the sum of the
// yearly tax expenses when profit changes sign between years.
func snapshots(p *Projection, openingEquity, rate float64) [Years]Snapshot {
	var out [Years]Snapshot
	for i, m := range SnapshotMonths {
		totalCapex := p.Capex.Sum(1, m)
		totalDepr := p.Depreciation.Sum(1, m)
		cumulativeEBT := p.EBT.Sum(1, m)
		profitToDate := cumulativeEBT - math.Max(0, cumulativeEBT)*rate

		debt := p.Outstanding[m-1]
		if math.IsNaN(debt) {
			debt = 0
		}

		out[i] = Snapshot{
			Month:           m,
			FixedAssetsNet:  math.Max(0, totalCapex-totalDepr),
			Cash:            p.Cash[m-1],
			DebtOutstanding: debt,
			Equity:          openingEquity + profitToDate,
		}
	}
	return out
}
