package projection

import "math"

func revenueSeries(drivers []RevenueDriver) Series {
	var rev Series
	for m := 1; m <= Months; m++ {
		for _, d := range drivers {
			if m < d.StartMonth {
				continue
			}
			growth := math.Pow(1+d.MonthlyGrowthPct, float64(m-d.StartMonth))
			rev[m-1] += d.Units * d.Price * growth
		}
	}
	return rev
}

// variableCostRate collapses every variable cost line into one rate applied
// to total revenue. The rate is not capped.
func variableCostRate(costs []VariableCost) float64 {
	rate := 0.0
	for _, c := range costs {
		rate += c.PctOfSales
	}
	return rate
}

func variableCostSeries(revenue Series, rate float64) Series {
	var vc Series
	for i, r := range revenue {
		vc[i] = r * rate
	}
	return vc
}

func payrollSeries(items []PayrollItem) Series {
	var payroll Series
	for m := 1; m <= Months; m++ {
		for _, p := range items {
			if m >= p.StartMonth {
				payroll[m-1] += p.GrossPerMonth * (1 + p.OnCostPct)
			}
		}
	}
	return payroll
}

// opexSeries indexes each item once per year bucket and spreads the yearly
// amount over twelve months. Months before StartMonth are skipped, not caught up.
func opexSeries(items []OpexItem) Series {
	var opex Series
	for _, o := range items {
		for y := 0; y < Years; y++ {
			amountYear := o.AmountYear1 * math.Pow(1+o.IndexPctPerYear, float64(y))
			start := y*MonthsPerYear + 1
			for m := start; m < start+MonthsPerYear; m++ {
				if m >= o.StartMonth {
					opex[m-1] += amountYear / MonthsPerYear
				}
			}
		}
	}
	return opex
}

// capexSeries posts each investment as a single cash-out in its start month
// and books straight-line depreciation. Depreciation falling outside the
// horizon is dropped, so the total booked can be lower than the amount.
func capexSeries(items []CapexItem) (capex Series, depreciation Series) {
	for _, c := range items {
		if inHorizon(c.StartMonth) {
			capex[c.StartMonth-1] += c.Amount
		}
		monthly := c.Amount / float64(c.DeprMonths)
		first := max(0, 1-c.StartMonth)
		last := min(c.DeprMonths, Months+1-c.StartMonth)
		for i := first; i < last; i++ {
			depreciation[c.StartMonth+i-1] += monthly
		}
	}
	return capex, depreciation
}

func inHorizon(month int) bool {
	return month >= 1 && month <= Months
}
