package projection

import "math"

// effectiveRate returns the CIT rate, falling back to DefaultCITRate when unset.
func effectiveRate(t Taxes) float64 {
	if t.CITRatePct == 0 || math.IsNaN(t.CITRatePct) {
		return DefaultCITRate
	}
	return t.CITRatePct
}

// yearlyTax is the liability per year bucket. Losses carry no relief.
func yearlyTax(ebt Series, rate float64) [Years]float64 {
	var tax [Years]float64
	for y := 1; y <= Years; y++ {
		profit := ebt.Year(y)
		if profit > 0 {
			tax[y-1] = profit * rate
		}
	}
	return tax
}

// taxPayments posts the liability of year y as one lump in paymentMonth of
// year y+1. The last year's liability falls outside the horizon.
func taxPayments(taxYear [Years]float64, paymentMonth int) Series {
	var paid Series
	for y := 1; y < Years; y++ {
		if !(taxYear[y-1] > 0) {
			continue
		}
		m := y*MonthsPerYear + paymentMonth
		if inHorizon(m) {
			paid[m-1] = taxYear[y-1]
		}
	}
	return paid
}
