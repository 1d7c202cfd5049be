package projection

import "math"

// balanceRunner approximates a receivable or payable ledger. Each month adds
// the new amount and settles 30/days of the running balance.
type balanceRunner struct {
	days    float64
	balance float64
}

func (b *balanceRunner) step(amount float64) float64 {
	settled := b.balance
	if b.days > 0 {
		settled = (30 / b.days) * b.balance
	}
	delta := amount - settled
	b.balance = math.Max(0, b.balance+delta)
	return delta
}

// workingCapitalDelta is the cash tied up per month: ΔAR - ΔAP.
// Cashflow subtracts it.
func workingCapitalDelta(revenue, variableCost Series, wc WorkingCapital) Series {
	receivables := balanceRunner{days: wc.DSODays}
	payables := balanceRunner{days: wc.DPODays}

	var delta Series
	for i := 0; i < Months; i++ {
		deltaAR := receivables.step(revenue[i])
		deltaAP := payables.step(variableCost[i])
		delta[i] = deltaAR - deltaAP
	}
	return delta
}
