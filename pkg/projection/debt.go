package projection

import "math"

// DebtService is the combined monthly interest, principal and outstanding
// balance of all loans.
type DebtService struct {
	Interest    Series
	Principal   Series
	Outstanding Series
}

// annuityPayment is sized once on the opening balance and the full term.
// Grace months do not resize it.
func annuityPayment(balance, monthlyRate float64, term int) float64 {
	if monthlyRate > 0 {
		return balance * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(term)))
	}
	return balance / float64(term)
}

// amortize simulates one loan month by month. Grace months consume
// amortization slots, so an annuity with grace can end its term with a
// remaining balance.
func amortize(d DebtItem) DebtService {
	var s DebtService
	r := d.Rate / 12
	balance := d.Amount
	payment := annuityPayment(balance, r, d.TermMonths)

	for m := 1; m <= Months; m++ {
		if m < d.StartMonth {
			continue
		}
		k := m - d.StartMonth + 1
		if k > d.TermMonths {
			continue
		}
		interest := balance * r
		principal := 0.0
		if d.GraceMonths <= 0 || k > d.GraceMonths {
			if d.Method == Annuity {
				principal = payment - interest
			} else {
				principal = d.Amount / float64(d.TermMonths)
			}
		}
		balance = math.Max(0, balance-principal)

		s.Interest[m-1] = interest
		s.Principal[m-1] = principal
		s.Outstanding[m-1] = balance
	}
	return s
}

func debtService(debts []DebtItem) DebtService {
	var total DebtService
	for _, d := range debts {
		loan := amortize(d)
		for i := 0; i < Months; i++ {
			total.Interest[i] += loan.Interest[i]
			total.Principal[i] += loan.Principal[i]
			total.Outstanding[i] += loan.Outstanding[i]
		}
	}
	return total
}
