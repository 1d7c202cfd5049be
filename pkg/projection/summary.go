package projection

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary holds the headline figures of a projection.
type Summary struct {
	TotalSales   float64
	EBITYear1    float64
	CashEndYear3 float64
}

func Summarize(p Projection) Summary {
	total := 0.0
	for _, y := range p.Yearly {
		total += y.Sales
	}
	return Summary{
		TotalSales:   total,
		EBITYear1:    p.Yearly[0].EBIT,
		CashEndYear3: p.Cash[Months-1],
	}
}

// RoundHalfUp rounds to the nearest integer, halves towards positive infinity.
// Adding 0.5 before flooring is avoided: the sum itself can round up, as for
// 0.49999999999999994.
func RoundHalfUp(v float64) float64 {
	r := math.Floor(v)
	if v-r >= 0.5 {
		r++
	}
	if r == 0 {
		return 0
	}
	return r
}

// CurrencyFormatter renders whole euro amounts with locale digit grouping.
type CurrencyFormatter struct {
	printer *message.Printer
	symbol  string
}

func NewCurrencyFormatter(locale string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &CurrencyFormatter{printer: message.NewPrinter(tag), symbol: "€"}, nil
}

func (f *CurrencyFormatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f.symbol + " " + formatNonFinite(v)
	}
	return f.symbol + " " + f.printer.Sprintf("%.0f", RoundHalfUp(v))
}

func formatNonFinite(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	default:
		return "NaN"
	}
}
