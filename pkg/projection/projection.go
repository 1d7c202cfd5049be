package projection

const (
	// Months is the fixed projection horizon.
	Months        = 36
	MonthsPerYear = 12
	// Years is the number of 12-month buckets in the horizon.
	Years = Months / MonthsPerYear

	// DefaultCITRate applies when the tax rate is left at zero.
	DefaultCITRate = 0.25
)

// SnapshotMonths are the months at which balance snapshots are taken.
var SnapshotMonths = [Years]int{12, 24, 36}

type AmortizationMethod string

const (
	Annuity AmortizationMethod = "annuity"
	Linear  AmortizationMethod = "linear"
)

type RevenueDriver struct {
	Name       string
	StartMonth int
	Units      float64
	Price      float64
	// MonthlyGrowthPct compounds once per elapsed month since StartMonth.
	MonthlyGrowthPct float64
}

type VariableCost struct {
	Name       string
	PctOfSales float64
}

type PayrollItem struct {
	Role          string
	GrossPerMonth float64
	OnCostPct     float64
	StartMonth    int
}

type OpexItem struct {
	Name            string
	AmountYear1     float64
	IndexPctPerYear float64
	StartMonth      int
}

type CapexItem struct {
	Name       string
	Amount     float64
	StartMonth int
	DeprMonths int
}

type DebtItem struct {
	Name   string
	Amount float64
	// Rate is the annual interest rate.
	Rate        float64
	TermMonths  int
	GraceMonths int
	Method      AmortizationMethod
	StartMonth  int
}

type Taxes struct {
	CITRatePct float64
	// CITPaymentMonth is the month of the year (3, 6, 11 or 12) in which the
	// previous year's tax liability is paid.
	CITPaymentMonth int
}

type WorkingCapital struct {
	DSODays float64
	DPODays float64
	// DIODays is accepted but not used by the engine.
	DIODays float64
}

// Assumptions is the complete input of a projection run.
type Assumptions struct {
	OpeningCash    float64
	Equity         float64
	RevenueDrivers []RevenueDriver
	VariableCosts  []VariableCost
	Payroll        []PayrollItem
	Opex           []OpexItem
	Capex          []CapexItem
	Debts          []DebtItem
	Taxes          Taxes
	WorkingCapital WorkingCapital
}

// Series holds one value per month, month m at index m-1.
type Series [Months]float64

// Sum adds the values of months from..to, both 1-based and inclusive.
func (s Series) Sum(from, to int) float64 {
	total := 0.0
	for m := from; m <= to; m++ {
		total += s[m-1]
	}
	return total
}

// Year returns the sum over the 12 months of the given year (1-based).
func (s Series) Year(year int) float64 {
	start := (year-1)*MonthsPerYear + 1
	return s.Sum(start, start+MonthsPerYear-1)
}

// YearlyPL is the statement-basis profit and loss of one year bucket.
type YearlyPL struct {
	Year         int
	Sales        float64
	VariableCost float64
	GrossMargin  float64
	Payroll      float64
	Opex         float64
	Depreciation float64
	Interest     float64
	EBIT         float64
	EBT          float64
	TaxExpense   float64
	Result       float64
}

// Snapshot is a simplified net-asset position at the end of a month.
type Snapshot struct {
	Month           int
	FixedAssetsNet  float64
	Cash            float64
	DebtOutstanding float64
	Equity          float64
}

// Projection is the full result of a run.
type Projection struct {
	Revenue             Series
	VariableCost        Series
	GrossMargin         Series
	Payroll             Series
	Opex                Series
	Capex               Series
	Depreciation        Series
	Interest            Series
	Principal           Series
	Outstanding         Series
	EBIT                Series
	EBT                 Series
	TaxPaid             Series
	WorkingCapitalDelta Series
	Cashflow            Series
	Cash                Series

	// TaxYear is the liability recognised per year, paid in the following year.
	TaxYear   [Years]float64
	Yearly    [Years]YearlyPL
	Snapshots [Years]Snapshot
}
