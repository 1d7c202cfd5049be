package projection

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/klokku/finplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type RevenueDriverDTO struct {
	Name             string  `json:"name"`
	StartMonth       int     `json:"startMonth"`
	Units            float64 `json:"units"`
	Price            float64 `json:"price"`
	MonthlyGrowthPct float64 `json:"monthlyGrowthPct"`
}

type VariableCostDTO struct {
	Name       string  `json:"name"`
	PctOfSales float64 `json:"pctOfSales"`
}

type PayrollItemDTO struct {
	Role          string  `json:"role"`
	GrossPerMonth float64 `json:"grossPerMonth"`
	OnCostPct     float64 `json:"onCostPct"`
	StartMonth    int     `json:"startMonth"`
}

type OpexItemDTO struct {
	Name            string  `json:"name"`
	AmountYear1     float64 `json:"amountYear1"`
	IndexPctPerYear float64 `json:"indexPctPerYear"`
	StartMonth      int     `json:"startMonth"`
}

type CapexItemDTO struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	StartMonth int     `json:"startMonth"`
	DeprMonths int     `json:"deprMonths"`
}

type DebtItemDTO struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Rate        float64 `json:"rate"`
	TermMonths  int     `json:"termMonths"`
	GraceMonths int     `json:"graceMonths,omitempty"`
	Method      string  `json:"method"`
	StartMonth  int     `json:"startMonth"`
}

type TaxesDTO struct {
	CITRatePct      float64 `json:"citRatePct"`
	CITPaymentMonth int     `json:"citPaymentMonth"`
}

type WorkingCapitalDTO struct {
	DSODays float64 `json:"dsoDays"`
	DPODays float64 `json:"dpoDays"`
	DIODays float64 `json:"dioDays"`
}

type AssumptionsDTO struct {
	OpeningCash    float64            `json:"openingCash"`
	Equity         float64            `json:"equity"`
	RevenueDrivers []RevenueDriverDTO `json:"revenueDrivers"`
	VariableCosts  []VariableCostDTO  `json:"variableCosts"`
	Payroll        []PayrollItemDTO   `json:"payroll"`
	Opex           []OpexItemDTO      `json:"opex"`
	Capex          []CapexItemDTO     `json:"capex"`
	Debts          []DebtItemDTO      `json:"debts"`
	Taxes          TaxesDTO           `json:"taxes"`
	WorkingCapital WorkingCapitalDTO  `json:"workingCapital"`
}

// Amount marshals non-finite values as null, which plain float64 cannot.
type Amount float64

func (a Amount) MarshalJSON() ([]byte, error) {
	v := float64(a)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

type MonthlyDTO struct {
	Revenue             []Amount `json:"revenue"`
	VariableCost        []Amount `json:"variableCost"`
	GrossMargin         []Amount `json:"grossMargin"`
	Payroll             []Amount `json:"payroll"`
	Opex                []Amount `json:"opex"`
	Capex               []Amount `json:"capex"`
	Depreciation        []Amount `json:"depreciation"`
	Interest            []Amount `json:"interest"`
	Principal           []Amount `json:"principal"`
	Outstanding         []Amount `json:"outstanding"`
	EBIT                []Amount `json:"ebit"`
	EBT                 []Amount `json:"ebt"`
	TaxPaid             []Amount `json:"taxPaid"`
	WorkingCapitalDelta []Amount `json:"workingCapitalDelta"`
	Cashflow            []Amount `json:"cashflow"`
	Cash                []Amount `json:"cash"`
}

type YearlyPLDTO struct {
	Year         int    `json:"year"`
	Sales        Amount `json:"sales"`
	VariableCost Amount `json:"variableCost"`
	GrossMargin  Amount `json:"grossMargin"`
	Payroll      Amount `json:"payroll"`
	Opex         Amount `json:"opex"`
	Depreciation Amount `json:"depreciation"`
	Interest     Amount `json:"interest"`
	EBIT         Amount `json:"ebit"`
	EBT          Amount `json:"ebt"`
	TaxExpense   Amount `json:"taxExpense"`
	Result       Amount `json:"result"`
}

type SnapshotDTO struct {
	Month           int    `json:"month"`
	FixedAssetsNet  Amount `json:"fixedAssetsNet"`
	Cash            Amount `json:"cash"`
	DebtOutstanding Amount `json:"debtOutstanding"`
	Equity          Amount `json:"equity"`
}

type SummaryDTO struct {
	TotalSales            Amount `json:"totalSales"`
	TotalSalesFormatted   string `json:"totalSalesFormatted"`
	EBITYear1             Amount `json:"ebitYear1"`
	EBITYear1Formatted    string `json:"ebitYear1Formatted"`
	CashEndYear3          Amount `json:"cashEndYear3"`
	CashEndYear3Formatted string `json:"cashEndYear3Formatted"`
}

type ProjectionDTO struct {
	Monthly   MonthlyDTO    `json:"monthly"`
	TaxYear   []Amount      `json:"taxYear"`
	Yearly    []YearlyPLDTO `json:"yearly"`
	Snapshots []SnapshotDTO `json:"snapshots"`
	Summary   SummaryDTO    `json:"summary"`
	Issues    []FieldError  `json:"issues"`
}

type Handler struct {
	renderer Renderer
	currency *CurrencyFormatter
}

func NewHandler(renderer Renderer, currency *CurrencyFormatter) *Handler {
	return &Handler{renderer, currency}
}

// Project godoc
// @Summary Compute a projection
// @Description Compute the 36-month projection for the posted assumptions. Accept text/csv returns one table (?table=pl|cashflow|balance), application/zip returns all tables.
// @Tags Projection
// @Accept json
// @Produce json
// @Param assumptions body AssumptionsDTO true "Assumptions"
// @Success 200 {object} ProjectionDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/projection [post]
func (handler *Handler) Project(w http.ResponseWriter, r *http.Request) {
	log.Debug("Computing projection")
	var dto AssumptionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid assumptions", err.Error())
		return
	}
	assumptions := DTOToAssumptions(dto)
	projection := Project(assumptions)

	switch r.Header.Get("Accept") {
	case "application/zip":
		ServeExport(w, handler.renderer, projection, BundleExport)
	case "text/csv":
		table := r.URL.Query().Get("table")
		if table == "" {
			table = string(ProfitAndLossTable)
		}
		ServeExport(w, handler.renderer, projection, table)
	default:
		rest.WriteJSON(w, http.StatusOK, ProjectionToDTO(projection, Validate(assumptions), handler.currency))
	}
}

// Validate godoc
// @Summary Validate assumptions
// @Description Report per-field issues without computing the projection
// @Tags Projection
// @Accept json
// @Produce json
// @Param assumptions body AssumptionsDTO true "Assumptions"
// @Success 200 {array} FieldError
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/projection/validate [post]
func (handler *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Validating assumptions")
	var dto AssumptionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid assumptions", err.Error())
		return
	}
	issues := Validate(DTOToAssumptions(dto))
	if issues == nil {
		issues = []FieldError{}
	}
	rest.WriteJSON(w, http.StatusOK, issues)
}

// BundleExport names the zip archive holding every table.
const BundleExport = "bundle"

// ServeExport writes one CSV table, or the zip bundle when table is BundleExport.
func ServeExport(w http.ResponseWriter, renderer Renderer, p Projection, table string) {
	if table == BundleExport {
		var b bytes.Buffer
		if err := renderer.RenderBundle(&b, p); err != nil {
			rest.WriteError(w, http.StatusInternalServerError, "Failed to render export", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="financial_plan.zip"`)
		w.Header().Set("Content-Length", strconv.Itoa(b.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(b.Bytes()); err != nil {
			log.Errorf("failed to write bundle: %v", err)
		}
		return
	}

	t, err := ParseTable(table)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid table", "table must be one of pl, cashflow, balance or bundle")
		return
	}
	content, err := renderer.RenderTable(p, t)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownTable) {
			status = http.StatusBadRequest
		}
		rest.WriteError(w, status, "Failed to render export", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+t.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		log.Errorf("failed to write csv: %v", err)
	}
}

func DTOToAssumptions(dto AssumptionsDTO) Assumptions {
	a := Assumptions{
		OpeningCash: dto.OpeningCash,
		Equity:      dto.Equity,
		Taxes: Taxes{
			CITRatePct:      dto.Taxes.CITRatePct,
			CITPaymentMonth: dto.Taxes.CITPaymentMonth,
		},
		WorkingCapital: WorkingCapital{
			DSODays: dto.WorkingCapital.DSODays,
			DPODays: dto.WorkingCapital.DPODays,
			DIODays: dto.WorkingCapital.DIODays,
		},
	}
	for _, d := range dto.RevenueDrivers {
		a.RevenueDrivers = append(a.RevenueDrivers, RevenueDriver(d))
	}
	for _, c := range dto.VariableCosts {
		a.VariableCosts = append(a.VariableCosts, VariableCost(c))
	}
	for _, p := range dto.Payroll {
		a.Payroll = append(a.Payroll, PayrollItem(p))
	}
	for _, o := range dto.Opex {
		a.Opex = append(a.Opex, OpexItem(o))
	}
	for _, c := range dto.Capex {
		a.Capex = append(a.Capex, CapexItem(c))
	}
	for _, d := range dto.Debts {
		a.Debts = append(a.Debts, DebtItem{
			Name:        d.Name,
			Amount:      d.Amount,
			Rate:        d.Rate,
			TermMonths:  d.TermMonths,
			GraceMonths: d.GraceMonths,
			Method:      AmortizationMethod(d.Method),
			StartMonth:  d.StartMonth,
		})
	}
	return a
}

func AssumptionsToDTO(a Assumptions) AssumptionsDTO {
	dto := AssumptionsDTO{
		OpeningCash:    a.OpeningCash,
		Equity:         a.Equity,
		RevenueDrivers: make([]RevenueDriverDTO, 0, len(a.RevenueDrivers)),
		VariableCosts:  make([]VariableCostDTO, 0, len(a.VariableCosts)),
		Payroll:        make([]PayrollItemDTO, 0, len(a.Payroll)),
		Opex:           make([]OpexItemDTO, 0, len(a.Opex)),
		Capex:          make([]CapexItemDTO, 0, len(a.Capex)),
		Debts:          make([]DebtItemDTO, 0, len(a.Debts)),
		Taxes:          TaxesDTO(a.Taxes),
		WorkingCapital: WorkingCapitalDTO(a.WorkingCapital),
	}
	for _, d := range a.RevenueDrivers {
		dto.RevenueDrivers = append(dto.RevenueDrivers, RevenueDriverDTO(d))
	}
	for _, c := range a.VariableCosts {
		dto.VariableCosts = append(dto.VariableCosts, VariableCostDTO(c))
	}
	for _, p := range a.Payroll {
		dto.Payroll = append(dto.Payroll, PayrollItemDTO(p))
	}
	for _, o := range a.Opex {
		dto.Opex = append(dto.Opex, OpexItemDTO(o))
	}
	for _, c := range a.Capex {
		dto.Capex = append(dto.Capex, CapexItemDTO(c))
	}
	for _, d := range a.Debts {
		dto.Debts = append(dto.Debts, DebtItemDTO{
			Name:        d.Name,
			Amount:      d.Amount,
			Rate:        d.Rate,
			TermMonths:  d.TermMonths,
			GraceMonths: d.GraceMonths,
			Method:      string(d.Method),
			StartMonth:  d.StartMonth,
		})
	}
	return dto
}

func ProjectionToDTO(p Projection, issues []FieldError, currency *CurrencyFormatter) ProjectionDTO {
	yearly := make([]YearlyPLDTO, 0, Years)
	for _, y := range p.Yearly {
		yearly = append(yearly, YearlyPLDTO{
			Year:         y.Year,
			Sales:        Amount(y.Sales),
			VariableCost: Amount(y.VariableCost),
			GrossMargin:  Amount(y.GrossMargin),
			Payroll:      Amount(y.Payroll),
			Opex:         Amount(y.Opex),
			Depreciation: Amount(y.Depreciation),
			Interest:     Amount(y.Interest),
			EBIT:         Amount(y.EBIT),
			EBT:          Amount(y.EBT),
			TaxExpense:   Amount(y.TaxExpense),
			Result:       Amount(y.Result),
		})
	}
	snaps := make([]SnapshotDTO, 0, Years)
	for _, s := range p.Snapshots {
		snaps = append(snaps, SnapshotDTO{
			Month:           s.Month,
			FixedAssetsNet:  Amount(s.FixedAssetsNet),
			Cash:            Amount(s.Cash),
			DebtOutstanding: Amount(s.DebtOutstanding),
			Equity:          Amount(s.Equity),
		})
	}
	taxYear := make([]Amount, 0, Years)
	for _, t := range p.TaxYear {
		taxYear = append(taxYear, Amount(t))
	}
	if issues == nil {
		issues = []FieldError{}
	}

	summary := Summarize(p)
	return ProjectionDTO{
		Monthly: MonthlyDTO{
			Revenue:             seriesToDTO(p.Revenue),
			VariableCost:        seriesToDTO(p.VariableCost),
			GrossMargin:         seriesToDTO(p.GrossMargin),
			Payroll:             seriesToDTO(p.Payroll),
			Opex:                seriesToDTO(p.Opex),
			Capex:               seriesToDTO(p.Capex),
			Depreciation:        seriesToDTO(p.Depreciation),
			Interest:            seriesToDTO(p.Interest),
			Principal:           seriesToDTO(p.Principal),
			Outstanding:         seriesToDTO(p.Outstanding),
			EBIT:                seriesToDTO(p.EBIT),
			EBT:                 seriesToDTO(p.EBT),
			TaxPaid:             seriesToDTO(p.TaxPaid),
			WorkingCapitalDelta: seriesToDTO(p.WorkingCapitalDelta),
			Cashflow:            seriesToDTO(p.Cashflow),
			Cash:                seriesToDTO(p.Cash),
		},
		TaxYear:   taxYear,
		Yearly:    yearly,
		Snapshots: snaps,
		Summary: SummaryDTO{
			TotalSales:            Amount(summary.TotalSales),
			TotalSalesFormatted:   currency.Format(summary.TotalSales),
			EBITYear1:             Amount(summary.EBITYear1),
			EBITYear1Formatted:    currency.Format(summary.EBITYear1),
			CashEndYear3:          Amount(summary.CashEndYear3),
			CashEndYear3Formatted: currency.Format(summary.CashEndYear3),
		},
		Issues: issues,
	}
}

func seriesToDTO(s Series) []Amount {
	out := make([]Amount, len(s))
	for i, v := range s {
		out[i] = Amount(v)
	}
	return out
}
