package projection

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type Table string

const (
	ProfitAndLossTable Table = "pl"
	CashflowTable      Table = "cashflow"
	BalanceTable       Table = "balance"
)

var ErrUnknownTable = errors.New("unknown export table")

// Tables lists the exported tables in bundle order.
var Tables = []Table{ProfitAndLossTable, CashflowTable, BalanceTable}

func (t Table) FileName() string {
	switch t {
	case ProfitAndLossTable:
		return "profit_and_loss.csv"
	case CashflowTable:
		return "cashflow.csv"
	case BalanceTable:
		return "balance_snapshots.csv"
	}
	return string(t) + ".csv"
}

func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

type Renderer interface {
	RenderTable(p Projection, table Table) (string, error)
	RenderBundle(w io.Writer, p Projection) error
}

type CsvProjectionRendererImpl struct {
}

func NewCsvProjectionRenderer() *CsvProjectionRendererImpl {
	return &CsvProjectionRendererImpl{}
}

func (r *CsvProjectionRendererImpl) RenderTable(p Projection, table Table) (string, error) {
	switch table {
	case ProfitAndLossTable:
		return r.RenderProfitAndLoss(p)
	case CashflowTable:
		return r.RenderCashflow(p)
	case BalanceTable:
		return r.RenderBalance(p)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

func (r *CsvProjectionRendererImpl) RenderProfitAndLoss(p Projection) (string, error) {
	lines := []struct {
		label string
		value func(YearlyPL) float64
	}{
		{"Sales", func(y YearlyPL) float64 { return y.Sales }},
		{"Variable costs", func(y YearlyPL) float64 { return y.VariableCost }},
		{"Gross margin", func(y YearlyPL) float64 { return y.GrossMargin }},
		{"Payroll", func(y YearlyPL) float64 { return y.Payroll }},
		{"Operating expenses", func(y YearlyPL) float64 { return y.Opex }},
		{"Depreciation", func(y YearlyPL) float64 { return y.Depreciation }},
		{"Interest", func(y YearlyPL) float64 { return y.Interest }},
		{"EBIT", func(y YearlyPL) float64 { return y.EBIT }},
		{"EBT", func(y YearlyPL) float64 { return y.EBT }},
		{"Tax expense", func(y YearlyPL) float64 { return y.TaxExpense }},
		{"Net result", func(y YearlyPL) float64 { return y.Result }},
	}

	header := []string{""}
	for _, y := range p.Yearly {
		header = append(header, "Year "+strconv.Itoa(y.Year))
	}
	data := make([][]string, 0, len(lines)+1)
	data = append(data, header)
	for _, line := range lines {
		row := make([]string, 0, Years+1)
		row = append(row, line.label)
		for _, y := range p.Yearly {
			row = append(row, formatAmount(line.value(y)))
		}
		data = append(data, row)
	}
	return writeCsv(data)
}

func (r *CsvProjectionRendererImpl) RenderCashflow(p Projection) (string, error) {
	data := make([][]string, 0, Months+1)
	data = append(data, []string{"Month", "Cashflow", "Cumulative cash"})
	for i := 0; i < Months; i++ {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			formatAmount(p.Cashflow[i]),
			formatAmount(p.Cash[i]),
		})
	}
	return writeCsv(data)
}

func (r *CsvProjectionRendererImpl) RenderBalance(p Projection) (string, error) {
	header := []string{"Snapshot (month)"}
	fixedAssets := []string{"Fixed assets (net)"}
	cash := []string{"Cash"}
	debt := []string{"Debt"}
	equity := []string{"Equity"}
	for _, s := range p.Snapshots {
		header = append(header, strconv.Itoa(s.Month))
		fixedAssets = append(fixedAssets, formatAmount(s.FixedAssetsNet))
		cash = append(cash, formatAmount(s.Cash))
		debt = append(debt, formatAmount(s.DebtOutstanding))
		equity = append(equity, formatAmount(s.Equity))
	}
	return writeCsv([][]string{header, fixedAssets, cash, debt, equity})
}

// RenderBundle writes all tables as one zip archive.
func (r *CsvProjectionRendererImpl) RenderBundle(w io.Writer, p Projection) error {
	archive := zip.NewWriter(w)
	for _, table := range Tables {
		content, err := r.RenderTable(p, table)
		if err != nil {
			return err
		}
		f, err := archive.Create(table.FileName())
		if err != nil {
			log.Errorf("Error creating %s in bundle: %v", table.FileName(), err)
			return err
		}
		if _, err := io.WriteString(f, content); err != nil {
			log.Errorf("Error writing %s to bundle: %v", table.FileName(), err)
			return err
		}
	}
	return archive.Close()
}

func writeCsv(data [][]string) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func formatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatNonFinite(v)
	}
	return strconv.FormatFloat(RoundHalfUp(v), 'f', 0, 64)
}
