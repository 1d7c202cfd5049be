package wizard

import (
	"errors"
	"slices"
	"time"

	"github.com/klokku/finplan/pkg/projection"
)

const (
	FirstStep = 1
	LastStep  = 6
)

var stepTitles = [LastStep]string{
	"Company",
	"Revenue drivers",
	"Variable costs",
	"Payroll",
	"Operating expenses",
	"Taxes, working capital and results",
}

// StepTitle returns the title of step, clamped to the valid range.
func StepTitle(step int) string {
	return stepTitles[ClampStep(step)-1]
}

func ClampStep(step int) int {
	return min(max(step, FirstStep), LastStep)
}

// Section is one replaceable part of the session's assumptions.
type Section string

const (
	MetaSection           Section = "meta"
	RevenueSection        Section = "revenue"
	VariableCostsSection  Section = "varcosts"
	PayrollSection        Section = "payroll"
	OpexSection           Section = "opex"
	CapexSection          Section = "capex"
	DebtsSection          Section = "debts"
	TaxesSection          Section = "taxes"
	WorkingCapitalSection Section = "workingcapital"
)

var Sections = []Section{
	MetaSection,
	RevenueSection,
	VariableCostsSection,
	PayrollSection,
	OpexSection,
	CapexSection,
	DebtsSection,
	TaxesSection,
	WorkingCapitalSection,
}

var (
	ErrSessionNotFound = errors.New("wizard session not found")
	ErrUnknownSection  = errors.New("unknown wizard section")
)

func ParseSection(s string) (Section, error) {
	section := Section(s)
	if !slices.Contains(Sections, section) {
		return "", ErrUnknownSection
	}
	return section, nil
}

type Meta struct {
	Company     string
	OpeningCash float64
	Equity      float64
}

type Session struct {
	Id          string
	Company     string
	Step        int
	Assumptions projection.Assumptions
	// Projection and Issues are recomputed after every change of Assumptions.
	Projection projection.Projection
	Issues     []projection.FieldError
	CreatedAt  time.Time
	LastAccess time.Time
}

func (s Session) Meta() Meta {
	return Meta{
		Company:     s.Company,
		OpeningCash: s.Assumptions.OpeningCash,
		Equity:      s.Assumptions.Equity,
	}
}

// Replacement carries the new content of one section. Only the field matching
// Section is read.
type Replacement struct {
	Section        Section
	Meta           Meta
	RevenueDrivers []projection.RevenueDriver
	VariableCosts  []projection.VariableCost
	Payroll        []projection.PayrollItem
	Opex           []projection.OpexItem
	Capex          []projection.CapexItem
	Debts          []projection.DebtItem
	Taxes          projection.Taxes
	WorkingCapital projection.WorkingCapital
}

// apply replaces the section as a whole; lists are never merged.
func (r Replacement) apply(s *Session) error {
	a := &s.Assumptions
	switch r.Section {
	case MetaSection:
		s.Company = r.Meta.Company
		a.OpeningCash = r.Meta.OpeningCash
		a.Equity = r.Meta.Equity
	case RevenueSection:
		a.RevenueDrivers = slices.Clone(r.RevenueDrivers)
	case VariableCostsSection:
		a.VariableCosts = slices.Clone(r.VariableCosts)
	case PayrollSection:
		a.Payroll = slices.Clone(r.Payroll)
	case OpexSection:
		a.Opex = slices.Clone(r.Opex)
	case CapexSection:
		a.Capex = slices.Clone(r.Capex)
	case DebtsSection:
		a.Debts = slices.Clone(r.Debts)
	case TaxesSection:
		a.Taxes = r.Taxes
	case WorkingCapitalSection:
		a.WorkingCapital = r.WorkingCapital
	default:
		return ErrUnknownSection
	}
	return nil
}

func cloneSession(s Session) Session {
	a := &s.Assumptions
	a.RevenueDrivers = slices.Clone(a.RevenueDrivers)
	a.VariableCosts = slices.Clone(a.VariableCosts)
	a.Payroll = slices.Clone(a.Payroll)
	a.Opex = slices.Clone(a.Opex)
	a.Capex = slices.Clone(a.Capex)
	a.Debts = slices.Clone(a.Debts)
	s.Issues = slices.Clone(s.Issues)
	return s
}
