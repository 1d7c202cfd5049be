package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klokku/finplan/pkg/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAssumptions(t *testing.T) {
	t.Run("should read a yaml plan", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "plan.yaml")
		plan := `openingCash: 10000
equity: 5000
revenueDrivers:
  - name: Consulting
    startMonth: 1
    units: 4
    price: 1500
debts:
  - name: Loan
    amount: 20000
    rate: 0.04
    termMonths: 48
    method: linear
    startMonth: 3
taxes:
  citRatePct: 0.2
  citPaymentMonth: 6
`
		require.NoError(t, os.WriteFile(path, []byte(plan), 0o600))

		// when
		dto, err := LoadAssumptions(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, 10000.0, dto.OpeningCash)
		assert.Equal(t, []projection.RevenueDriverDTO{{Name: "Consulting", StartMonth: 1, Units: 4, Price: 1500}}, dto.RevenueDrivers)
		require.Len(t, dto.Debts, 1)
		assert.Equal(t, "linear", dto.Debts[0].Method)
		assert.Equal(t, 48, dto.Debts[0].TermMonths)
		assert.Equal(t, projection.TaxesDTO{CITRatePct: 0.2, CITPaymentMonth: 6}, dto.Taxes)
	})

	t.Run("should read a json plan", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "plan.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"openingCash": 250, "workingCapital": {"dsoDays": 30}}`), 0o600))

		// when
		dto, err := LoadAssumptions(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, 250.0, dto.OpeningCash)
		assert.Equal(t, 30.0, dto.WorkingCapital.DSODays)
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		_, err := LoadAssumptions(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Error(t, err)
	})
}
