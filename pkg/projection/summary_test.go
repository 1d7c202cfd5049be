package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	// given
	p := Project(revenueOnly())

	// when
	s := Summarize(p)

	// then
	assert.InDelta(t, 36000.0, s.TotalSales, eps)
	assert.InDelta(t, 12000.0, s.EBITYear1, eps)
	assert.InDelta(t, 29000.0, s.CashEndYear3, eps)
}

func TestCurrencyFormatter_Format(t *testing.T) {
	t.Run("should group digits the Belgian way", func(t *testing.T) {
		f, err := NewCurrencyFormatter("nl-BE")
		require.NoError(t, err)

		assert.Equal(t, "€ 1.234.567", f.Format(1234567.4))
		assert.Equal(t, "€ 0", f.Format(0))
	})

	t.Run("should group digits the English way", func(t *testing.T) {
		f, err := NewCurrencyFormatter("en")
		require.NoError(t, err)

		assert.Equal(t, "€ 1,235", f.Format(1234.5))
	})

	t.Run("should keep huge amounts intact", func(t *testing.T) {
		f, err := NewCurrencyFormatter("nl-BE")
		require.NoError(t, err)

		assert.Equal(t, "€ 10.000.000.000.000.000.000", f.Format(1e19))
		assert.Equal(t, "€ -10.000.000.000.000.000.000", f.Format(-1e19))
		assert.Equal(t, "€ 0", f.Format(0.49999999999999994))
	})

	t.Run("should render non-finite values", func(t *testing.T) {
		f, err := NewCurrencyFormatter("nl-BE")
		require.NoError(t, err)

		assert.Equal(t, "€ NaN", f.Format(math.NaN()))
		assert.Equal(t, "€ -Infinity", f.Format(math.Inf(-1)))
	})

	t.Run("should reject an invalid locale", func(t *testing.T) {
		_, err := NewCurrencyFormatter("not a locale!")
		assert.Error(t, err)
	})
}
