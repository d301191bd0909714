package calculators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/indiepro/indiepro/internal/profile"
)

func TestNetIncome(t *testing.T) {
	res := NetIncome(50000, []Expense{{Label: "Rent", Amount: 10000}})
	assert.Equal(t, 50000.0, res.GrossIncome)
	assert.Equal(t, 10000.0, res.TotalExpenses)
	assert.Equal(t, 40000.0, res.NetIncome)
	assert.Len(t, res.Expenses, 1)
}

func TestNetIncomeFloorsAtZero(t *testing.T) {
	res := NetIncome(1000, []Expense{{Amount: 5000}})
	assert.Equal(t, 0.0, res.NetIncome)
	assert.Equal(t, 5000.0, res.TotalExpenses)
}

func TestNetIncomeNoExpenses(t *testing.T) {
	res := NetIncome(1200, nil)
	assert.Equal(t, 1200.0, res.NetIncome)
	assert.NotNil(t, res.Expenses)
}

func TestQuarterlyEstimateZero(t *testing.T) {
	assert.Equal(t, QuarterlyEstimateResult{}, QuarterlyEstimate(0))
}

func TestQuarterlyEstimate(t *testing.T) {
	cases := []struct {
		net  float64
		want QuarterlyEstimateResult
	}{
		{1000, QuarterlyEstimateResult{1000, 141, 93, 234, 59, 23.4}},
		{50000, QuarterlyEstimateResult{50000, 7065, 5344, 12409, 3102, 24.8}},
		{100000, QuarterlyEstimateResult{100000, 14130, 15499, 29628, 7407, 29.6}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QuarterlyEstimate(tc.net), "net %v", tc.net)
	}
}

func TestQuarterlyEstimateIsDeterministic(t *testing.T) {
	first := QuarterlyEstimate(87654.32)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, QuarterlyEstimate(87654.32))
	}
}

func TestIncomeTaxBracketEdges(t *testing.T) {
	assert.Equal(t, 0.0, incomeTaxFor(-10))
	assert.InDelta(t, 1160, incomeTaxFor(11600), 1e-9)
	assert.InDelta(t, 5426, incomeTaxFor(47150), 1e-9)
	assert.InDelta(t, 17168.5, incomeTaxFor(100525), 1e-9)
	assert.InDelta(t, 39110.5, incomeTaxFor(191950), 1e-9)
	assert.InDelta(t, 39110.5+0.32*50, incomeTaxFor(192000), 1e-9)
}

func TestDefaultExpenses(t *testing.T) {
	barber := DefaultExpenses(profile.RoleBarber)
	assert.Len(t, barber, 10)
	assert.Equal(t, "Clippers & blades", barber[1].Label)

	cosmo := DefaultExpenses(profile.RoleCosmetologist)
	assert.Equal(t, "Hair color & chemicals", cosmo[1].Label)

	common := DefaultExpenses("")
	assert.Len(t, common, 8)
	for _, e := range common {
		assert.Zero(t, e.Amount)
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0", FormatCurrency(0))
	assert.Equal(t, "$12,345", FormatCurrency(12345.4))
	assert.Equal(t, "$1,234,568", FormatCurrency(1234567.5))
	assert.Equal(t, "-$50", FormatCurrency(-50))
}

func TestIncomePipeline(t *testing.T) {
	a := IncomePipeline(profile.StructureA)
	assert.Equal(t, profile.StructureA, a.Structure)
	assert.Len(t, a.Steps, 4)

	h := IncomePipeline("")
	assert.Equal(t, profile.StructureHybrid, h.Structure)
	assert.Len(t, h.Steps, 8)
}
