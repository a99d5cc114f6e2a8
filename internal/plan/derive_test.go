package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workedAgent() AgentFinancialInput {
	return AgentFinancialInput{
		Name:                         "Jane",
		CommissionAmount:             Float(10000),
		FranchiseFeePercentage:       Float(10),
		BusinessCommissionPercentage: Float(50),
		AgentCommissionPercentage:    Float(40),
	}
}

func TestDeriveAgentMetrics_WorkedExample(t *testing.T) {
	m := DeriveAgentMetrics(workedAgent(), PlanAggregateInput{}, 1)

	require.NotNil(t, m.FranchiseFeeAmount)
	require.NotNil(t, m.NetCommission)
	require.NotNil(t, m.BusinessCommission)
	require.NotNil(t, m.AgentCommission)
	assert.Equal(t, 1000.0, *m.FranchiseFeeAmount)
	assert.Equal(t, 9000.0, *m.NetCommission)
	assert.Equal(t, 4500.0, *m.BusinessCommission)
	assert.Equal(t, 3600.0, *m.AgentCommission)

	// No marketing expenses entered, so nothing downstream of expenses.
	assert.Nil(t, m.BusinessExpenses)
	assert.Nil(t, m.AgentExpenses)
	assert.Nil(t, m.BusinessEarnings)
	assert.Nil(t, m.AgentEarnings)
}

func TestDeriveAgentMetrics_Idempotent(t *testing.T) {
	agent := workedAgent()
	agent.MarketingExpenses = Float(700)
	agent.SuperAmount = Float(120)
	agg := PlanAggregateInput{
		BusinessExpensesPercentage: Float(30),
		AgentExpensesPercentage:    Float(70),
		Rent:                       Float(55.5),
	}

	first := DeriveAgentMetrics(agent, agg, 12)
	second := DeriveAgentMetrics(agent, agg, 12)
	assert.Equal(t, first, second)
}

func TestDeriveAgentMetrics_NullCommission(t *testing.T) {
	agent := workedAgent()
	agent.CommissionAmount = nil
	agent.MarketingExpenses = Float(500)
	agg := PlanAggregateInput{
		BusinessExpensesPercentage: Float(50),
		AgentExpensesPercentage:    Float(50),
	}

	m := DeriveAgentMetrics(agent, agg, 1)

	assert.Nil(t, m.NetCommission)
	assert.Nil(t, m.BusinessCommission)
	assert.Nil(t, m.AgentCommission)
	assert.Nil(t, m.BusinessEarnings)
	assert.Nil(t, m.AgentEarnings)
	assert.Nil(t, m.FranchiseFeeAmount)

	// Expenses only depend on marketing inputs.
	require.NotNil(t, m.BusinessExpenses)
	assert.Equal(t, 250.0, *m.BusinessExpenses)
}

func TestDeriveAgentMetrics_FranchiseAmountFallback(t *testing.T) {
	agent := AgentFinancialInput{
		Name:             "Sam",
		CommissionAmount: Float(2000),
		FranchiseAmount:  Float(150),
	}

	m := DeriveAgentMetrics(agent, PlanAggregateInput{}, 5)

	require.NotNil(t, m.FranchiseFeeAmount)
	assert.Equal(t, 750.0, *m.FranchiseFeeAmount)
	require.NotNil(t, m.NetCommission)
	assert.Equal(t, 9250.0, *m.NetCommission)
}

func TestDeriveAgentMetrics_NoFranchise(t *testing.T) {
	m := DeriveAgentMetrics(AgentFinancialInput{Name: "A", CommissionAmount: Float(800)}, PlanAggregateInput{}, 1)

	assert.Nil(t, m.FranchiseFeeAmount)
	require.NotNil(t, m.NetCommission)
	assert.Equal(t, 800.0, *m.NetCommission)
}

func TestDeriveAgentMetrics_Earnings(t *testing.T) {
	agent := AgentFinancialInput{
		Name:                         "Kim",
		CommissionAmount:             Float(10000),
		FranchiseFeePercentage:       Float(10),
		BusinessCommissionPercentage: Float(50),
		AgentCommissionPercentage:    Float(40),
		MarketingExpenses:            Float(1000),
		SuperAmount:                  Float(200),
	}
	agg := PlanAggregateInput{
		BusinessExpensesPercentage: Float(60),
		AgentExpensesPercentage:    Float(40),
		Rent:                       Float(300),
		Internet:                   Float(50),
	}

	m := DeriveAgentMetrics(agent, agg, 1)

	require.NotNil(t, m.BusinessExpenses)
	require.NotNil(t, m.AgentExpenses)
	assert.Equal(t, 600.0, *m.BusinessExpenses)
	assert.Equal(t, 400.0, *m.AgentExpenses)

	// 4500 - 600 - 200 - 350
	require.NotNil(t, m.BusinessEarnings)
	assert.Equal(t, 3350.0, *m.BusinessEarnings)

	// 3600 - 400 + 200
	require.NotNil(t, m.AgentEarnings)
	assert.Equal(t, 3400.0, *m.AgentEarnings)
}

func TestDeriveAgentMetrics_AgentEarningsZeroWithoutMarketing(t *testing.T) {
	agent := workedAgent()
	agent.MarketingExpenses = Float(0)
	agg := PlanAggregateInput{
		BusinessExpensesPercentage: Float(50),
		AgentExpensesPercentage:    Float(50),
	}

	m := DeriveAgentMetrics(agent, agg, 1)

	require.NotNil(t, m.AgentEarnings)
	assert.Equal(t, 0.0, *m.AgentEarnings)
	require.NotNil(t, m.BusinessEarnings)
	assert.Equal(t, 4500.0, *m.BusinessEarnings)
}

func TestDeriveAgentMetrics_RoundsHalfUp(t *testing.T) {
	agent := AgentFinancialInput{
		Name:                         "R",
		CommissionAmount:             Float(1001),
		BusinessCommissionPercentage: Float(50),
		AgentCommissionPercentage:    Float(25),
	}

	m := DeriveAgentMetrics(agent, PlanAggregateInput{}, 1)

	// 500.5 and 250.25
	assert.Equal(t, 501.0, *m.BusinessCommission)
	assert.Equal(t, 250.0, *m.AgentCommission)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.49999999999999994, 0},
		{0.5, 1},
		{2.4, 2},
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{4503599627370497, 4503599627370497},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundHalfUp(tt.in), "roundHalfUp(%v)", tt.in)
	}
}

func TestDeriveAgentMetrics_PooledExpensesPerRow(t *testing.T) {
	agg := PlanAggregateInput{
		BusinessExpensesPercentage: Float(0),
		AgentExpensesPercentage:    Float(0),
		Rent:                       Float(100),
	}
	a := AgentFinancialInput{
		Name:                         "A",
		CommissionAmount:             Float(1000),
		BusinessCommissionPercentage: Float(100),
		AgentCommissionPercentage:    Float(0),
		MarketingExpenses:            Float(0),
	}
	b := a
	b.Name = "B"

	rows := []DerivedAgentMetrics{
		DeriveAgentMetrics(a, agg, 1),
		DeriveAgentMetrics(b, agg, 1),
	}
	totals := DeriveTotals(rows)

	assert.Equal(t, 900.0, *rows[0].BusinessEarnings)
	assert.Equal(t, 1800.0, totals.BusinessEarnings)
}

func TestScaling_AgentVariant(t *testing.T) {
	tests := []struct {
		name string
		tf   TimeFrame
		want float64
	}{
		{"daily", Daily, 1000},
		{"weekly", Weekly, 5000},
		{"monthly", Monthly, 20000},
		{"yearly", Yearly, 240000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := VariantAgent.Multiplier(tt.tf)
			require.NoError(t, err)

			got := DeriveAgentMetrics(AgentFinancialInput{Name: "x", CommissionAmount: Float(1000)}, PlanAggregateInput{}, m)
			require.NotNil(t, got.NetCommission)
			assert.Equal(t, tt.want, *got.NetCommission)
		})
	}
}

func TestScaling_AdminVariant(t *testing.T) {
	tests := []struct {
		tf   TimeFrame
		want float64
	}{
		{Yearly, 1},
		{Monthly, 12},
		{Weekly, 52},
	}
	for _, tt := range tests {
		m, err := VariantAdmin.Multiplier(tt.tf)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m, string(tt.tf))
	}

	_, err := VariantAdmin.Multiplier(Daily)
	assert.ErrorIs(t, err, ErrUnsupportedTimeFrame)
}

func TestDeriveTotals(t *testing.T) {
	rows := []DerivedAgentMetrics{
		{Name: "a", BusinessCommission: Float(300), AgentEarnings: Float(10)},
		{Name: "b", BusinessCommission: Float(700)},
		{Name: "c"},
	}

	totals := DeriveTotals(rows)
	assert.Equal(t, 1000.0, totals.BusinessCommission)
	assert.Equal(t, 10.0, totals.AgentEarnings)
	assert.Equal(t, 0.0, totals.NetCommission)

	empty := DeriveTotals(nil)
	assert.Equal(t, 0.0, empty.BusinessCommission)
	assert.Equal(t, DerivedPlanTotals{}, DeriveTotals([]DerivedAgentMetrics{}))
}

func TestAdditionalExpensesTotal(t *testing.T) {
	agg := PlanAggregateInput{
		Rent:          Float(100),
		StaffSalary:   Float(200),
		Fuel:          Float(5),
		OtherExpenses: nil,
	}
	assert.Equal(t, 305.0, AdditionalExpensesTotal(agg, 1))
	assert.Equal(t, 3660.0, AdditionalExpensesTotal(agg, 12))
	assert.Equal(t, 0.0, AdditionalExpensesTotal(PlanAggregateInput{}, 52))
}
