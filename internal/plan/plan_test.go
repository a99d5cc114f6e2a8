package plan

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgentPlan(t *testing.T, names ...string) *Plan {
	t.Helper()
	p := New(VariantAgent)
	for _, n := range names {
		require.NoError(t, p.AddAgent(n))
	}
	return p
}

func TestUpdateInput_PercentageOutOfRange(t *testing.T) {
	p := newAgentPlan(t, "Jane")
	require.NoError(t, p.UpdateInput("Jane", FieldBusinessCommissionPercentage, Float(30)))

	err := p.UpdateInput("Jane", FieldBusinessCommissionPercentage, Float(150))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPercentageOutOfRange)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "PercentageOutOfRange", verr.Code())

	a, _ := p.Agent("Jane")
	assert.Equal(t, 30.0, *a.BusinessCommissionPercentage)

	err = p.UpdateInput("", FieldAgentExpensesPercentage, Float(-1))
	assert.ErrorIs(t, err, ErrPercentageOutOfRange)
	assert.Nil(t, p.Aggregate.AgentExpensesPercentage)
}

func TestUpdateInput_CommissionSum(t *testing.T) {
	p := newAgentPlan(t, "Jane")
	require.NoError(t, p.UpdateInput("Jane", FieldBusinessCommissionPercentage, Float(60)))

	err := p.UpdateInput("Jane", FieldAgentCommissionPercentage, Float(50))
	assert.ErrorIs(t, err, ErrCommissionSumExceeded)
	a, _ := p.Agent("Jane")
	assert.Nil(t, a.AgentCommissionPercentage)

	require.NoError(t, p.UpdateInput("Jane", FieldAgentCommissionPercentage, Float(40)))
	a, _ = p.Agent("Jane")
	assert.Equal(t, 40.0, *a.AgentCommissionPercentage)

	// Raising the other side past the limit is rejected too.
	err = p.UpdateInput("Jane", FieldBusinessCommissionPercentage, Float(61))
	assert.ErrorIs(t, err, ErrCommissionSumExceeded)
	a, _ = p.Agent("Jane")
	assert.Equal(t, 60.0, *a.BusinessCommissionPercentage)
}

func TestUpdateInput_OtherFields(t *testing.T) {
	p := newAgentPlan(t, "Jane")

	tests := []struct {
		name    string
		agent   string
		field   Field
		value   *float64
		wantErr error
	}{
		{"amount accepted", "Jane", FieldCommissionAmount, Float(1200), nil},
		{"negative amount not clamped", "Jane", FieldSuperAmount, Float(-5), nil},
		{"clear field", "Jane", FieldCommissionAmount, nil, nil},
		{"aggregate amount", "", FieldRent, Float(400), nil},
		{"derived is read-only", "Jane", FieldNetCommission, Float(1), ErrReadOnlyField},
		{"unknown field", "Jane", Field("bonus"), Float(1), ErrUnknownField},
		{"unknown agent", "Bob", FieldCommissionAmount, Float(1), ErrAgentNotFound},
		{"not finite", "Jane", FieldFuel, Float(math.Inf(1)), ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.UpdateInput(tt.agent, tt.field, tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	a, _ := p.Agent("Jane")
	assert.Nil(t, a.CommissionAmount)
	assert.Equal(t, -5.0, *a.SuperAmount)
	assert.Equal(t, 400.0, *p.Aggregate.Rent)
}

func TestAgents(t *testing.T) {
	p := newAgentPlan(t, "Jane", "Sam")

	assert.ErrorIs(t, p.AddAgent("Jane"), ErrDuplicateAgent)
	assert.ErrorIs(t, p.AddAgent("  "), ErrEmptyAgentName)
	assert.ErrorIs(t, p.RemoveAgent("Bob"), ErrAgentNotFound)

	require.NoError(t, p.RemoveAgent("Jane"))
	require.Len(t, p.Agents, 1)
	assert.Equal(t, "Sam", p.Agents[0].Name)
}

func TestSetTimeFrame(t *testing.T) {
	admin := New(VariantAdmin)
	assert.Equal(t, Yearly, admin.Aggregate.TimeFrame)
	assert.ErrorIs(t, admin.SetTimeFrame(Daily), ErrUnsupportedTimeFrame)
	assert.Equal(t, Yearly, admin.Aggregate.TimeFrame)
	require.NoError(t, admin.SetTimeFrame(Weekly))

	agent := New(VariantAgent)
	assert.Equal(t, Daily, agent.Aggregate.TimeFrame)
	require.NoError(t, agent.SetTimeFrame(Yearly))
	assert.Equal(t, []TimeFrame{Weekly, Monthly, Yearly}, VariantAdmin.TimeFrames())
}

func TestProject(t *testing.T) {
	p := newAgentPlan(t, "Jane", "Sam")
	require.NoError(t, p.UpdateInput("Jane", FieldCommissionAmount, Float(1000)))
	require.NoError(t, p.UpdateInput("Jane", FieldBusinessCommissionPercentage, Float(30)))
	require.NoError(t, p.UpdateInput("Sam", FieldCommissionAmount, Float(1000)))
	require.NoError(t, p.UpdateInput("Sam", FieldBusinessCommissionPercentage, Float(70)))
	require.NoError(t, p.UpdateInput("", FieldRent, Float(10)))
	require.NoError(t, p.SetTimeFrame(Weekly))

	proj, err := p.Project()
	require.NoError(t, err)

	assert.Equal(t, 5.0, proj.Multiplier)
	require.Len(t, proj.Agents, 2)
	assert.Equal(t, 5000.0, *proj.Agents[0].NetCommission)
	assert.Equal(t, 1500.0, *proj.Agents[0].BusinessCommission)
	assert.Equal(t, 3500.0, *proj.Agents[1].BusinessCommission)
	assert.Equal(t, 5000.0, proj.Totals.BusinessCommission)
	assert.Equal(t, 50.0, proj.Totals.AdditionalExpensesTotal)

	again, err := p.Project()
	require.NoError(t, err)
	assert.Equal(t, proj, again)
}

func TestValidate(t *testing.T) {
	p := newAgentPlan(t, "Jane")
	require.NoError(t, p.Validate())

	bad := p.Clone()
	bad.Agents[0].BusinessCommissionPercentage = Float(70)
	bad.Agents[0].AgentCommissionPercentage = Float(31)
	assert.ErrorIs(t, bad.Validate(), ErrCommissionSumExceeded)

	bad = p.Clone()
	bad.Aggregate.BusinessExpensesPercentage = Float(101)
	assert.ErrorIs(t, bad.Validate(), ErrPercentageOutOfRange)

	bad = p.Clone()
	bad.Agents = append(bad.Agents, AgentFinancialInput{Name: "Jane"})
	assert.ErrorIs(t, bad.Validate(), ErrDuplicateAgent)

	bad = New(VariantAdmin)
	bad.Aggregate.TimeFrame = Daily
	assert.ErrorIs(t, bad.Validate(), ErrUnsupportedTimeFrame)

	bad = &Plan{Variant: "broker", Aggregate: PlanAggregateInput{TimeFrame: Daily}}
	assert.ErrorIs(t, bad.Validate(), ErrUnknownVariant)
}

func TestClone_IsDeep(t *testing.T) {
	p := newAgentPlan(t, "Jane")
	require.NoError(t, p.UpdateInput("Jane", FieldCommissionAmount, Float(100)))
	require.NoError(t, p.UpdateInput("", FieldRent, Float(5)))

	c := p.Clone()
	*c.Agents[0].CommissionAmount = 999
	*c.Aggregate.Rent = 999

	a, _ := p.Agent("Jane")
	assert.Equal(t, 100.0, *a.CommissionAmount)
	assert.Equal(t, 5.0, *p.Aggregate.Rent)
}

func TestPlan_JSONNulls(t *testing.T) {
	raw := `{"variant":"agent","aggregate":{"time_frame":"weekly","rent":null},
		"agents":[{"name":"Jane","commission_amount":1000,"franchise_fee_percentage":null}]}`

	var p Plan
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.NoError(t, p.Validate())

	proj, err := p.Project()
	require.NoError(t, err)
	assert.Equal(t, 5000.0, *proj.Agents[0].NetCommission)
	assert.Nil(t, proj.Agents[0].BusinessCommission)

	out, err := json.Marshal(proj.Agents[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"business_commission":null`)
}

func TestSchema(t *testing.T) {
	for _, s := range Schema {
		switch s.Scope {
		case ScopeAgent:
			assert.NotNil(t, agentSlot(&AgentFinancialInput{}, s.Field), s.Field)
		case ScopeAggregate:
			assert.NotNil(t, aggregateSlot(&PlanAggregateInput{}, s.Field), s.Field)
		case ScopeDerived:
			assert.True(t, s.ReadOnly, s.Field)
		}
	}
	assert.Len(t, FieldsIn(ScopeDerived), 8)

	spec, ok := Lookup(FieldFranchiseFeePercentage)
	require.True(t, ok)
	assert.True(t, spec.InRange(100))
	assert.False(t, spec.InRange(100.01))
}
