package plan

// Field is the wire name of a plan input or derived value.
type Field string

const (
	FieldCommissionAmount             Field = "commission_amount"
	FieldFranchiseAmount              Field = "franchise_amount"
	FieldMarketingExpenses            Field = "marketing_expenses"
	FieldSuperAmount                  Field = "super_amount"
	FieldBusinessCommissionPercentage Field = "business_commission_percentage"
	FieldAgentCommissionPercentage    Field = "agent_commission_percentage"
	FieldFranchiseFeePercentage       Field = "franchise_fee_percentage"

	FieldBusinessExpensesPercentage Field = "business_expenses_percentage"
	FieldAgentExpensesPercentage    Field = "agent_expenses_percentage"
	FieldRent                       Field = "rent"
	FieldStaffSalary                Field = "staff_salary"
	FieldInternet                   Field = "internet"
	FieldFuel                       Field = "fuel"
	FieldOtherExpenses              Field = "other_expenses"

	FieldNetCommission      Field = "net_commission"
	FieldBusinessCommission Field = "business_commission"
	FieldAgentCommission    Field = "agent_commission"
	FieldBusinessExpenses   Field = "business_expenses"
	FieldAgentExpenses      Field = "agent_expenses"
	FieldBusinessEarnings   Field = "business_earnings"
	FieldAgentEarnings      Field = "agent_earnings"
	FieldFranchiseFeeAmount Field = "franchise_fee_amount"
)

type Scope int

const (
	ScopeAgent Scope = iota
	ScopeAggregate
	ScopeDerived
)

func (s Scope) MarshalText() ([]byte, error) {
	switch s {
	case ScopeAgent:
		return []byte("agent"), nil
	case ScopeAggregate:
		return []byte("aggregate"), nil
	}
	return []byte("derived"), nil
}

type Kind int

const (
	KindAmount Kind = iota
	KindPercentage
)

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindPercentage {
		return []byte("percentage"), nil
	}
	return []byte("amount"), nil
}

// FieldSpec declares how a field may be edited and displayed.
type FieldSpec struct {
	Field    Field   `json:"field"`
	Label    string  `json:"label"`
	Scope    Scope   `json:"scope"`
	Kind     Kind    `json:"kind"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"` // 0 means unbounded
	ReadOnly bool    `json:"read_only"`
}

// Schema is the ordered list of every field the plan knows about.
var Schema = []FieldSpec{
	{Field: FieldCommissionAmount, Label: "Commission", Scope: ScopeAgent, Kind: KindAmount},
	{Field: FieldFranchiseFeePercentage, Label: "Franchise fee %", Scope: ScopeAgent, Kind: KindPercentage, Max: 100},
	{Field: FieldFranchiseAmount, Label: "Franchise amount", Scope: ScopeAgent, Kind: KindAmount},
	{Field: FieldBusinessCommissionPercentage, Label: "Business commission %", Scope: ScopeAgent, Kind: KindPercentage, Max: 100},
	{Field: FieldAgentCommissionPercentage, Label: "Agent commission %", Scope: ScopeAgent, Kind: KindPercentage, Max: 100},
	{Field: FieldMarketingExpenses, Label: "Marketing expenses", Scope: ScopeAgent, Kind: KindAmount},
	{Field: FieldSuperAmount, Label: "Super", Scope: ScopeAgent, Kind: KindAmount},

	{Field: FieldBusinessExpensesPercentage, Label: "Business expenses %", Scope: ScopeAggregate, Kind: KindPercentage, Max: 100},
	{Field: FieldAgentExpensesPercentage, Label: "Agent expenses %", Scope: ScopeAggregate, Kind: KindPercentage, Max: 100},
	{Field: FieldRent, Label: "Rent", Scope: ScopeAggregate, Kind: KindAmount},
	{Field: FieldStaffSalary, Label: "Staff salary", Scope: ScopeAggregate, Kind: KindAmount},
	{Field: FieldInternet, Label: "Internet", Scope: ScopeAggregate, Kind: KindAmount},
	{Field: FieldFuel, Label: "Fuel", Scope: ScopeAggregate, Kind: KindAmount},
	{Field: FieldOtherExpenses, Label: "Other expenses", Scope: ScopeAggregate, Kind: KindAmount},

	{Field: FieldFranchiseFeeAmount, Label: "Franchise fee", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldNetCommission, Label: "Net commission", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldBusinessCommission, Label: "Business commission", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldAgentCommission, Label: "Agent commission", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldBusinessExpenses, Label: "Business expenses", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldAgentExpenses, Label: "Agent expenses", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldBusinessEarnings, Label: "Business earnings", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
	{Field: FieldAgentEarnings, Label: "Agent earnings", Scope: ScopeDerived, Kind: KindAmount, ReadOnly: true},
}

var schemaIndex = func() map[Field]FieldSpec {
	m := make(map[Field]FieldSpec, len(Schema))
	for _, s := range Schema {
		m[s.Field] = s
	}
	return m
}()

// Lookup returns the spec for f.
func Lookup(f Field) (FieldSpec, bool) {
	s, ok := schemaIndex[f]
	return s, ok
}

// FieldsIn returns the schema entries of one scope, in schema order.
func FieldsIn(scope Scope) []FieldSpec {
	var out []FieldSpec
	for _, s := range Schema {
		if s.Scope == scope {
			out = append(out, s)
		}
	}
	return out
}

// InRange reports whether v is acceptable for the field. Amounts accept any value.
func (s FieldSpec) InRange(v float64) bool {
	if s.Kind != KindPercentage {
		return true
	}
	return v >= s.Min && v <= s.Max
}

// agentSlot returns a pointer to the input slot backing f on a.
func agentSlot(a *AgentFinancialInput, f Field) **float64 {
	switch f {
	case FieldCommissionAmount:
		return &a.CommissionAmount
	case FieldFranchiseAmount:
		return &a.FranchiseAmount
	case FieldMarketingExpenses:
		return &a.MarketingExpenses
	case FieldSuperAmount:
		return &a.SuperAmount
	case FieldBusinessCommissionPercentage:
		return &a.BusinessCommissionPercentage
	case FieldAgentCommissionPercentage:
		return &a.AgentCommissionPercentage
	case FieldFranchiseFeePercentage:
		return &a.FranchiseFeePercentage
	}
	return nil
}

func aggregateSlot(g *PlanAggregateInput, f Field) **float64 {
	switch f {
	case FieldBusinessExpensesPercentage:
		return &g.BusinessExpensesPercentage
	case FieldAgentExpensesPercentage:
		return &g.AgentExpensesPercentage
	case FieldRent:
		return &g.Rent
	case FieldStaffSalary:
		return &g.StaffSalary
	case FieldInternet:
		return &g.Internet
	case FieldFuel:
		return &g.Fuel
	case FieldOtherExpenses:
		return &g.OtherExpenses
	}
	return nil
}

// Value reads a derived metric by field name.
func (m DerivedAgentMetrics) Value(f Field) *float64 {
	switch f {
	case FieldNetCommission:
		return m.NetCommission
	case FieldBusinessCommission:
		return m.BusinessCommission
	case FieldAgentCommission:
		return m.AgentCommission
	case FieldBusinessExpenses:
		return m.BusinessExpenses
	case FieldAgentExpenses:
		return m.AgentExpenses
	case FieldBusinessEarnings:
		return m.BusinessEarnings
	case FieldAgentEarnings:
		return m.AgentEarnings
	case FieldFranchiseFeeAmount:
		return m.FranchiseFeeAmount
	}
	return nil
}

// Value reads an agent input by field name.
func (a AgentFinancialInput) Value(f Field) *float64 {
	if p := agentSlot(&a, f); p != nil {
		return *p
	}
	return nil
}

// Value reads an aggregate input by field name.
func (g PlanAggregateInput) Value(f Field) *float64 {
	if p := aggregateSlot(&g, f); p != nil {
		return *p
	}
	return nil
}

// Value reads a total by field name.
func (t DerivedPlanTotals) Value(f Field) float64 {
	switch f {
	case FieldNetCommission:
		return t.NetCommission
	case FieldBusinessCommission:
		return t.BusinessCommission
	case FieldAgentCommission:
		return t.AgentCommission
	case FieldBusinessExpenses:
		return t.BusinessExpenses
	case FieldAgentExpenses:
		return t.AgentExpenses
	case FieldBusinessEarnings:
		return t.BusinessEarnings
	case FieldAgentEarnings:
		return t.AgentEarnings
	case FieldFranchiseFeeAmount:
		return t.FranchiseFeeAmount
	}
	return 0
}
