package plan

// TimeFrame selects the scale multiplier applied to amount inputs.
type TimeFrame string

const (
	Daily   TimeFrame = "daily"
	Weekly  TimeFrame = "weekly"
	Monthly TimeFrame = "monthly"
	Yearly  TimeFrame = "yearly"
)

// Variant names a plan flavour. Each variant carries its own scale table.
type Variant string

const (
	VariantAgent Variant = "agent"
	VariantAdmin Variant = "admin"
)

// ScaleTable maps a time frame to its multiplier.
type ScaleTable map[TimeFrame]float64

// Agent plans count working days (5 a week, 20 a month, 240 a year).
// Admin plans are entered yearly and scaled by calendar periods.
// The two tables are intentionally kept apart.
var (
	AgentPlanScale = ScaleTable{Daily: 1, Weekly: 5, Monthly: 20, Yearly: 240}
	AdminPlanScale = ScaleTable{Yearly: 1, Monthly: 12, Weekly: 52}
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantAgent, VariantAdmin:
		return Variant(s), nil
	}
	return "", ErrUnknownVariant
}

func (v Variant) Scale() ScaleTable {
	if v == VariantAdmin {
		return AdminPlanScale
	}
	return AgentPlanScale
}

// DefaultTimeFrame is the frame a fresh plan of this variant starts in.
func (v Variant) DefaultTimeFrame() TimeFrame {
	if v == VariantAdmin {
		return Yearly
	}
	return Daily
}

// Multiplier returns the scale for tf, or ErrUnsupportedTimeFrame.
func (v Variant) Multiplier(tf TimeFrame) (float64, error) {
	m, ok := v.Scale()[tf]
	if !ok {
		return 0, ErrUnsupportedTimeFrame
	}
	return m, nil
}

// TimeFrames lists the frames the variant accepts, smallest first.
func (v Variant) TimeFrames() []TimeFrame {
	out := make([]TimeFrame, 0, 4)
	for _, tf := range []TimeFrame{Daily, Weekly, Monthly, Yearly} {
		if _, ok := v.Scale()[tf]; ok {
			out = append(out, tf)
		}
	}
	return out
}

// AgentFinancialInput is one agent row of a plan. Nil means "not entered".
type AgentFinancialInput struct {
	Name                         string   `json:"name"`
	CommissionAmount             *float64 `json:"commission_amount"`
	FranchiseAmount              *float64 `json:"franchise_amount"`
	MarketingExpenses            *float64 `json:"marketing_expenses"`
	SuperAmount                  *float64 `json:"super_amount"`
	BusinessCommissionPercentage *float64 `json:"business_commission_percentage"`
	AgentCommissionPercentage    *float64 `json:"agent_commission_percentage"`
	FranchiseFeePercentage       *float64 `json:"franchise_fee_percentage"`
}

// PlanAggregateInput holds plan-wide percentages and pooled expenses.
type PlanAggregateInput struct {
	BusinessExpensesPercentage *float64  `json:"business_expenses_percentage"`
	AgentExpensesPercentage    *float64  `json:"agent_expenses_percentage"`
	Rent                       *float64  `json:"rent"`
	StaffSalary                *float64  `json:"staff_salary"`
	Internet                   *float64  `json:"internet"`
	Fuel                       *float64  `json:"fuel"`
	OtherExpenses              *float64  `json:"other_expenses"`
	TimeFrame                  TimeFrame `json:"time_frame"`
}

type DerivedAgentMetrics struct {
	Name               string   `json:"name"`
	NetCommission      *float64 `json:"net_commission"`
	BusinessCommission *float64 `json:"business_commission"`
	AgentCommission    *float64 `json:"agent_commission"`
	BusinessExpenses   *float64 `json:"business_expenses"`
	AgentExpenses      *float64 `json:"agent_expenses"`
	BusinessEarnings   *float64 `json:"business_earnings"`
	AgentEarnings      *float64 `json:"agent_earnings"`
	FranchiseFeeAmount *float64 `json:"franchise_fee_amount"`
}

type DerivedPlanTotals struct {
	NetCommission           float64 `json:"net_commission"`
	BusinessCommission      float64 `json:"business_commission"`
	AgentCommission         float64 `json:"agent_commission"`
	BusinessExpenses        float64 `json:"business_expenses"`
	AgentExpenses           float64 `json:"agent_expenses"`
	BusinessEarnings        float64 `json:"business_earnings"`
	AgentEarnings           float64 `json:"agent_earnings"`
	FranchiseFeeAmount      float64 `json:"franchise_fee_amount"`
	AdditionalExpensesTotal float64 `json:"additional_expenses_total"`
}

// Projection is the full derived view of a plan at its current time frame.
type Projection struct {
	Variant    Variant               `json:"variant"`
	TimeFrame  TimeFrame             `json:"time_frame"`
	Multiplier float64               `json:"multiplier"`
	Agents     []DerivedAgentMetrics `json:"agents"`
	Totals     DerivedPlanTotals     `json:"totals"`
}

// Float is a convenience for building optional inputs.
func Float(v float64) *float64 { return &v }
