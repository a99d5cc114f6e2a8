package plan

import "math"

// roundHalfUp rounds to the nearest integer, halves towards +Inf.
// Adding 0.5 first would round 0.49999999999999994 up to 1.
func roundHalfUp(v float64) float64 {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return f
}

func scale(v *float64, m float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v * m
	return &s
}

func percentOf(v, pct *float64) *float64 {
	if v == nil || pct == nil {
		return nil
	}
	r := roundHalfUp(*v * *pct / 100)
	return &r
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// AdditionalExpensesTotal sums the pooled plan expenses, scaled by m.
// Unset expenses count as zero.
func AdditionalExpensesTotal(g PlanAggregateInput, m float64) float64 {
	var total float64
	for _, v := range []*float64{g.Rent, g.StaffSalary, g.Internet, g.Fuel, g.OtherExpenses} {
		total += orZero(v) * m
	}
	return total
}

// DeriveAgentMetrics computes one agent row. A metric whose required upstream
// value is unset comes back nil; the function never fails.
//
// Required inputs per metric:
//
//	franchise_fee_amount  commission + franchise %, or franchise amount
//	net_commission        commission (franchise fee counts as 0 when unset)
//	business_commission   net_commission + business commission %
//	agent_commission      net_commission + agent commission %
//	business_expenses     marketing expenses + business expenses %
//	agent_expenses        marketing expenses + agent expenses %
//	business_earnings     business_commission + business_expenses
//	agent_earnings        agent_commission + agent_expenses
func DeriveAgentMetrics(agent AgentFinancialInput, aggregate PlanAggregateInput, multiplier float64) DerivedAgentMetrics {
	out := DerivedAgentMetrics{Name: agent.Name}

	commission := scale(agent.CommissionAmount, multiplier)
	franchise := scale(agent.FranchiseAmount, multiplier)
	marketing := scale(agent.MarketingExpenses, multiplier)
	super := orZero(scale(agent.SuperAmount, multiplier))

	switch {
	case agent.FranchiseFeePercentage != nil && commission != nil:
		out.FranchiseFeeAmount = percentOf(commission, agent.FranchiseFeePercentage)
	case franchise != nil:
		f := roundHalfUp(*franchise)
		out.FranchiseFeeAmount = &f
	}

	if commission != nil {
		net := *commission - orZero(out.FranchiseFeeAmount)
		out.NetCommission = &net
	}

	out.BusinessCommission = percentOf(out.NetCommission, agent.BusinessCommissionPercentage)
	out.AgentCommission = percentOf(out.NetCommission, agent.AgentCommissionPercentage)

	out.BusinessExpenses = percentOf(marketing, aggregate.BusinessExpensesPercentage)
	out.AgentExpenses = percentOf(marketing, aggregate.AgentExpensesPercentage)

	// The pooled total is taken off every row, so a plan with several agents
	// deducts it several times.
	if out.BusinessCommission != nil && out.BusinessExpenses != nil {
		pooled := AdditionalExpensesTotal(aggregate, multiplier)
		e := roundHalfUp(*out.BusinessCommission - *out.BusinessExpenses - super - pooled)
		out.BusinessEarnings = &e
	}

	if out.AgentCommission != nil && out.AgentExpenses != nil {
		var e float64
		if *marketing > 0 {
			e = roundHalfUp(*out.AgentCommission - *out.AgentExpenses + super)
		}
		out.AgentEarnings = &e
	}

	return out
}

// DeriveTotals sums every metric across rows; unset values count as zero.
// AdditionalExpensesTotal is left for the caller, which owns the aggregate input.
func DeriveTotals(agents []DerivedAgentMetrics) DerivedPlanTotals {
	var t DerivedPlanTotals
	for _, a := range agents {
		t.NetCommission += orZero(a.NetCommission)
		t.BusinessCommission += orZero(a.BusinessCommission)
		t.AgentCommission += orZero(a.AgentCommission)
		t.BusinessExpenses += orZero(a.BusinessExpenses)
		t.AgentExpenses += orZero(a.AgentExpenses)
		t.BusinessEarnings += orZero(a.BusinessEarnings)
		t.AgentEarnings += orZero(a.AgentEarnings)
		t.FranchiseFeeAmount += orZero(a.FranchiseFeeAmount)
	}
	return t
}
