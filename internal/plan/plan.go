package plan

import (
	"math"
	"strings"
)

// Plan is the editable input document of a business plan. It is the only
// state the engine needs; everything derived is recomputed by Project.
type Plan struct {
	Variant   Variant               `json:"variant"`
	Aggregate PlanAggregateInput    `json:"aggregate"`
	Agents    []AgentFinancialInput `json:"agents"`
}

// New returns an empty plan in the variant's default time frame.
func New(v Variant) *Plan {
	return &Plan{
		Variant:   v,
		Aggregate: PlanAggregateInput{TimeFrame: v.DefaultTimeFrame()},
		Agents:    []AgentFinancialInput{},
	}
}

func (p *Plan) agentIndex(name string) int {
	for i := range p.Agents {
		if p.Agents[i].Name == name {
			return i
		}
	}
	return -1
}

// Agent returns a copy of the named agent row.
func (p *Plan) Agent(name string) (AgentFinancialInput, bool) {
	i := p.agentIndex(name)
	if i < 0 {
		return AgentFinancialInput{}, false
	}
	return p.Agents[i], true
}

func (p *Plan) AddAgent(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyAgentName
	}
	if p.agentIndex(name) >= 0 {
		return ErrDuplicateAgent
	}
	p.Agents = append(p.Agents, AgentFinancialInput{Name: name})
	return nil
}

func (p *Plan) RemoveAgent(name string) error {
	i := p.agentIndex(name)
	if i < 0 {
		return ErrAgentNotFound
	}
	p.Agents = append(p.Agents[:i], p.Agents[i+1:]...)
	return nil
}

// SetTimeFrame switches the frame if the variant supports it.
func (p *Plan) SetTimeFrame(tf TimeFrame) error {
	if _, err := p.Variant.Multiplier(tf); err != nil {
		return err
	}
	p.Aggregate.TimeFrame = tf
	return nil
}

// UpdateInput sets one input field. agent is ignored for aggregate fields.
// A nil value clears the field. On any error the plan is unchanged.
func (p *Plan) UpdateInput(agent string, field Field, value *float64) error {
	spec, ok := Lookup(field)
	if !ok {
		return &ValidationError{Agent: agent, Field: field, Err: ErrUnknownField}
	}
	if spec.ReadOnly {
		return &ValidationError{Agent: agent, Field: field, Err: ErrReadOnlyField}
	}
	if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
		return &ValidationError{Agent: agent, Field: field, Err: ErrNotFinite}
	}
	if value != nil && !spec.InRange(*value) {
		return &ValidationError{Agent: agent, Field: field, Err: ErrPercentageOutOfRange}
	}

	if spec.Scope == ScopeAggregate {
		*aggregateSlot(&p.Aggregate, field) = copyFloat(value)
		return nil
	}

	i := p.agentIndex(agent)
	if i < 0 {
		return &ValidationError{Agent: agent, Field: field, Err: ErrAgentNotFound}
	}
	candidate := p.Agents[i]
	*agentSlot(&candidate, field) = copyFloat(value)
	if !commissionSumOK(candidate) {
		return &ValidationError{Agent: agent, Field: field, Err: ErrCommissionSumExceeded}
	}
	p.Agents[i] = candidate
	return nil
}

func commissionSumOK(a AgentFinancialInput) bool {
	if a.BusinessCommissionPercentage == nil || a.AgentCommissionPercentage == nil {
		return true
	}
	return *a.BusinessCommissionPercentage+*a.AgentCommissionPercentage <= 100
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Validate checks a whole document, as received when a plan is replaced.
// It returns the first violation found.
func (p *Plan) Validate() error {
	if _, err := ParseVariant(string(p.Variant)); err != nil {
		return err
	}
	if _, err := p.Variant.Multiplier(p.Aggregate.TimeFrame); err != nil {
		return err
	}
	for _, spec := range FieldsIn(ScopeAggregate) {
		if v := p.Aggregate.Value(spec.Field); v != nil {
			if err := checkValue(spec, *v); err != nil {
				return &ValidationError{Field: spec.Field, Err: err}
			}
		}
	}
	seen := make(map[string]bool, len(p.Agents))
	for _, a := range p.Agents {
		if strings.TrimSpace(a.Name) == "" {
			return ErrEmptyAgentName
		}
		if seen[a.Name] {
			return ErrDuplicateAgent
		}
		seen[a.Name] = true
		for _, spec := range FieldsIn(ScopeAgent) {
			if v := a.Value(spec.Field); v != nil {
				if err := checkValue(spec, *v); err != nil {
					return &ValidationError{Agent: a.Name, Field: spec.Field, Err: err}
				}
			}
		}
		if !commissionSumOK(a) {
			return &ValidationError{Agent: a.Name, Field: FieldAgentCommissionPercentage, Err: ErrCommissionSumExceeded}
		}
	}
	return nil
}

func checkValue(spec FieldSpec, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	if !spec.InRange(v) {
		return ErrPercentageOutOfRange
	}
	return nil
}

// Project derives every agent row and the plan totals. It does not modify p.
func (p *Plan) Project() (Projection, error) {
	m, err := p.Variant.Multiplier(p.Aggregate.TimeFrame)
	if err != nil {
		return Projection{}, err
	}
	rows := make([]DerivedAgentMetrics, 0, len(p.Agents))
	for _, a := range p.Agents {
		rows = append(rows, DeriveAgentMetrics(a, p.Aggregate, m))
	}
	totals := DeriveTotals(rows)
	totals.AdditionalExpensesTotal = AdditionalExpensesTotal(p.Aggregate, m)
	return Projection{
		Variant:    p.Variant,
		TimeFrame:  p.Aggregate.TimeFrame,
		Multiplier: m,
		Agents:     rows,
		Totals:     totals,
	}, nil
}

// Clone returns a deep copy so callers can stage edits.
func (p *Plan) Clone() *Plan {
	c := &Plan{Variant: p.Variant, Aggregate: p.Aggregate}
	for _, spec := range FieldsIn(ScopeAggregate) {
		*aggregateSlot(&c.Aggregate, spec.Field) = copyFloat(p.Aggregate.Value(spec.Field))
	}
	c.Agents = make([]AgentFinancialInput, len(p.Agents))
	for i, a := range p.Agents {
		na := AgentFinancialInput{Name: a.Name}
		for _, spec := range FieldsIn(ScopeAgent) {
			*agentSlot(&na, spec.Field) = copyFloat(a.Value(spec.Field))
		}
		c.Agents[i] = na
	}
	return c
}
