package report

import (
	"bytes"
	"testing"

	"agency-backend/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBusinessPlan(t *testing.T) {
	p := plan.New(plan.VariantAgent)
	require.NoError(t, p.AddAgent("Jane"))
	require.NoError(t, p.AddAgent("Sam"))
	require.NoError(t, p.UpdateInput("Jane", plan.FieldCommissionAmount, plan.Float(10000)))
	require.NoError(t, p.UpdateInput("Jane", plan.FieldFranchiseFeePercentage, plan.Float(10)))
	require.NoError(t, p.UpdateInput("", plan.FieldRent, plan.Float(20)))
	require.NoError(t, p.SetTimeFrame(plan.Weekly))

	proj, err := p.Project()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBusinessPlan(&buf, "Jane's plan", p, proj))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{planSheet, expensesSheet}, f.GetSheetList())

	title, err := f.GetCellValue(planSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Jane's plan", title)

	rows, err := f.GetRows(planSheet)
	require.NoError(t, err)
	// 4 header lines, a blank, the column header, 2 agents, totals
	require.Len(t, rows, 9)
	assert.Equal(t, "Agent", rows[5][0])
	assert.Equal(t, "Jane", rows[6][0])
	assert.Equal(t, "10000", rows[6][1])
	assert.Equal(t, "Sam", rows[7][0])
	assert.Equal(t, "Total", rows[8][0])

	netCol := 1 + len(plan.FieldsIn(plan.ScopeAgent)) + 1 // franchise fee, then net commission
	assert.Equal(t, "Net commission", rows[5][netCol])
	assert.Equal(t, "45000", rows[6][netCol])
	assert.Equal(t, "45000", rows[8][netCol])

	exp, err := f.GetRows(expensesSheet)
	require.NoError(t, err)
	last := exp[len(exp)-1]
	assert.Equal(t, "Additional expenses total", last[0])
	assert.Equal(t, "100", last[2])
}

func TestWriteActivitySummary(t *testing.T) {
	periods := []ActivityPeriod{
		{Label: "2026-03-02", DoorKnocks: 10, PhoneCalls: 4},
		{Label: "2026-03-03", DoorKnocks: 2, Appraisals: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteActivitySummary(&buf, "March", periods))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(activitySheet)
	require.NoError(t, err)
	total := rows[len(rows)-1]
	assert.Equal(t, []string{"Total", "12", "4", "1", "17"}, total)
	assert.Equal(t, 14, periods[0].Total())
}
