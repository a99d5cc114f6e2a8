package report

import (
	"fmt"
	"io"

	"agency-backend/internal/plan"

	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	planSheet     = "Plan"
	expensesSheet = "Expenses"
)

// WriteBusinessPlan renders a plan and its projection as an XLSX workbook:
// one row per agent with inputs and derived values, a totals row, and the
// pooled expenses on a second sheet.
func WriteBusinessPlan(w io.Writer, title string, p *plan.Plan, proj plan.Projection) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", planSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := [][]interface{}{
		{title},
		{"Variant", string(proj.Variant)},
		{"Time frame", string(proj.TimeFrame)},
		{"Multiplier", proj.Multiplier},
	}
	for i, row := range header {
		if err := f.SetSheetRow(planSheet, cell(1, i+1), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(planSheet, "A1", "A1", bold); err != nil {
		return err
	}

	inputs := plan.FieldsIn(plan.ScopeAgent)
	derived := plan.FieldsIn(plan.ScopeDerived)

	const tableRow = 6
	cols := []interface{}{"Agent"}
	for _, s := range inputs {
		cols = append(cols, s.Label)
	}
	for _, s := range derived {
		cols = append(cols, s.Label)
	}
	if err := f.SetSheetRow(planSheet, cell(1, tableRow), &cols); err != nil {
		return err
	}
	if err := f.SetCellStyle(planSheet, cell(1, tableRow), cell(len(cols), tableRow), bold); err != nil {
		return err
	}

	row := tableRow + 1
	for i, a := range p.Agents {
		values := []interface{}{a.Name}
		for _, s := range inputs {
			values = append(values, optional(a.Value(s.Field)))
		}
		var m plan.DerivedAgentMetrics
		if i < len(proj.Agents) {
			m = proj.Agents[i]
		}
		for _, s := range derived {
			values = append(values, optional(m.Value(s.Field)))
		}
		if err := f.SetSheetRow(planSheet, cell(1, row), &values); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"Total"}
	for range inputs {
		totals = append(totals, nil)
	}
	for _, s := range derived {
		totals = append(totals, proj.Totals.Value(s.Field))
	}
	if err := f.SetSheetRow(planSheet, cell(1, row), &totals); err != nil {
		return err
	}
	if err := f.SetCellStyle(planSheet, cell(1, row), cell(len(totals), row), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(planSheet, "A", columnName(len(cols)), 18); err != nil {
		return err
	}

	if err := writeExpenses(f, p, proj, bold); err != nil {
		return err
	}

	return f.Write(w)
}

func writeExpenses(f *excelize.File, p *plan.Plan, proj plan.Projection, bold int) error {
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return err
	}
	head := []interface{}{"Item", "Entered", "Scaled"}
	if err := f.SetSheetRow(expensesSheet, "A1", &head); err != nil {
		return err
	}
	if err := f.SetCellStyle(expensesSheet, "A1", "C1", bold); err != nil {
		return err
	}

	row := 2
	for _, s := range plan.FieldsIn(plan.ScopeAggregate) {
		v := p.Aggregate.Value(s.Field)
		values := []interface{}{s.Label, optional(v), nil}
		if v != nil && s.Kind == plan.KindAmount {
			values[2] = *v * proj.Multiplier
		}
		if err := f.SetSheetRow(expensesSheet, cell(1, row), &values); err != nil {
			return err
		}
		row++
	}
	total := []interface{}{"Additional expenses total", nil, proj.Totals.AdditionalExpensesTotal}
	if err := f.SetSheetRow(expensesSheet, cell(1, row), &total); err != nil {
		return err
	}
	return f.SetColWidth(expensesSheet, "A", "A", 28)
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("report: bad cell %d,%d", col, row))
	}
	return name
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(fmt.Sprintf("report: bad column %d", col))
	}
	return name
}
