package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const activitySheet = "Activity"

// ActivityPeriod is one bucket of an activity summary.
type ActivityPeriod struct {
	Label      string `json:"label"`
	DoorKnocks int    `json:"door_knocks"`
	PhoneCalls int    `json:"phone_calls"`
	Appraisals int    `json:"appraisals"`
}

func (p ActivityPeriod) Total() int {
	return p.DoorKnocks + p.PhoneCalls + p.Appraisals
}

// WriteActivitySummary renders activity counts per period with a totals row.
func WriteActivitySummary(w io.Writer, title string, periods []ActivityPeriod) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", activitySheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(activitySheet, "A1", title); err != nil {
		return err
	}
	head := []interface{}{"Period", "Door knocks", "Phone calls", "Appraisals", "Total"}
	if err := f.SetSheetRow(activitySheet, "A3", &head); err != nil {
		return err
	}
	if err := f.SetCellStyle(activitySheet, "A1", "E3", bold); err != nil {
		return err
	}

	var sum ActivityPeriod
	row := 4
	for _, p := range periods {
		values := []interface{}{p.Label, p.DoorKnocks, p.PhoneCalls, p.Appraisals, p.Total()}
		if err := f.SetSheetRow(activitySheet, cell(1, row), &values); err != nil {
			return err
		}
		sum.DoorKnocks += p.DoorKnocks
		sum.PhoneCalls += p.PhoneCalls
		sum.Appraisals += p.Appraisals
		row++
	}

	totals := []interface{}{"Total", sum.DoorKnocks, sum.PhoneCalls, sum.Appraisals, sum.Total()}
	if err := f.SetSheetRow(activitySheet, cell(1, row), &totals); err != nil {
		return err
	}
	if err := f.SetCellStyle(activitySheet, cell(1, row), cell(5, row), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(activitySheet, "A", "E", 16); err != nil {
		return err
	}

	return f.Write(w)
}
