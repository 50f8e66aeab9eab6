package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	uc "loan-calculator/internal/usecase/schedule"
)

const (
	summarySheet  = "summary"
	scheduleSheet = "schedule"
)

// BuildScheduleXLSX renders the loan summary, the schedule rows and a
// principal/interest line chart into a workbook.
func BuildScheduleXLSX(s *uc.ScheduleDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(scheduleSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Loan Details")
	for i, line := range summaryLines(s) {
		row := i + 3
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), line.Label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), line.Value)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 38)
	_ = f.SetColWidth(summarySheet, "B", "B", 18)

	_ = f.SetCellValue(scheduleSheet, "A1", "Month")
	_ = f.SetCellValue(scheduleSheet, "B1", "Principal Paid")
	_ = f.SetCellValue(scheduleSheet, "C1", "Interest")
	_ = f.SetCellValue(scheduleSheet, "D1", "Remaining Balance")
	for i, r := range s.Rows {
		row := i + 2
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("A%d", row), r.Period)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("B%d", row), r.PrincipalPaid)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("C%d", row), r.Interest)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("D%d", row), r.Balance)
	}
	_ = f.SetColWidth(scheduleSheet, "B", "D", 18)

	last := len(s.Rows) + 1
	if len(s.Rows) > 0 {
		amount, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(scheduleSheet, "B2", fmt.Sprintf("D%d", last), amount); err != nil {
			return nil, err
		}
		if err := f.AddChart(scheduleSheet, "F2", scheduleChart(last)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scheduleChart(lastRow int) *excelize.Chart {
	months := fmt.Sprintf("%s!$A$2:$A$%d", scheduleSheet, lastRow)
	return &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       scheduleSheet + "!$B$1",
				Categories: months,
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", scheduleSheet, lastRow),
			},
			{
				Name:       scheduleSheet + "!$C$1",
				Categories: months,
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", scheduleSheet, lastRow),
			},
		},
		Title:  []excelize.RichTextRun{{Text: "Loan Schedule"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
}
