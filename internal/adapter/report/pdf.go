package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	uc "loan-calculator/internal/usecase/schedule"
)

// chart frame on an A4 portrait page, in mm
const (
	chartX = 20.0
	chartY = 40.0
	chartW = 170.0
	chartH = 90.0
)

// BuildSchedulePDF renders the summary, the schedule table and a line chart.
func BuildSchedulePDF(s *uc.ScheduleDTO) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Loan Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range summaryLines(s) {
		pdf.CellFormat(80, 6, line.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, line.Value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Loan Schedule")
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Principal Paid", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Interest", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Remaining Balance", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, r := range s.Rows {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", r.Period), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, Amount(r.PrincipalPaid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, Amount(r.Interest), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, Amount(r.Balance), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(s.Rows) > 0 {
		pdf.AddPage()
		drawChart(pdf, s.Rows)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawChart(pdf *gofpdf.Fpdf, rows []uc.RowDTO) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetXY(chartX, chartY-20)
	pdf.Cell(0, 8, "Principal Paid vs Interest")

	maxY := 0.0
	for _, r := range rows {
		maxY = max(maxY, r.PrincipalPaid, r.Interest)
	}
	if maxY <= 0 {
		maxY = 1
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(chartX, chartY, chartW, chartH, "D")

	pdf.SetFont("Arial", "", 8)
	for _, frac := range []float64{0, 0.25, 0.5, 0.75, 1} {
		y := chartY + chartH - frac*chartH
		pdf.SetXY(chartX-18, y-2)
		pdf.CellFormat(16, 4, fmt.Sprintf("%.0f", frac*maxY), "", 0, "R", false, 0, "")
	}
	pdf.SetXY(chartX, chartY+chartH+1)
	pdf.CellFormat(10, 4, "1", "", 0, "L", false, 0, "")
	pdf.SetXY(chartX+chartW-10, chartY+chartH+1)
	pdf.CellFormat(10, 4, fmt.Sprintf("%d", len(rows)), "", 0, "R", false, 0, "")

	point := func(i int, v float64) (float64, float64) {
		x := chartX
		if len(rows) > 1 {
			x += float64(i) / float64(len(rows)-1) * chartW
		}
		return x, chartY + chartH - v/maxY*chartH
	}
	series := []struct {
		name    string
		r, g, b int
		value   func(uc.RowDTO) float64
	}{
		{"Principal Paid", 31, 119, 180, func(r uc.RowDTO) float64 { return r.PrincipalPaid }},
		{"Interest", 214, 39, 40, func(r uc.RowDTO) float64 { return r.Interest }},
	}

	pdf.SetLineWidth(0.5)
	for k, sr := range series {
		pdf.SetDrawColor(sr.r, sr.g, sr.b)
		px, py := point(0, sr.value(rows[0]))
		for i := 1; i < len(rows); i++ {
			x, y := point(i, sr.value(rows[i]))
			pdf.Line(px, py, x, y)
			px, py = x, y
		}

		lx := chartX + float64(k)*60
		ly := chartY + chartH + 10
		pdf.Line(lx, ly, lx+8, ly)
		pdf.SetXY(lx+10, ly-2)
		pdf.CellFormat(40, 4, sr.name, "", 0, "L", false, 0, "")
	}
}
