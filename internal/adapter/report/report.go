package report

import (
	"errors"
	"fmt"
	"math"
	"strings"

	uc "loan-calculator/internal/usecase/schedule"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a bare format name or a file name with that extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	switch Format(s) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Render dispatches to the builder for f.
func Render(f Format, s *uc.ScheduleDTO) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return BuildScheduleXLSX(s)
	case FormatPDF:
		return BuildSchedulePDF(s)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Amount formats v with two decimals, folding rounding residue such as a
// final balance of -2e-9 into "0.00".
func Amount(v float64) string {
	if math.Abs(v) < 0.005 {
		v = 0
	}
	return fmt.Sprintf("%.2f", v)
}

type summaryLine struct {
	Label string
	Value string
}

// summaryLines mirrors the "Loan Details" table of the calculator UI.
func summaryLines(s *uc.ScheduleDTO) []summaryLine {
	return []summaryLine{
		{"Loan Amount", Amount(s.Principal)},
		{"Loan Tenor", fmt.Sprintf("%d months", s.Term)},
		{"Interest On Reducing Rate per annum", fmt.Sprintf("%.2f%%", s.AnnualRate)},
		{"Approx. Flat Rate", fmt.Sprintf("%.2f%%", s.FlatRate)},
		{"Monthly Payment", Amount(s.Payment)},
		{"Total Interest", Amount(s.TotalInterest)},
		{"Total Payment", Amount(s.TotalPayment)},
	}
}
