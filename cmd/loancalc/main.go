package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"loan-calculator/internal/adapter/report"
	"loan-calculator/internal/config"
	"loan-calculator/internal/domain/amortization"
	"loan-calculator/internal/usecase/schedule"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loancalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	principal := fs.Float64("principal", 100000, "loan amount")
	term := fs.Int("term", 48, "loan tenor in months")
	rate := fs.Float64("rate", 6.49, "nominal annual interest rate (reducing), in percent")
	format := fs.String("format", "table", "stdout format: table or json")
	out := fs.String("out", "", "also write an export to this file (.xlsx or .pdf)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: loancalc -principal <amount> -term <months> -rate <percent> [-format table|json] [-out file.xlsx|file.pdf]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var exportFormat report.Format
	if path := strings.TrimSpace(*out); path != "" {
		f, err := report.ParseFormat(path)
		if err != nil {
			fmt.Fprintf(stderr, "loancalc: -out: %v\n", err)
			return 2
		}
		exportFormat = f
	}

	limits := config.DefaultLimits()
	uc := schedule.NewUsecase(schedule.Limits{
		MaxPrincipal:  limits.MaxPrincipal,
		MaxTermMonths: limits.MaxTermMonths,
		MaxAnnualRate: limits.MaxAnnualRate,
	})
	dto, err := uc.Compute(context.Background(), schedule.ComputeInput{
		Principal: *principal,
		Term:      *term,
		Rate:      *rate,
	})
	if err != nil {
		fmt.Fprintf(stderr, "loancalc: %v\n", err)
		if errors.Is(err, amortization.ErrInvalidInput) || errors.Is(err, schedule.ErrLimitExceeded) {
			return 2
		}
		return 1
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dto); err != nil {
			fmt.Fprintf(stderr, "loancalc: %v\n", err)
			return 1
		}
	case "table":
		writeTable(stdout, dto)
	default:
		fmt.Fprintf(stderr, "loancalc: unknown -format %q\n", *format)
		return 2
	}

	if exportFormat != "" {
		b, err := report.Render(exportFormat, dto)
		if err != nil {
			fmt.Fprintf(stderr, "loancalc: export: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*out, b, 0o644); err != nil {
			fmt.Fprintf(stderr, "loancalc: %v\n", err)
			return 1
		}
	}
	return 0
}

func writeTable(w io.Writer, s *schedule.ScheduleDTO) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Loan Details\t\t")
	fmt.Fprintf(tw, "Loan Amount\t%s\t\n", report.Amount(s.Principal))
	fmt.Fprintf(tw, "Loan Tenor\t%d months\t\n", s.Term)
	fmt.Fprintf(tw, "Interest On Reducing Rate per annum\t%.2f%%\t\n", s.AnnualRate)
	fmt.Fprintf(tw, "Approx. Flat Rate\t%.2f%%\t\n", s.FlatRate)
	fmt.Fprintf(tw, "Monthly Payment\t%s\t\n", report.Amount(s.Payment))
	fmt.Fprintf(tw, "Total Interest\t%s\t\n", report.Amount(s.TotalInterest))
	fmt.Fprintf(tw, "Total Payment\t%s\t\n", report.Amount(s.TotalPayment))
	_ = tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tPrincipal Paid\tInterest\tRemaining Balance\t")
	for _, r := range s.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", r.Period, report.Amount(r.PrincipalPaid), report.Amount(r.Interest), report.Amount(r.Balance))
	}
	_ = tw.Flush()
}
