package amortization

import (
	"fmt"
	"math"
)

const monthsPerYear = 12

// PeriodicRate converts a nominal annual percentage into a monthly fraction.
func PeriodicRate(annualRatePercent float64) float64 {
	return annualRatePercent / (monthsPerYear * 100)
}

// Payment returns the fixed periodic payment for a loan at periodic rate r.
// A zero rate falls back to straight-line division of the principal.
//
// The annuity factor r*g/(g-1), g = (1+r)^n, is evaluated as r/(1-(1+r)^-n)
// through Log1p/Expm1 so tiny rates keep their precision and huge r*n
// saturates to principal*r instead of Inf/Inf.
func Payment(principal float64, term int, r float64) float64 {
	if r == 0 {
		return principal / float64(term)
	}
	return principal * r / -math.Expm1(-float64(term)*math.Log1p(r))
}

// Validate rejects non-finite values, a non-positive principal, a term
// below one period and a negative rate, all wrapped in ErrInvalidInput.
func (t LoanTerms) Validate() error {
	switch {
	case math.IsNaN(t.Principal) || math.IsInf(t.Principal, 0) || t.Principal <= 0:
		return fmt.Errorf("%w: principal must be a positive number, got %v", ErrInvalidInput, t.Principal)
	case t.Term < 1:
		return fmt.Errorf("%w: term must be at least 1 period, got %d", ErrInvalidInput, t.Term)
	case math.IsNaN(t.AnnualRatePercent) || math.IsInf(t.AnnualRatePercent, 0) || t.AnnualRatePercent < 0:
		return fmt.Errorf("%w: annual rate must be zero or positive, got %v", ErrInvalidInput, t.AnnualRatePercent)
	}
	return nil
}

// ComputeSchedule builds the full amortization schedule for the given loan.
func ComputeSchedule(principal float64, term int, annualRatePercent float64) (*Schedule, error) {
	return Compute(LoanTerms{Principal: principal, Term: term, AnnualRatePercent: annualRatePercent})
}

// Compute validates t and materializes every period of its schedule.
func Compute(t LoanTerms) (*Schedule, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	r := PeriodicRate(t.AnnualRatePercent)
	payment := Payment(t.Principal, t.Term, r)

	s := &Schedule{
		Terms:        t,
		PeriodicRate: r,
		Payment:      payment,
		Rows:         make([]ScheduleRow, 0, t.Term),
	}

	balance := t.Principal
	for period := 1; period <= t.Term; period++ {
		interest := balance * r
		principalPaid := payment - interest
		balance -= principalPaid

		s.TotalInterest += interest
		s.Rows = append(s.Rows, ScheduleRow{
			Period:        period,
			PrincipalPaid: principalPaid,
			Interest:      interest,
			Balance:       balance,
		})
	}
	return s, nil
}
