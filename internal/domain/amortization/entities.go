package amortization

import "errors"

var (
	ErrInvalidInput = errors.New("invalid loan terms")
)

// LoanTerms is the immutable input of a schedule computation.
type LoanTerms struct {
	Principal         float64 `json:"principal"`
	Term              int     `json:"term"`
	AnnualRatePercent float64 `json:"annual_rate"`
}

// ScheduleRow is one period of the schedule. Balance is what remains after the payment.
type ScheduleRow struct {
	Period        int     `json:"period"`
	PrincipalPaid float64 `json:"principal_paid"`
	Interest      float64 `json:"interest"`
	Balance       float64 `json:"balance"`
}

// Schedule is the computed plan: the fixed payment and one row per period.
type Schedule struct {
	Terms         LoanTerms     `json:"terms"`
	PeriodicRate  float64       `json:"periodic_rate"`
	Payment       float64       `json:"payment"`
	TotalInterest float64       `json:"total_interest"`
	Rows          []ScheduleRow `json:"rows"`
}

// TotalPayment is the sum of all fixed payments over the term.
func (s *Schedule) TotalPayment() float64 { return s.Payment * float64(s.Terms.Term) }

// FlatRate expresses the total interest as an annualized simple-interest percentage.
func (s *Schedule) FlatRate() float64 {
	return s.TotalInterest / s.Terms.Principal * 100 / float64(s.Terms.Term) * 12
}
