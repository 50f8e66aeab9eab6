package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-calculator/internal/domain/amortization"
	"loan-calculator/internal/observability/metrics"
)

var ErrLimitExceeded = errors.New("loan terms exceed configured limits")

type Limits struct {
	MaxPrincipal  float64
	MaxTermMonths int
	MaxAnnualRate float64
}

type Usecase struct{ limits Limits }

func NewUsecase(l Limits) *Usecase { return &Usecase{limits: l} }

func (u *Usecase) checkLimits(in ComputeInput) error {
	if u.limits.MaxPrincipal > 0 && in.Principal > u.limits.MaxPrincipal {
		return fmt.Errorf("%w: principal %.2f above %.2f", ErrLimitExceeded, in.Principal, u.limits.MaxPrincipal)
	}
	if u.limits.MaxTermMonths > 0 && in.Term > u.limits.MaxTermMonths {
		return fmt.Errorf("%w: term %d above %d months", ErrLimitExceeded, in.Term, u.limits.MaxTermMonths)
	}
	if u.limits.MaxAnnualRate > 0 && in.Rate > u.limits.MaxAnnualRate {
		return fmt.Errorf("%w: rate %.2f%% above %.2f%%", ErrLimitExceeded, in.Rate, u.limits.MaxAnnualRate)
	}
	return nil
}

func (u *Usecase) Compute(ctx context.Context, in ComputeInput) (*ScheduleDTO, error) {
	start := time.Now()
	dto, err := u.compute(ctx, in)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveScheduleCompute(result, in.Term, time.Since(start))
	return dto, err
}

func (u *Usecase) compute(ctx context.Context, in ComputeInput) (*ScheduleDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := amortization.LoanTerms{Principal: in.Principal, Term: in.Term, AnnualRatePercent: in.Rate}
	// engine validation first so limit errors never mask malformed input
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := u.checkLimits(in); err != nil {
		return nil, err
	}

	s, err := amortization.Compute(terms)
	if err != nil {
		return nil, err
	}
	return toDTO(s), nil
}

func toDTO(s *amortization.Schedule) *ScheduleDTO {
	rows := make([]RowDTO, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = RowDTO(r)
	}
	return &ScheduleDTO{
		Principal:     s.Terms.Principal,
		Term:          s.Terms.Term,
		AnnualRate:    s.Terms.AnnualRatePercent,
		MonthlyRate:   s.PeriodicRate,
		Payment:       s.Payment,
		TotalInterest: s.TotalInterest,
		TotalPayment:  s.TotalPayment(),
		FlatRate:      s.FlatRate(),
		Rows:          rows,
	}
}
