package schedulemock

import (
	"context"
	"errors"

	uc "loan-calculator/internal/usecase/schedule"
)

var ErrNotImplemented = errors.New("schedulemock: ComputeFn not set")

// Service is a function-backed mock of the schedule usecase.
type Service struct {
	ComputeFn func(ctx context.Context, in uc.ComputeInput) (*uc.ScheduleDTO, error)

	Calls []uc.ComputeInput
}

func (m *Service) Compute(ctx context.Context, in uc.ComputeInput) (*uc.ScheduleDTO, error) {
	m.Calls = append(m.Calls, in)
	if m.ComputeFn != nil {
		return m.ComputeFn(ctx, in)
	}
	return nil, ErrNotImplemented
}
