package http

import (
	"errors"
	"math"
	"testing"
)

func TestDec2Validation(t *testing.T) {
	type P struct {
		Rate float64 `validate:"dec2"`
	}
	cv := NewValidator()

	for _, v := range []float64{1.29, 2.00, 0.9, 1.2} {
		if err := cv.Validate(P{Rate: v}); err != nil {
			t.Fatalf("expected dec2 OK for %v, got %v", v, err)
		}
	}
	for _, v := range []float64{1.234, 2.9999} {
		err := cv.Validate(P{Rate: v})
		if err == nil {
			t.Fatalf("expected dec2 error for %v", v)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "Rate", "at most 2 decimal places") {
			t.Fatalf("expected 'at most 2 decimal places' for %v, got %+v", v, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name      string  `validate:"required"`
		Min       int     `validate:"gte=10"`
		Max       int     `validate:"lte=5"`
		Rate      float64 `validate:"dec2,gte=0.90,lte=1.29"`
		Principal float64 `validate:"gt=0"`
	}
	cv := NewValidator()

	// Intentionally violate all
	err := cv.Validate(P{
		Name: "", // required
		Min:  9,  // gte=10
		Max:  6,  // lte=5
		Rate: 1.333, // dec2 + lte fail, but dec2 will trigger first
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	// required
	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	// gte
	if !containsFieldMsg(fe, "Min", "greater than or equal to 10") {
		t.Fatalf("missing gte message for Min: %+v", fe)
	}
	// lte
	if !containsFieldMsg(fe, "Max", "less than or equal to 5") {
		t.Fatalf("missing lte message for Max: %+v", fe)
	}
	// dec2 mapping should show for Rate
	if !containsFieldMsg(fe, "Rate", "at most 2 decimal places") {
		t.Fatalf("missing dec2 message for Rate: %+v", fe)
	}
	// gt
	if !containsFieldMsg(fe, "Principal", "greater than 0") {
		t.Fatalf("missing gt message for Principal: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}

func TestFiniteValidation(t *testing.T) {
	type P struct {
		Rate float64 `validate:"finite"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{Rate: 6.49}); err != nil {
		t.Fatalf("expected finite OK, got %v", err)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := cv.Validate(P{Rate: v})
		if err == nil {
			t.Fatalf("expected finite error for %v", v)
		}
		if !containsFieldMsg(ToFieldErrors(err), "Rate", "finite number") {
			t.Fatalf("expected 'finite number' for %v, got %+v", v, ToFieldErrors(err))
		}
	}
}

func TestScheduleRequestValidation(t *testing.T) {
	cv := NewValidator()
	zero, rate := 0.0, 6.49

	if err := cv.Validate(&scheduleReq{Principal: 100000, Term: 48, Rate: &rate}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	// 0% is a valid rate; only its absence is rejected
	if err := cv.Validate(&scheduleReq{Principal: 1200, Term: 12, Rate: &zero}); err != nil {
		t.Fatalf("expected zero rate to validate, got %v", err)
	}

	err := cv.Validate(&scheduleReq{Principal: 0, Term: 0})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	fe := ToFieldErrors(err)
	for _, field := range []string{"Principal", "Term", "Rate"} {
		if !containsFieldMsg(fe, field, "is required") {
			t.Fatalf("missing 'is required' for %s: %+v", field, fe)
		}
	}

	neg := -1.0
	fe = ToFieldErrors(cv.Validate(&scheduleReq{Principal: -5, Term: 12, Rate: &neg}))
	if !containsFieldMsg(fe, "Principal", "greater than 0") {
		t.Fatalf("missing gt message: %+v", fe)
	}
	if !containsFieldMsg(fe, "Rate", "greater than or equal to 0") {
		t.Fatalf("missing gte message: %+v", fe)
	}
}
