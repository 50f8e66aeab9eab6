package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"loan-calculator/internal/adapter/report"
	"loan-calculator/internal/domain/amortization"
	"loan-calculator/internal/observability/metrics"
	"loan-calculator/internal/usecase/schedule"
)

// ScheduleService is what the handlers need from the schedule usecase.
type ScheduleService interface {
	Compute(ctx context.Context, in schedule.ComputeInput) (*schedule.ScheduleDTO, error)
}

type ScheduleHandler struct{ svc ScheduleService }

func NewScheduleHandler(svc ScheduleService) *ScheduleHandler { return &ScheduleHandler{svc: svc} }

// Rate is a pointer so an omitted rate is rejected instead of read as 0%.
type scheduleReq struct {
	Principal float64  `json:"principal" validate:"required,finite,gt=0,dec2"`
	Term      int      `json:"term"      validate:"required,gte=1"`
	Rate      *float64 `json:"rate"      validate:"required,finite,gte=0,dec2"`
}

func (r scheduleReq) input() schedule.ComputeInput {
	return schedule.ComputeInput{Principal: r.Principal, Term: r.Term, Rate: *r.Rate}
}

func bindScheduleQuery(c echo.Context, req *scheduleReq) error {
	var rate float64
	err := echo.QueryParamsBinder(c).
		MustFloat64("principal", &req.Principal).
		MustInt("term", &req.Term).
		MustFloat64("rate", &rate).
		BindError()
	if err != nil {
		return err
	}
	req.Rate = &rate
	return nil
}

// Map domain errors → HTTP codes
func scheduleError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, amortization.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, schedule.ErrLimitExceeded):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request canceled"})
	}
	log.Printf("schedule: unexpected error: %v", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// CreateSchedule handles POST /v1/schedules with a JSON body.
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.respond(c, &req)
}

// GetSchedule handles GET /v1/schedules?principal=&term=&rate=.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	var req scheduleReq
	if err := bindScheduleQuery(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query: " + err.Error()})
	}
	return h.respond(c, &req)
}

func (h *ScheduleHandler) respond(c echo.Context, req *scheduleReq) error {
	dto, err := h.resolve(c, req)
	if dto == nil {
		return err
	}
	return c.JSON(http.StatusOK, dto)
}

// resolve validates req and runs the usecase. A nil dto means the error
// response has already been written.
func (h *ScheduleHandler) resolve(c echo.Context, req *scheduleReq) (*schedule.ScheduleDTO, error) {
	if err := c.Validate(req); err != nil {
		return nil, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.svc.Compute(c.Request().Context(), req.input())
	if err != nil {
		return nil, scheduleError(c, err)
	}
	return dto, nil
}

// ExportSchedule handles GET /v1/schedules/export/:format with the same query as GetSchedule.
func (h *ScheduleHandler) ExportSchedule(c echo.Context) error {
	format, err := report.ParseFormat(c.Param("format"))
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
	var req scheduleReq
	if err := bindScheduleQuery(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query: " + err.Error()})
	}
	dto, err := h.resolve(c, &req)
	if dto == nil {
		return err
	}

	start := time.Now()
	b, err := report.Render(format, dto)
	if err != nil {
		metrics.ObserveScheduleExport(string(format), metrics.ResultError, time.Since(start))
		log.Printf("schedule: render %s: %v", format, err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "export failed"})
	}
	metrics.ObserveScheduleExport(string(format), metrics.ResultSuccess, time.Since(start))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="loan-schedule-%d.%s"`, dto.Term, format))
	return c.Blob(http.StatusOK, format.ContentType(), b)
}
