package http

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the API; mw wraps only the schedule endpoints.
func RegisterRoutes(e *echo.Echo, h *Handler, sh *ScheduleHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	g := e.Group("/v1/schedules", mw...)
	g.POST("", sh.CreateSchedule)
	g.GET("", sh.GetSchedule)
	g.GET("/export/:format", sh.ExportSchedule)
}
