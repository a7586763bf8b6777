package middleware

import (
	"strconv"
	"strings"
	"time"

	"woreda_portal/internal/metrics"

	"github.com/labstack/echo/v4"
)

// PrometheusMetrics считает запросы и длительность обработки.
// Раздача медиа из /uploads/ и сам скрейп /metrics в счётчики
// не попадают.
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqPath := c.Request().URL.Path
		if reqPath == "/metrics" || strings.HasPrefix(reqPath, "/uploads/") {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		duration := time.Since(start).Seconds()

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request().Method,
			c.Path(),
			strconv.Itoa(c.Response().Status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request().Method,
			c.Path(),
		).Observe(duration)

		return err
	}
}
