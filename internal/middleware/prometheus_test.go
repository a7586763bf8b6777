package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"woreda_portal/internal/metrics"
	appmw "woreda_portal/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	t.Run("api request counted", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/gallery/albums", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/gallery/albums")

		counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/gallery/albums", "200")
		before := testutil.ToFloat64(counter)

		require.NoError(t, appmw.PrometheusMetrics(handler)(c))

		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})

	t.Run("static media not counted", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/uploads/abc.png", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/uploads/:file")

		counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/uploads/:file", "200")
		before := testutil.ToFloat64(counter)

		require.NoError(t, appmw.PrometheusMetrics(handler)(c))

		assert.Equal(t, before, testutil.ToFloat64(counter))
		assert.Equal(t, http.StatusOK, rec.Code, "request itself is served as usual")
	})

	t.Run("metrics scrape not counted", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/metrics")

		counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")
		before := testutil.ToFloat64(counter)

		require.NoError(t, appmw.PrometheusMetrics(handler)(c))

		assert.Equal(t, before, testutil.ToFloat64(counter))
	})
}
