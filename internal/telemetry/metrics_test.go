package telemetry_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocolabs/internal/telemetry"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(telemetry.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", telemetry.Handler())

	for _, id := range []string{"1", "2", "3"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	assert.Contains(t, text, `cocolabs_http_requests_total{method="GET",path="/items/:id",status="200"} 3`)
	assert.False(t, strings.Contains(text, `path="/items/1"`))
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	app := fiber.New()
	app.Use(telemetry.Middleware())
	app.Get("/missing-thing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/metrics", telemetry.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/missing-thing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `path="/missing-thing",status="404"`)
}

func TestRecommendationCounter(t *testing.T) {
	before := testutil.ToFloat64(telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeFallback))
	telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeFallback).Inc()
	after := testutil.ToFloat64(telemetry.RecommendationRefresh.WithLabelValues(telemetry.OutcomeFallback))
	assert.Equal(t, before+1, after)
}
