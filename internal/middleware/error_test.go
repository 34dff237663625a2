package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"history-quiz/internal/domain"
	"history-quiz/internal/metrics"
	"history-quiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func newErrorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/fail", func(c *fiber.Ctx) error { return err })
	return app
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", domain.NewInvalidInputError("Please write your essay before submitting."), http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", domain.NewUnauthorizedError("no"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", domain.NewSessionNotFoundError("abc"), http.StatusNotFound, "NOT_FOUND"},
		{"invalid transition", domain.NewInvalidTransitionError(domain.StageSelection, "advance"), http.StatusConflict, "INVALID_TRANSITION"},
		{"no topic", domain.NewNoTopicSelectedError(), http.StatusConflict, "NO_TOPIC_SELECTED"},
		{"in flight", domain.NewRequestInFlightError(domain.StageObjectiveQuiz), http.StatusConflict, "REQUEST_IN_FLIGHT"},
		{"stale", domain.NewStaleResponseError(domain.StageEssay), http.StatusConflict, "STALE_RESPONSE"},
		{"config missing", domain.NewConfigurationMissingError("llm.api_key"), http.StatusPreconditionFailed, "CONFIGURATION_MISSING"},
		{"malformed", domain.NewMalformedResponseError("bad json", nil), http.StatusBadGateway, "MALFORMED_RESPONSE"},
		{"upstream", domain.NewUpstreamUnavailableError(errors.New("timeout")), http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"},
		{"wrapped", fmt.Errorf("submit: %w", domain.NewNoTopicSelectedError()), http.StatusConflict, "NO_TOPIC_SELECTED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"fiber", fiber.NewError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newErrorApp(tt.err).Test(httptest.NewRequest("GET", "/fail", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, body.Status)
		})
	}
}

func TestErrorHandler_DetailsFromContext(t *testing.T) {
	resp, err := newErrorApp(domain.NewTopicNotFoundError("Tang")).Test(httptest.NewRequest("GET", "/fail", nil), -1)
	require.NoError(t, err)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Tang", body.Details["topic"])
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	verrs := domain.ValidationErrors{
		domain.NewMissingFieldError("topic"),
		domain.NewOutOfRangeError("index", 99, 0, 49),
	}
	resp, err := newErrorApp(verrs).Test(httptest.NewRequest("GET", "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "topic", body.Errors[0].Field)
}

func TestRequestLogger_CountsByRoute(t *testing.T) {
	m := metrics.New()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger(m))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return domain.NewNotFoundError("no item")
		}
		return c.SendString("ok")
	})

	for _, id := range []string{"1", "2", "missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "404")))
}
