package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthOK(_ context.Context) error { return nil }

func healthErr(msg string) func(context.Context) error {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestHandleStartup(t *testing.T) {
	srv := newTestServer(t, &mockQRService{},
		withHealthChecks(
			HealthCheck{Name: "postgres", Check: healthOK},
			HealthCheck{Name: "redis", Check: healthOK},
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/health/startup", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleStartup(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_PostgresDown(t *testing.T) {
	srv := newTestServer(t, &mockQRService{},
		withHealthChecks(
			HealthCheck{Name: "postgres", Check: healthErr("database unreachable")},
			HealthCheck{Name: "redis", Check: healthOK},
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"failed_check":"postgres"`)
	assert.Contains(t, rec.Body.String(), `"error":"database unreachable"`)
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t, &mockQRService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleLiveness(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"uptime"`)
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t, &mockQRService{})

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleVersion(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"version"`)
	assert.Contains(t, body, `"commit"`)
	assert.Contains(t, body, `"build_time"`)
	assert.Contains(t, body, `"go_version"`)
}
