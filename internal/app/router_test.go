package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/proposal-wizard/internal/observability"
	"github.com/odyssey-erp/proposal-wizard/internal/platform/httpx"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
	"github.com/odyssey-erp/proposal-wizard/report"
	_ "github.com/odyssey-erp/proposal-wizard/testing"
)

type stubGenerator struct {
	err error
}

func (s stubGenerator) Generate(context.Context, proposal.RenderDocument) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.7 stub"), nil
}

func newTestRouter(t *testing.T, cfg *Config, gen report.Generator) http.Handler {
	t.Helper()
	RefreshTestMode()
	require.True(t, InTestMode())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	return NewRouter(RouterParams{
		Logger: logger,
		Config: cfg,
		ReportHandler: report.NewHandler(report.HandlerConfig{
			Generator: gen,
			Logger:    logger,
			Metrics:   metrics,
		}),
		Metrics: metrics,
	})
}

func defaultTestConfig() *Config {
	return &Config{AppEnv: "test", RateLimitPerMinute: 60}
}

const validDocument = `{"offerNumber":"VSP/2024/001","clientName":"Acme Pumps","currency":"INR"}`

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t, defaultTestConfig(), stubGenerator{})

	for _, path := range []string{"/health", "/healthz"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rr.Code, path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "OK", body["status"])
		assert.Equal(t, "Proposal PDF Generator", body["service"])
		assert.NotEmpty(t, body["timestamp"])
	}
}

func TestRouterSetsSecurityHeaders(t *testing.T) {
	router := newTestRouter(t, defaultTestConfig(), stubGenerator{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestRouterUnknownRoutes(t *testing.T) {
	router := newTestRouter(t, defaultTestConfig(), stubGenerator{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body.Error)
	assert.Equal(t, "Route GET /nope not found", body.Message)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, report.GeneratePath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterGenerate(t *testing.T) {
	router := newTestRouter(t, defaultTestConfig(), stubGenerator{})

	req := httptest.NewRequest(http.MethodPost, report.GeneratePath, strings.NewReader(validDocument))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Proposal_VSP_2024_001.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7 stub", rr.Body.String())
}

func TestRouterGenerateFailure(t *testing.T) {
	router := newTestRouter(t, defaultTestConfig(), stubGenerator{err: errors.New("gotenberg down")})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, report.GeneratePath, strings.NewReader(validDocument)))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "PDF Generation Failed", body.Error)
	assert.Contains(t, body.Message, "gotenberg down")
}

func TestRouterRateLimitsGenerate(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.RateLimitPerMinute = 1
	router := newTestRouter(t, cfg, stubGenerator{})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, report.GeneratePath, strings.NewReader(validDocument))
		req.RemoteAddr = "203.0.113.7:40000"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, send().Code)
	limited := send()
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, "Too Many Requests", body.Error)

	// health checks are not throttled
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t, defaultTestConfig(), stubGenerator{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, report.GeneratePath, strings.NewReader(validDocument)))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `proposal_pdf_renders_total{result="success"} 1`)
	assert.Contains(t, rr.Body.String(), `route="/api/v1/generate"`)
}
