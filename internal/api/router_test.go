package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vreflex/backend/internal/api/handlers"
	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/summary"
	"github.com/wonny/vreflex/backend/pkg/logger"
	"github.com/wonny/vreflex/backend/pkg/metrics"
)

type stubService struct{}

func (stubService) Report(_ context.Context, date string) (*contracts.DailyReport, error) {
	return &contracts.DailyReport{Date: date}, nil
}

func (stubService) Get(_ context.Context, date string) (*contracts.DailySummary, error) {
	if date == "2030-01-01" {
		return nil, contracts.ErrSummaryNotFound
	}
	return &contracts.DailySummary{Date: date}, nil
}

func (stubService) Backfill(_ context.Context, _, _ time.Time) (*summary.BackfillResult, error) {
	return &summary.BackfillResult{}, nil
}

type stubLister struct{}

func (stubLister) ReadingsForDate(context.Context, time.Time, *time.Location, []int) ([]contracts.RawReading, error) {
	return nil, nil
}

func newTestRouter() http.Handler {
	log := logger.Nop()
	return NewRouter(
		handlers.NewSummaryHandler(stubService{}, log),
		handlers.NewEnergyDataHandler(stubLister{}, contracts.DefaultCatalog(), time.UTC, log),
		metrics.New(),
		nil,
		log,
	)
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/energy-data?date=2024-04-15", "", http.StatusOK},
		{http.MethodGet, "/api/energy-data/chart-data?date=2024-04-15", "", http.StatusOK},
		{http.MethodGet, "/api/summaries/2024-04-15", "", http.StatusOK},
		{http.MethodGet, "/api/summaries/2030-01-01", "", http.StatusNotFound},
		{http.MethodPost, "/api/summaries/backfill", `{"start_date":"2024-01-01","end_date":"2024-01-02"}`, http.StatusOK},
		{http.MethodPost, "/api/energy-data/chart-data", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/energy-data", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/health", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/summaries/2024-01-01", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
