package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/summary"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

type fakeSummaryService struct {
	reportDate  string
	reportErr   error
	getErr      error
	backfillErr error
	backfillArg [2]time.Time
}

func (f *fakeSummaryService) Report(_ context.Context, date string) (*contracts.DailyReport, error) {
	f.reportDate = date
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return &contracts.DailyReport{Date: date, DataSource: contracts.SourceLocalStore, WasCached: true}, nil
}

func (f *fakeSummaryService) Get(_ context.Context, date string) (*contracts.DailySummary, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &contracts.DailySummary{Date: date, DataSource: contracts.SourceRemoteAPI}, nil
}

func (f *fakeSummaryService) Backfill(_ context.Context, from, to time.Time) (*summary.BackfillResult, error) {
	f.backfillArg = [2]time.Time{from, to}
	if f.backfillErr != nil {
		return nil, f.backfillErr
	}
	return &summary.BackfillResult{Created: 2, Skipped: 1, Failures: []summary.BackfillFailure{}}, nil
}

func serve(h http.HandlerFunc, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSummaryHandler_ChartData(t *testing.T) {
	svc := &fakeSummaryService{}
	h := NewSummaryHandler(svc, logger.Nop())

	rec := serve(h.ChartData, http.MethodGet, "/api/energy-data/chart-data?date=2024-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report contracts.DailyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "2024-06-01", report.Date)
	assert.True(t, report.WasCached)
}

func TestSummaryHandler_ChartDataDefaultDate(t *testing.T) {
	svc := &fakeSummaryService{}
	h := NewSummaryHandler(svc, logger.Nop())

	rec := serve(h.ChartData, http.MethodGet, "/api/energy-data/chart-data", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultChartDate, svc.reportDate)
}

func TestSummaryHandler_ChartDataErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid date", fmt.Errorf("%w: \"x\"", contracts.ErrInvalidDate), http.StatusBadRequest, "invalid date: \"x\""},
		{"no data", fmt.Errorf("%w for 2030-01-01", contracts.ErrNoData), http.StatusNotFound, "No data available for this date"},
		{"source down", fmt.Errorf("fetch: %w", contracts.ErrSourceUnavailable), http.StatusBadGateway, "Energy data source unavailable"},
		{"unexpected", fmt.Errorf("persist: disk full"), http.StatusInternalServerError, "Failed to fetch energy data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSummaryHandler(&fakeSummaryService{reportErr: tt.err}, logger.Nop())

			rec := serve(h.ChartData, http.MethodGet, "/api/energy-data/chart-data?date=2030-01-01", "")
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestSummaryHandler_GetSummary(t *testing.T) {
	h := NewSummaryHandler(&fakeSummaryService{}, logger.Nop())

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/summaries/2025-01-02", nil), map[string]string{"date": "2025-01-02"})
	rec := httptest.NewRecorder()
	h.GetSummary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var s contracts.DailySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "2025-01-02", s.Date)
}

func TestSummaryHandler_GetSummaryNotFound(t *testing.T) {
	h := NewSummaryHandler(&fakeSummaryService{getErr: contracts.ErrSummaryNotFound}, logger.Nop())

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/summaries/2025-01-02", nil), map[string]string{"date": "2025-01-02"})
	rec := httptest.NewRecorder()
	h.GetSummary(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryHandler_Backfill(t *testing.T) {
	svc := &fakeSummaryService{}
	h := NewSummaryHandler(svc, logger.Nop())

	rec := serve(h.Backfill, http.MethodPost, "/api/summaries/backfill", `{"start_date":"2024-03-01","end_date":"2024-03-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result summary.BackfillResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.backfillArg[0])
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), svc.backfillArg[1])
}

func TestSummaryHandler_BackfillRejectsBadInput(t *testing.T) {
	h := NewSummaryHandler(&fakeSummaryService{}, logger.Nop())

	for _, body := range []string{
		`not json`,
		`{"start_date":"2024-03-01"}`,
		`{"start_date":"2024/03/01","end_date":"2024-03-03"}`,
		`{"start_date":"2024-01-01","end_date":"2024-12-31"}`,
	} {
		rec := serve(h.Backfill, http.MethodPost, "/api/summaries/backfill", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
