package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/summary"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

// DefaultChartDate is served when chart-data is requested without a date
const DefaultChartDate = "2024-04-15"

// MaxBackfillDays bounds a synchronous backfill request
const MaxBackfillDays = 31

// SummaryService is what the summary endpoints need from summary.Service
type SummaryService interface {
	Report(ctx context.Context, date string) (*contracts.DailyReport, error)
	Get(ctx context.Context, date string) (*contracts.DailySummary, error)
	Backfill(ctx context.Context, from, to time.Time) (*summary.BackfillResult, error)
}

// SummaryHandler serves daily summaries and the chart payload
// ⭐ SSOT: summary HTTP endpoints live here only
type SummaryHandler struct {
	service SummaryService
	logger  *logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service SummaryService, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		service: service,
		logger:  log.WithField("module", "summary_handler"),
	}
}

// ChartData returns the daily report, creating the summary on first request
// GET /api/energy-data/chart-data?date=YYYY-MM-DD
func (h *SummaryHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = DefaultChartDate
	}

	report, err := h.service.Report(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).WithField("date", date).Error("Chart data failed")
		respondError(w, statusFor(err), chartErrorMessage(err))
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetSummary returns a persisted summary without computing it
// GET /api/summaries/{date}
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	s, err := h.service.Get(r.Context(), date)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("date", date).Error("Failed to get summary")
			respondError(w, status, "Failed to retrieve summary")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, s)
}

// BackfillRequest is the body of POST /api/summaries/backfill
type BackfillRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Backfill creates every missing summary in a bounded date range
// POST /api/summaries/backfill
func (h *SummaryHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, err := contracts.ParseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := contracts.ParseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxBackfillDays {
		respondError(w, http.StatusBadRequest, "Backfill range exceeds 31 days, use the CLI for larger ranges")
		return
	}

	result, err := h.service.Backfill(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Backfill failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func chartErrorMessage(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusNotFound:
		return "No data available for this date"
	case http.StatusBadGateway:
		return "Energy data source unavailable"
	default:
		return "Failed to fetch energy data"
	}
}
