package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

// ReadingLister is the part of energydata.Repository the readings endpoint needs
type ReadingLister interface {
	ReadingsForDate(ctx context.Context, date time.Time, loc *time.Location, indicatorIDs []int) ([]contracts.RawReading, error)
}

// EnergyDataHandler serves raw readings from the local store
type EnergyDataHandler struct {
	store    ReadingLister
	catalog  *contracts.Catalog
	location *time.Location
	logger   *logger.Logger
}

// NewEnergyDataHandler creates a new energy data handler
func NewEnergyDataHandler(store ReadingLister, catalog *contracts.Catalog, loc *time.Location, log *logger.Logger) *EnergyDataHandler {
	return &EnergyDataHandler{
		store:    store,
		catalog:  catalog,
		location: loc,
		logger:   log.WithField("module", "energy_data_handler"),
	}
}

// ReadingsResponse is the body of GET /api/energy-data
type ReadingsResponse struct {
	Date       string                 `json:"date"`
	Indicators []int                  `json:"indicators"`
	Count      int                    `json:"count"`
	Readings   []contracts.RawReading `json:"readings"`
}

// ListReadings returns one day of stored readings
// GET /api/energy-data?date=YYYY-MM-DD&indicators=1161,1159,1293
func (h *EnergyDataHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := contracts.ParseDate(q.Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids := h.catalog.IndicatorIDs()
	if raw := q.Get("indicators"); raw != "" {
		ids, err = parseIndicators(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	readings, err := h.store.ReadingsForDate(r.Context(), date, h.location, ids)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list readings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve energy data")
		return
	}
	if readings == nil {
		readings = []contracts.RawReading{}
	}

	respondJSON(w, http.StatusOK, ReadingsResponse{
		Date:       date.Format(contracts.DateLayout),
		Indicators: ids,
		Count:      len(readings),
		Readings:   readings,
	})
}

func parseIndicators(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id <= 0 {
			return nil, &indicatorError{value: p}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type indicatorError struct {
	value string
}

func (e *indicatorError) Error() string {
	return "invalid indicator id: " + strconv.Quote(strings.TrimSpace(e.value))
}
