package energydata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

// ReadingStore is the part of Repository the local source needs
type ReadingStore interface {
	ReadingsForDate(ctx context.Context, date time.Time, loc *time.Location, indicatorIDs []int) ([]contracts.RawReading, error)
}

// LocalSource serves readings from the local record store
type LocalSource struct {
	store  ReadingStore
	loc    *time.Location
	logger *logger.Logger
}

// NewLocalSource creates a ReadingSource over the local store
func NewLocalSource(store ReadingStore, loc *time.Location, log *logger.Logger) *LocalSource {
	return &LocalSource{
		store:  store,
		loc:    loc,
		logger: log.WithField("module", "local_source"),
	}
}

// Name implements contracts.ReadingSource
func (s *LocalSource) Name() contracts.DataSource {
	return contracts.SourceLocalStore
}

// Fetch implements contracts.ReadingSource
func (s *LocalSource) Fetch(ctx context.Context, date time.Time, indicatorIDs []int) (*contracts.FetchResult, error) {
	readings, err := s.store.ReadingsForDate(ctx, date, s.loc, indicatorIDs)
	if err != nil {
		return nil, fmt.Errorf("local store readings: %w", err)
	}

	resolutions := make(map[string]string)
	for _, r := range readings {
		resolutions[strconv.Itoa(r.IndicatorID)] = string(r.Resolution)
	}

	s.logger.WithFields(map[string]interface{}{
		"date":     date.Format(contracts.DateLayout),
		"readings": len(readings),
	}).Debug("Loaded readings from local store")

	return &contracts.FetchResult{
		Readings: readings,
		Metadata: map[string]interface{}{
			"source":      string(contracts.SourceLocalStore),
			"readings":    len(readings),
			"resolutions": resolutions,
			"timezone":    s.loc.String(),
		},
	}, nil
}
