package collector

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/energydata"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

// Fetcher loads readings of one indicator over a time range
type Fetcher interface {
	FetchReadings(ctx context.Context, indicatorID int, start, end time.Time, resolution contracts.Resolution) ([]contracts.RawReading, error)
}

// Store persists indicators and readings
type Store interface {
	UpsertIndicator(ctx context.Context, meta contracts.IndicatorMetadata) error
	SaveReadings(ctx context.Context, readings []contracts.RawReading) (energydata.SaveResult, error)
}

// Collector bulk-loads ESIOS indicators into the local store
// ⭐ SSOT: the local store is filled through this package only
type Collector struct {
	fetcher Fetcher
	store   Store
	logger  *logger.Logger
}

// Config holds loader configuration
type Config struct {
	IndicatorID int
	Resolution  contracts.Resolution
	ChunkDays   int           // days per API request
	Interval    time.Duration // minimum pause between chunk requests
	Location    *time.Location
}

// DefaultConfig loads hourly demand in week-long chunks, two requests per second at most
func DefaultConfig() Config {
	return Config{
		IndicatorID: 1293,
		Resolution:  contracts.ResolutionHour,
		ChunkDays:   7,
		Interval:    500 * time.Millisecond,
		Location:    time.UTC,
	}
}

// NewCollector creates a new Collector instance
func NewCollector(fetcher Fetcher, store Store, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   store,
		logger:  log.WithField("module", "collector"),
	}
}

// ChunkResult is the outcome of one chunk
type ChunkResult struct {
	Start   time.Time
	End     time.Time
	Fetched int
	Created int
	Updated int
	Error   error
}

// LoadResult summarizes a Load run
type LoadResult struct {
	IndicatorID int
	Chunks      []ChunkResult
	Created     int
	Updated     int
	Failed      int
}

// Chunk is an inclusive range of civil dates
type Chunk struct {
	Start time.Time
	End   time.Time
}

// Chunks splits [from, to] into consecutive ranges of at most days days
func Chunks(from, to time.Time, days int) []Chunk {
	if days < 1 {
		days = 1
	}

	var chunks []Chunk
	for start := from; !start.After(to); {
		end := start.AddDate(0, 0, days-1)
		if end.After(to) {
			end = to
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}
	return chunks
}

// Load fetches [from, to] chunk by chunk and upserts the readings.
// A failed chunk is logged and the run continues with the next one.
func (c *Collector) Load(ctx context.Context, from, to time.Time, cfg Config) (*LoadResult, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end before start", contracts.ErrInvalidDate)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	meta := contracts.LookupIndicator(cfg.IndicatorID)
	if err := c.store.UpsertIndicator(ctx, meta); err != nil {
		return nil, fmt.Errorf("register indicator: %w", err)
	}

	chunks := Chunks(from, to, cfg.ChunkDays)
	limiter := rate.NewLimiter(rate.Every(cfg.Interval), 1)
	if cfg.Interval <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	c.logger.WithFields(map[string]interface{}{
		"indicator":  cfg.IndicatorID,
		"name":       meta.Name,
		"from":       from.Format(contracts.DateLayout),
		"to":         to.Format(contracts.DateLayout),
		"chunks":     len(chunks),
		"resolution": string(cfg.Resolution),
	}).Info("Starting indicator load")

	result := &LoadResult{IndicatorID: cfg.IndicatorID}

	for _, ch := range chunks {
		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("load interrupted: %w", err)
		}

		cr := c.loadChunk(ctx, ch, cfg)
		result.Chunks = append(result.Chunks, cr)
		result.Created += cr.Created
		result.Updated += cr.Updated

		log := c.logger.WithFields(map[string]interface{}{
			"start":   ch.Start.Format(contracts.DateLayout),
			"end":     ch.End.Format(contracts.DateLayout),
			"fetched": cr.Fetched,
			"created": cr.Created,
			"updated": cr.Updated,
		})
		if cr.Error != nil {
			result.Failed++
			log.WithError(cr.Error).Warn("Chunk failed")
			continue
		}
		log.Info("Chunk loaded")
	}

	c.logger.WithFields(map[string]interface{}{
		"indicator": cfg.IndicatorID,
		"created":   result.Created,
		"updated":   result.Updated,
		"failed":    result.Failed,
	}).Info("Indicator load completed")

	return result, nil
}

func (c *Collector) loadChunk(ctx context.Context, ch Chunk, cfg Config) ChunkResult {
	cr := ChunkResult{Start: ch.Start, End: ch.End}

	start, _ := contracts.DayBounds(ch.Start, cfg.Location)
	_, end := contracts.DayBounds(ch.End, cfg.Location)

	readings, err := c.fetcher.FetchReadings(ctx, cfg.IndicatorID, start, end.Add(-time.Second), cfg.Resolution)
	if err != nil {
		cr.Error = fmt.Errorf("fetch: %w", err)
		return cr
	}
	cr.Fetched = len(readings)

	for i := range readings {
		readings[i].Resolution = cfg.Resolution
	}

	saved, err := c.store.SaveReadings(ctx, readings)
	if err != nil {
		cr.Error = fmt.Errorf("save: %w", err)
		return cr
	}
	cr.Created, cr.Updated = saved.Created, saved.Updated
	return cr
}
