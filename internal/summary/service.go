package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/vreflex/backend/internal/calculator"
	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/normalizer"
	"github.com/wonny/vreflex/backend/internal/quality"
	"github.com/wonny/vreflex/backend/pkg/logger"
	"github.com/wonny/vreflex/backend/pkg/metrics"
	"github.com/wonny/vreflex/backend/pkg/redis"
)

// Config holds the thresholds used when a summary is computed or reported
type Config struct {
	Calculator calculator.Config
	Quality    quality.Config
	CacheTTL   time.Duration

	// ComputeTimeout bounds one shared computation, independent of any caller
	ComputeTimeout time.Duration
}

// DefaultComputeTimeout applies when Config.ComputeTimeout is zero
const DefaultComputeTimeout = 2 * time.Minute

// DefaultConfig returns the default thresholds with week-long cache entries
func DefaultConfig() Config {
	return Config{
		Calculator:     calculator.DefaultConfig(),
		Quality:        quality.DefaultConfig(),
		CacheTTL:       redis.TTLWeek,
		ComputeTimeout: DefaultComputeTimeout,
	}
}

// Service is the get-or-create orchestrator for daily summaries
// ⭐ SSOT: the only component that creates DailySummary rows
type Service struct {
	router     Router
	normalizer *normalizer.Normalizer
	catalog    *contracts.Catalog
	repo       contracts.SummaryRepository
	cache      *redis.Cache
	metrics    *metrics.Recorder
	config     Config
	logger     *logger.Logger

	flights singleflight.Group
}

// NewService creates a new summary service. cache and rec may be nil.
func NewService(
	router Router,
	norm *normalizer.Normalizer,
	catalog *contracts.Catalog,
	repo contracts.SummaryRepository,
	cache *redis.Cache,
	rec *metrics.Recorder,
	config Config,
	log *logger.Logger,
) *Service {
	return &Service{
		router:     router,
		normalizer: norm,
		catalog:    catalog,
		repo:       repo,
		cache:      cache,
		metrics:    rec,
		config:     config,
		logger:     log.WithField("module", "summary"),
	}
}

type flightResult struct {
	summary *contracts.DailySummary
	created bool
}

// GetOrCreate returns the stored summary for a YYYY-MM-DD date, computing and
// persisting it on first request. created is true only for the caller whose
// computation produced the stored row.
func (s *Service) GetOrCreate(ctx context.Context, date string) (*contracts.DailySummary, bool, error) {
	d, err := contracts.ParseDate(date)
	if err != nil {
		return nil, false, err
	}
	return s.GetOrCreateDate(ctx, d)
}

// GetOrCreateDate is GetOrCreate for an already parsed civil date
func (s *Service) GetOrCreateDate(ctx context.Context, date time.Time) (*contracts.DailySummary, bool, error) {
	date = civil(date)
	key := date.Format(contracts.DateLayout)

	existing, err := s.lookup(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	// Concurrent callers for one date share a single computation. It runs detached
	// from the leader's cancellation so an aborted caller cannot fail the others.
	ran := false
	v, err, _ := s.flights.Do(key, func() (interface{}, error) {
		ran = true
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.computeTimeout())
		defer cancel()
		return s.compute(cctx, date)
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(*flightResult)
	return res.summary, res.created && ran, nil
}

// Get returns a stored summary without computing. Absent dates are ErrSummaryNotFound.
func (s *Service) Get(ctx context.Context, date string) (*contracts.DailySummary, error) {
	d, err := contracts.ParseDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := s.lookup(ctx, d)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, contracts.ErrSummaryNotFound
	}
	return existing, nil
}

// Report builds the chart payload for a date, creating the summary if needed
func (s *Service) Report(ctx context.Context, date string) (*contracts.DailyReport, error) {
	summary, created, err := s.GetOrCreate(ctx, date)
	if err != nil {
		return nil, err
	}

	series := summary.Hourly()
	assessment := quality.Assess(series, s.config.Quality)

	return &contracts.DailyReport{
		Date:           summary.Date,
		DataSource:     summary.DataSource,
		HourlyData:     series,
		DailyInsights:  BuildInsights(summary),
		DailyTotals:    calculator.DailyTotals(series),
		DataQuality:    assessment,
		QualityMessage: quality.Message(assessment),
		WasCached:      !created,
	}, nil
}

// lookup checks the read-through cache, then the repository. A miss is (nil, nil).
func (s *Service) lookup(ctx context.Context, date time.Time) (*contracts.DailySummary, error) {
	key := date.Format(contracts.DateLayout)

	if s.cache != nil {
		var cached contracts.DailySummary
		found, err := s.cache.Get(ctx, redis.SummaryKey(key), &cached)
		if err != nil {
			s.logger.WithError(err).WithField("date", key).Warn("Summary cache read failed")
		} else if found {
			cached.RefreshTotalHours()
			s.metrics.SummaryHit("cache")
			return &cached, nil
		}
	}

	existing, err := s.repo.GetByDate(ctx, date)
	if errors.Is(err, contracts.ErrSummaryNotFound) {
		s.metrics.SummaryHit("miss")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup summary %s: %w", key, err)
	}

	s.metrics.SummaryHit("database")
	s.remember(ctx, existing)
	return existing, nil
}

// compute runs absent -> computing -> persisted for one date.
// Any failure leaves the date absent.
func (s *Service) compute(ctx context.Context, date time.Time) (*flightResult, error) {
	key := date.Format(contracts.DateLayout)
	start := time.Now()

	source := s.router.Route(date)
	if source == nil {
		return nil, fmt.Errorf("no source routed for %s", key)
	}

	log := s.logger.WithFields(map[string]interface{}{
		"date":   key,
		"source": string(source.Name()),
	})
	log.Info("Computing daily summary")

	fetched, err := source.Fetch(ctx, date, s.catalog.IndicatorIDs())
	if err != nil {
		s.metrics.SummaryFailed("source")
		log.WithError(err).Error("Source fetch failed")
		return nil, fmt.Errorf("fetch %s from %s: %w", key, source.Name(), err)
	}
	s.metrics.ReadingsFetched(string(source.Name()), len(fetched.Readings))

	records, err := s.normalizer.Normalize(fetched.Readings)
	if err != nil {
		s.metrics.SummaryFailed("invalid_series")
		return nil, fmt.Errorf("normalize %s: %w", key, err)
	}
	if len(records) == 0 {
		s.metrics.SummaryFailed("no_data")
		log.Warn("No usable data for date")
		return nil, fmt.Errorf("%w for %s", contracts.ErrNoData, key)
	}

	warnings, err := calculator.ValidateSeries(records)
	if err != nil {
		s.metrics.SummaryFailed("invalid_series")
		return nil, fmt.Errorf("validate %s: %w", key, err)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	m, err := calculator.Calculate(records, s.config.Calculator)
	if err != nil {
		s.metrics.SummaryFailed("calculate")
		return nil, fmt.Errorf("calculate %s: %w", key, err)
	}

	summary := &contracts.DailySummary{
		Date:       key,
		DataSource: source.Name(),
		HourlySeries: contracts.HourlySeries{
			Date:       key,
			HourlyData: records,
			Metadata:   fetched.Metadata,
		},
		Metrics: m,
	}
	summary.RefreshTotalHours()

	stored, created, err := s.repo.Create(ctx, summary)
	if err != nil {
		s.metrics.SummaryFailed("persist")
		return nil, fmt.Errorf("persist %s: %w", key, err)
	}
	s.remember(ctx, stored)

	if created {
		s.metrics.SummaryCreated(string(source.Name()), time.Since(start))
		log.WithFields(map[string]interface{}{
			"hours":         stored.TotalHours,
			"peak_vre_pct":  stored.PeakVREPenetration,
			"max_ramp_gw":   stored.MaxNetloadRampGW,
			"shiftable_gwh": stored.ShiftableEnergyGWh,
			"duration_ms":   time.Since(start).Milliseconds(),
		}).Info("Daily summary created")
	} else {
		log.Info("Daily summary already created by another writer")
	}

	return &flightResult{summary: stored, created: created}, nil
}

func (s *Service) computeTimeout() time.Duration {
	if s.config.ComputeTimeout > 0 {
		return s.config.ComputeTimeout
	}
	return DefaultComputeTimeout
}

// remember copies an immutable summary into the read-through cache
func (s *Service) remember(ctx context.Context, summary *contracts.DailySummary) {
	if s.cache == nil || summary == nil {
		return
	}
	if err := s.cache.Set(ctx, redis.SummaryKey(summary.Date), summary, s.config.CacheTTL); err != nil {
		s.logger.WithError(err).WithField("date", summary.Date).Warn("Summary cache write failed")
	}
}
