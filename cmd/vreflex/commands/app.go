package commands

import (
	"fmt"
	"time"

	"github.com/wonny/vreflex/backend/internal/calculator"
	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/energydata"
	"github.com/wonny/vreflex/backend/internal/external/esios"
	"github.com/wonny/vreflex/backend/internal/normalizer"
	"github.com/wonny/vreflex/backend/internal/quality"
	"github.com/wonny/vreflex/backend/internal/summary"
	"github.com/wonny/vreflex/backend/pkg/config"
	"github.com/wonny/vreflex/backend/pkg/database"
	"github.com/wonny/vreflex/backend/pkg/logger"
	"github.com/wonny/vreflex/backend/pkg/metrics"
	"github.com/wonny/vreflex/backend/pkg/redis"
)

// app holds the wired dependency graph shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	rdb     *redis.Client
	loc     *time.Location
	catalog *contracts.Catalog
	metrics *metrics.Recorder

	readings  *energydata.Repository
	esios     *esios.Client
	summaries *summary.Service
}

// newApp loads config and connects to Postgres and Redis
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (no-op when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		rdb:     rdb,
		loc:     cfg.Location(),
		catalog: contracts.NewCatalog(cfg.Energy.DemandIndicator, cfg.Energy.SolarIndicator, cfg.Energy.WindIndicator),
	}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 5. Sources
	a.readings = energydata.NewRepository(db.Pool, cfg.ESIOS.GeoID)
	a.esios = esios.NewClient(esios.NewHTTPClient(cfg, rdb, log), cfg.ESIOS.BaseURL, cfg.ESIOS.GeoID, log)

	router := summary.BoundaryRouter{
		Boundary: summary.DateRange{From: cfg.Energy.LocalStoreFrom, To: cfg.Energy.LocalStoreTo},
		Inside:   energydata.NewLocalSource(a.readings, a.loc, log),
		Outside:  esios.NewRemoteSource(a.esios, a.catalog, a.loc, log),
	}

	// 6. Summary service
	a.summaries = summary.NewService(
		router,
		normalizer.New(a.catalog, a.loc),
		a.catalog,
		summary.NewRepository(db.Pool),
		redis.NewCache(rdb, cfg.Redis.Prefix),
		a.metrics,
		summaryConfig(cfg),
		log,
	)

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.rdb.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}

func summaryConfig(cfg *config.Config) summary.Config {
	c := summary.DefaultConfig()
	c.Calculator = calculator.Config{
		SustainedHighVREPct:    cfg.Calculator.SustainedHighVREPct,
		ShiftableCaptureFactor: cfg.Calculator.ShiftableCaptureFactor,
	}
	c.Quality = quality.Config{
		MinHours:              cfg.Quality.MinHours,
		SparseGenerationRatio: cfg.Quality.SparseGenerationRatio,
		MinDemandGW:           cfg.Quality.MinDemandGW,
		MaxDemandGW:           cfg.Quality.MaxDemandGW,
	}
	return c
}
