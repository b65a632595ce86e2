package database

import (
	"context"
	"fmt"
)

// schema is applied in order by Migrate; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS energy_indicators (
		indicator_id INTEGER PRIMARY KEY,
		name         TEXT NOT NULL,
		short_name   TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT 'generation',
		technology   TEXT NOT NULL DEFAULT '',
		renewable    BOOLEAN NOT NULL DEFAULT FALSE,
		variable     BOOLEAN NOT NULL DEFAULT FALSE,
		unit         TEXT NOT NULL DEFAULT 'MW'
	)`,
	`CREATE TABLE IF NOT EXISTS energy_data (
		indicator_id INTEGER NOT NULL REFERENCES energy_indicators(indicator_id) ON DELETE CASCADE,
		ts           TIMESTAMPTZ NOT NULL,
		value        DOUBLE PRECISION NOT NULL,
		resolution   TEXT NOT NULL DEFAULT 'hour',
		geo_id       INTEGER NOT NULL DEFAULT 8741,
		geo_name     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (indicator_id, ts, resolution, geo_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_energy_data_ts ON energy_data (ts)`,
	`CREATE TABLE IF NOT EXISTS daily_energy_summaries (
		date                     DATE PRIMARY KEY,
		data_source              TEXT NOT NULL,
		hourly_data              JSONB NOT NULL,
		peak_vre_penetration     DOUBLE PRECISION NOT NULL,
		peak_vre_hour            TEXT NOT NULL,
		sustained_high_vre_hours INTEGER NOT NULL,
		max_netload_ramp_gw      DOUBLE PRECISION NOT NULL,
		ramp_window_start        TEXT NOT NULL,
		ramp_window_end          TEXT NOT NULL,
		peak_demand_hour         TEXT NOT NULL,
		load_balancing_gap_hours INTEGER NOT NULL,
		shiftable_energy_gwh     DOUBLE PRECISION NOT NULL,
		flexibility_window_start TEXT,
		flexibility_window_end   TEXT,
		total_hours              INTEGER NOT NULL,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables used by the local store and the summary cache
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
