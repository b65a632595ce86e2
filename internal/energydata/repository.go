package energydata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// Repository is the local record store of indicators and raw readings
// ⭐ SSOT: energy_indicators / energy_data are accessed here only
type Repository struct {
	pool  *pgxpool.Pool
	geoID int
}

// NewRepository creates a repository scoped to one geography (8741 = peninsula)
func NewRepository(pool *pgxpool.Pool, geoID int) *Repository {
	return &Repository{pool: pool, geoID: geoID}
}

// UpsertIndicator stores indicator metadata, replacing an existing row
func (r *Repository) UpsertIndicator(ctx context.Context, meta contracts.IndicatorMetadata) error {
	query := `
		INSERT INTO energy_indicators (
			indicator_id, name, short_name, category, technology, renewable, variable, unit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (indicator_id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			category = EXCLUDED.category,
			technology = EXCLUDED.technology,
			renewable = EXCLUDED.renewable,
			variable = EXCLUDED.variable,
			unit = EXCLUDED.unit
	`

	_, err := r.pool.Exec(ctx, query,
		meta.ID, meta.Name, meta.ShortName, string(meta.Category),
		meta.Technology, meta.Renewable, meta.Variable, meta.Unit,
	)
	if err != nil {
		return fmt.Errorf("upsert indicator %d: %w", meta.ID, err)
	}
	return nil
}

// ListIndicators returns all stored indicators ordered by id
func (r *Repository) ListIndicators(ctx context.Context) ([]contracts.IndicatorMetadata, error) {
	query := `
		SELECT indicator_id, name, short_name, category, technology, renewable, variable, unit
		FROM energy_indicators
		ORDER BY indicator_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list indicators: %w", err)
	}
	defer rows.Close()

	var out []contracts.IndicatorMetadata
	for rows.Next() {
		var (
			m        contracts.IndicatorMetadata
			category string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.ShortName, &category, &m.Technology, &m.Renewable, &m.Variable, &m.Unit); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		m.Category = contracts.IndicatorCategory(category)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveResult counts the rows touched by SaveReadings
type SaveResult struct {
	Created int
	Updated int
}

// SaveReadings upserts readings in one batch. A changed value updates the
// stored row, an identical value is left alone.
func (r *Repository) SaveReadings(ctx context.Context, readings []contracts.RawReading) (SaveResult, error) {
	var result SaveResult
	if len(readings) == 0 {
		return result, nil
	}

	query := `
		INSERT INTO energy_data (indicator_id, ts, value, resolution, geo_id, geo_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (indicator_id, ts, resolution, geo_id) DO UPDATE SET
			value = EXCLUDED.value,
			geo_name = EXCLUDED.geo_name
		WHERE energy_data.value IS DISTINCT FROM EXCLUDED.value
		RETURNING (xmax = 0) AS inserted
	`

	batch := &pgx.Batch{}
	for _, rd := range readings {
		geoID := rd.GeoID
		if geoID == 0 {
			geoID = r.geoID
		}
		batch.Queue(query, rd.IndicatorID, rd.Timestamp, rd.Value, string(rd.Resolution), geoID, rd.GeoName)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range readings {
		var inserted bool
		err := br.QueryRow().Scan(&inserted)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // unchanged
		}
		if err != nil {
			return result, fmt.Errorf("save reading %d of %d: %w", i+1, len(readings), err)
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// ReadingsForDate returns one civil day of readings for the given indicators.
// When an indicator is stored at several resolutions the coarsest one wins,
// so a day never mixes hourly and sub-hourly rows of one channel.
func (r *Repository) ReadingsForDate(ctx context.Context, date time.Time, loc *time.Location, indicatorIDs []int) ([]contracts.RawReading, error) {
	start, end := contracts.DayBounds(date, loc)
	return r.readings(ctx, start, end, indicatorIDs)
}

// ListReadings returns readings in [from, to) for the given indicators
func (r *Repository) ListReadings(ctx context.Context, from, to time.Time, indicatorIDs []int) ([]contracts.RawReading, error) {
	return r.readings(ctx, from, to, indicatorIDs)
}

func (r *Repository) readings(ctx context.Context, from, to time.Time, indicatorIDs []int) ([]contracts.RawReading, error) {
	query := `
		WITH ranked AS (
			SELECT indicator_id, ts, value, resolution, geo_id, geo_name,
				DENSE_RANK() OVER (
					PARTITION BY indicator_id
					ORDER BY CASE resolution
						WHEN 'hour' THEN 0
						WHEN 'fifteen_minutes' THEN 1
						ELSE 2
					END
				) AS preference
			FROM energy_data
			WHERE indicator_id = ANY($1)
				AND geo_id = $2
				AND ts >= $3 AND ts < $4
		)
		SELECT indicator_id, ts, value, resolution, geo_id, geo_name
		FROM ranked
		WHERE preference = 1
		ORDER BY ts ASC, indicator_id ASC
	`

	rows, err := r.pool.Query(ctx, query, indicatorIDs, r.geoID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	readings := make([]contracts.RawReading, 0, 96)
	for rows.Next() {
		var (
			rd         contracts.RawReading
			resolution string
		)
		if err := rows.Scan(&rd.IndicatorID, &rd.Timestamp, &rd.Value, &resolution, &rd.GeoID, &rd.GeoName); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		rd.Resolution = contracts.Resolution(resolution)
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}

// CountReadings returns the number of stored readings per indicator in [from, to)
func (r *Repository) CountReadings(ctx context.Context, from, to time.Time) (map[int]int, error) {
	query := `
		SELECT indicator_id, COUNT(*)
		FROM energy_data
		WHERE geo_id = $1 AND ts >= $2 AND ts < $3
		GROUP BY indicator_id
	`

	rows, err := r.pool.Query(ctx, query, r.geoID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count readings: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
