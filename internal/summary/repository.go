package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// Repository implements contracts.SummaryRepository on daily_energy_summaries
// ⭐ SSOT: summaries are written here only, and never updated
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new summary repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const summaryColumns = `
	date, data_source, hourly_data,
	peak_vre_penetration, peak_vre_hour, sustained_high_vre_hours,
	max_netload_ramp_gw, ramp_window_start, ramp_window_end,
	peak_demand_hour, load_balancing_gap_hours, shiftable_energy_gwh,
	flexibility_window_start, flexibility_window_end,
	total_hours, created_at
`

// GetByDate returns contracts.ErrSummaryNotFound when no row exists
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (*contracts.DailySummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM daily_energy_summaries WHERE date = $1`

	s, err := scanSummary(r.pool.QueryRow(ctx, query, civil(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary %s: %w", date.Format(contracts.DateLayout), err)
	}
	return s, nil
}

// Create inserts s. The date key decides races: the first writer wins and a
// losing writer gets the stored row back with created=false.
func (r *Repository) Create(ctx context.Context, s *contracts.DailySummary) (*contracts.DailySummary, bool, error) {
	date, err := contracts.ParseDate(s.Date)
	if err != nil {
		return nil, false, err
	}

	payload, err := json.Marshal(s.HourlySeries)
	if err != nil {
		return nil, false, fmt.Errorf("marshal hourly series: %w", err)
	}

	query := `
		INSERT INTO daily_energy_summaries (
			date, data_source, hourly_data,
			peak_vre_penetration, peak_vre_hour, sustained_high_vre_hours,
			max_netload_ramp_gw, ramp_window_start, ramp_window_end,
			peak_demand_hour, load_balancing_gap_hours, shiftable_energy_gwh,
			flexibility_window_start, flexibility_window_end,
			total_hours
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (date) DO NOTHING
		RETURNING created_at
	`

	stored := *s
	err = r.pool.QueryRow(ctx, query,
		date,
		string(s.DataSource),
		payload,
		s.PeakVREPenetration,
		s.PeakVREHour,
		s.SustainedHighVREHours,
		s.MaxNetloadRampGW,
		s.RampWindowStart,
		s.RampWindowEnd,
		s.PeakDemandHour,
		s.LoadBalancingGapHours,
		s.ShiftableEnergyGWh,
		s.FlexibilityWindowStart,
		s.FlexibilityWindowEnd,
		len(s.HourlySeries.HourlyData),
	).Scan(&stored.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := r.GetByDate(ctx, date)
		if getErr != nil {
			return nil, false, fmt.Errorf("re-read summary after conflict: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert summary %s: %w", s.Date, err)
	}

	stored.RefreshTotalHours()
	return &stored, true, nil
}

// Exists reports whether a summary row exists for date
func (r *Repository) Exists(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM daily_energy_summaries WHERE date = $1)`

	if err := r.pool.QueryRow(ctx, query, civil(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check summary %s: %w", date.Format(contracts.DateLayout), err)
	}
	return exists, nil
}

// ListDates returns the summarized dates within [from, to], ascending
func (r *Repository) ListDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT date FROM daily_energy_summaries
		WHERE date BETWEEN $1 AND $2
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, civil(from), civil(to))
	if err != nil {
		return nil, fmt.Errorf("list summary dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan summary date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func scanSummary(row pgx.Row) (*contracts.DailySummary, error) {
	var (
		s       contracts.DailySummary
		date    time.Time
		source  string
		payload []byte
	)

	err := row.Scan(
		&date,
		&source,
		&payload,
		&s.PeakVREPenetration,
		&s.PeakVREHour,
		&s.SustainedHighVREHours,
		&s.MaxNetloadRampGW,
		&s.RampWindowStart,
		&s.RampWindowEnd,
		&s.PeakDemandHour,
		&s.LoadBalancingGapHours,
		&s.ShiftableEnergyGWh,
		&s.FlexibilityWindowStart,
		&s.FlexibilityWindowEnd,
		&s.TotalHours,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, &s.HourlySeries); err != nil {
		return nil, fmt.Errorf("unmarshal hourly series: %w", err)
	}

	s.Date = date.Format(contracts.DateLayout)
	s.DataSource = contracts.DataSource(source)
	s.RefreshTotalHours()
	return &s, nil
}
