package contracts

import (
	"fmt"
	"time"
)

// ChannelRole classifies a source time series by what it measures
type ChannelRole string

const (
	RoleNone   ChannelRole = ""
	RoleDemand ChannelRole = "demand"
	RoleSolar  ChannelRole = "solar"
	RoleWind   ChannelRole = "wind"
)

// Resolution is the native sampling interval of a reading
type Resolution string

const (
	ResolutionFiveMinutes    Resolution = "five_minutes"
	ResolutionFifteenMinutes Resolution = "fifteen_minutes"
	ResolutionHour           Resolution = "hour"
)

// RawReading is one timestamped value of one indicator, in its native unit (MW)
type RawReading struct {
	IndicatorID int        `json:"indicator_id"`
	Timestamp   time.Time  `json:"timestamp"`
	Value       float64    `json:"value"`
	Resolution  Resolution `json:"resolution"`
	GeoID       int        `json:"geo_id,omitempty"`
	GeoName     string     `json:"geo_name,omitempty"`
}

// HourlyRecord is one normalized hour of a day. Magnitudes are GW, shares are percent of demand.
type HourlyRecord struct {
	Hour     string  `json:"hour"` // HH:MM
	Demand   float64 `json:"demand"`
	Solar    float64 `json:"solar"`
	Wind     float64 `json:"wind"`
	VRETotal float64 `json:"vre_total"`
	SolarPct float64 `json:"solar_pct"`
	WindPct  float64 `json:"wind_pct"`
	VREPct   float64 `json:"vre_pct"`
}

// HourOfDay parses the HH part of the hour label
func (r HourlyRecord) HourOfDay() (int, error) {
	t, err := time.Parse(HourLayout, r.Hour)
	if err != nil {
		return 0, fmt.Errorf("%w: hour label %q", ErrInvalidSeries, r.Hour)
	}
	return t.Hour(), nil
}

// HourLayout is the canonical hour label format
const HourLayout = "15:04"

// DateLayout is the canonical calendar date format
const DateLayout = "2006-01-02"

// DataSource records which collaborator produced a summary's hourly series
type DataSource string

const (
	SourceLocalStore DataSource = "database"
	SourceRemoteAPI  DataSource = "esios"
)

// HourlySeries is the verbatim payload stored with a summary
type HourlySeries struct {
	Date       string                 `json:"date"`
	HourlyData []HourlyRecord         `json:"hourly_data"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Metrics is the fixed indicator set derived from one day
type Metrics struct {
	// Visibility
	PeakVREPenetration    float64 `json:"peak_vre_penetration"`
	PeakVREHour           string  `json:"peak_vre_hour"`
	SustainedHighVREHours int     `json:"sustained_high_vre_hours"`

	// Analytics
	MaxNetloadRampGW float64 `json:"max_netload_ramp_gw"`
	RampWindowStart  string  `json:"ramp_window_start"`
	RampWindowEnd    string  `json:"ramp_window_end"`

	// Flexibility
	PeakDemandHour         string  `json:"peak_demand_hour"`
	LoadBalancingGapHours  int     `json:"load_balancing_gap_hours"`
	ShiftableEnergyGWh     float64 `json:"shiftable_energy_gwh"`
	FlexibilityWindowStart *string `json:"flexibility_window_start"`
	FlexibilityWindowEnd   *string `json:"flexibility_window_end"`
}

// DailySummary is the memoized result for one calendar date. Immutable once created.
type DailySummary struct {
	Date         string       `json:"date"`
	DataSource   DataSource   `json:"data_source"`
	HourlySeries HourlySeries `json:"hourly_series"`
	Metrics
	TotalHours int       `json:"total_hours"`
	CreatedAt  time.Time `json:"created_at"`
}

// Hourly returns the stored hourly records
func (s *DailySummary) Hourly() []HourlyRecord {
	return s.HourlySeries.HourlyData
}

// RefreshTotalHours recomputes the cached record count
func (s *DailySummary) RefreshTotalHours() {
	s.TotalHours = len(s.HourlySeries.HourlyData)
}

// DailyTotals sums each channel over the day (GWh for hourly records)
type DailyTotals struct {
	DailySolarGWh  float64 `json:"daily_solar_gwh"`
	DailyWindGWh   float64 `json:"daily_wind_gwh"`
	DailyDemandGWh float64 `json:"daily_demand_gwh"`
	DailyVREGWh    float64 `json:"daily_vre_gwh"`
}

// DayBounds returns [start, end) of the civil date in loc
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses a YYYY-MM-DD string into a UTC civil date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}
