package contracts

// Insights are the chart-facing highlights of a day, derived from a stored summary
type Insights struct {
	PeakVREPct  float64 `json:"peak_vre_pct"`
	PeakVREHour string  `json:"peak_vre_hour"`
	AvgVREPct   float64 `json:"avg_vre_pct"`
	PeakDemand  float64 `json:"peak_demand"`
	PeakVRE     float64 `json:"peak_vre"`
	MinVREPct   float64 `json:"min_vre_pct"`
	MinVREHour  string  `json:"min_vre_hour"`

	// Flexibility
	OptimalShiftAmount     float64 `json:"optimal_shift_amount"`
	ShiftFromHour          string  `json:"shift_from_hour"`
	ShiftToHour            string  `json:"shift_to_hour"`
	ShiftFromVREPct        float64 `json:"shift_from_vre_pct"`
	ShiftToVREPct          float64 `json:"shift_to_vre_pct"`
	HighVREWindowHours     int     `json:"high_vre_window_hours"`
	FlexibilityWindowStart *string `json:"flexibility_window_start"`
	FlexibilityWindowEnd   *string `json:"flexibility_window_end"`

	// Ramp
	MaxRampGW             float64 `json:"max_ramp_gw"`
	RampWindow            string  `json:"ramp_window"` // HH:MM-HH:MM
	LoadBalancingGapHours int     `json:"load_balancing_gap_hours"`
}

// DailyReport is the chart payload for one date. Built on read, never persisted.
type DailyReport struct {
	Date           string            `json:"date"`
	DataSource     DataSource        `json:"data_source"`
	HourlyData     []HourlyRecord    `json:"hourly_data"`
	DailyInsights  Insights          `json:"daily_insights"`
	DailyTotals    DailyTotals       `json:"daily_totals"`
	DataQuality    QualityAssessment `json:"data_quality"`
	QualityMessage string            `json:"quality_message"`
	WasCached      bool              `json:"was_cached"`
}
