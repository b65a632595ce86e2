package calculator

import (
	"fmt"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/normalizer"
)

// Config holds the metric thresholds
type Config struct {
	SustainedHighVREPct    float64 // hours strictly above this vre_pct count as sustained high VRE
	ShiftableCaptureFactor float64 // share of instantaneous surplus counted as shiftable
}

// DefaultConfig returns the thresholds used for the Spanish grid
func DefaultConfig() Config {
	return Config{
		SustainedHighVREPct:    70,
		ShiftableCaptureFactor: 0.15,
	}
}

// Calculate derives the daily metrics from a normalized, ascending hourly series.
// Extremes are taken from the rounded values held in the records, first occurrence wins.
// ⭐ SSOT: every persisted metric is computed here
func Calculate(series []contracts.HourlyRecord, cfg Config) (contracts.Metrics, error) {
	if len(series) == 0 {
		return contracts.Metrics{}, contracts.ErrEmptySeries
	}

	var m contracts.Metrics

	// 1. Visibility
	peakVRE := argmax(series, func(r contracts.HourlyRecord) float64 { return r.VREPct })
	m.PeakVREPenetration = normalizer.Round(series[peakVRE].VREPct, normalizer.PercentPlaces)
	m.PeakVREHour = series[peakVRE].Hour
	for _, r := range series {
		if r.VREPct > cfg.SustainedHighVREPct {
			m.SustainedHighVREHours++
		}
	}

	// 2. Net load ramp
	m.MaxNetloadRampGW, m.RampWindowStart, m.RampWindowEnd = maxNetloadRamp(series)

	// 3. Flexibility
	peakDemand := argmax(series, func(r contracts.HourlyRecord) float64 { return r.Demand })
	m.PeakDemandHour = series[peakDemand].Hour

	gap, err := balancingGap(m.PeakVREHour, m.PeakDemandHour)
	if err != nil {
		return contracts.Metrics{}, err
	}
	m.LoadBalancingGapHours = gap

	high := HighVREHours(series)
	surplus := 0.0
	for _, r := range high {
		if excess := r.VRETotal - r.Demand; excess > 0 {
			surplus += excess * cfg.ShiftableCaptureFactor
		}
	}
	m.ShiftableEnergyGWh = normalizer.Round(surplus, normalizer.AbsolutePlaces)

	if len(high) > 0 {
		start, end := high[0].Hour, high[len(high)-1].Hour
		m.FlexibilityWindowStart = &start
		m.FlexibilityWindowEnd = &end
	}

	return m, nil
}

// HighVREHours returns the hours whose vre_pct is strictly above the daily mean, in order
func HighVREHours(series []contracts.HourlyRecord) []contracts.HourlyRecord {
	if len(series) == 0 {
		return nil
	}

	mean := MeanVREPct(series)
	var high []contracts.HourlyRecord
	for _, r := range series {
		if r.VREPct > mean {
			high = append(high, r)
		}
	}
	return high
}

// MeanVREPct is the arithmetic mean of vre_pct, 0 for an empty series
func MeanVREPct(series []contracts.HourlyRecord) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range series {
		sum += r.VREPct
	}
	return sum / float64(len(series))
}

// NetLoad is demand minus VRE generation, negative on surplus
func NetLoad(r contracts.HourlyRecord) float64 {
	return r.Demand - r.VRETotal
}

// maxNetloadRamp finds the largest net load change between adjacent hours.
// A single hour has no pair: ramp 0 with both bounds on that hour.
func maxNetloadRamp(series []contracts.HourlyRecord) (float64, string, string) {
	if len(series) == 1 {
		return 0, series[0].Hour, series[0].Hour
	}

	maxRamp := 0.0
	startIdx := 0
	for i := 0; i+1 < len(series); i++ {
		ramp := normalizer.Round(abs(NetLoad(series[i+1])-NetLoad(series[i])), normalizer.AbsolutePlaces)
		if ramp > maxRamp {
			maxRamp = ramp
			startIdx = i
		}
	}

	return maxRamp, series[startIdx].Hour, series[startIdx+1].Hour
}

// balancingGap is the hours forward from the VRE peak to the demand peak, wrapping at midnight
func balancingGap(vreHour, demandHour string) (int, error) {
	v, err := contracts.HourlyRecord{Hour: vreHour}.HourOfDay()
	if err != nil {
		return 0, fmt.Errorf("peak vre hour: %w", err)
	}
	d, err := contracts.HourlyRecord{Hour: demandHour}.HourOfDay()
	if err != nil {
		return 0, fmt.Errorf("peak demand hour: %w", err)
	}
	return ((d-v)%24 + 24) % 24, nil
}

// argmax returns the index of the first maximal value
func argmax(series []contracts.HourlyRecord, value func(contracts.HourlyRecord) float64) int {
	best := 0
	for i := 1; i < len(series); i++ {
		if value(series[i]) > value(series[best]) {
			best = i
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
