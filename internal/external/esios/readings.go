package esios

import (
	"context"
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// FetchReadings loads one indicator over [start, end] for the configured
// geography. Hourly resolution asks ESIOS to average sub-hourly values.
func (c *Client) FetchReadings(ctx context.Context, indicatorID int, start, end time.Time, resolution contracts.Resolution) ([]contracts.RawReading, error) {
	q := Query{
		IndicatorID: indicatorID,
		Start:       start,
		End:         end,
		GeoTrunc:    GeoTruncElectrical,
		GeoIDs:      []int{c.geoID},
	}
	if resolution == contracts.ResolutionHour {
		q.TimeTrunc = TimeTruncHour
		q.TimeAgg = TimeAggAverage
	}

	ind, err := c.FetchIndicator(ctx, q)
	if err != nil {
		return nil, err
	}
	return toReadings(indicatorID, ind.Values, resolution), nil
}

// toReadings converts ESIOS values. An empty resolution is inferred from spacing.
func toReadings(indicatorID int, values []Value, resolution contracts.Resolution) []contracts.RawReading {
	if resolution == "" {
		resolution = inferResolution(values)
	}

	readings := make([]contracts.RawReading, 0, len(values))
	for _, v := range values {
		ts := v.Datetime
		if ts.IsZero() {
			ts = v.DatetimeUTC
		}
		readings = append(readings, contracts.RawReading{
			IndicatorID: indicatorID,
			Timestamp:   ts,
			Value:       v.Value,
			Resolution:  resolution,
			GeoID:       v.GeoID,
			GeoName:     v.GeoName,
		})
	}
	return readings
}

// inferResolution picks the resolution from the smallest gap between points
func inferResolution(values []Value) contracts.Resolution {
	minGap := time.Duration(0)
	for i := 1; i < len(values); i++ {
		gap := values[i].Datetime.Sub(values[i-1].Datetime)
		if gap > 0 && (minGap == 0 || gap < minGap) {
			minGap = gap
		}
	}

	switch {
	case minGap == 0 || minGap >= time.Hour:
		return contracts.ResolutionHour
	case minGap >= 15*time.Minute:
		return contracts.ResolutionFifteenMinutes
	default:
		return contracts.ResolutionFiveMinutes
	}
}
