package calculator

import (
	"fmt"
	"strings"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/normalizer"
)

// MinCompleteHours is the record count below which a day is reported as incomplete
const MinCompleteHours = 20

// DailyTotals sums each channel over the day. With hourly records GW sums are GWh.
func DailyTotals(series []contracts.HourlyRecord) contracts.DailyTotals {
	var t contracts.DailyTotals
	for _, r := range series {
		t.DailySolarGWh += r.Solar
		t.DailyWindGWh += r.Wind
		t.DailyDemandGWh += r.Demand
		t.DailyVREGWh += r.VRETotal
	}

	return contracts.DailyTotals{
		DailySolarGWh:  normalizer.Round(t.DailySolarGWh, normalizer.AbsolutePlaces),
		DailyWindGWh:   normalizer.Round(t.DailyWindGWh, normalizer.AbsolutePlaces),
		DailyDemandGWh: normalizer.Round(t.DailyDemandGWh, normalizer.AbsolutePlaces),
		DailyVREGWh:    normalizer.Round(t.DailyVREGWh, normalizer.AbsolutePlaces),
	}
}

// ValidateSeries checks the structure of a series before it is persisted.
// Malformed, duplicate or unordered hour labels are ErrInvalidSeries.
// Suspicious but usable values come back as warnings.
func ValidateSeries(series []contracts.HourlyRecord) ([]string, error) {
	var warnings []string
	prev := -1

	for i, r := range series {
		if strings.TrimSpace(r.Hour) == "" {
			return nil, fmt.Errorf("%w: missing hour in record %d", contracts.ErrInvalidSeries, i)
		}
		h, err := r.HourOfDay()
		if err != nil {
			return nil, err
		}
		if h <= prev {
			return nil, fmt.Errorf("%w: hour %s is duplicate or out of order", contracts.ErrInvalidSeries, r.Hour)
		}
		prev = h

		if r.Demand < 0 {
			warnings = append(warnings, fmt.Sprintf("negative demand at %s: %.2f", r.Hour, r.Demand))
		}
		if r.Solar < 0 || r.Wind < 0 {
			warnings = append(warnings, fmt.Sprintf("negative generation at %s", r.Hour))
		}
	}

	if len(series) < MinCompleteHours {
		warnings = append(warnings, fmt.Sprintf("incomplete day data: only %d hours", len(series)))
	}

	return warnings, nil
}
