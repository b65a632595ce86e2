package summary

import (
	"fmt"

	"github.com/wonny/vreflex/backend/internal/calculator"
	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/normalizer"
)

// BuildInsights derives the chart highlights from a stored summary
func BuildInsights(s *contracts.DailySummary) contracts.Insights {
	series := s.Hourly()

	in := contracts.Insights{
		PeakVREPct:  s.PeakVREPenetration,
		PeakVREHour: s.PeakVREHour,

		OptimalShiftAmount:     s.ShiftableEnergyGWh,
		ShiftFromHour:          s.PeakDemandHour,
		ShiftToHour:            s.PeakVREHour,
		ShiftFromVREPct:        vrePctAt(series, s.PeakDemandHour),
		ShiftToVREPct:          s.PeakVREPenetration,
		HighVREWindowHours:     s.SustainedHighVREHours,
		FlexibilityWindowStart: s.FlexibilityWindowStart,
		FlexibilityWindowEnd:   s.FlexibilityWindowEnd,

		MaxRampGW:             s.MaxNetloadRampGW,
		RampWindow:            fmt.Sprintf("%s-%s", s.RampWindowStart, s.RampWindowEnd),
		LoadBalancingGapHours: s.LoadBalancingGapHours,
	}

	if len(series) == 0 {
		return in
	}

	in.AvgVREPct = normalizer.Round(calculator.MeanVREPct(series), normalizer.PercentPlaces)
	in.MinVREPct, in.MinVREHour = series[0].VREPct, series[0].Hour
	for _, r := range series {
		if r.Demand > in.PeakDemand {
			in.PeakDemand = r.Demand
		}
		if r.VRETotal > in.PeakVRE {
			in.PeakVRE = r.VRETotal
		}
		if r.VREPct < in.MinVREPct {
			in.MinVREPct, in.MinVREHour = r.VREPct, r.Hour
		}
	}

	return in
}

func vrePctAt(series []contracts.HourlyRecord, hour string) float64 {
	for _, r := range series {
		if r.Hour == hour {
			return r.VREPct
		}
	}
	return 0
}
