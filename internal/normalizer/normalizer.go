package normalizer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// Decimal places of persisted values
const (
	AbsolutePlaces int32 = 2 // GW
	PercentPlaces  int32 = 1 // %
)

const mwPerGW = 1000.0

// Round rounds half away from zero to the given number of decimals
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// NewRecord builds one hourly record from unrounded GW magnitudes.
// Derived fields are computed before rounding.
func NewRecord(hour string, demandGW, solarGW, windGW float64) contracts.HourlyRecord {
	vre := solarGW + windGW

	return contracts.HourlyRecord{
		Hour:     hour,
		Demand:   Round(demandGW, AbsolutePlaces),
		Solar:    Round(solarGW, AbsolutePlaces),
		Wind:     Round(windGW, AbsolutePlaces),
		VRETotal: Round(vre, AbsolutePlaces),
		SolarPct: Round(share(solarGW, demandGW), PercentPlaces),
		WindPct:  Round(share(windGW, demandGW), PercentPlaces),
		VREPct:   Round(share(vre, demandGW), PercentPlaces),
	}
}

// share is part/demand as percent, 0 when demand <= 0
func share(part, demand float64) float64 {
	if demand <= 0 {
		return 0
	}
	return part / demand * 100
}

// HourLabel formats an hour of day as HH:00
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// Normalizer turns raw readings into the canonical hourly series
// ⭐ SSOT: the only place MW readings become GW records
type Normalizer struct {
	catalog *contracts.Catalog
	loc     *time.Location
}

// New creates a Normalizer grouping hours in loc (the grid timezone)
func New(catalog *contracts.Catalog, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{catalog: catalog, loc: loc}
}

type channelAcc struct {
	sum   float64
	count int
}

func (a channelAcc) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

type hourAcc map[contracts.ChannelRole]*channelAcc

type readingKey struct {
	indicatorID int
	unixNano    int64
}

// Normalize groups readings by wall-clock hour, averages sub-hourly values of a
// channel, converts MW to GW and derives the share fields.
// Readings without a demand/solar/wind role are ignored. ErrDuplicateReading is
// returned for a second reading of the same indicator at the same instant, and
// for a second hourly-resolution reading of an indicator in the same hour.
// The only hour holding two hourly readings is the repeated wall-clock hour of a
// DST fall-back: those two distinct absolute hours share one label and are averaged.
func (n *Normalizer) Normalize(readings []contracts.RawReading) ([]contracts.HourlyRecord, error) {
	hours := make(map[int]hourAcc)
	seen := make(map[readingKey]struct{}, len(readings))
	hourly := make(map[readingKey]struct{}, len(readings))

	for _, r := range readings {
		role := n.catalog.RoleOf(r.IndicatorID)
		if role == contracts.RoleNone {
			continue
		}

		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, fmt.Errorf("%w: indicator %d at %s has non-finite value",
				contracts.ErrInvalidSeries, r.IndicatorID, r.Timestamp.Format(time.RFC3339))
		}

		key := readingKey{indicatorID: r.IndicatorID, unixNano: r.Timestamp.UnixNano()}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: indicator %d at %s",
				contracts.ErrDuplicateReading, r.IndicatorID, r.Timestamp.Format(time.RFC3339))
		}
		seen[key] = struct{}{}

		if r.Resolution == contracts.ResolutionHour {
			slot := readingKey{indicatorID: r.IndicatorID, unixNano: r.Timestamp.Truncate(time.Hour).UnixNano()}
			if _, dup := hourly[slot]; dup {
				return nil, fmt.Errorf("%w: indicator %d has two hourly readings in hour %s",
					contracts.ErrDuplicateReading, r.IndicatorID, r.Timestamp.Truncate(time.Hour).Format(time.RFC3339))
			}
			hourly[slot] = struct{}{}
		}

		hour := r.Timestamp.In(n.loc).Hour()
		acc, ok := hours[hour]
		if !ok {
			acc = make(hourAcc, 3)
			hours[hour] = acc
		}
		ch, ok := acc[role]
		if !ok {
			ch = &channelAcc{}
			acc[role] = ch
		}
		ch.sum += r.Value
		ch.count++
	}

	keys := make([]int, 0, len(hours))
	for h := range hours {
		keys = append(keys, h)
	}
	sort.Ints(keys)

	records := make([]contracts.HourlyRecord, 0, len(keys))
	for _, h := range keys {
		acc := hours[h]
		records = append(records, NewRecord(
			HourLabel(h),
			acc.meanOf(contracts.RoleDemand)/mwPerGW,
			acc.meanOf(contracts.RoleSolar)/mwPerGW,
			acc.meanOf(contracts.RoleWind)/mwPerGW,
		))
	}

	return records, nil
}

// meanOf returns the channel mean, 0 for a missing channel
func (a hourAcc) meanOf(role contracts.ChannelRole) float64 {
	ch, ok := a[role]
	if !ok {
		return 0
	}
	return ch.mean()
}
