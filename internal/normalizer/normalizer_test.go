package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

const (
	demandID = 1293
	solarID  = 1161
	windID   = 1159
	priceID  = 600
)

func madrid(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return loc
}

func reading(id int, ts time.Time, mw float64) contracts.RawReading {
	return contracts.RawReading{IndicatorID: id, Timestamp: ts, Value: mw, Resolution: contracts.ResolutionHour}
}

func TestNewRecord(t *testing.T) {
	tests := []struct {
		name string
		hour string
		d    float64
		s    float64
		w    float64
		want contracts.HourlyRecord
	}{
		{
			name: "morning",
			hour: "08:00", d: 20, s: 0, w: 2,
			want: contracts.HourlyRecord{Hour: "08:00", Demand: 20, Solar: 0, Wind: 2, VRETotal: 2, SolarPct: 0, WindPct: 10, VREPct: 10},
		},
		{
			name: "midday rounds percent to one decimal",
			hour: "12:00", d: 18, s: 10, w: 2,
			want: contracts.HourlyRecord{Hour: "12:00", Demand: 18, Solar: 10, Wind: 2, VRETotal: 12, SolarPct: 55.6, WindPct: 11.1, VREPct: 66.7},
		},
		{
			name: "zero demand yields zero shares",
			hour: "03:00", d: 0, s: 1.5, w: 2,
			want: contracts.HourlyRecord{Hour: "03:00", Demand: 0, Solar: 1.5, Wind: 2, VRETotal: 3.5},
		},
		{
			name: "derived values use unrounded inputs",
			hour: "10:00", d: 20, s: 1.004, w: 1.004,
			want: contracts.HourlyRecord{Hour: "10:00", Demand: 20, Solar: 1, Wind: 1, VRETotal: 2.01, SolarPct: 5, WindPct: 5, VREPct: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRecord(tt.hour, tt.d, tt.s, tt.w))
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 66.7, Round(66.66666, PercentPlaces))
	assert.Equal(t, 0.13, Round(0.125, AbsolutePlaces))
	assert.Equal(t, -0.13, Round(-0.125, AbsolutePlaces))
	assert.Equal(t, 16.0, Round(16, AbsolutePlaces))
}

func TestNormalize_HourlyReadings(t *testing.T) {
	loc := madrid(t)
	n := New(contracts.DefaultCatalog(), loc)
	at := func(h int) time.Time { return time.Date(2024, 4, 15, h, 0, 0, 0, loc) }

	readings := []contracts.RawReading{
		reading(demandID, at(20), 25000),
		reading(windID, at(20), 3000),
		reading(demandID, at(8), 20000),
		reading(windID, at(8), 2000),
		reading(solarID, at(12), 10000),
		reading(demandID, at(12), 18000),
		reading(windID, at(12), 2000),
		reading(priceID, at(12), 45.3),
	}

	records, err := n.Normalize(readings)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"08:00", "12:00", "20:00"}, []string{records[0].Hour, records[1].Hour, records[2].Hour})
	assert.Equal(t, []float64{10.0, 66.7, 12.0}, []float64{records[0].VREPct, records[1].VREPct, records[2].VREPct})
	assert.Equal(t, 0.0, records[0].Solar, "missing channel defaults to zero")
	assert.Equal(t, 12.0, records[1].VRETotal)
}

func TestNormalize_SubHourlyAveraged(t *testing.T) {
	loc := madrid(t)
	n := New(contracts.DefaultCatalog(), loc)
	base := time.Date(2024, 4, 15, 9, 0, 0, 0, loc)

	var readings []contracts.RawReading
	for i, mw := range []float64{20000, 21000, 22000, 23000} {
		r := reading(demandID, base.Add(time.Duration(i)*15*time.Minute), mw)
		r.Resolution = contracts.ResolutionFifteenMinutes
		readings = append(readings, r)
	}
	readings = append(readings, reading(solarID, base, 5000))

	records, err := n.Normalize(readings)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "09:00", records[0].Hour)
	assert.Equal(t, 21.5, records[0].Demand)
	assert.Equal(t, 23.3, records[0].SolarPct)
}

func TestNormalize_ConvertsToGridTimezone(t *testing.T) {
	loc := madrid(t)
	n := New(contracts.DefaultCatalog(), loc)

	// 10:00 UTC is 12:00 in Madrid during summer time
	records, err := n.Normalize([]contracts.RawReading{
		reading(demandID, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), 18000),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "12:00", records[0].Hour)
}

func TestNormalize_DuplicateReading(t *testing.T) {
	loc := madrid(t)
	n := New(contracts.DefaultCatalog(), loc)
	ts := time.Date(2024, 4, 15, 8, 0, 0, 0, loc)

	_, err := n.Normalize([]contracts.RawReading{
		reading(demandID, ts, 20000),
		reading(demandID, ts, 20500),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDuplicateReading)
	assert.True(t, contracts.IsInputError(err))
}

func TestNormalize_SameInstantDifferentChannels(t *testing.T) {
	loc := madrid(t)
	n := New(contracts.DefaultCatalog(), loc)
	ts := time.Date(2024, 4, 15, 8, 0, 0, 0, loc)

	records, err := n.Normalize([]contracts.RawReading{
		reading(demandID, ts, 20000),
		reading(solarID, ts, 1000),
		reading(windID, ts, 1000),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10.0, records[0].VREPct)
}

func TestNormalize_Empty(t *testing.T) {
	n := New(contracts.DefaultCatalog(), nil)

	records, err := n.Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalize_DuplicateHourlyReading(t *testing.T) {
	n := New(contracts.DefaultCatalog(), time.UTC)

	_, err := n.Normalize([]contracts.RawReading{
		reading(demandID, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), 20000),
		reading(demandID, time.Date(2024, 4, 15, 10, 30, 0, 0, time.UTC), 30000),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDuplicateReading)
	assert.True(t, contracts.IsInputError(err))
}

func TestNormalize_DSTFallBackMergesRepeatedHour(t *testing.T) {
	loc := madrid(t)
	n := New(contracts.DefaultCatalog(), loc)

	// 2024-10-27: 00:00Z and 01:00Z are both 02:00 in Madrid
	records, err := n.Normalize([]contracts.RawReading{
		reading(demandID, time.Date(2024, 10, 27, 0, 0, 0, 0, time.UTC), 20000),
		reading(demandID, time.Date(2024, 10, 27, 1, 0, 0, 0, time.UTC), 22000),
		reading(demandID, time.Date(2024, 10, 27, 2, 0, 0, 0, time.UTC), 24000),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "02:00", records[0].Hour)
	assert.Equal(t, 21.0, records[0].Demand)
	assert.Equal(t, "03:00", records[1].Hour)
	assert.Equal(t, 24.0, records[1].Demand)
}
