package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/internal/normalizer"
)

func day(hours int, demand float64, solar func(h int) float64) []contracts.HourlyRecord {
	series := make([]contracts.HourlyRecord, 0, hours)
	for h := 0; h < hours; h++ {
		series = append(series, normalizer.NewRecord(normalizer.HourLabel(h), demand, solar(h), 0))
	}
	return series
}

func sunny(int) float64 { return 3 }

func TestAssess(t *testing.T) {
	tests := []struct {
		name       string
		series     []contracts.HourlyRecord
		wantIssues []contracts.IssueKind
		wantGen    int
		wantMsg    string
	}{
		{
			name:       "complete day",
			series:     day(24, 25, sunny),
			wantIssues: []contracts.IssueKind{},
			wantGen:    24,
			wantMsg:    "",
		},
		{
			name:       "empty",
			series:     nil,
			wantIssues: []contracts.IssueKind{contracts.IssueNoData},
			wantMsg:    "No data available for this date",
		},
		{
			name:       "incomplete",
			series:     day(18, 25, sunny),
			wantIssues: []contracts.IssueKind{contracts.IssueIncompleteHourly},
			wantGen:    18,
			wantMsg:    "Limited hourly data available (18 hours) - system reporting gaps detected",
		},
		{
			name:       "no generation",
			series:     day(24, 25, func(int) float64 { return 0 }),
			wantIssues: []contracts.IssueKind{contracts.IssueNoGeneration},
			wantMsg:    "Generation data processing in progress - demand data available for analysis",
		},
		{
			name: "sparse generation",
			series: day(24, 25, func(h int) float64 {
				if h >= 10 && h < 20 {
					return 4
				}
				return 0
			}),
			wantIssues: []contracts.IssueKind{contracts.IssueSparseGeneration},
			wantGen:    10,
			wantMsg:    "Partial generation data - some reporting intervals missing",
		},
		{
			name: "half the hours is not sparse",
			series: day(24, 25, func(h int) float64 {
				if h >= 6 && h < 18 {
					return 4
				}
				return 0
			}),
			wantIssues: []contracts.IssueKind{},
			wantGen:    12,
		},
		{
			name:       "demand too high",
			series:     day(24, 55, sunny),
			wantIssues: []contracts.IssueKind{contracts.IssueUnusualDemandRange},
			wantGen:    24,
			wantMsg:    "Data validation warning - unusual demand values detected",
		},
		{
			name:       "demand too low",
			series:     day(24, 8, sunny),
			wantIssues: []contracts.IssueKind{contracts.IssueUnusualDemandRange},
			wantGen:    24,
			wantMsg:    "Data validation warning - unusual demand values detected",
		},
		{
			name:   "multiple issues pick the highest priority message",
			series: day(5, 60, func(int) float64 { return 0 }),
			wantIssues: []contracts.IssueKind{
				contracts.IssueIncompleteHourly,
				contracts.IssueNoGeneration,
				contracts.IssueUnusualDemandRange,
			},
			wantMsg: "Limited hourly data available (5 hours) - system reporting gaps detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.series, DefaultConfig())

			assert.Equal(t, tt.wantIssues, a.Issues)
			assert.Equal(t, len(tt.wantIssues) == 0, a.Complete)
			assert.Equal(t, len(tt.series), a.TotalHours)
			assert.Equal(t, tt.wantGen, a.GenerationHours)
			assert.Equal(t, tt.wantMsg, Message(a))
		})
	}
}

func TestAssess_ConfigurableDemandBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDemandGW = 60

	a := Assess(day(24, 55, sunny), cfg)
	assert.True(t, a.Complete)
}

func TestMessage_Fallback(t *testing.T) {
	a := contracts.QualityAssessment{Complete: false, Issues: []contracts.IssueKind{"unknown"}}
	assert.Equal(t, "Data quality issues detected - please verify results", Message(a))
}
