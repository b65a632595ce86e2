package quality

import (
	"fmt"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// Config holds the quality bounds. Demand bounds are Spanish grid specific.
type Config struct {
	MinHours              int     // fewer records than this is incomplete_hourly
	SparseGenerationRatio float64 // generation hours below this share of total is sparse
	MinDemandGW           float64
	MaxDemandGW           float64
}

// DefaultConfig returns the bounds for the peninsular Spanish system
func DefaultConfig() Config {
	return Config{
		MinHours:              20,
		SparseGenerationRatio: 0.5,
		MinDemandGW:           10,
		MaxDemandGW:           50,
	}
}

// Assess checks a normalized series for completeness and plausibility.
// Issues are data attached to a summary, never errors.
func Assess(series []contracts.HourlyRecord, cfg Config) contracts.QualityAssessment {
	if len(series) == 0 {
		return contracts.QualityAssessment{
			Complete: false,
			Issues:   []contracts.IssueKind{contracts.IssueNoData},
		}
	}

	a := contracts.QualityAssessment{
		TotalHours: len(series),
		Issues:     []contracts.IssueKind{},
	}

	minDemand, maxDemand := series[0].Demand, series[0].Demand
	for _, r := range series {
		if r.Solar > 0 || r.Wind > 0 {
			a.GenerationHours++
		}
		if r.Demand < minDemand {
			minDemand = r.Demand
		}
		if r.Demand > maxDemand {
			maxDemand = r.Demand
		}
	}

	if a.TotalHours < cfg.MinHours {
		a.Issues = append(a.Issues, contracts.IssueIncompleteHourly)
	}

	if a.GenerationHours == 0 {
		a.Issues = append(a.Issues, contracts.IssueNoGeneration)
	} else if float64(a.GenerationHours) < float64(a.TotalHours)*cfg.SparseGenerationRatio {
		a.Issues = append(a.Issues, contracts.IssueSparseGeneration)
	}

	if maxDemand > cfg.MaxDemandGW || minDemand < cfg.MinDemandGW {
		a.Issues = append(a.Issues, contracts.IssueUnusualDemandRange)
	}

	a.Complete = len(a.Issues) == 0
	return a
}

// Message maps the highest priority issue to its user-facing text, "" when complete
func Message(a contracts.QualityAssessment) string {
	if a.Complete {
		return ""
	}

	switch {
	case a.Has(contracts.IssueNoData):
		return "No data available for this date"
	case a.Has(contracts.IssueIncompleteHourly):
		return fmt.Sprintf("Limited hourly data available (%d hours) - system reporting gaps detected", a.TotalHours)
	case a.Has(contracts.IssueNoGeneration):
		return "Generation data processing in progress - demand data available for analysis"
	case a.Has(contracts.IssueSparseGeneration):
		return "Partial generation data - some reporting intervals missing"
	case a.Has(contracts.IssueUnusualDemandRange):
		return "Data validation warning - unusual demand values detected"
	default:
		return "Data quality issues detected - please verify results"
	}
}
