package contracts

import (
	"context"
	"time"
)

// FetchResult is what a ReadingSource returns for one day
type FetchResult struct {
	Readings []RawReading
	Metadata map[string]interface{} // source specific, stored verbatim with the summary
}

// ReadingSource yields raw readings of a set of indicators for one civil date
// ⭐ SSOT: both the local store and the remote API implement this
type ReadingSource interface {
	Name() DataSource
	Fetch(ctx context.Context, date time.Time, indicatorIDs []int) (*FetchResult, error)
}

// SummaryRepository persists daily summaries keyed by date
type SummaryRepository interface {
	// GetByDate returns ErrSummaryNotFound when the date is absent
	GetByDate(ctx context.Context, date time.Time) (*DailySummary, error)

	// Create inserts s unless a row for the date exists. On conflict the existing
	// row is returned with created=false.
	Create(ctx context.Context, s *DailySummary) (stored *DailySummary, created bool, err error)

	Exists(ctx context.Context, date time.Time) (bool, error)
}
