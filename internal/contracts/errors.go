package contracts

import (
	"errors"
	"fmt"
)

// Input errors: surfaced immediately, never retried
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidSeries = errors.New("invalid hourly series")

	// ErrDuplicateReading wraps ErrInvalidSeries so IsInputError covers it
	ErrDuplicateReading = fmt.Errorf("%w: duplicate reading", ErrInvalidSeries)
)

// Data errors
var (
	ErrNoData          = errors.New("no data available")
	ErrEmptySeries     = errors.New("empty hourly series")
	ErrSummaryNotFound = errors.New("summary not found")
)

// ErrSourceUnavailable wraps remote fetch failures (connectivity, 5xx after retries)
var ErrSourceUnavailable = errors.New("data source unavailable")

// IsInputError reports whether err is caused by caller input
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrInvalidSeries)
}
