package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// BackfillFailure records one date that could not be summarized
type BackfillFailure struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// BackfillResult counts the outcome of a backfill run
type BackfillResult struct {
	From     string            `json:"start_date"`
	To       string            `json:"end_date"`
	Created  int               `json:"created"`
	Skipped  int               `json:"skipped"` // already cached
	Failed   int               `json:"failed"`
	Failures []BackfillFailure `json:"failures"`
	Duration time.Duration     `json:"duration_ns"`
}

// Backfill walks [from, to] day by day and creates every missing summary.
// Per-date failures are logged and counted, never propagated. Only context
// cancellation stops the walk early.
func (s *Service) Backfill(ctx context.Context, from, to time.Time) (*BackfillResult, error) {
	from, to = civil(from), civil(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end %s before start %s", contracts.ErrInvalidDate,
			to.Format(contracts.DateLayout), from.Format(contracts.DateLayout))
	}

	start := time.Now()
	result := &BackfillResult{
		From:     from.Format(contracts.DateLayout),
		To:       to.Format(contracts.DateLayout),
		Failures: []BackfillFailure{},
	}

	s.logger.WithFields(map[string]interface{}{
		"from": result.From,
		"to":   result.To,
	}).Info("Starting summary backfill")

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("backfill interrupted at %s: %w", d.Format(contracts.DateLayout), err)
		}

		key := d.Format(contracts.DateLayout)

		// a failed existence check falls through to GetOrCreateDate, which re-reads the row
		exists, err := s.repo.Exists(ctx, d)
		if err != nil {
			s.logger.WithError(err).WithField("date", key).Warn("Summary existence check failed")
		} else if exists {
			result.Skipped++
			continue
		}

		_, created, err := s.GetOrCreateDate(ctx, d)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, BackfillFailure{Date: key, Error: err.Error()})
			s.logger.WithError(err).WithField("date", key).Warn("Backfill date failed")
			continue
		}

		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	result.Duration = time.Since(start)
	s.logger.WithFields(map[string]interface{}{
		"created":     result.Created,
		"skipped":     result.Skipped,
		"failed":      result.Failed,
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Summary backfill completed")

	return result, nil
}
