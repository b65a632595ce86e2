package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vreflex/backend/internal/summary"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

// Backfiller fills missing summaries over a date range
type Backfiller interface {
	Backfill(ctx context.Context, from, to time.Time) (*summary.BackfillResult, error)
}

// SweepJob re-runs the last few days so a missed or failed daily run is caught up
type SweepJob struct {
	backfiller Backfiller
	schedule   string
	days       int
	loc        *time.Location
	now        func() time.Time
	logger     *logger.Logger
}

// NewSweepJob creates a new sweep job covering the last days days
func NewSweepJob(backfiller Backfiller, schedule string, days int, loc *time.Location, log *logger.Logger) *SweepJob {
	if days < 1 {
		days = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SweepJob{
		backfiller: backfiller,
		schedule:   schedule,
		days:       days,
		loc:        loc,
		now:        time.Now,
		logger:     log.WithField("job", "summary_sweep"),
	}
}

// Name returns the job name
func (j *SweepJob) Name() string {
	return "summary_sweep"
}

// Schedule returns the cron schedule (with seconds)
func (j *SweepJob) Schedule() string {
	return j.schedule
}

// Run backfills [yesterday-days+1, yesterday]
func (j *SweepJob) Run(ctx context.Context) error {
	to := Yesterday(j.now(), j.loc)
	from := to.AddDate(0, 0, -(j.days - 1))

	result, err := j.backfiller.Backfill(ctx, from, to)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"from":    result.From,
		"to":      result.To,
		"created": result.Created,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Summary sweep completed")

	// failed days stay absent and are retried by the next sweep
	return nil
}
