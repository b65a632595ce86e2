package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

// Summarizer creates the summary for one calendar day
type Summarizer interface {
	GetOrCreateDate(ctx context.Context, date time.Time) (*contracts.DailySummary, bool, error)
}

// DailySummaryJob builds yesterday's summary once the grid day is over
// ⭐ SSOT: the daily summary schedule lives in this job only
type DailySummaryJob struct {
	summarizer Summarizer
	schedule   string
	loc        *time.Location
	now        func() time.Time
	logger     *logger.Logger
}

// NewDailySummaryJob creates a new daily summary job
func NewDailySummaryJob(summarizer Summarizer, schedule string, loc *time.Location, log *logger.Logger) *DailySummaryJob {
	if loc == nil {
		loc = time.UTC
	}
	return &DailySummaryJob{
		summarizer: summarizer,
		schedule:   schedule,
		loc:        loc,
		now:        time.Now,
		logger:     log.WithField("job", "daily_summary"),
	}
}

// Name returns the job name
func (j *DailySummaryJob) Name() string {
	return "daily_summary"
}

// Schedule returns the cron schedule (with seconds)
func (j *DailySummaryJob) Schedule() string {
	return j.schedule
}

// Run creates the summary for yesterday in the grid timezone
func (j *DailySummaryJob) Run(ctx context.Context) error {
	date := Yesterday(j.now(), j.loc)
	key := date.Format(contracts.DateLayout)

	s, created, err := j.summarizer.GetOrCreateDate(ctx, date)
	if err != nil {
		return fmt.Errorf("summary %s: %w", key, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":        key,
		"created":     created,
		"data_source": s.DataSource,
		"total_hours": s.TotalHours,
	}).Info("Daily summary ready")

	return nil
}

// Yesterday returns the calendar day before now, as seen in loc, at UTC midnight
func Yesterday(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, time.UTC)
}
