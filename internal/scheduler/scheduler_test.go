package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vreflex/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(logger.Nop(), WithRetry(retries, time.Millisecond))
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 0 1 * * *"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	err := s.AddJob(&countingJob{name: "a", schedule: "@daily"})
	assert.Error(t, err)

	err = s.AddJob(&countingJob{name: "bad", schedule: "not a cron"})
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestScheduler_RunJobSync(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		failures     int32
		wantSuccess  bool
		wantAttempts int
	}{
		{"first try", 3, 0, true, 1},
		{"succeeds after retries", 3, 2, true, 3},
		{"exhausts retries", 2, 10, false, 3},
		{"no retries", 0, 1, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.retries)
			job := &countingJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJobSync(context.Background(), "job")
			require.NoError(t, err)

			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantAttempts, result.Attempts)
			assert.Len(t, result.RunID, 36)
			if !tt.wantSuccess {
				assert.Equal(t, "transient", result.Error)
			}

			history, err := s.GetJobHistory("job")
			require.NoError(t, err)
			assert.Len(t, history.Results, 1)
		})
	}
}

func TestScheduler_RunJobSyncCancelled(t *testing.T) {
	s := New(logger.Nop(), WithRetry(5, time.Hour))
	job := &countingJob{name: "job", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJobSync(ctx, "job")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, context.Canceled.Error(), result.Error)
}

func TestScheduler_UnknownJob(t *testing.T) {
	s := newTestScheduler(0)

	_, err := s.RunJobSync(context.Background(), "missing")
	assert.Error(t, err)
	assert.Error(t, s.RunJob("missing"))
	assert.Error(t, s.RemoveJob("missing"))

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestScheduler_RemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&countingJob{name: "job", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("job"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.cron.Entries())
}

func TestScheduler_GetJobStats(t *testing.T) {
	s := newTestScheduler(0)
	job := &countingJob{name: "job", schedule: "@daily", failures: 1}
	require.NoError(t, s.AddJob(job))

	_, err := s.RunJobSync(context.Background(), "job")
	require.NoError(t, err)
	_, err = s.RunJobSync(context.Background(), "job")
	require.NoError(t, err)

	stats := s.GetJobStats()["job"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
	assert.Equal(t, []JobResult{}, (&JobHistory{}).GetLatestResults(3))
}
