package summary

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// memoryRepository is an in-memory SummaryRepository with the same first-writer-wins rule
type memoryRepository struct {
	mu        sync.Mutex
	rows      map[string]contracts.DailySummary
	creates   int
	existsErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[string]contracts.DailySummary)}
}

func (r *memoryRepository) GetByDate(_ context.Context, date time.Time) (*contracts.DailySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[date.Format(contracts.DateLayout)]
	if !ok {
		return nil, contracts.ErrSummaryNotFound
	}
	return &row, nil
}

func (r *memoryRepository) Create(_ context.Context, s *contracts.DailySummary) (*contracts.DailySummary, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.rows[s.Date]; ok {
		return &row, false, nil
	}
	row := *s
	row.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.rows[s.Date] = row
	r.creates++
	return &row, true, nil
}

func (r *memoryRepository) Exists(_ context.Context, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.rows[date.Format(contracts.DateLayout)]
	return ok, nil
}

// fakeSource serves canned readings per date
type fakeSource struct {
	name     contracts.DataSource
	readings map[string][]contracts.RawReading
	failOn   map[string]error
	gate     chan struct{} // when set, Fetch blocks until closed
	calls    atomic.Int32
}

func newFakeSource(name contracts.DataSource) *fakeSource {
	return &fakeSource{
		name:     name,
		readings: make(map[string][]contracts.RawReading),
		failOn:   make(map[string]error),
	}
}

func (f *fakeSource) Name() contracts.DataSource { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, date time.Time, _ []int) (*contracts.FetchResult, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	key := date.Format(contracts.DateLayout)
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}
	return &contracts.FetchResult{
		Readings: f.readings[key],
		Metadata: map[string]interface{}{"source": string(f.name)},
	}, nil
}

// dayReadings builds 24 hourly readings for a date in loc
func dayReadings(date time.Time, loc *time.Location) []contracts.RawReading {
	var readings []contracts.RawReading
	for h := 0; h < 24; h++ {
		ts := time.Date(date.Year(), date.Month(), date.Day(), h, 0, 0, 0, loc)
		solar := 0.0
		if h >= 8 && h <= 19 {
			solar = float64(12-abs(h-13)) * 1000
		}
		readings = append(readings,
			contracts.RawReading{IndicatorID: 1293, Timestamp: ts, Value: 25000 + float64(h%6)*1000, Resolution: contracts.ResolutionHour},
			contracts.RawReading{IndicatorID: 1161, Timestamp: ts, Value: solar, Resolution: contracts.ResolutionHour},
			contracts.RawReading{IndicatorID: 1159, Timestamp: ts, Value: 4000, Resolution: contracts.ResolutionHour},
		)
	}
	return readings
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
