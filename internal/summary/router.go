package summary

import (
	"time"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// DateRange is an inclusive range of civil dates
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the civil date of d lies in the range
func (r DateRange) Contains(d time.Time) bool {
	day := civil(d)
	return !day.Before(civil(r.From)) && !day.After(civil(r.To))
}

// Router picks the reading source for a date
type Router interface {
	Route(date time.Time) contracts.ReadingSource
}

// BoundaryRouter sends dates inside Boundary to Inside and everything else to Outside.
// The local store covers one complete historical range, the remote API the rest.
type BoundaryRouter struct {
	Boundary DateRange
	Inside   contracts.ReadingSource
	Outside  contracts.ReadingSource
}

// Route implements Router
func (r BoundaryRouter) Route(date time.Time) contracts.ReadingSource {
	if r.Boundary.Contains(date) {
		return r.Inside
	}
	return r.Outside
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
