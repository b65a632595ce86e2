package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

func TestBoundaryRouter_Route(t *testing.T) {
	local := newFakeSource(contracts.SourceLocalStore)
	remote := newFakeSource(contracts.SourceRemoteAPI)

	router := BoundaryRouter{
		Boundary: DateRange{
			From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		Inside:  local,
		Outside: remote,
	}

	tests := []struct {
		date time.Time
		want contracts.DataSource
	}{
		{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), contracts.SourceRemoteAPI},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), contracts.SourceLocalStore},
		{time.Date(2024, 7, 15, 18, 30, 0, 0, time.UTC), contracts.SourceLocalStore},
		{time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), contracts.SourceLocalStore},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), contracts.SourceRemoteAPI},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format(time.RFC3339), func(t *testing.T) {
			assert.Equal(t, tt.want, router.Route(tt.date).Name())
		})
	}
}
