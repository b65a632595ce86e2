package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vreflex/backend/pkg/config"
)

// testConfig returns a config pointing at VREFLEX_TEST_DATABASE_URL or skips the test
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	url := os.Getenv("VREFLEX_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("VREFLEX_TEST_DATABASE_URL not set, skipping integration test")
	}

	return &config.Config{
		Database: config.DatabaseConfig{
			URL:             url,
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: time.Minute,
		},
	}
}

func TestNew(t *testing.T) {
	db, err := New(testConfig(t))
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, db.Ping(ctx))
}

func TestHealthCheck(t *testing.T) {
	db, err := New(testConfig(t))
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Empty(t, status.Error)
	assert.Greater(t, status.Stats.MaxConns, int32(0))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := New(testConfig(t))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	var count int
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_name IN ('energy_indicators', 'energy_data', 'daily_energy_summaries')
	`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not-a-url"}}

	_, err := New(cfg)
	assert.Error(t, err)
}
