package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and register the built-in indicators",
	Long: `Create the energy_indicators, energy_data and daily_energy_summaries tables
if they do not exist and upsert the built-in indicator catalog. Safe to re-run.

Example:
  go run ./cmd/vreflex migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := a.db.Migrate(ctx); err != nil {
		PrintError("Migration failed")
		return err
	}
	PrintSuccess("Schema up to date")

	ids := indicatorsToRegister(a.catalog)
	for _, id := range ids {
		meta := contracts.LookupIndicator(id)
		if err := a.readings.UpsertIndicator(ctx, meta); err != nil {
			return fmt.Errorf("register indicator %d: %w", id, err)
		}
		PrintKeyValue(fmt.Sprintf("%d", id), meta.Name, 6)
	}
	PrintSuccess(fmt.Sprintf("%d indicators registered", len(ids)))

	return nil
}

// indicatorsToRegister returns the built-in indicators plus any configured channel ids, sorted
func indicatorsToRegister(catalog *contracts.Catalog) []int {
	seen := make(map[int]bool)
	for id := range contracts.KnownIndicators {
		seen[id] = true
	}
	for _, id := range catalog.IndicatorIDs() {
		seen[id] = true
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
