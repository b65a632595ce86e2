package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// backfillCmd represents the backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Create every missing daily summary in a date range",
	Long: `Walk a date range day by day and create the summaries that do not exist yet.
Dates that fail are reported and skipped; the run never aborts on them.

Without flags the local store range (LOCAL_STORE_FROM..LOCAL_STORE_TO) is used.

Example:
  go run ./cmd/vreflex backfill
  go run ./cmd/vreflex backfill --from 2024-03-01 --to 2024-03-31`,
	RunE: runBackfill,
}

var (
	backfillFrom string
	backfillTo   string
)

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().StringVar(&backfillFrom, "from", "", "first date (YYYY-MM-DD)")
	backfillCmd.Flags().StringVar(&backfillTo, "to", "", "last date (YYYY-MM-DD)")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	from, to := a.cfg.Energy.LocalStoreFrom, a.cfg.Energy.LocalStoreTo
	if backfillFrom != "" {
		if from, err = contracts.ParseDate(backfillFrom); err != nil {
			return err
		}
	}
	if backfillTo != "" {
		if to, err = contracts.ParseDate(backfillTo); err != nil {
			return err
		}
	}

	PrintJobHeader(JobMetadata{
		JobType:   "Summary Backfill",
		Tag:       "Backfill",
		Timestamp: time.Now().Format(time.RFC3339),
		Period: &Period{
			StartDate: from.Format(contracts.DateLayout),
			EndDate:   to.Format(contracts.DateLayout),
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.summaries.Backfill(ctx, from, to)
	if result != nil {
		PrintKeyValue("Created", fmt.Sprintf("%d", result.Created), 8)
		PrintKeyValue("Skipped", fmt.Sprintf("%d", result.Skipped), 8)
		PrintKeyValue("Failed", fmt.Sprintf("%d", result.Failed), 8)
		for _, f := range result.Failures {
			PrintError(fmt.Sprintf("%s: %s", f.Date, f.Error))
		}
		PrintJobCompletion("Backfill", result.Duration.Seconds())
	}
	return err
}
