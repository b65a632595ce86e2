package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [date]",
	Short: "Get or create the summary of one day",
	Long: `Return the daily summary for a date, computing and storing it on first use.

Example:
  go run ./cmd/vreflex summary 2024-04-15
  go run ./cmd/vreflex summary 2024-04-15 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

var summaryJSON bool

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the full report as JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.summaries.Report(context.Background(), args[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if summaryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(r *contracts.DailyReport) {
	in := r.DailyInsights

	PrintDoubleSeparator()
	fmt.Printf("  Daily summary %s\n", r.Date)
	PrintSeparator()
	PrintKeyValue("Source", string(r.DataSource), 24)
	PrintKeyValue("Cached", fmt.Sprintf("%t", r.WasCached), 24)
	PrintKeyValue("Hours", fmt.Sprintf("%d", len(r.HourlyData)), 24)
	PrintKeyValue("Peak VRE", fmt.Sprintf("%.1f%% at %s", in.PeakVREPct, in.PeakVREHour), 24)
	PrintKeyValue("Min VRE", fmt.Sprintf("%.1f%% at %s", in.MinVREPct, in.MinVREHour), 24)
	PrintKeyValue("Average VRE", fmt.Sprintf("%.1f%%", in.AvgVREPct), 24)
	PrintKeyValue("High VRE hours", fmt.Sprintf("%d", in.HighVREWindowHours), 24)
	PrintKeyValue("Max ramp", fmt.Sprintf("%.2f GW (%s)", in.MaxRampGW, in.RampWindow), 24)
	PrintKeyValue("Balancing gap", fmt.Sprintf("%d h", in.LoadBalancingGapHours), 24)
	PrintKeyValue("Shiftable energy", fmt.Sprintf("%.2f GWh", in.OptimalShiftAmount), 24)
	PrintKeyValue("Shift", fmt.Sprintf("%s -> %s", in.ShiftFromHour, in.ShiftToHour), 24)
	PrintKeyValue("Demand total", fmt.Sprintf("%.2f GWh", r.DailyTotals.DailyDemandGWh), 24)
	PrintKeyValue("VRE total", fmt.Sprintf("%.2f GWh", r.DailyTotals.DailyVREGWh), 24)
	PrintSeparator()

	if r.DataQuality.Complete {
		PrintSuccess(r.QualityMessage)
	} else {
		PrintWarning(r.QualityMessage)
	}
}
