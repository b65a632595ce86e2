package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check database, Redis and stored data",
	Long: `Check connectivity and report what the local store holds.

Checks:
- Postgres ping and pool statistics
- Redis availability
- Registered indicators and reading counts in the local store range

Example:
  go run ./cmd/vreflex check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== vreflex Check ===")

	a, err := newApp()
	if err != nil {
		PrintError(err.Error())
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("   Database URL: %s\n\n", maskPassword(a.cfg.Database.URL))

	health, err := a.db.HealthCheck(ctx)
	if err != nil {
		PrintError("Database unreachable: " + err.Error())
		return err
	}
	PrintSuccess(fmt.Sprintf("Database healthy (%s)", health.ResponseTime))
	PrintKeyValue("Total conns", fmt.Sprintf("%d", health.Stats.TotalConns), 12)
	PrintKeyValue("Idle conns", fmt.Sprintf("%d", health.Stats.IdleConns), 12)
	PrintKeyValue("Max conns", fmt.Sprintf("%d", health.Stats.MaxConns), 12)

	if a.rdb.Enabled() {
		PrintSuccess("Redis enabled")
	} else {
		PrintInfo("Redis disabled (no summary cache, no shared rate limit)")
	}

	indicators, err := a.readings.ListIndicators(ctx)
	if err != nil {
		PrintError("List indicators: " + err.Error())
		return err
	}

	fmt.Println()
	PrintTableHeader([]string{"ID", "NAME", "ROLE", "READINGS"}, []int{6, 36, 8, 10})

	from, to := a.cfg.Energy.LocalStoreFrom, a.cfg.Energy.LocalStoreTo
	start, _ := contracts.DayBounds(from, a.loc)
	_, end := contracts.DayBounds(to, a.loc)

	counts, err := a.readings.CountReadings(ctx, start, end)
	if err != nil {
		PrintError("Count readings: " + err.Error())
		return err
	}

	for _, ind := range indicators {
		role := string(a.catalog.RoleOf(ind.ID))
		if role == "" {
			role = "-"
		}
		PrintTableRow([]string{
			fmt.Sprintf("%d", ind.ID),
			truncate(ind.Name, 36),
			role,
			fmt.Sprintf("%d", counts[ind.ID]),
		}, []int{6, 36, 8, 10})
	}

	fmt.Println()
	missing := missingChannels(indicators, a.catalog)
	if len(missing) > 0 {
		PrintWarning("Channels without a registered indicator: " + strings.Join(missing, ", ") + " (run migrate)")
	} else {
		PrintSuccess("Demand, solar and wind indicators registered")
	}

	return nil
}

// missingChannels lists roles whose catalog indicator is not registered
func missingChannels(registered []contracts.IndicatorMetadata, catalog *contracts.Catalog) []string {
	have := make(map[int]bool, len(registered))
	for _, ind := range registered {
		have[ind.ID] = true
	}

	var missing []string
	for _, role := range []contracts.ChannelRole{contracts.RoleDemand, contracts.RoleSolar, contracts.RoleWind} {
		id, ok := catalog.IndicatorFor(role)
		if !ok || !have[id] {
			missing = append(missing, string(role))
		}
	}
	return missing
}

// maskPassword hides the password part of a connection URL
func maskPassword(url string) string {
	at := strings.LastIndex(url, "@")
	if at == -1 {
		return url
	}
	scheme := strings.Index(url, "://")
	if scheme == -1 {
		return url
	}
	colon := strings.Index(url[scheme+3:at], ":")
	if colon == -1 {
		return url
	}
	start := scheme + 3 + colon + 1
	return url[:start] + "****" + url[at:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
