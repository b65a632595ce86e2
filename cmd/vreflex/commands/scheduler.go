package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vreflex/backend/internal/scheduler"
	"github.com/wonny/vreflex/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the background scheduler",
	Long: `Start the scheduler or run its jobs by hand.

Subcommands:
  start   - run the scheduler until interrupted
  list    - list registered jobs and their schedules
  run     - run one job now and wait for it

Example:
  go run ./cmd/vreflex scheduler start
  go run ./cmd/vreflex scheduler list
  go run ./cmd/vreflex scheduler run daily_summary`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Start the scheduler and schedule every registered job.

Registered jobs:
- daily_summary: yesterday's summary (SCHEDULE_DAILY_SUMMARY, default 01:30 daily)
- summary_sweep: fills gaps in the last SUMMARY_SWEEP_DAYS days (SCHEDULE_SUMMARY_SWEEP, default Sunday 03:00)

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== vreflex Scheduler ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// manual runs fail fast instead of waiting between retries
	sched, err := initScheduler(a, scheduler.WithRetry(0, 0))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintJobHeader(JobMetadata{
		JobType:   "Scheduler job: " + jobName,
		Tag:       "Scheduler",
		Timestamp: time.Now().Format(time.RFC3339),
	})

	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(result.Error)
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintJobCompletion(jobName, result.Duration.Seconds())
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()

	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		next := "-"
		if stat.NextRun != nil {
			next = stat.NextRun.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  - %-16s %-16s next: %s\n", jobName, stat.Schedule, next)
	}
}

// initScheduler registers every job against the wired app
func initScheduler(a *app, opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, opts...)

	cfg := a.cfg.Scheduler
	for _, job := range []scheduler.Job{
		jobs.NewDailySummaryJob(a.summaries, cfg.DailySummaryCron, a.loc, a.log),
		jobs.NewSweepJob(a.summaries, cfg.SweepCron, cfg.SweepDays, a.loc, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
