package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/baseline"
	"github.com/athlab/vigil/internal/external/forcedecks"
	"github.com/athlab/vigil/internal/flags"
	"github.com/athlab/vigil/internal/scheduler"
	"github.com/athlab/vigil/internal/scheduler/jobs"
	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/httputil"
	"github.com/athlab/vigil/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- forcedecks_ingest: daily at 5:30 AM (pull recent vendor tests)
- flag_run:          daily at 6:00 AM (full flag pipeline)

Subcommands:
  start   - start the scheduler
  list    - list registered jobs
  run     - run a job immediately

Example:
  go run ./cmd/vigil scheduler start
  go run ./cmd/vigil scheduler list
  go run ./cmd/vigil scheduler run flag_run`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and schedules all registered jobs.

The scheduler retries failed jobs up to 3 times with a one minute
delay. Stop it with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
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
	fmt.Println("=== Vigil Scheduler ===")

	// Initialize dependencies
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; block until interrupted so the job can
	// finish before the process exits.
	fmt.Println("Job started, press Ctrl+C when done")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load threshold rules
	rules, err := loadRules(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Create repositories
	eventRepo := store.NewEventRepository(db.Pool)
	flagRepo := store.NewFlagRepository(db.Pool)

	// 6. Create vendor client
	httpClient := httputil.New(log)
	fdClient := forcedecks.NewClient(cfg, httpClient, log)

	// 7. Create flag pipeline
	calc := baseline.NewCalculator(log)
	evaluator := flags.NewEvaluator(calc, rules, log)
	runner := flags.NewRunner(eventRepo, flagRepo, evaluator, cfg.Flags.OutputPath, log)

	// 8. Create scheduler and register jobs
	sched := scheduler.New(log)

	if err := sched.AddJob(jobs.NewIngestJob(fdClient, eventRepo, log)); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewFlagRunJob(runner, log)); err != nil {
		db.Close()
		return nil, nil, err
	}

	return sched, db.Close, nil
}
