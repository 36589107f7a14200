package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/logger"
	"github.com/athlab/vigil/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend status",
	Long: `Checks connectivity and shows a summary of the stored data.

This command:
- Checks database and Redis connectivity
- Shows the latest stored test date
- Shows the latest flag run summary

Example:
  go run ./cmd/vigil status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Status ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	fmt.Printf("\nEnvironment: %s\n", cfg.Env)
	fmt.Printf("Rules:       %s\n", cfg.Flags.RulesPath)
	fmt.Printf("Output:      %s\n", cfg.Flags.OutputPath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 2. Database
	fmt.Println("\n🗄  Database")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("  ❌ connection failed: %v\n", err)
		return nil
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("  ❌ health check failed: %v\n", err)
	} else {
		fmt.Printf("  Healthy:       %v\n", health.Healthy)
		fmt.Printf("  Response time: %v\n", health.ResponseTime)
		fmt.Printf("  Connections:   %d/%d\n", health.Stats.TotalConns, health.Stats.MaxConns)
	}

	// 3. Redis
	fmt.Println("\n🧰 Redis")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	redisClient, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("  ❌ connection failed: %v\n", err)
	} else {
		defer redisClient.Close()
		if redisClient.Enabled() {
			fmt.Println("  Enabled, connected")
		} else {
			fmt.Println("  Disabled (cache is a no-op)")
		}
	}

	// 4. Data summary
	fmt.Println("\n📊 Data")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	eventRepo := store.NewEventRepository(db.Pool)
	flagRepo := store.NewFlagRepository(db.Pool)

	latest, err := eventRepo.LatestTestDate(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read latest test date")
		fmt.Printf("  ❌ latest test date: %v\n", err)
	} else if latest.IsZero() {
		fmt.Println("  No test events stored")
	} else {
		fmt.Printf("  Latest test date: %s\n", latest.Format("2006-01-02"))
	}

	run, err := flagRepo.GetLatestRun(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read latest flag run")
		fmt.Printf("  ❌ latest flag run: %v\n", err)
	} else if run == nil {
		fmt.Println("  No flag runs recorded")
	} else {
		fmt.Printf("  Latest flag run:  %s (%d records, %d athletes)\n",
			run.RunDate.Format("2006-01-02"), run.Count(), run.AthleteCount())
	}

	return nil
}
