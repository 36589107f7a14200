package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/quality"
	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/logger"
)

// dataCheckCmd represents the data-check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "Check stored test event quality and coverage",
	Long: `Validates the stored test events and prints a coverage report.

This command:
- Reports events with missing identity fields or metric values
- Shows per-metric coverage (fraction of events with a usable value)
- Shows the overall date range and athlete/team counts

Example:
  go run ./cmd/vigil data-check
  go run ./cmd/vigil data-check --show-issues`,
	RunE: runDataCheck,
}

var dataCheckShowIssues bool

func init() {
	rootCmd.AddCommand(dataCheckCmd)

	// Flags
	dataCheckCmd.Flags().BoolVar(&dataCheckShowIssues, "show-issues", false, "print every validation issue")
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Data Check ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Load events and validate
	eventRepo := store.NewEventRepository(db.Pool)

	events, err := eventRepo.GetAll(context.Background())
	if err != nil {
		return fmt.Errorf("load test events: %w", err)
	}

	validator := quality.NewValidator(log)
	issues := validator.Validate(events)
	snapshot := validator.Coverage(events)

	// 5. Print report
	fmt.Println()
	fmt.Println("📊 Coverage")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-20s %10d\n", "Total events:", snapshot.TotalEvents)
	fmt.Printf("%-20s %10d\n", "Athletes:", snapshot.Athletes)
	fmt.Printf("%-20s %10d\n", "Teams:", snapshot.Teams)

	if !snapshot.FirstTestDate.IsZero() {
		fmt.Printf("%-20s %10s\n", "First test:", snapshot.FirstTestDate.Format("2006-01-02"))
		fmt.Printf("%-20s %10s\n", "Last test:", snapshot.LastTestDate.Format("2006-01-02"))
	}

	fmt.Println()
	for _, m := range contracts.Metrics {
		fmt.Printf("%-30s %6.1f%%\n", m.Label()+":", snapshot.Coverage[m]*100)
	}
	fmt.Printf("%-30s %6.1f%%\n", "Quality score:", snapshot.QualityScore*100)

	// Per-team event counts
	counts, err := eventRepo.CountByTeam(context.Background())
	if err != nil {
		return fmt.Errorf("count events by team: %w", err)
	}

	if len(counts) > 0 {
		teams := make([]string, 0, len(counts))
		for team := range counts {
			teams = append(teams, team)
		}
		sort.Strings(teams)

		fmt.Println()
		fmt.Println("Events per team:")
		for _, team := range teams {
			fmt.Printf("  %-20s %6d\n", team+":", counts[team])
		}
	}

	fmt.Println()
	fmt.Printf("Validation issues: %d\n", len(issues))

	if dataCheckShowIssues && len(issues) > 0 {
		fmt.Println()
		for _, issue := range issues {
			fmt.Printf("  [%s] %s %s: %s\n", issue.Code, issue.PlayerName, issue.TestDate.Format("2006-01-02"), issue.Message)
		}
	}

	if len(issues) == 0 {
		fmt.Println("\n✅ All stored events are complete")
	}

	return nil
}
