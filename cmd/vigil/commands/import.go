package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/ingest"
	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [csv_file]",
	Short: "Import test events from a CSV file",
	Long: `Imports CMJ test events from a CSV export into the database.

The CSV must have a header row with at least these columns
(order does not matter, names are case-insensitive):
  playername, team, test_date, mrsi, jump_height_m, propulsive_net_impulse_ns

Rows that cannot be parsed are reported and skipped; re-importing the
same file is safe (upsert on playername + test_date).

Example:
  go run ./cmd/vigil import testdata/part4.csv
  go run ./cmd/vigil import exports/cmj_2026.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importDryRun bool

func init() {
	rootCmd.AddCommand(importCmd)

	// Flags
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and report only, do not write to the database")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	fmt.Println("=== Vigil CSV Import ===")
	fmt.Printf("File: %s\n\n", path)

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Parse the CSV
	result, err := ingest.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	fmt.Printf("Parsed rows:   %d\n", len(result.Events))
	fmt.Printf("Parse issues:  %d\n", len(result.Issues))

	if len(result.Issues) > 0 {
		fmt.Println("\nParse issues:")
		for _, issue := range result.Issues {
			fmt.Printf("  [%s] %s\n", issue.Code, issue.Message)
		}
	}

	if len(result.Events) == 0 {
		return fmt.Errorf("no importable rows in %s", path)
	}

	if importDryRun {
		fmt.Println("\nDry run, nothing written")
		return nil
	}

	// 4. Connect to database and upsert
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	eventRepo := store.NewEventRepository(db.Pool)

	if err := eventRepo.SaveBatch(context.Background(), result.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"file":   path,
		"events": len(result.Events),
	}).Info("CSV import completed")

	fmt.Printf("\n✅ Imported %d test events\n", len(result.Events))
	return nil
}
