package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/external/forcedecks"
	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/httputil"
	"github.com/athlab/vigil/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull CMJ tests from the force-plate vendor API",
	Long: `Fetches CMJ test results from the vendor API and upserts them
into the database.

Requires FORCEDECKS_API_KEY and FORCEDECKS_TEAM_ID to be set.

Example:
  go run ./cmd/vigil ingest
  go run ./cmd/vigil ingest --days 30`,
	RunE: runIngest,
}

var ingestDays int

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Flags
	ingestCmd.Flags().IntVar(&ingestDays, "days", 7, "how many days back to fetch")
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Vendor Ingest ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.ForceDecks.APIKey == "" {
		return fmt.Errorf("FORCEDECKS_API_KEY is not set")
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Create vendor client
	httpClient := httputil.New(log)
	client := forcedecks.NewClient(cfg, httpClient, log)

	// 5. Fetch and upsert
	to := time.Now()
	from := to.AddDate(0, 0, -ingestDays)

	fmt.Printf("Window: %s .. %s\n\n", from.Format("2006-01-02"), to.Format("2006-01-02"))

	tests, err := client.ListTests(context.Background(), from, to)
	if err != nil {
		return fmt.Errorf("list vendor tests: %w", err)
	}

	if len(tests) == 0 {
		fmt.Println("No tests in window")
		return nil
	}

	eventRepo := store.NewEventRepository(db.Pool)
	if err := eventRepo.SaveBatch(context.Background(), tests); err != nil {
		return fmt.Errorf("save ingested tests: %w", err)
	}

	fmt.Printf("✅ Ingested %d tests\n", len(tests))
	return nil
}
