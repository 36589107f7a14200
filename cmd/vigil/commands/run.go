package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/baseline"
	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/flags"
	"github.com/athlab/vigil/internal/ruleconfig"
	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/logger"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fatigue flag pipeline",
	Long: `Runs one full flag pipeline pass over the stored test events.

This command:
- Loads the threshold rules (YAML)
- Computes per-athlete median baselines and team averages
- Flags tests below the configured thresholds
- Persists the run and writes the flagged-athletes CSV

Example:
  go run ./cmd/vigil run
  go run ./cmd/vigil run --output part4_flagged_athletes.csv
  go run ./cmd/vigil run --rules config/flag_rules.yaml --no-save`,
	RunE: runFlagPipeline,
}

var (
	runRulesPath  string
	runOutputPath string
	runNoSave     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runRulesPath, "rules", "", "threshold rules YAML (default from FLAG_RULES_PATH)")
	runCmd.Flags().StringVar(&runOutputPath, "output", "", "flagged athletes CSV path (default from FLAG_OUTPUT_PATH)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "skip persisting the run to the database")
}

func runFlagPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Flag Pipeline ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if runRulesPath != "" {
		cfg.Flags.RulesPath = runRulesPath
	}
	if runOutputPath != "" {
		cfg.Flags.OutputPath = runOutputPath
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load threshold rules
	rules, err := loadRules(cfg, log)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 5. Create repositories and evaluator
	eventRepo := store.NewEventRepository(db.Pool)

	var flagRepo *store.FlagRepository
	if !runNoSave {
		flagRepo = store.NewFlagRepository(db.Pool)
	}

	calc := baseline.NewCalculator(log)
	evaluator := flags.NewEvaluator(calc, rules, log)

	runner := flags.NewRunner(eventRepo, flagRepoOrNil(flagRepo), evaluator, cfg.Flags.OutputPath, log)

	// 6. Run the pipeline
	run, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	// 7. Print summary
	fmt.Println()
	fmt.Printf("Ruleset:          %s (hash %s)\n", rules.Meta.RulesetID, run.ConfigHash[:12])
	fmt.Printf("Events evaluated: %d\n", run.EventsEvaluated)
	fmt.Printf("Events skipped:   %d\n", run.EventsSkipped)
	fmt.Printf("Flagged records:  %d (%d athletes)\n", run.Count(), run.AthleteCount())
	fmt.Printf("Validation issues: %d\n", len(run.Issues))

	if len(run.Issues) > 0 {
		fmt.Println("\nValidation issues:")
		for _, issue := range run.Issues {
			fmt.Printf("  [%s] %s %s: %s\n", issue.Code, issue.PlayerName, issue.TestDate.Format("2006-01-02"), issue.Message)
		}
	}

	if cfg.Flags.OutputPath != "" {
		fmt.Printf("\n✅ Wrote %s\n", cfg.Flags.OutputPath)
	}

	return nil
}

// loadRules reads the configured rule file, falling back to the built-in
// defaults when no file exists at the configured path.
func loadRules(cfg *config.Config, log *logger.Logger) (*ruleconfig.Config, error) {
	rules, _, err := ruleconfig.Load(cfg.Flags.RulesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("path", cfg.Flags.RulesPath).Warn("Rule file not found, using default thresholds")
			return ruleconfig.Default(), nil
		}
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"path":    cfg.Flags.RulesPath,
		"ruleset": rules.Meta.RulesetID,
	}).Info("Loaded threshold rules")

	return rules, nil
}

// flagRepoOrNil converts a typed nil into an untyped nil interface so
// the runner's nil check works.
func flagRepoOrNil(repo *store.FlagRepository) contracts.FlagRepository {
	if repo == nil {
		return nil
	}
	return repo
}
