package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/athlab/vigil/internal/api"
	"github.com/athlab/vigil/internal/api/handlers"
	"github.com/athlab/vigil/internal/baseline"
	"github.com/athlab/vigil/internal/quality"
	"github.com/athlab/vigil/internal/store"
	"github.com/athlab/vigil/pkg/config"
	"github.com/athlab/vigil/pkg/database"
	"github.com/athlab/vigil/pkg/logger"
	"github.com/athlab/vigil/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server for flag and baseline reports.

Endpoints:
  GET  /health                        - Health check
  GET  /api/flags/latest              - Latest flag run
  GET  /api/flags?date=YYYY-MM-DD     - Flag run by date
  GET  /api/athletes/{name}/baseline  - Athlete median baselines
  GET  /api/athletes/{name}/flags     - Athlete flag history
  GET  /api/data/coverage             - Event coverage snapshot

Example:
  go run ./cmd/vigil api
  go run ./cmd/vigil api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (no-op cache when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "vigil")

	// 5. Create repositories
	eventRepo := store.NewEventRepository(db.Pool)
	flagRepo := store.NewFlagRepository(db.Pool)

	// 6. Create services
	calc := baseline.NewCalculator(log)
	validator := quality.NewValidator(log)

	// 7. Create handlers
	flagsHandler := handlers.NewFlagsHandler(flagRepo, cache, log)
	athleteHandler := handlers.NewAthleteHandler(eventRepo, flagRepo, calc, cache, log)
	dataHandler := handlers.NewDataHandler(eventRepo, validator, cache, log)

	// 8. Create router and server
	router := api.NewRouter(flagsHandler, athleteHandler, dataHandler, log)
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/flags/latest")
	fmt.Println("  GET  /api/flags?date=YYYY-MM-DD")
	fmt.Println("  GET  /api/athletes/{name}/baseline")
	fmt.Println("  GET  /api/athletes/{name}/flags")
	fmt.Println("  GET  /api/data/coverage")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
