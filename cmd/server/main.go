// Package main implements the entry point for the conduit API server,
// a social blogging backend with articles, comments, profiles and follows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/calvora/conduit/internal/config"
	"github.com/calvora/conduit/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run migrations (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
}

// run loads configuration, wires the application and either runs migrations
// or serves HTTP until a shutdown signal arrives.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if migrateCmd != "" {
		return runMigrations(cfg, appLogger, migrateCmd)
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
