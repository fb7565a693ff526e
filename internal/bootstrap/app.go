// Package bootstrap handles application initialization and lifecycle
// management for the seo-auditor service.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/seo-auditor/internal/config"
	"github.com/jonesrussell/seo-auditor/internal/database"
	"github.com/jonesrussell/seo-auditor/internal/logger"
)

// Start initializes and runs the seo-auditor service. Blocks until a
// shutdown signal arrives.
func Start() error {
	cfg, configErr := LoadConfig()
	if configErr != nil {
		return fmt.Errorf("config: %w", configErr)
	}

	log, logErr := logger.New(cfg.Logging.Level, cfg.Service.Debug)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting seo-auditor",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port))

	db, dbErr := database.NewPostgresConnection(&cfg.Database)
	if dbErr != nil {
		return fmt.Errorf("database: %w", dbErr)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			log.Error("failed to close database", logger.Error(closeErr))
		}
	}()
	log.Info("database connection established")

	redisClient, redisErr := SetupRedis(cfg, log)
	if redisErr != nil {
		return fmt.Errorf("redis: %w", redisErr)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	app, appErr := BuildApp(cfg, db, redisClient, log)
	if appErr != nil {
		return fmt.Errorf("wire application: %w", appErr)
	}

	app.StartWorkers()
	defer app.StopWorkers()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	}

	if shutdownErr := app.Server.Shutdown(context.Background()); shutdownErr != nil {
		return shutdownErr
	}

	log.Info("seo-auditor stopped")
	return nil
}

// LoadConfig reads the configuration from CONFIG_PATH or config.yml.
func LoadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}
	return config.Load(path)
}
