package container

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	database "caltext/app/db"
	"caltext/config"
	"caltext/internal/api/estimator"
	"caltext/internal/api/tracker"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *sql.DB // nil unless the sqlite backend is selected
	Store          tracker.EntryStore
	Estimator      estimator.Service
	Service        tracker.Service
	WebhookHandler *tracker.WebhookHandler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	loc, err := time.LoadLocation(cfg.Calories.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Calories.Timezone, err)
	}

	c := &Container{Config: cfg, Logger: logger}

	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := database.Init(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if !database.WaitForDB(ctx, db, logger) {
			db.Close()
			return nil, fmt.Errorf("sqlite database not ready")
		}
		c.DB = db
		c.Store = tracker.NewSQLiteStore(db, loc, logger)
	case "sheets":
		store, err := tracker.NewSheetsStore(ctx, os.Getenv("GOOGLE_SHEET_ID"), loc, logger)
		if err != nil {
			return nil, err
		}
		c.Store = store
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	est, err := estimator.NewGeminiEstimator(ctx, cfg.LLM.Model, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Estimator = est

	c.Service = tracker.NewService(c.Store, c.Estimator, cfg.Calories.DailyTarget, loc, logger)
	c.WebhookHandler = tracker.NewWebhookHandler(c.Service, logger)
	return c, nil
}

// Close releases resources held by the container.
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}
