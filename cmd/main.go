package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "meli-automation/internal/adapter/http"
	"meli-automation/internal/adapter/postgres"
	"meli-automation/internal/adapter/usecase"
	"meli-automation/internal/config"
	"meli-automation/internal/db"
	"meli-automation/internal/metrics"
)

// main is the entry point of the automation service. It loads
// configuration, optionally runs database migrations, initializes the
// database pool and repositories, starts the background scheduler loop
// and the HTTP server. On receiving a termination signal it gracefully
// shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	// Optionally run migrations if configured. We use the Psql sub-config.
	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.SeedDemoData {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	campaignRepo := postgres.NewCampaignRepository(pool)
	ruleRepo := postgres.NewRuleRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	actionRepo := postgres.NewActionRepository(pool)

	mx := metrics.New()
	engine := usecase.NewEngine(campaignRepo, ruleRepo, scheduleRepo, actionRepo, logger, mx, usecase.EngineConfig{
		AutoApply:          cfg.Automation.AutoApply,
		SuppressDuplicates: cfg.Automation.SuppressDuplicates,
	})
	campaigns := usecase.NewCampaignService(campaignRepo, ruleRepo, scheduleRepo, logger)

	// Background scheduler loop. The tick endpoint remains available for
	// on-demand runs either way.
	if cfg.Automation.EnableScheduler {
		go func() {
			ticker := time.NewTicker(cfg.Automation.TickInterval)
			defer ticker.Stop()
			logger.Info("scheduler loop started", slog.Duration("interval", cfg.Automation.TickInterval))
			for {
				select {
				case <-ctx.Done():
					logger.Info("scheduler loop stopped")
					return
				case now := <-ticker.C:
					res, err := engine.SchedulerTick(ctx, now)
					if err != nil {
						logger.Error("scheduler tick error", slog.Any("error", err))
						continue
					}
					if len(res.Actions) > 0 || len(res.Errors) > 0 {
						logger.Info("scheduler tick",
							slog.Int("checked", res.Checked),
							slog.Int("fired", len(res.Actions)),
							slog.Int("errors", len(res.Errors)))
					}
				}
			}
		}()
	}

	handler := httpadapter.NewHandler(campaigns, engine, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
