// Package main refreshes the beach catalog: it scrapes the spot directory
// and upserts every beach into the database, then exits. Run it once at
// setup and again whenever the site adds spots.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/config"
	"github.com/itamarw/gosurf-bot/internal/logging"
	"github.com/itamarw/gosurf-bot/internal/resources"
	"github.com/itamarw/gosurf-bot/internal/scraper"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("seed complete")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	provider := resources.NewProvider(cfg, logger.Named("resources"))
	defer provider.Close()

	forecaster := scraper.New(scraper.Config{
		BaseURL:   cfg.Scraper.BaseURL,
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.ScrapeTimeout(),
	}, logger.Named("scraper"))

	scrapeCtx, cancel := context.WithTimeout(ctx, cfg.ScrapeTimeout())
	defer cancel()
	beaches, err := forecaster.ListBeaches(scrapeCtx)
	if err != nil {
		return fmt.Errorf("scrape beach directory: %w", err)
	}
	logger.Info("beach directory scraped", zap.Int("beaches", len(beaches)))

	st, err := provider.Store(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	dbCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout())
	defer cancel()
	if err := st.UpsertBeaches(dbCtx, beaches); err != nil {
		return fmt.Errorf("upsert beaches: %w", err)
	}
	logger.Info("beach catalog refreshed", zap.Int("beaches", len(beaches)))
	return nil
}
