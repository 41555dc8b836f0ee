package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"coffeeshop/internal/config"
	"coffeeshop/internal/database"
	"coffeeshop/internal/repository"
	"coffeeshop/internal/seed"
)

func main() {
	path := flag.String("file", "data/catalogue.yaml", "catalogue file, relative to the S3 prefix when S3 is enabled")
	dryRun := flag.Bool("dry-run", false, "validate the catalogue without writing it")
	flag.Parse()

	if err := run(*path, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var s3Loader seed.Loader
	if cfg.S3.Enabled {
		s3Loader, err = seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	}
	loader := seed.NewFallbackLoader(s3Loader, seed.NewFileLoader(logger), cfg.S3.Prefix, cfg.S3.Enabled, logger)

	doc, err := loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	if dryRun {
		result, err := doc.Validate()
		if err != nil {
			return fmt.Errorf("invalid catalogue: %w", err)
		}
		logger.Info().
			Int("categories", result.Categories).
			Int("menu_items", result.MenuItems).
			Int("coupons", result.Coupons).
			Msg("catalogue is valid")
		return nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	seeder := seed.NewSeeder(
		repository.NewCatalogueRepository(pool, logger),
		repository.NewCouponRepository(pool, logger),
		logger,
	)
	if _, err := seeder.Apply(ctx, doc); err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}
	return nil
}
