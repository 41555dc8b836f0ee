package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coffeeshop/internal/cache"
	"coffeeshop/internal/config"
	"coffeeshop/internal/database"
	"coffeeshop/internal/handler"
	"coffeeshop/internal/model"
	"coffeeshop/internal/notify"
	"coffeeshop/internal/repository"
	"coffeeshop/internal/router"
	"coffeeshop/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting coffeeshop API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	defaultCurrency, err := model.ParseCurrency(cfg.Shop.DefaultCurrency)
	if err != nil {
		return fmt.Errorf("invalid default currency: %w", err)
	}

	// Repositories
	menuRepo := repository.NewMenuRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	analyticsRepo := repository.NewAnalyticsRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)

	notifier, err := newNotifier(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close notifier")
		}
	}()

	analyticsOpts := []service.AnalyticsOption{
		service.WithLocation(cfg.Shop.Location()),
		service.WithLowStockThreshold(cfg.Shop.LowStockThreshold),
	}
	var orderOpts []service.OrderOption
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The dashboard still works straight from the database.
			logger.Warn().Err(err).Msg("redis unavailable, dashboard cache disabled")
		} else {
			defer client.Close()
			dashboard := cache.NewDashboardCache(client, logger, cache.WithTTL(cfg.Redis.TTL()))
			analyticsOpts = append(analyticsOpts, service.WithDashboardCache(dashboard))
			orderOpts = append(orderOpts, service.WithDashboardInvalidation(dashboard))
		}
	}

	// Services
	menuService := service.NewMenuService(menuRepo, logger)
	cartService := service.NewCartService(cartRepo, menuRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, cartRepo, notifier, defaultCurrency, logger)
	orderService := service.NewOrderService(orderRepo, logger, orderOpts...)
	couponService := service.NewCouponService(couponRepo, orderRepo, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, logger, analyticsOpts...)
	reviewService := service.NewReviewService(reviewRepo, menuRepo, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, menuRepo, logger)

	mux := router.New(router.Handlers{
		Menu:      handler.NewMenuHandler(menuService, logger),
		Cart:      handler.NewCartHandler(cartService, checkoutService, logger),
		Orders:    handler.NewOrderHandler(orderService, couponService, logger),
		Reviews:   handler.NewReviewHandler(reviewService, wishlistService, logger),
		Analytics: handler.NewAnalyticsHandler(analyticsService, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newNotifier publishes order events to RabbitMQ when enabled and otherwise
// only logs them.
func newNotifier(ctx context.Context, cfg config.RabbitMQConfig, logger zerolog.Logger) (notify.Notifier, error) {
	if !cfg.Enabled {
		logger.Info().Msg("RabbitMQ disabled, order events will be logged only")
		return notify.NewLogNotifier(logger), nil
	}

	publisher, err := notify.NewPublisher(ctx, cfg.URL, cfg.Exchange, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize order publisher: %w", err)
	}
	return publisher, nil
}
