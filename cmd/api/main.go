package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"royal-kart/internal/cart"
	"royal-kart/internal/config"
	"royal-kart/internal/coupon"
	"royal-kart/internal/database"
	"royal-kart/internal/events"
	"royal-kart/internal/handler"
	"royal-kart/internal/middleware"
	"royal-kart/internal/orderid"
	"royal-kart/internal/repository"
	"royal-kart/internal/router"
	"royal-kart/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	limiterSweepInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting royal-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Carts and events live in Redis when it is enabled
	store, publisher, closeRedis, err := newSessionBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)

	validator := coupon.NewValidator(couponRepo, logger)

	// Import coupon seed files, S3 first when enabled
	if len(cfg.Coupons.SeedFiles) > 0 {
		importer := coupon.NewImporter(newCouponLoader(ctx, cfg.S3, logger), couponRepo, logger)
		n, err := importer.Import(ctx, cfg.Coupons.SeedFiles)
		if err != nil {
			return fmt.Errorf("failed to import coupon seed files: %w", err)
		}
		logger.Info().Int("coupon_count", n).Msg("coupon seed files imported")
	}

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(store, productRepo, publisher, cfg.Cart.MaxQuantity, logger)
	checkoutService := service.NewCheckoutService(
		store, orderRepo, couponRepo, validator, orderid.New(), publisher, cfg.Checkout.OrderIDAttempts, logger,
	)
	orderService := service.NewOrderService(orderRepo, publisher, logger)
	couponService := service.NewCouponService(couponRepo, logger)
	catalogService := service.NewCatalogService(catalogRepo, productRepo, logger)

	// Initialize HTTP handlers and router
	proxies, err := middleware.ParseProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(cfg.Checkout.RateLimit, cfg.Checkout.RateBurst, logger,
		middleware.WithTrustedProxies(proxies))
	go limiter.Run(ctx, limiterSweepInterval, limiterMaxIdle)

	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(orderService, couponService, logger),
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
	}, router.Options{
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SessionCookie:  cfg.Cart.SessionCookie,
		SessionTTL:     cfg.Cart.TTL,
		Limiter:        limiter,
		Ready:          database.Ready(pool),
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
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

// newSessionBackends returns the cart store and event publisher. Without
// Redis, carts are kept in memory and events are dropped.
func newSessionBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cart.Store, events.Publisher, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("redis disabled, using in-memory carts")
		return cart.NewMemoryStore(cfg.Cart.TTL), events.NewNopPublisher(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return cart.NewRedisStore(client, cfg.Cart.TTL, logger),
		events.NewRedisPublisher(client, cfg.Redis.EventsChannel, logger),
		closeFn, nil
}

// newCouponLoader builds the seed file loader. S3 is tried first when enabled,
// with the local file system as fallback.
func newCouponLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)
	if !cfg.Enabled {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}
	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, true, logger)
}
