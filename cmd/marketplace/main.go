package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eyabmansour/pfe-licence-api/internal/api"
	"github.com/eyabmansour/pfe-licence-api/internal/cache"
	"github.com/eyabmansour/pfe-licence-api/internal/config"
	"github.com/eyabmansour/pfe-licence-api/internal/database"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/messaging"
	"github.com/eyabmansour/pfe-licence-api/internal/services/catalog"
	"github.com/eyabmansour/pfe-licence-api/internal/services/discounts"
	"github.com/eyabmansour/pfe-licence-api/internal/services/identity"
	"github.com/eyabmansour/pfe-licence-api/internal/services/notifier"
	"github.com/eyabmansour/pfe-licence-api/internal/services/orders"
	"github.com/eyabmansour/pfe-licence-api/internal/services/pricing"
	"github.com/eyabmansour/pfe-licence-api/internal/services/restaurants"
)

const discountCacheTTL = 5 * time.Minute

func main() {
	var (
		mode       = flag.String("mode", "", "service mode: api or notifier")
		port       = flag.Int("port", 0, "HTTP port override for api mode")
		configPath = flag.String("config", "config.yaml", "path to config file")
		migrations = flag.String("migrations", "migrations", "path to migrations directory")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintln(os.Stderr, "Usage: marketplace --mode=api|notifier [--port=3000] [--config=config.yaml]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		runAPI(ctx, cfg, *migrations)
	case "notifier":
		runNotifier(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, migrationsPath string) {
	log := logger.New("marketplace-api")

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("startup_failed", "Failed to connect to database", "", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrationsPath); err != nil {
		log.Error("startup_failed", "Failed to run migrations", "", err, nil)
		os.Exit(1)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		log.Error("startup_failed", "Failed to connect to RabbitMQ", "", err, nil)
		os.Exit(1)
	}
	defer conn.Close()
	publisher := messaging.NewPublisher(conn, log)

	users := identity.NewPostgresRepository(db)
	restaurantRepo := restaurants.NewPostgresRepository(db)
	restaurantSvc := restaurants.NewService(restaurantRepo, users, log)

	catalogRepo := catalog.NewPostgresRepository(db)
	catalogSvc := catalog.NewService(catalogRepo, restaurantRepo)

	discountRepo := discounts.NewPostgresRepository(db)

	// Pricing reads go through redis when it is reachable; otherwise
	// they fall through to postgres directly.
	var discountReader pricing.DiscountReader = discountRepo
	var invalidator discounts.Invalidator
	redisCache, err := cache.New(cfg, discountCacheTTL)
	if err != nil {
		log.Error("cache_unavailable", "Redis unavailable, pricing reads uncached", "", err, nil)
	} else {
		defer redisCache.Close()
		cached := discounts.NewCachedReader(discountRepo, redisCache, log)
		discountReader = cached
		invalidator = cached
	}

	discountSvc := discounts.NewService(discountRepo, catalogSvc, invalidator, log)
	pricer := pricing.New(catalogRepo, discountReader)

	orderRepo := orders.NewPostgresRepository(db)
	orderSvc := orders.NewService(orderRepo, catalogRepo, users, pricer, publisher, log)

	handler := api.NewRouter(api.Services{
		Orders:      orderSvc,
		Restaurants: restaurantSvc,
		Discounts:   discountSvc,
		Catalog:     catalogSvc,
		Users:       users,
	}, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown_failed", "HTTP server shutdown failed", "", err, nil)
		}
	}()

	log.Info("service_started", "API server listening", "", map[string]interface{}{
		"port": cfg.Server.Port,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server_failed", "HTTP server failed", "", err, nil)
		os.Exit(1)
	}
	log.Info("service_stopped", "API server stopped", "", nil)
}

func runNotifier(ctx context.Context, cfg *config.Config) {
	log := logger.New("marketplace-notifier")

	conn, err := messaging.New(cfg, log)
	if err != nil {
		log.Error("startup_failed", "Failed to connect to RabbitMQ", "", err, nil)
		os.Exit(1)
	}
	defer conn.Close()

	svc := notifier.New(conn, log)
	defer svc.Close()

	log.Info("service_started", "Notifier consuming order events", "", nil)
	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("consumer_failed", "Notifier stopped with error", "", err, nil)
		os.Exit(1)
	}
	log.Info("service_stopped", "Notifier stopped", "", nil)
}
