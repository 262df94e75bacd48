package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/smkpro/smkpro-backend/api/routes"
	authsvc "github.com/smkpro/smkpro-backend/internal/auth"
	cartsvc "github.com/smkpro/smkpro-backend/internal/cart"
	mergesvc "github.com/smkpro/smkpro-backend/internal/merge"
	"github.com/smkpro/smkpro-backend/internal/notifications"
	ordersvc "github.com/smkpro/smkpro-backend/internal/orders"
	productsvc "github.com/smkpro/smkpro-backend/internal/products"
	wishlistsvc "github.com/smkpro/smkpro-backend/internal/wishlist"
	"github.com/smkpro/smkpro-backend/pkg/auth/session"
	"github.com/smkpro/smkpro-backend/pkg/config"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/logger"
	"github.com/smkpro/smkpro-backend/pkg/metrics"
	"github.com/smkpro/smkpro-backend/pkg/migrate"
	"github.com/smkpro/smkpro-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewStorefrontMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager, collector)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	collector *metrics.StorefrontMetrics,
) (routes.Services, error) {
	conn := dbClient.DB()

	productRepo := productsvc.NewRepository(conn)
	cartRepo := cartsvc.NewRepository(conn)
	wishlistRepo := wishlistsvc.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)
	userRepo := authsvc.NewRepository(conn)

	productService, err := productsvc.NewService(productRepo)
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cartsvc.NewService(cartRepo, productService, cfg.Pricing.TaxRate())
	if err != nil {
		return routes.Services{}, err
	}
	wishlistService, err := wishlistsvc.NewService(wishlistRepo, productService)
	if err != nil {
		return routes.Services{}, err
	}
	mergeService, err := mergesvc.NewService(dbClient, cartRepo, wishlistRepo, logg, collector)
	if err != nil {
		return routes.Services{}, err
	}

	var notifier notifications.Service
	if cfg.SMTP.Host != "" {
		sender, err := notifications.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return routes.Services{}, err
		}
		notifier, err = notifications.NewService(sender, logg, cfg.Shop.OwnerEmail)
		if err != nil {
			return routes.Services{}, err
		}
	}

	orderService, err := ordersvc.NewService(dbClient, orderRepo, cartRepo, productRepo, notifier, logg, collector, cfg.Pricing)
	if err != nil {
		return routes.Services{}, err
	}
	authService, err := authsvc.NewService(userRepo, mergeService, sessionManager, redisClient, logg, cfg.JWT, cfg.AuthRate)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:     authService,
		Products: productService,
		Cart:     cartService,
		Wishlist: wishlistService,
		Orders:   orderService,
	}, nil
}
