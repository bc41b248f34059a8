package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/monkeysroasters/roastery-backend/api/routes"
	cartsvc "github.com/monkeysroasters/roastery-backend/internal/cart"
	"github.com/monkeysroasters/roastery-backend/internal/catalog"
	checkoutsvc "github.com/monkeysroasters/roastery-backend/internal/checkout"
	"github.com/monkeysroasters/roastery-backend/internal/discounts"
	"github.com/monkeysroasters/roastery-backend/internal/loyalty"
	orderssvc "github.com/monkeysroasters/roastery-backend/internal/orders"
	"github.com/monkeysroasters/roastery-backend/internal/pricing"
	promossvc "github.com/monkeysroasters/roastery-backend/internal/promos"
	userssvc "github.com/monkeysroasters/roastery-backend/internal/users"
	"github.com/monkeysroasters/roastery-backend/pkg/config"
	"github.com/monkeysroasters/roastery-backend/pkg/db"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	"github.com/monkeysroasters/roastery-backend/pkg/metrics"
	"github.com/monkeysroasters/roastery-backend/pkg/migrate"
	"github.com/monkeysroasters/roastery-backend/pkg/outbox"
	"github.com/monkeysroasters/roastery-backend/pkg/redis"
	"github.com/monkeysroasters/roastery-backend/pkg/square"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var squareClient *square.Client
	if cfg.Square.AccessToken != "" {
		squareClient, err = square.NewClient(context.Background(), cfg.Square, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap square", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "square access token not set, hosted payments disabled")
	}

	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	deliveryRates := pricing.DeliveryRatesFromConfig(cfg.Shop)

	usersRepo := userssvc.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	promosRepo := promossvc.NewRepository(dbClient.DB())
	discountsRepo := discounts.NewRepository(dbClient.DB())
	ordersRepo := orderssvc.NewRepository(dbClient.DB())

	loyaltySvc := loyalty.NewService(cfg.Shop)

	usersService, err := userssvc.NewService(usersRepo, dbClient, logg)
	if err != nil {
		fatal(logg, "failed to create users service", err)
	}

	catalogService, err := catalog.NewService(catalogRepo, redisClient, logg)
	if err != nil {
		fatal(logg, "failed to create catalog service", err)
	}

	discountsService, err := discounts.NewService(discountsRepo, logg)
	if err != nil {
		fatal(logg, "failed to create discounts service", err)
	}

	promosService, err := promossvc.NewService(promosRepo, orderMetrics, logg)
	if err != nil {
		fatal(logg, "failed to create promos service", err)
	}

	cartService, err := cartsvc.NewService(
		cartRepo,
		dbClient,
		catalogRepo,
		usersRepo,
		loyaltySvc,
		discountsService,
		promosService,
		deliveryRates,
		logg,
	)
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}

	ordersService, err := orderssvc.NewService(
		ordersRepo,
		cartRepo,
		usersRepo,
		promosRepo,
		discountsService,
		loyaltySvc,
		dbClient,
		outboxSvc,
		deliveryRates,
		cfg.Shop.ReferralBonusAmount,
		orderMetrics,
		logg,
	)
	if err != nil {
		fatal(logg, "failed to create orders service", err)
	}

	var checkoutService checkoutsvc.Service
	if squareClient != nil {
		checkoutService, err = checkoutsvc.NewService(ordersService, squareClient, cfg.Shop.Currency, logg)
	} else {
		checkoutService, err = checkoutsvc.NewService(ordersService, nil, cfg.Shop.Currency, logg)
	}
	if err != nil {
		fatal(logg, "failed to create checkout service", err)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Gatherer:  prometheus.DefaultGatherer,
		Users:     usersService,
		Loyalty:   loyaltySvc,
		Catalog:   catalogService,
		Cart:      cartService,
		Promos:    promosService,
		Discounts: discountsService,
		Orders:    ordersService,
		Checkout:  checkoutService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error during server shutdown", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
