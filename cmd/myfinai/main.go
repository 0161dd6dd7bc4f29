package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/robson-hennes/myfinai/internal/app"
	"github.com/robson-hennes/myfinai/internal/clients"
	"github.com/robson-hennes/myfinai/internal/collections"
	"github.com/robson-hennes/myfinai/internal/dashboard"
	"github.com/robson-hennes/myfinai/internal/notify"
	"github.com/robson-hennes/myfinai/internal/observability"
	"github.com/robson-hennes/myfinai/internal/platform/db"
	"github.com/robson-hennes/myfinai/internal/settings"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
	"github.com/robson-hennes/myfinai/internal/templates"
	"github.com/robson-hennes/myfinai/internal/transactions"
	"github.com/robson-hennes/myfinai/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	asynqClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	clientRepo := clients.NewRepository(dbpool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	subscriptionRepo := subscriptions.NewRepository(dbpool)
	subscriptionService := subscriptions.NewService(subscriptionRepo)
	subscriptionHandler := subscriptions.NewHandler(logger, subscriptionService)

	// The dashboard service is assembled below; the receipt hook closes
	// over it so a settled payment both queues the receipt message and
	// invalidates the cached overview.
	var dashboardService *dashboard.Service
	receiptHook := func(ctx context.Context, tx transactions.Transaction) {
		if dashboardService != nil {
			if err := dashboardService.Invalidate(ctx); err != nil {
				logger.Warn("dashboard invalidate", slog.Any("error", err))
			}
		}
		if tx.SubscriptionID == nil {
			return
		}
		if err := asynqClient.EnqueueDispatch(ctx, *tx.SubscriptionID, templates.TriggerReceipt); err != nil {
			logger.Error("enqueue receipt", slog.Any("error", err))
		}
	}

	transactionRepo := transactions.NewRepository(dbpool)
	transactionService := transactions.NewService(logger, transactionRepo, receiptHook)
	transactionHandler := transactions.NewHandler(logger, transactionService)

	templateRepo := templates.NewRepository(dbpool)
	templateService := templates.NewService(templateRepo)
	templateHandler := templates.NewHandler(logger, templateService)

	settingsRepo := settings.NewRepository(dbpool)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(logger, settingsService)

	notifyLog := notify.NewLogRepository(dbpool)
	notifyHandler := notify.NewHandler(logger, notifyLog)

	collectionService := collections.NewService(subscriptionService, transactionService, asynqClient)
	collectionHandler := collections.NewHandler(logger, collectionService)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService = dashboard.NewService(clientService, subscriptionService, transactionService, collectionService, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		ClientsHandler:       clientHandler,
		SubscriptionsHandler: subscriptionHandler,
		TransactionsHandler:  transactionHandler,
		DashboardHandler:     dashboardHandler,
		CollectionsHandler:   collectionHandler,
		TemplatesHandler:     templateHandler,
		SettingsHandler:      settingsHandler,
		NotifyHandler:        notifyHandler,
		JobsHandler:          jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
}
