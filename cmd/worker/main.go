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
	jobmetrics "github.com/robson-hennes/myfinai/internal/jobs"
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
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

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

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	clientService := clients.NewService(clients.NewRepository(pool))
	subscriptionService := subscriptions.NewService(subscriptions.NewRepository(pool))
	transactionService := transactions.NewService(logger, transactions.NewRepository(pool), nil)
	templateService := templates.NewService(templates.NewRepository(pool))
	settingsService := settings.NewService(settings.NewRepository(pool))

	dispatcher := notify.NewDispatcher(
		logger,
		templateService,
		settingsService,
		notify.NewSMTPMailer(),
		notify.NewWhatsAppSender(nil),
		notify.NewLogRepository(pool),
		metrics,
		cfg.PaymentLinkURL,
	)

	collectionService := collections.NewService(subscriptionService, transactionService, asynqClient)

	dispatchJob := jobs.NewNotifyDispatchJob(subscriptionService, clientService, dispatcher, logger, jobMetrics)
	scanJob := jobs.NewBillingScanJob(collectionService, asynqClient, logger, jobMetrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskNotifyDispatch, Handler: dispatchJob.Handle},
			{Type: jobs.TaskBillingScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.BillingScanCron, Task: jobs.NewBillingScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		if err := metricsServer.Close(); err != nil {
			logger.Warn("metrics server close", slog.Any("error", err))
		}
	}()

	logger.Info("worker started", slog.String("cron", cfg.BillingScanCron))
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
