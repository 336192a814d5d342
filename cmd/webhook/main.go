package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gbawo/finance-core/internal/pkg/config"
	"github.com/gbawo/finance-core/internal/pkg/database"
	"github.com/gbawo/finance-core/internal/pkg/health"
	httpclient "github.com/gbawo/finance-core/internal/pkg/http"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/middleware"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
	nrpkg "github.com/gbawo/finance-core/internal/pkg/newrelic"
	"github.com/gbawo/finance-core/internal/pkg/server"
	"github.com/gbawo/finance-core/services/webhook/handler"
	"github.com/gbawo/finance-core/services/webhook/repository"
	"github.com/gbawo/finance-core/services/webhook/usecase"
)

func main() {
	appName := "webhook-service"
	configPath := "config/webhook.env"
	configs := config.InitConfig(configPath)

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment))

	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresClient.Close()

	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	defer natsClient.Close()

	deliveryRepo := repository.NewWebhookRepository(configs, postgresClient.GetDB())
	outboundClient := httpclient.NewClient(zapLogger, time.Duration(configs.Webhook.RequestTimeoutSeconds)*time.Second)

	webhookUC, err := usecase.NewWebhookUC(configs, deliveryRepo, outboundClient)
	if err != nil {
		zapLogger.Fatal("Failed to initialize webhook use case", logger.Err(err))
	}

	webhookHandler := handler.NewWebhookHandler(webhookUC, natsClient)
	if err := webhookHandler.InitConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}
	defer webhookHandler.Close()

	// Dispatcher worker: the poller is the delivery guarantee.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go webhookUC.Run(workerCtx)

	// Health-only HTTP surface for the worker process.
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(postgresClient))
	healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)

	shutdown := server.NewShutdownManager(zapLogger)
	shutdown.Register("dispatcher", func(ctx context.Context) error {
		stopWorker()
		return nil
	})
	shutdown.Register("nats", func(ctx context.Context) error {
		natsClient.Close()
		return nil
	})
	shutdown.Register("postgres", func(ctx context.Context) error {
		return postgresClient.Close()
	})
	if nrApp != nil {
		shutdown.Register("newrelic", func(ctx context.Context) error {
			nrApp.Shutdown(10 * time.Second)
			return nil
		})
	}

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Error("Server shutdown with error", logger.Err(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shutdown.Shutdown(ctx)

	logger.Info("Worker exiting gracefully")
}
