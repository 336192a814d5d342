package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gbawo/finance-core/internal/pkg/audit"
	"github.com/gbawo/finance-core/internal/pkg/config"
	"github.com/gbawo/finance-core/internal/pkg/database"
	"github.com/gbawo/finance-core/internal/pkg/health"
	httpclient "github.com/gbawo/finance-core/internal/pkg/http"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/middleware"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
	nrpkg "github.com/gbawo/finance-core/internal/pkg/newrelic"
	"github.com/gbawo/finance-core/internal/pkg/server"
	"github.com/gbawo/finance-core/services/transaction/gateway"
	"github.com/gbawo/finance-core/services/transaction/handler"
	"github.com/gbawo/finance-core/services/transaction/repository"
	"github.com/gbawo/finance-core/services/transaction/usecase"
	webhookrepo "github.com/gbawo/finance-core/services/webhook/repository"
	webhookuc "github.com/gbawo/finance-core/services/webhook/usecase"
)

func main() {
	appName := "transaction-service"
	configPath := "config/transaction.env"
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

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer redisClient.Close()

	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	defer natsClient.Close()

	db := postgresClient.GetDB()

	// Repositories
	transactionRepo := repository.NewTransactionRepository(configs, db)
	fundsRepo := repository.NewFundsRepository(db)
	rateLockRepo := repository.NewRateLockRepository(redisClient)
	complianceRepo := repository.NewComplianceRepository(db)
	deliveryRepo := webhookrepo.NewWebhookRepository(configs, db)

	// Audit trail
	auditLog := audit.NewRingBuffer(configs.Audit.BufferSize)

	// Gateways
	transactionGW := gateway.NewTransactionGW(natsClient)

	// The cancellation flow writes the delivery outbox record inline; the
	// dispatcher worker in cmd/webhook drains it.
	outboundClient := httpclient.NewClient(zapLogger, time.Duration(configs.Webhook.RequestTimeoutSeconds)*time.Second)
	webhookUC, err := webhookuc.NewWebhookUC(configs, deliveryRepo, outboundClient)
	if err != nil {
		zapLogger.Fatal("Failed to initialize webhook use case", logger.Err(err))
	}

	transactionUC, err := usecase.NewTransactionUC(configs, transactionRepo,
		fundsRepo, rateLockRepo, complianceRepo, transactionGW, webhookUC, auditLog)
	if err != nil {
		zapLogger.Fatal("Failed to initialize transaction use case", logger.Err(err))
	}

	transactionHandler := handler.NewHandler(transactionUC, natsClient, auditLog)
	if err := transactionHandler.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}
	defer transactionHandler.Close()

	e := echo.New()
	e.HideBanner = true

	// Panic recovery first
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(nrpkg.Middleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(&configs.APIKey)

	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(postgresClient))
	healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)

	transactionHandler.RegisterRoutes(e, apiKeyMiddleware)

	shutdown := server.NewShutdownManager(zapLogger)
	shutdown.Register("nats", func(ctx context.Context) error {
		natsClient.Close()
		return nil
	})
	shutdown.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
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

	logger.Info("Server exiting gracefully")
}
