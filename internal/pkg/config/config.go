package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/joho/godotenv"
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 0)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 0)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 0)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 0)

	// Database config
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 0)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 0)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 0)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 0)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 0)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")

	// API key config
	configs.APIKey.IntegratorKey = GetEnv("INTEGRATOR_API_KEY", "")
	configs.APIKey.AdminKey = GetEnv("ADMIN_API_KEY", "")

	// Cancellation rule config
	configs.Cancellation.GracePeriodMinutes = GetEnvAsInt("CANCEL_GRACE_PERIOD_MINUTES", 5)
	configs.Cancellation.MaxWindowMinutes = GetEnvAsInt("CANCEL_MAX_WINDOW_MINUTES", 30)

	// Webhook dispatcher config
	configs.Webhook.MaxAttempts = GetEnvAsInt("WEBHOOK_MAX_ATTEMPTS", 8)
	configs.Webhook.BaseDelaySeconds = GetEnvAsInt("WEBHOOK_BASE_DELAY_SECONDS", 30)
	configs.Webhook.MaxDelaySeconds = GetEnvAsInt("WEBHOOK_MAX_DELAY_SECONDS", 3600)
	configs.Webhook.Multiplier = GetEnvAsFloat("WEBHOOK_BACKOFF_MULTIPLIER", 2.0)
	configs.Webhook.MaxElapsedMinutes = GetEnvAsInt("WEBHOOK_MAX_ELAPSED_MINUTES", 1440)
	configs.Webhook.PollIntervalSeconds = GetEnvAsInt("WEBHOOK_POLL_INTERVAL_SECONDS", 15)
	configs.Webhook.RequestTimeoutSeconds = GetEnvAsInt("WEBHOOK_REQUEST_TIMEOUT_SECONDS", 10)
	configs.Webhook.BatchSize = GetEnvAsInt("WEBHOOK_BATCH_SIZE", 50)

	// Audit config
	configs.Audit.BufferSize = GetEnvAsInt("AUDIT_BUFFER_SIZE", 1000)

	// NewRelic config
	configs.NewRelic.LicenseKey = GetEnv("NEW_RELIC_LICENSE_KEY", "")
	configs.NewRelic.AppName = GetEnv("NEW_RELIC_APP_NAME", "")
	configs.NewRelic.Enabled = GetEnvAsBool("NEW_RELIC_ENABLED", false)
	configs.NewRelic.LogsEnabled = GetEnvAsBool("NEW_RELIC_LOGS_ENABLED", false)
	configs.NewRelic.LogsEndpoint = GetEnv("NEW_RELIC_LOGS_ENDPOINT", "")
	configs.NewRelic.LogsAPIKey = GetEnv("NEW_RELIC_LOGS_API_KEY", "")
	configs.NewRelic.ForwardLogs = GetEnvAsBool("NEW_RELIC_FORWARD_LOGS", false)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "logs/finance-core.log")
	configs.Logger.MaxSize = GetEnvAsInt64("LOG_MAX_SIZE", 100)
	configs.Logger.MaxAge = GetEnvAsInt("LOG_MAX_AGE", 7)
	configs.Logger.MaxBackups = GetEnvAsInt("LOG_MAX_BACKUPS", 3)
	configs.Logger.Compress = GetEnvAsBool("LOG_COMPRESS", true)
	configs.Logger.Type = GetEnv("LOG_TYPE", "file")

	return configs
}

// Typed environment readers. Unset variables fall back silently; malformed
// values fall back with a warning so a typo never takes the service down.

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

func GetEnvAsInt64(key string, defaultValue int64) int64 {
	return parseEnv(key, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	value, err := parse(raw)
	if err != nil {
		log.Printf("invalid value for %s, using default %v", key, defaultValue)
		return defaultValue
	}
	return value
}
