package models

// Config represents application configuration
type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NATS         NATSConfig
	APIKey       APIKeyConfig
	Cancellation CancellationConfig
	Webhook      WebhookConfig
	Audit        AuditConfig
	NewRelic     NewRelicConfig
	Logger       LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// APIKeyConfig contains the integrator and admin API keys accepted by the
// service-facing endpoints.
type APIKeyConfig struct {
	IntegratorKey string
	AdminKey      string
}

// CancellationConfig carries the time-window rule parameters of the
// eligibility evaluator.
type CancellationConfig struct {
	GracePeriodMinutes int
	MaxWindowMinutes   int
}

// WebhookConfig carries delivery and retry policy parameters for the
// webhook dispatcher.
type WebhookConfig struct {
	MaxAttempts           int
	BaseDelaySeconds      int
	MaxDelaySeconds       int
	Multiplier            float64
	MaxElapsedMinutes     int
	PollIntervalSeconds   int
	RequestTimeoutSeconds int
	BatchSize             int
}

// AuditConfig carries the audit event ring buffer parameters.
type AuditConfig struct {
	BufferSize int
}

// NewRelicConfig contains New Relic APM configuration
type NewRelicConfig struct {
	LicenseKey   string
	AppName      string
	Enabled      bool
	LogsEnabled  bool
	LogsEndpoint string
	LogsAPIKey   string
	ForwardLogs  bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level      string
	FilePath   string
	MaxSize    int64
	MaxAge     int
	MaxBackups int
	Compress   bool
	Type       string
}
