package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App         AppConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	Supabase    SupabaseConfig
	Stripe      StripeConfig
	Maintenance MaintenanceConfig
	Audit       AuditConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SupabaseConfig holds auth-provider connection values. Access tokens are
// validated locally against the JWT secret; the service key is only needed
// for token refresh.
type SupabaseConfig struct {
	BaseURL               string
	ServiceKey            string
	JWTSecret             string
	IdentityTimeoutMillis int
}

// StripeConfig holds billing-provider credentials and the price-to-plan table.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	PriceStarter  string
	PricePro      string
	PriceElite    string
	DedupeTTLSec  int
}

// MaintenanceConfig controls the maintenance gate.
type MaintenanceConfig struct {
	BypassSecret string
}

// AuditConfig controls the audit worker.
type AuditConfig struct {
	QueueSize int
}

// Load reads configuration from environment variables, applying defaults where
// possible. Missing secrets are a load error outside development: the
// gatekeeper and webhook handler must never start against an insecure default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "directory-gatekeeper"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Supabase: SupabaseConfig{
			BaseURL:               os.Getenv("SUPABASE_URL"),
			ServiceKey:            os.Getenv("SUPABASE_SERVICE_KEY"),
			JWTSecret:             getEnv("SUPABASE_JWT_SECRET", "dev-jwt-secret"),
			IdentityTimeoutMillis: getEnvAsInt("AUTH_IDENTITY_TIMEOUT_MILLIS", 3000),
		},
		Stripe: StripeConfig{
			APIKey:        os.Getenv("STRIPE_API_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PriceStarter:  os.Getenv("STRIPE_PRICE_STARTER"),
			PricePro:      os.Getenv("STRIPE_PRICE_PRO"),
			PriceElite:    os.Getenv("STRIPE_PRICE_ELITE"),
			DedupeTTLSec:  getEnvAsInt("STRIPE_EVENT_DEDUPE_TTL_SECONDS", 86400),
		},
		Maintenance: MaintenanceConfig{
			BypassSecret: os.Getenv("MAINTENANCE_BYPASS_SECRET"),
		},
		Audit: AuditConfig{
			QueueSize: getEnvAsInt("AUDIT_QUEUE_SIZE", 256),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !c.App.IsProduction() {
		return nil
	}

	required := []struct {
		key string
		val string
	}{
		{"SUPABASE_URL", c.Supabase.BaseURL},
		{"SUPABASE_SERVICE_KEY", c.Supabase.ServiceKey},
		{"SUPABASE_JWT_SECRET", c.Supabase.JWTSecret},
		{"STRIPE_API_KEY", c.Stripe.APIKey},
		{"STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret},
		{"MAINTENANCE_BYPASS_SECRET", c.Maintenance.BypassSecret},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("missing required config %s", r.key)
		}
	}
	if c.Supabase.JWTSecret == "dev-jwt-secret" {
		return fmt.Errorf("SUPABASE_JWT_SECRET must not use the development default")
	}
	return nil
}

// IsProduction reports whether the service runs in a production-like
// environment (controls the Secure flag on cookies).
func (a AppConfig) IsProduction() bool {
	return a.Env != "development"
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IdentityTimeout bounds the auth-provider call issued per request.
func (s SupabaseConfig) IdentityTimeout() time.Duration {
	if s.IdentityTimeoutMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(s.IdentityTimeoutMillis) * time.Millisecond
}

// DedupeTTL returns how long processed webhook event ids are remembered.
func (s StripeConfig) DedupeTTL() time.Duration {
	if s.DedupeTTLSec <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.DedupeTTLSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
