package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/platoo/order-service/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ModeOrders = "orders"
	ModeMenu   = "menu"
)

type Config struct {
	Mode    string
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret string

	CatalogBaseURL        string
	CatalogLookupTimeout  time.Duration
	CatalogMaxConcurrency int
	ResolutionPolicy      string

	RateLimitRequests  int
	RateLimitWindow    time.Duration
	OrderRatePerSecond float64
	OrderRateBurst     int

	CORSAllowedOrigin string
	LogFormat         string
	TracingEnabled    bool
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Mode:                  ModeOrders,
		Port:                  "3020",
		DBDriver:              "sqlite",
		DBDSN:                 "orders.db",
		CatalogBaseURL:        "http://127.0.0.1:3010/api",
		CatalogLookupTimeout:  3 * time.Second,
		CatalogMaxConcurrency: 4,
		ResolutionPolicy:      "partial",
		RateLimitRequests:     50,
		RateLimitWindow:       time.Second,
		OrderRatePerSecond:    5,
		OrderRateBurst:        10,
		CORSAllowedOrigin:     "http://localhost:3000",
		LogFormat:             "text",
	}
}

// Load reads .env files (if present) and the environment on top of Default.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	cfg.Mode = stringEnv("APP_MODE", cfg.Mode)
	cfg.Port = stringEnv("PORT", cfg.Port)
	cfg.GinMode = stringEnv("GIN_MODE", cfg.GinMode)
	cfg.DBDriver = strings.ToLower(stringEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DBDSN = stringEnv("DB_DSN", cfg.DBDSN)
	cfg.JWTSecret = stringEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.CatalogBaseURL = strings.TrimRight(stringEnv("CATALOG_BASE_URL", cfg.CatalogBaseURL), "/")
	cfg.ResolutionPolicy = strings.ToLower(stringEnv("ORDER_RESOLUTION_POLICY", cfg.ResolutionPolicy))
	cfg.CORSAllowedOrigin = stringEnv("CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin)
	cfg.LogFormat = stringEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.CatalogLookupTimeout, err = durationEnv("CATALOG_LOOKUP_TIMEOUT", cfg.CatalogLookupTimeout); err != nil {
		return nil, err
	}
	if cfg.CatalogMaxConcurrency, err = intEnv("CATALOG_MAX_CONCURRENCY", cfg.CatalogMaxConcurrency); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = intEnv("RATE_LIMIT_REQUESTS", cfg.RateLimitRequests); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationEnv("RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if cfg.OrderRatePerSecond, err = floatEnv("ORDER_RATE_PER_SECOND", cfg.OrderRatePerSecond); err != nil {
		return nil, err
	}
	if cfg.OrderRateBurst, err = intEnv("ORDER_RATE_BURST", cfg.OrderRateBurst); err != nil {
		return nil, err
	}
	if cfg.TracingEnabled, err = boolEnv("TRACING_ENABLED", cfg.TracingEnabled); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeOrders, ModeMenu:
	default:
		return fmt.Errorf("APP_MODE must be %q or %q, got %q", ModeOrders, ModeMenu, c.Mode)
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres or sqlite, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.Mode == ModeOrders && c.CatalogBaseURL == "" {
		return errors.New("CATALOG_BASE_URL is required in orders mode")
	}
	switch c.ResolutionPolicy {
	case "", "partial", "strict":
	default:
		return fmt.Errorf("ORDER_RESOLUTION_POLICY must be partial or strict, got %q", c.ResolutionPolicy)
	}
	if c.CatalogLookupTimeout <= 0 {
		return errors.New("CATALOG_LOOKUP_TIMEOUT must be positive")
	}
	if c.CatalogMaxConcurrency < 1 {
		return errors.New("CATALOG_MAX_CONCURRENCY must be at least 1")
	}
	if c.RateLimitRequests < 1 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.OrderRatePerSecond <= 0 || c.OrderRateBurst < 1 {
		return errors.New("ORDER_RATE_PER_SECOND and ORDER_RATE_BURST must be positive")
	}
	return nil
}

// InitDB opens the database selected by DBDriver, logging through logrus.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(utils.InfoLogger, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
