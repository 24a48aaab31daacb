package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Storage
	DataDir     string
	DatabaseURL string // Optional: Postgres instead of the local SQLite file

	// Server
	Port               string
	CORSOrigins        []string
	Env                string
	LogLevel           string
	APIToken           string
	RateLimitPerMinute int

	// Ledger
	DefaultAlertThreshold decimal.Decimal

	// Exports
	ExportDir string
	S3        S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string // Empty = exports are written to ExportDir
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dataDir := getEnv("LEDGER_DATA_DIR", defaultDataDir())

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a number: %w", err)
	}

	threshold, err := decimal.NewFromString(getEnv("DEFAULT_ALERT_THRESHOLD", "80"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_ALERT_THRESHOLD must be a number: %w", err)
	}

	cfg := &Config{
		DataDir:               dataDir,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		Port:                  getEnv("PORT", "8080"),
		CORSOrigins:           strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                   getEnv("ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		APIToken:              getEnv("LEDGER_API_TOKEN", ""),
		RateLimitPerMinute:    rateLimit,
		DefaultAlertThreshold: threshold,
		ExportDir:             getEnv("EXPORT_DIR", filepath.Join(dataDir, "exports")),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SQLitePath is the ledger database file inside the data directory
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// IsProduction reports whether the app runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("LEDGER_DATA_DIR is required")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if !c.DefaultAlertThreshold.IsPositive() || c.DefaultAlertThreshold.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("DEFAULT_ALERT_THRESHOLD must be greater than 0 and at most 100")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fortuna-ledger"
	}
	return filepath.Join(home, ".fortuna-ledger")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
