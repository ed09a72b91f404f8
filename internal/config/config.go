package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env         string   `env:"ENV" envDefault:"development"`
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"vaultflow"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"vaultflow"`
	DBName     string `env:"DB_NAME" envDefault:"vaultflow"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Auth
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"fallback-secret-key-for-dev-only"`
	JWTExpirationDur time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`
	PipelineAPIKey   string        `env:"PIPELINE_API_KEY"`

	// Chain gateway
	BuilderURL       string        `env:"BUILDER_URL" envDefault:"http://localhost:3000"`
	BuilderAPIKey    string        `env:"BUILDER_API_KEY"`
	IndexerURL       string        `env:"INDEXER_URL" envDefault:"https://cardano-preprod.blockfrost.io/api/v0"`
	IndexerProjectID string        `env:"INDEXER_PROJECT_ID"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Webhooks
	WebhookSecret    string        `env:"WEBHOOK_SECRET"`
	WebhookTolerance time.Duration `env:"WEBHOOK_TOLERANCE" envDefault:"10m"`
	ReceiptAssetName string        `env:"RECEIPT_ASSET_NAME" envDefault:"72656365697074"`

	// Admin key and protocol parameters
	AdminSKeyHex        string        `env:"ADMIN_SKEY_HEX"`
	AdminAddress        string        `env:"ADMIN_ADDRESS"`
	ProtocolFeeLovelace int64         `env:"PROTOCOL_FEE_LOVELACE" envDefault:"0"`
	MinReserveLovelace  int64         `env:"MIN_RESERVE_LOVELACE" envDefault:"2000000"`
	MaxContribUTXOs     int           `env:"MAX_CONTRIBUTION_UTXOS" envDefault:"10"`
	MinUTXOLovelace     int64         `env:"MIN_UTXO_LOVELACE" envDefault:"1000000"`
	TxValidityWindow    time.Duration `env:"TX_VALIDITY_WINDOW" envDefault:"2h"`

	// Market prices
	CoinGeckoURL     string        `env:"COINGECKO_URL" envDefault:"https://api.coingecko.com/api/v3"`
	TokenPriceURL    string        `env:"TOKEN_PRICE_URL" envDefault:"https://openapi.taptools.io/api/v1"`
	TokenPriceAPIKey string        `env:"TOKEN_PRICE_API_KEY"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	PriceCacheTTL    time.Duration `env:"PRICE_CACHE_TTL" envDefault:"5m"`

	// Reconciliation
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	StuckAfter       time.Duration `env:"STUCK_AFTER" envDefault:"6h"`
	WaitPollInterval time.Duration `env:"WAIT_POLL_INTERVAL" envDefault:"5s"`
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Used by tests and by callers
// that build a Config by hand.
func Set(cfg *Config) {
	appConfig = cfg
}

// DatabaseURL returns the postgres URL used by golang-migrate.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c *Config) validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", c.RequestTimeout)
	}
	if c.WebhookTolerance <= 0 {
		return fmt.Errorf("WEBHOOK_TOLERANCE must be positive, got %v", c.WebhookTolerance)
	}
	if c.MaxContribUTXOs <= 0 {
		return fmt.Errorf("MAX_CONTRIBUTION_UTXOS must be positive, got %d", c.MaxContribUTXOs)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %v", c.SweepInterval)
	}
	if c.ProtocolFeeLovelace < 0 {
		return fmt.Errorf("PROTOCOL_FEE_LOVELACE must not be negative")
	}
	return nil
}
