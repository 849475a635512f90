// Package config loads gateway settings from the environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends and authorizers understood by the bootstrap.
const (
	LedgerDynamoDB = "dynamodb"
	LedgerPostgres = "postgres"
	LedgerSQLite   = "sqlite"

	LockLocal = "local"
	LockRedis = "redis"

	AuthorizerParity      = "parity"
	AuthorizerMercadoPago = "mercadopago"
)

// FileEnv names the variable pointing at an optional YAML config file.
const FileEnv = "PAYMENTS_CONFIG"

// Config holds every setting the binaries read. Environment variables use
// the upper-cased key (LEDGER_BACKEND, REDIS_ADDR, ...) and win over the file.
type Config struct {
	LedgerBackend    string `mapstructure:"ledger_backend"`
	PaymentsTable    string `mapstructure:"payments_table"`
	IdempotencyTable string `mapstructure:"idempotency_table"`
	DatabaseURL      string `mapstructure:"database_url"`
	SQLitePath       string `mapstructure:"sqlite_path"`

	LockBackend string        `mapstructure:"lock_backend"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	LockWait    time.Duration `mapstructure:"lock_wait"`

	Authorizer             string        `mapstructure:"authorizer"`
	AuthorizerTimeout      time.Duration `mapstructure:"authorizer_timeout"`
	MercadoPagoAccessToken string        `mapstructure:"mercadopago_access_token"`
	MercadoPagoPayerEmail  string        `mapstructure:"mercadopago_payer_email"`
	PaymentGatewayMock     string        `mapstructure:"payment_gateway_mock"`

	EventsQueueURL   string `mapstructure:"payment_events_queue_url"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`

	RunLocal bool   `mapstructure:"run_local"`
	HTTPAddr string `mapstructure:"http_addr"`
}

var defaults = map[string]interface{}{
	"ledger_backend":           LedgerDynamoDB,
	"payments_table":           "payments",
	"idempotency_table":        "payments-idempotency",
	"database_url":             "",
	"sqlite_path":              "payments.db",
	"lock_backend":             LockLocal,
	"redis_addr":               "",
	"lock_ttl":                 30 * time.Second,
	"lock_wait":                15 * time.Second,
	"authorizer":               AuthorizerParity,
	"authorizer_timeout":       10 * time.Second,
	"mercadopago_access_token": "",
	"mercadopago_payer_email":  "",
	"payment_gateway_mock":     "",
	"payment_events_queue_url": "",
	"metrics_namespace":        "PaymentGateway",
	"run_local":                false,
	"http_addr":                ":8080",
}

// Load reads defaults, then the file named by PAYMENTS_CONFIG if set, then the environment.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path := os.Getenv(FileEnv); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.LedgerBackend = strings.ToLower(strings.TrimSpace(c.LedgerBackend))
	c.LockBackend = strings.ToLower(strings.TrimSpace(c.LockBackend))
	c.Authorizer = strings.ToLower(strings.TrimSpace(c.Authorizer))
}

// Validate rejects unknown backends and missing connection settings.
func (c *Config) Validate() error {
	switch c.LedgerBackend {
	case LedgerDynamoDB:
		if c.PaymentsTable == "" || c.IdempotencyTable == "" {
			return fmt.Errorf("ledger %s needs PAYMENTS_TABLE and IDEMPOTENCY_TABLE", c.LedgerBackend)
		}
	case LedgerPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("ledger %s needs DATABASE_URL", c.LedgerBackend)
		}
	case LedgerSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("ledger %s needs SQLITE_PATH", c.LedgerBackend)
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	switch c.LockBackend {
	case LockLocal:
	case LockRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("lock %s needs REDIS_ADDR", c.LockBackend)
		}
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.LockBackend)
	}

	switch c.Authorizer {
	case AuthorizerParity, AuthorizerMercadoPago:
	default:
		return fmt.Errorf("unknown AUTHORIZER %q", c.Authorizer)
	}
	return nil
}

// GatewayMockEnabled reports whether PAYMENT_GATEWAY_MOCK holds a truthy value.
func (c *Config) GatewayMockEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.PaymentGatewayMock)) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
