package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LedgerBackend != LedgerDynamoDB || cfg.LockBackend != LockLocal || cfg.Authorizer != AuthorizerParity {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AuthorizerTimeout != 10*time.Second || cfg.LockTTL != 30*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" || cfg.MetricsNamespace != "PaymentGateway" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("LEDGER_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/payments?sslmode=disable")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTHORIZER_TIMEOUT", "3s")
	t.Setenv("RUN_LOCAL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LedgerBackend != LedgerPostgres {
		t.Fatalf("expected postgres, got %s", cfg.LedgerBackend)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.AuthorizerTimeout != 3*time.Second || !cfg.RunLocal {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payments.yaml")
	content := "ledger_backend: sqlite\nsqlite_path: /tmp/ledger.db\nauthorizer: mercadopago\nhttp_addr: \":9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("HTTP_ADDR", ":9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LedgerBackend != LedgerSQLite || cfg.SQLitePath != "/tmp/ledger.db" || cfg.Authorizer != AuthorizerMercadoPago {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.HTTPAddr != ":9100" {
		t.Fatalf("env should win over file, got %s", cfg.HTTPAddr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			LedgerBackend: LedgerDynamoDB, PaymentsTable: "p", IdempotencyTable: "i",
			LockBackend: LockLocal, Authorizer: AuthorizerParity,
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		errHas string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown ledger", func(c *Config) { c.LedgerBackend = "mongo" }, "LEDGER_BACKEND"},
		{"postgres without url", func(c *Config) { c.LedgerBackend = LedgerPostgres }, "DATABASE_URL"},
		{"redis without addr", func(c *Config) { c.LockBackend = LockRedis }, "REDIS_ADDR"},
		{"unknown authorizer", func(c *Config) { c.Authorizer = "coinflip" }, "AUTHORIZER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.errHas == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errHas) {
				t.Fatalf("expected error containing %q, got %v", tc.errHas, err)
			}
		})
	}
}

func TestGatewayMockEnabled(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on ", "mock"} {
		if !(&Config{PaymentGatewayMock: v}).GatewayMockEnabled() {
			t.Fatalf("%q should enable mock mode", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off"} {
		if (&Config{PaymentGatewayMock: v}).GatewayMockEnabled() {
			t.Fatalf("%q should not enable mock mode", v)
		}
	}
}
