// Package app assembles the payment service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/imrishuroy/go-idempotent-payments/internal/authorizer"
	"github.com/imrishuroy/go-idempotent-payments/internal/aws"
	"github.com/imrishuroy/go-idempotent-payments/internal/config"
	"github.com/imrishuroy/go-idempotent-payments/internal/ledger"
	"github.com/imrishuroy/go-idempotent-payments/internal/lock"
	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// Migrator is implemented by ledgers that can provision their own storage.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// App holds the wired service and whatever must be closed on shutdown.
type App struct {
	Config  *config.Config
	Ledger  payments.Ledger
	Service *payments.Service

	closers []func() error
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*options)

type options struct {
	awsClients *aws.AWSClients
}

// WithAWSClients makes New use clients instead of loading AWS config.
func WithAWSClients(clients *aws.AWSClients) Option {
	return func(o *options) { o.awsClients = clients }
}

// New builds the ledger, lock, authorizer and publisher named by cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	a := &App{Config: cfg}

	clients := func() (*aws.AWSClients, error) {
		if o.awsClients == nil {
			c, err := aws.NewAWSClients(ctx)
			if err != nil {
				return nil, fmt.Errorf("init aws clients: %w", err)
			}
			o.awsClients = c
		}
		return o.awsClients, nil
	}

	l, err := a.buildLedger(ctx, clients)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Ledger = l

	locker, err := a.buildLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	auth, err := buildAuthorizer(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	svcOpts := []payments.Option{
		payments.WithLocker(locker),
		payments.WithAuthorizeTimeout(cfg.AuthorizerTimeout),
	}
	if cfg.EventsQueueURL != "" {
		c, err := clients()
		if err != nil {
			a.Close()
			return nil, err
		}
		svcOpts = append(svcOpts, payments.WithPublisher(aws.NewPublisher(c.SQS, cfg.EventsQueueURL)))
	}

	a.Service = payments.NewService(l, auth, svcOpts...)
	log.Printf("[app] ready ledger=%s lock=%s authorizer=%s events=%t",
		cfg.LedgerBackend, cfg.LockBackend, cfg.Authorizer, cfg.EventsQueueURL != "")
	return a, nil
}

// Migrate provisions the ledger's storage.
func (a *App) Migrate(ctx context.Context) error {
	m, ok := a.Ledger.(Migrator)
	if !ok {
		return fmt.Errorf("ledger %s cannot be migrated", a.Config.LedgerBackend)
	}
	return m.Migrate(ctx)
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildLedger(ctx context.Context, clients func() (*aws.AWSClients, error)) (payments.Ledger, error) {
	cfg := a.Config
	switch cfg.LedgerBackend {
	case config.LedgerDynamoDB:
		c, err := clients()
		if err != nil {
			return nil, err
		}
		return ledger.NewDynamoLedger(c.DynamoDB, cfg.PaymentsTable, cfg.IdempotencyTable), nil
	case config.LedgerPostgres, config.LedgerSQLite:
		dialect, dsn := ledger.Postgres, cfg.DatabaseURL
		if cfg.LedgerBackend == config.LedgerSQLite {
			dialect, dsn = ledger.SQLite, cfg.SQLitePath
		}
		l, err := ledger.OpenSQL(ctx, dialect, dsn)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, l.Close)
		return l, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

func (a *App) buildLocker(ctx context.Context) (payments.Locker, error) {
	cfg := a.Config
	switch cfg.LockBackend {
	case config.LockLocal:
		return lock.NewLocal(), nil
	case config.LockRedis:
		client, err := lock.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return lock.NewRedis(client, cfg.LockTTL, cfg.LockWait), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

func buildAuthorizer(cfg *config.Config) (payments.Authorizer, error) {
	switch cfg.Authorizer {
	case config.AuthorizerParity:
		return authorizer.Parity{}, nil
	case config.AuthorizerMercadoPago:
		return authorizer.NewMercadoPago(authorizer.MercadoPagoConfig{
			AccessToken: cfg.MercadoPagoAccessToken,
			PayerEmail:  cfg.MercadoPagoPayerEmail,
			MockMode:    cfg.GatewayMockEnabled(),
		})
	default:
		return nil, fmt.Errorf("unknown authorizer %q", cfg.Authorizer)
	}
}
