package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// Dialect names a supported SQL backend. Its value is the database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// ParseDialect maps a configured backend name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", name)
	}
}

func (d Dialect) schemaName() string {
	if d == Postgres {
		return PostgresSchemaName
	}
	return SQLiteSchemaName
}

// rebind rewrites ? placeholders to $n for postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const paymentColumns = `id, card_number, expiry_month, expiry_year, amount, currency, status, idempotency_key, created_at`

// SQLLedger stores payments in a relational table with a unique index on
// idempotency_key. Identifiers are the table's integer primary key.
type SQLLedger struct {
	db      *sql.DB
	dialect Dialect
	nowFunc func() time.Time
}

var _ payments.Ledger = (*SQLLedger)(nil)

// NewSQLLedger wraps an open database.
func NewSQLLedger(db *sql.DB, dialect Dialect) *SQLLedger {
	return &SQLLedger{db: db, dialect: dialect, nowFunc: time.Now}
}

// OpenSQL opens and pings dsn with the dialect's driver.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLLedger, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// one writer at a time; also keeps a :memory: database on one connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return NewSQLLedger(db, dialect), nil
}

// Close releases the underlying database.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}

// Migrate applies the embedded schema for the ledger's dialect.
func (l *SQLLedger) Migrate(ctx context.Context) error {
	schema, err := LoadSchema(l.dialect.schemaName())
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Printf("[ledger][sql] schema applied dialect=%s", l.dialect)
	return nil
}

func (l *SQLLedger) FindByIdempotencyKey(ctx context.Context, key string) (*payments.Payment, error) {
	q := l.dialect.rebind(`SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = ?`)
	return l.queryOne(ctx, q, key)
}

// Create inserts p unless its idempotency key is already present.
func (l *SQLLedger) Create(ctx context.Context, p payments.Payment) (payments.Payment, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = l.nowFunc().UTC()
	}
	q := l.dialect.rebind(`INSERT INTO payments
		(card_number, expiry_month, expiry_year, amount, currency, status, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id`)

	var id int64
	err := l.db.QueryRowContext(ctx, q,
		p.CardNumber, p.ExpiryMonth, p.ExpiryYear, p.Amount, p.Currency, string(p.Status), p.IdempotencyKey, p.CreatedAt,
	).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		log.Printf("[ledger][sql] idempotency key already claimed key=%s", p.IdempotencyKey)
		return payments.Payment{}, payments.ErrDuplicateIdempotencyKey
	case err != nil:
		return payments.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)
	return p, nil
}

// GetByID looks up a payment by its numeric id. Non-numeric ids resolve to (nil, nil).
func (l *SQLLedger) GetByID(ctx context.Context, id string) (*payments.Payment, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, nil
	}
	q := l.dialect.rebind(`SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`)
	return l.queryOne(ctx, q, n)
}

func (l *SQLLedger) queryOne(ctx context.Context, query string, args ...interface{}) (*payments.Payment, error) {
	var (
		p      payments.Payment
		id     int64
		status string
	)
	err := l.db.QueryRowContext(ctx, query, args...).Scan(
		&id, &p.CardNumber, &p.ExpiryMonth, &p.ExpiryYear, &p.Amount, &p.Currency, &status, &p.IdempotencyKey, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select payment: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)
	p.Status = payments.Status(status)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
