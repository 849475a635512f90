package payments

import "context"

//go:generate mockgen -destination=mocks/mock_payments.go -package=mocks . Ledger,Authorizer,Locker,EventPublisher

// Ledger persists payments and looks them up.
//
// Lookups return (nil, nil) when nothing matches. GetByID treats an identifier
// the backend cannot parse as absent.
type Ledger interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*Payment, error)
	// Create stores p, assigning ID and CreatedAt. It returns
	// ErrDuplicateIdempotencyKey when p.IdempotencyKey is already taken.
	Create(ctx context.Context, p Payment) (Payment, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
}

// Authorizer makes the accept/decline decision for a payment attempt.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (bool, error)
}

// Locker serializes work on a single idempotency key. The returned func
// releases the lock and must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher announces newly persisted payments.
type EventPublisher interface {
	PublishPaymentProcessed(ctx context.Context, ev Event) error
}
