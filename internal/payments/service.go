package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const defaultAuthorizeTimeout = 10 * time.Second

// Service runs the payment decision path: dedupe by idempotency key,
// authorize, persist, and the redacted retrieval path.
type Service struct {
	ledger           Ledger
	authorizer       Authorizer
	locker           Locker
	publisher        EventPublisher
	authorizeTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLocker sets the per-key serialization point around dedupe+authorize+persist.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithPublisher sets where PaymentProcessed events go.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithAuthorizeTimeout bounds each Authorizer call. Zero disables the bound.
func WithAuthorizeTimeout(d time.Duration) Option {
	return func(s *Service) { s.authorizeTimeout = d }
}

// NewService wires a Service. Without WithLocker only the Ledger's uniqueness
// constraint guards concurrent requests for one key.
func NewService(ledger Ledger, authorizer Authorizer, opts ...Option) *Service {
	s := &Service{
		ledger:           ledger,
		authorizer:       authorizer,
		locker:           unguarded{},
		authorizeTimeout: defaultAuthorizeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process authorizes and records req once per idempotency key. Repeated calls
// with the same key return the stored outcome without calling the Authorizer.
// The PaymentProcessed event goes out after the key lock is released.
func (s *Service) Process(ctx context.Context, req Request) (Outcome, error) {
	log.Printf("[payment][service] process start idempotency_key=%s", req.IdempotencyKey)

	created, outcome, err := s.processLocked(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	if created != nil {
		s.publish(ctx, *created)
	}
	return outcome, nil
}

// processLocked runs lookup, authorize and create under the key lock. It
// returns the new payment only when this call created it.
func (s *Service) processLocked(ctx context.Context, req Request) (*Payment, Outcome, error) {
	key := req.IdempotencyKey

	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		log.Printf("[payment][service] lock failed idempotency_key=%s err=%v", key, err)
		return nil, Outcome{}, processingError("lock idempotency key", err)
	}
	defer unlock()

	existing, err := s.ledger.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, Outcome{}, processingError("lookup idempotency key", err)
	}
	if existing != nil {
		log.Printf("[payment][service] replay idempotency_key=%s payment_id=%s status=%s", key, existing.ID, existing.Status)
		return nil, ReplayOutcome(*existing), nil
	}

	approved, err := s.authorize(ctx, req)
	if err != nil {
		log.Printf("[payment][service] authorize failed idempotency_key=%s err=%v", key, err)
		return nil, Outcome{}, processingError("authorize", err)
	}

	created, err := s.ledger.Create(ctx, NewPayment(req, approved))
	if errors.Is(err, ErrDuplicateIdempotencyKey) {
		// Another writer got past the lock; its record is authoritative.
		log.Printf("[payment][service] create lost race idempotency_key=%s", key)
		winner, findErr := s.ledger.FindByIdempotencyKey(ctx, key)
		if findErr != nil {
			return nil, Outcome{}, processingError("lookup idempotency key after conflict", findErr)
		}
		if winner == nil {
			return nil, Outcome{}, processingError("create payment", err)
		}
		return nil, ReplayOutcome(*winner), nil
	}
	if err != nil {
		log.Printf("[payment][service] create failed idempotency_key=%s err=%v", key, err)
		return nil, Outcome{}, processingError("create payment", err)
	}

	log.Printf("[payment][service] process success idempotency_key=%s payment_id=%s status=%s", key, created.ID, created.Status)
	return &created, FreshOutcome(created), nil
}

// Retrieve returns the redacted view of the payment with the given id.
func (s *Service) Retrieve(ctx context.Context, id string) (View, error) {
	p, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return View{}, processingError("get payment", err)
	}
	if p == nil {
		log.Printf("[payment][service] retrieve not-found payment_id=%s", id)
		return View{}, &NotFoundError{ID: id}
	}
	v, err := NewView(*p)
	if err != nil {
		return View{}, processingError("redact payment", fmt.Errorf("payment %s: %w", id, err))
	}
	return v, nil
}

func (s *Service) authorize(ctx context.Context, req Request) (bool, error) {
	if s.authorizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.authorizeTimeout)
		defer cancel()
	}
	return s.authorizer.Authorize(ctx, req)
}

func (s *Service) publish(ctx context.Context, p Payment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPaymentProcessed(ctx, eventFor(p)); err != nil {
		log.Printf("[payment][service] publish failed payment_id=%s err=%v", p.ID, err)
	}
}

type unguarded struct{}

func (unguarded) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
