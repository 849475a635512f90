package authorizer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mercadopago/sdk-go/pkg/cardtoken"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

const (
	mercadoPagoApproved       = "approved"
	defaultPaymentMethodID    = "visa"
	defaultPaymentDescription = "card payment"
)

// paymentCreator is the part of payment.Client the authorizer needs.
type paymentCreator interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
}

// cardTokenizer is the part of cardtoken.Client the authorizer needs.
type cardTokenizer interface {
	Create(ctx context.Context, request cardtoken.Request) (*cardtoken.Response, error)
}

// MercadoPagoConfig configures NewMercadoPago.
type MercadoPagoConfig struct {
	AccessToken     string
	PayerEmail      string
	PaymentMethodID string
	// MockMode skips the provider and decides by card parity.
	MockMode bool
}

// MercadoPago authorizes by creating a payment with Mercado Pago and
// approving when the provider reports it approved.
type MercadoPago struct {
	client          paymentCreator
	tokens          cardTokenizer
	payerEmail      string
	paymentMethodID string
	mockMode        bool
}

var _ payments.Authorizer = (*MercadoPago)(nil)

func NewMercadoPago(cfg MercadoPagoConfig) (*MercadoPago, error) {
	if cfg.MockMode {
		log.Printf("[payment][gateway] mock mode enabled")
		return &MercadoPago{mockMode: true}, nil
	}

	if cfg.AccessToken == "" {
		log.Printf("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	sdkCfg, err := config.New(cfg.AccessToken)
	if err != nil {
		log.Printf("[payment][gateway] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[payment][gateway] Mercado Pago client initialized")

	return newMercadoPago(payment.NewClient(sdkCfg), cardtoken.NewClient(sdkCfg), cfg), nil
}

func newMercadoPago(client paymentCreator, tokens cardTokenizer, cfg MercadoPagoConfig) *MercadoPago {
	methodID := cfg.PaymentMethodID
	if methodID == "" {
		methodID = defaultPaymentMethodID
	}
	return &MercadoPago{
		client:          client,
		tokens:          tokens,
		payerEmail:      cfg.PayerEmail,
		paymentMethodID: methodID,
	}
}

// Authorize tokenizes the card, then creates the provider payment with that
// token. The idempotency key is sent as the external reference so provider
// records can be matched to ours.
func (g *MercadoPago) Authorize(ctx context.Context, req payments.Request) (bool, error) {
	if g.mockMode {
		approved := approveByParity(req.CardNumber)
		log.Printf("[payment][gateway] mock authorize idempotency_key=%s approved=%t", req.IdempotencyKey, approved)
		return approved, nil
	}

	token, err := g.tokens.Create(ctx, cardtoken.Request{
		CardNumber:      req.CardNumber,
		ExpirationMonth: req.ExpiryMonth,
		ExpirationYear:  req.ExpiryYear,
		SecurityCode:    req.CVV,
	})
	if err != nil {
		log.Printf("[payment][gateway] card token failed idempotency_key=%s err=%v", req.IdempotencyKey, err)
		return false, fmt.Errorf("mercadopago card token: %w", err)
	}

	log.Printf("[payment][gateway] create start idempotency_key=%s currency=%s", req.IdempotencyKey, req.Currency)
	mpReq := payment.Request{
		TransactionAmount: req.Amount.InexactFloat64(),
		Description:       defaultPaymentDescription,
		ExternalReference: req.IdempotencyKey,
		PaymentMethodID:   g.paymentMethodID,
		Token:             token.ID,
		Installments:      1,
	}
	if g.payerEmail != "" {
		mpReq.Payer = &payment.PayerRequest{Email: g.payerEmail}
	}

	resp, err := g.client.Create(ctx, mpReq)
	if err != nil {
		log.Printf("[payment][gateway] sdk create failed idempotency_key=%s err=%v", req.IdempotencyKey, err)
		return false, fmt.Errorf("mercadopago create payment: %w", err)
	}
	log.Printf("[payment][gateway] create success provider_payment_id=%d provider_status=%s", resp.ID, resp.Status)

	return resp.Status == mercadoPagoApproved, nil
}
