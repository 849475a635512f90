package authorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/mercadopago/sdk-go/pkg/cardtoken"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

type fakeCreator struct {
	resp *payment.Response
	err  error
	got  []payment.Request
}

func (f *fakeCreator) Create(ctx context.Context, request payment.Request) (*payment.Response, error) {
	f.got = append(f.got, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeTokenizer struct {
	err error
	got []cardtoken.Request
}

func (f *fakeTokenizer) Create(ctx context.Context, request cardtoken.Request) (*cardtoken.Response, error) {
	f.got = append(f.got, request)
	if f.err != nil {
		return nil, f.err
	}
	return &cardtoken.Response{ID: "tok-1", LastFourDigits: request.CardNumber[len(request.CardNumber)-4:]}, nil
}

func mpRequest() payments.Request {
	return payments.Request{
		CardNumber:     "4111111111111111",
		ExpiryMonth:    "12",
		ExpiryYear:     "2030",
		CVV:            "123",
		Amount:         decimal.RequireFromString("25.90"),
		Currency:       "BRL",
		IdempotencyKey: "order-77",
	}
}

func TestMercadoPago_Approved(t *testing.T) {
	fake := &fakeCreator{resp: &payment.Response{ID: 42, Status: "approved"}}
	tokens := &fakeTokenizer{}
	g := newMercadoPago(fake, tokens, MercadoPagoConfig{PayerEmail: "buyer@example.com"})

	ok, err := g.Authorize(context.Background(), mpRequest())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !ok {
		t.Fatalf("expected approval")
	}
	if len(fake.got) != 1 {
		t.Fatalf("expected one provider call, got %d", len(fake.got))
	}
	sent := fake.got[0]
	if sent.TransactionAmount != 25.9 || sent.ExternalReference != "order-77" {
		t.Fatalf("unexpected request: %+v", sent)
	}
	if sent.PaymentMethodID != defaultPaymentMethodID {
		t.Fatalf("expected default payment method, got %s", sent.PaymentMethodID)
	}
	if sent.Payer == nil || sent.Payer.Email != "buyer@example.com" {
		t.Fatalf("payer email not sent")
	}
	if sent.Token != "tok-1" {
		t.Fatalf("expected the card token on the payment, got %q", sent.Token)
	}
	if len(tokens.got) != 1 {
		t.Fatalf("expected one tokenization, got %d", len(tokens.got))
	}
	card := tokens.got[0]
	if card.CardNumber != "4111111111111111" || card.ExpirationMonth != "12" || card.ExpirationYear != "2030" || card.SecurityCode != "123" {
		t.Fatalf("card details not tokenized: %+v", card)
	}
}

func TestMercadoPago_Rejected(t *testing.T) {
	fake := &fakeCreator{resp: &payment.Response{ID: 43, Status: "rejected"}}
	g := newMercadoPago(fake, &fakeTokenizer{}, MercadoPagoConfig{PaymentMethodID: "master"})

	ok, err := g.Authorize(context.Background(), mpRequest())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if ok {
		t.Fatalf("expected decline")
	}
	if fake.got[0].Payer != nil {
		t.Fatalf("payer should be omitted without an email")
	}
	if fake.got[0].PaymentMethodID != "master" {
		t.Fatalf("configured payment method not sent: %s", fake.got[0].PaymentMethodID)
	}
}

func TestMercadoPago_ProviderError(t *testing.T) {
	boom := errors.New("502 bad gateway")
	g := newMercadoPago(&fakeCreator{err: boom}, &fakeTokenizer{}, MercadoPagoConfig{})

	if _, err := g.Authorize(context.Background(), mpRequest()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestMercadoPago_TokenErrorSkipsPayment(t *testing.T) {
	boom := errors.New("invalid card")
	creator := &fakeCreator{resp: &payment.Response{Status: "approved"}}
	g := newMercadoPago(creator, &fakeTokenizer{err: boom}, MercadoPagoConfig{})

	if _, err := g.Authorize(context.Background(), mpRequest()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped token error, got %v", err)
	}
	if len(creator.got) != 0 {
		t.Fatalf("payment must not be created without a token")
	}
}

func TestMercadoPago_MockMode(t *testing.T) {
	g, err := NewMercadoPago(MercadoPagoConfig{MockMode: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	req := mpRequest()
	if ok, _ := g.Authorize(context.Background(), req); ok {
		t.Fatalf("odd card should be declined in mock mode")
	}
	req.CardNumber = "4111111111111112"
	if ok, _ := g.Authorize(context.Background(), req); !ok {
		t.Fatalf("even card should be approved in mock mode")
	}
}

func TestNewMercadoPago_MissingToken(t *testing.T) {
	if _, err := NewMercadoPago(MercadoPagoConfig{}); !errors.Is(err, ErrMissingMercadoPagoAccessToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}
