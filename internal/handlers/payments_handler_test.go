package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/imrishuroy/go-idempotent-payments/internal/handlers/mocks"
	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

const validBody = `{"cardNumber":"4111111111111112","expiryMonth":"12","expiryYear":"2030","cvv":"123","amount":100.50,"currency":"USD","idempotencyKey":"key-1"}`

func newTestRouter(svc PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r, svc)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return er
}

func TestProcessPayment(t *testing.T) {
	t.Run("validation errors never reach the service", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		w := do(r, http.MethodPost, "/payments", `{"expiryMonth":"13","expiryYear":"2030","cvv":"123","amount":-1,"currency":"USD"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		er := decodeError(t, w)
		if er.Status != http.StatusBadRequest || er.Error != "Validation failed" || er.Timestamp == "" {
			t.Fatalf("unexpected error body: %+v", er)
		}
		for _, field := range []string{"cardNumber", "expiryMonth", "amount", "idempotencyKey"} {
			if er.ValidationErrors[field] == "" {
				t.Fatalf("expected message for %s, got %v", field, er.ValidationErrors)
			}
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := newTestRouter(mocks.NewMockPaymentService(ctrl))

		w := do(r, http.MethodPost, "/payments", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		er := decodeError(t, w)
		if er.Error != "Malformed request body" || er.ValidationErrors["body"] == "" {
			t.Fatalf("unexpected error body: %+v", er)
		}
	})

	t.Run("fresh success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		svc.EXPECT().Process(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, req payments.Request) (payments.Outcome, error) {
			if req.CardNumber != "4111111111111112" || req.CVV != "123" || !req.Amount.Equal(decimal.RequireFromString("100.5")) {
				t.Errorf("request not mapped: %+v", req)
			}
			return payments.Outcome{ID: "p-1", Status: payments.StatusSuccess, Message: payments.MessageSuccess}, nil
		})

		w := do(r, http.MethodPost, "/payments", validBody)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Header().Get(ReplayedHeader) != "" {
			t.Fatalf("fresh outcome must not be flagged as replay")
		}
		var resp PaymentResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp != (PaymentResponse{ID: "p-1", Status: "SUCCESS", Message: payments.MessageSuccess}) {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("replay sets header", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		svc.EXPECT().Process(gomock.Any(), gomock.Any()).Return(payments.Outcome{ID: "p-1", Status: payments.StatusFailure, Replayed: true}, nil)

		w := do(r, http.MethodPost, "/payments", validBody)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Header().Get(ReplayedHeader) != "true" {
			t.Fatalf("expected replay header")
		}
		if !strings.Contains(w.Body.String(), `"message":""`) {
			t.Fatalf("replay should carry an empty message: %s", w.Body.String())
		}
	})

	t.Run("processing failure is a 500 without details", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		svc.EXPECT().Process(gomock.Any(), gomock.Any()).Return(payments.Outcome{}, &payments.ProcessingError{Op: "create payment", Err: errors.New("dynamodb: secret detail")})

		w := do(r, http.MethodPost, "/payments", validBody)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		er := decodeError(t, w)
		if er.Error != "An internal error occurred" || strings.Contains(w.Body.String(), "secret") {
			t.Fatalf("unexpected error body: %s", w.Body.String())
		}
	})
}

func TestGetPayment(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		svc.EXPECT().Retrieve(gomock.Any(), "p-1").Return(payments.View{
			ID:               "p-1",
			MaskedCardNumber: "XXXX-XXXX-XXXX-1112",
			ExpiryMonth:      "12",
			ExpiryYear:       "2030",
			Amount:           decimal.RequireFromString("100.50"),
			Currency:         "USD",
			Status:           payments.StatusSuccess,
		}, nil)

		w := do(r, http.MethodGet, "/payments/p-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, `"amount":100.5`) {
			t.Fatalf("amount should be a JSON number: %s", body)
		}
		if !strings.Contains(body, `"maskedCardNumber":"XXXX-XXXX-XXXX-1112"`) {
			t.Fatalf("masked card missing: %s", body)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		svc.EXPECT().Retrieve(gomock.Any(), "42").Return(payments.View{}, &payments.NotFoundError{ID: "42"})

		w := do(r, http.MethodGet, "/payments/42", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if er := decodeError(t, w); er.Error != "Payment with ID 42 not found." || er.Status != http.StatusNotFound {
			t.Fatalf("unexpected error body: %+v", er)
		}
	})

	t.Run("processing failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockPaymentService(ctrl)
		r := newTestRouter(svc)

		svc.EXPECT().Retrieve(gomock.Any(), "7").Return(payments.View{}, &payments.ProcessingError{Op: "redact payment", Err: payments.ErrCardNumberTooShort})

		w := do(r, http.MethodGet, "/payments/7", "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}
