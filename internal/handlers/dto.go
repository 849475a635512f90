package handlers

import (
	"encoding/json"
	"time"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// PaymentResponse is returned by POST /payments. Message is empty on replays.
type PaymentResponse struct {
	ID      string `json:"id" example:"6f1c2c1e-8a43-4d5e-9d57-3f3b9b0a1f00"`
	Status  string `json:"status" example:"SUCCESS"`
	Message string `json:"message" example:"Payment processed successfully."`
}

// PaymentViewResponse is returned by GET /payments/{id}.
type PaymentViewResponse struct {
	ID               string      `json:"id"`
	MaskedCardNumber string      `json:"maskedCardNumber" example:"XXXX-XXXX-XXXX-1112"`
	ExpiryMonth      string      `json:"expiryMonth" example:"12"`
	ExpiryYear       string      `json:"expiryYear" example:"2030"`
	Amount           json.Number `json:"amount" swaggertype:"number" example:"100.5"`
	Currency         string      `json:"currency" example:"USD"`
	Status           string      `json:"status" example:"SUCCESS"`
}

// ErrorResponse is the body of every 4xx/5xx answer.
type ErrorResponse struct {
	Timestamp        string            `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func fromOutcome(o payments.Outcome) PaymentResponse {
	return PaymentResponse{ID: o.ID, Status: string(o.Status), Message: o.Message}
}

func fromView(v payments.View) PaymentViewResponse {
	return PaymentViewResponse{
		ID:               v.ID,
		MaskedCardNumber: v.MaskedCardNumber,
		ExpiryMonth:      v.ExpiryMonth,
		ExpiryYear:       v.ExpiryYear,
		Amount:           json.Number(v.Amount.String()),
		Currency:         v.Currency,
		Status:           string(v.Status),
	}
}

func newErrorResponse(status int, msg string, fields map[string]string) ErrorResponse {
	return ErrorResponse{
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		Status:           status,
		Error:            msg,
		ValidationErrors: fields,
	}
}
