package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
	"github.com/imrishuroy/go-idempotent-payments/internal/validation"
)

//go:generate mockgen -destination=mocks/mock_payment_service.go -package=mocks . PaymentService

// ReplayedHeader is set on POST /payments answers served from an earlier request.
const ReplayedHeader = "Idempotent-Replayed"

const messageInternalError = "An internal error occurred"

// PaymentService is the part of payments.Service the handlers call.
type PaymentService interface {
	Process(ctx context.Context, req payments.Request) (payments.Outcome, error)
	Retrieve(ctx context.Context, id string) (payments.View, error)
}

var _ PaymentService = (*payments.Service)(nil)

// PaymentHandler serves the payment routes.
type PaymentHandler struct {
	service   PaymentService
	validator *validatorv10.Validate
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc, validator: validation.New()}
}

// RegisterPaymentRoutes registers routes for the payment API.
func RegisterPaymentRoutes(r gin.IRouter, svc PaymentService) {
	h := NewPaymentHandler(svc)
	r.POST("/payments", h.ProcessPayment)
	r.GET("/payments/:id", h.GetPayment)
}

// ProcessPayment godoc
// @Summary      Process a card payment
// @Description  Authorizes and records a payment once per idempotency key. Repeats return the stored outcome.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      validation.PaymentRequest  true  "Payment request"
// @Success      200      {object}  PaymentResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /payments [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req validation.PaymentRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			log.Printf("[payment][handler] process rejected reason=%q fields=%d", verr.Message, len(verr.Fields))
			c.JSON(http.StatusBadRequest, newErrorResponse(http.StatusBadRequest, verr.Message, verr.Fields))
			return
		}
		writeError(c, err)
		return
	}

	log.Printf("[payment][handler] process start idempotency_key=%s", req.IdempotencyKey)
	outcome, err := h.service.Process(c.Request.Context(), req.ToDomain())
	if err != nil {
		log.Printf("[payment][handler] process failed idempotency_key=%s err=%v", req.IdempotencyKey, err)
		writeError(c, err)
		return
	}

	if outcome.Replayed {
		c.Header(ReplayedHeader, "true")
	}
	log.Printf("[payment][handler] process success idempotency_key=%s payment_id=%s status=%s replayed=%t",
		req.IdempotencyKey, outcome.ID, outcome.Status, outcome.Replayed)
	c.JSON(http.StatusOK, fromOutcome(outcome))
}

// GetPayment godoc
// @Summary      Get a payment
// @Description  Returns the stored payment with its card number masked.
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  PaymentViewResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	log.Printf("[payment][handler] get start payment_id=%s", id)

	view, err := h.service.Retrieve(c.Request.Context(), id)
	if err != nil {
		log.Printf("[payment][handler] get failed payment_id=%s err=%v", id, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromView(view))
}

// writeError maps core errors to HTTP answers. Unknown errors are 500s and
// never echo their cause to the client.
func writeError(c *gin.Context, err error) {
	var nf *payments.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, newErrorResponse(http.StatusNotFound, nf.Error(), nil))
		return
	}
	c.JSON(http.StatusInternalServerError, newErrorResponse(http.StatusInternalServerError, messageInternalError, nil))
}
