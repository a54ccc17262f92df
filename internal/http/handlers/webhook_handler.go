// Webhook HTTP handlers.
//
// Webhook callers live outside the tenant group: a payment provider does not
// send a store host or an employee token. Instead the platform's mapping of
// provider account to store travels in the payload as an explicit store id,
// and resolution runs here per event rather than in middleware.
package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/vendora/go-commerce-backend/internal/http/middleware"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// TenantResolver resolves an inbound unit of work to a bound tenant context.
type TenantResolver interface {
	Resolve(ctx context.Context, req tenant.ResolveRequest) (*tenant.TenantContext, error)
}

// WebhookHandlers serves endpoints for external collaborators.
type WebhookHandlers struct {
	resolver TenantResolver
	orderSvc OrderService
	// secret authenticates webhook payloads via an HMAC signature header.
	secret []byte
}

// NewWebhook constructs WebhookHandlers.
func NewWebhook(resolver TenantResolver, orderSvc OrderService, secret []byte) *WebhookHandlers {
	return &WebhookHandlers{resolver: resolver, orderSvc: orderSvc, secret: secret}
}

// PaymentEventRequest is the JSON payload a payment provider posts when a
// charge settles. StoreID is the platform's own id for the store, mapped by
// the provider integration at configuration time.
type PaymentEventRequest struct {
	StoreID     uint64 `json:"store_id" binding:"required" example:"42"`
	OrderID     string `json:"order_id" binding:"required" format:"uuid"`
	Method      string `json:"method" binding:"required,oneof=card cash transfer" example:"card"`
	AmountCents int64  `json:"amount_cents" binding:"required,min=0" example:"2399"`
	Reference   string `json:"reference" example:"psp-7f3b9"`
}

// PaymentEvent godoc
// @ID          paymentEvent
// @Summary     Ingest a payment provider event
// @Description Verifies the X-Webhook-Signature HMAC, resolves the addressed store
// @Description by its explicit id, and records the payment in that store's
// @Description database. Suspended and closed stores reject events with 403.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       X-Webhook-Signature  header  string                         true  "hex(HMAC-SHA256(secret, body))"
// @Param       body                 body    handlers.PaymentEventRequest   true  "Event payload"
//
// @Success     201  {object}  domain.Payment
// @Failure     401  {object}  handlers.ErrorResponse  "Bad signature"
// @Failure     403  {object}  handlers.ErrorResponse  "Store not accepting requests"
// @Failure     404  {object}  handlers.ErrorResponse  "Store or order not found"
// @Router      /webhooks/payments [post]
func (h *WebhookHandlers) PaymentEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}
	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "bad signature")
		return
	}

	var req PaymentEventRequest
	if err := bindJSONBytes(body, &req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	tc, err := h.resolver.Resolve(c.Request.Context(), tenant.ResolveRequest{StoreID: req.StoreID})
	if err != nil {
		var be *tenant.BindingError
		switch {
		case errors.Is(err, tenant.ErrTenantInactive):
			fail(c, http.StatusForbidden, ErrCodeTenantInactive, "store is not accepting requests")
		case errors.As(err, &be):
			fail(c, http.StatusServiceUnavailable, ErrCodeTenantUnavailable, "store database unavailable")
		default:
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "store not found")
		}
		return
	}

	lg := middleware.LoggerFrom(c)
	p, err := h.orderSvc.RecordPayment(c.Request.Context(), tc, req.OrderID, req.Method, req.AmountCents, req.Reference)
	if err != nil {
		lg.Warn().Err(err).Uint64("store_id", req.StoreID).Str("order_id", req.OrderID).Msg("webhook payment rejected")
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		return
	}
	lg.Info().Uint64("store_id", req.StoreID).Str("order_id", req.OrderID).Msg("webhook payment recorded")
	ok(c, http.StatusCreated, p)
}

// bindJSONBytes decodes and validates a JSON payload that was already read
// (the signature check consumes the body first).
func bindJSONBytes(body []byte, obj any) error {
	return binding.JSON.BindBody(body, obj)
}

// verifySignature checks the hex HMAC-SHA256 of body against the header
// value in constant time. An empty configured secret rejects everything.
func (h *WebhookHandlers) verifySignature(body []byte, sig string) bool {
	if len(h.secret) == 0 || sig == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(sig))
}
