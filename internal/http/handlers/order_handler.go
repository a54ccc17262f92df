// Order and stats HTTP handlers.
//
// This file exposes REST endpoints for orders, payments, and the store
// dashboard snapshot, all inside the tenant group:
//   - POST /orders                 (place, Idempotency-Key aware)
//   - GET  /orders                 (list, paginated)
//   - GET  /orders/{id}            (fetch with items)
//   - POST /orders/{id}/payments   (record payment)
//   - GET  /stats                  (dashboard snapshot, degradable)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/http/middleware"
	"github.com/vendora/go-commerce-backend/internal/services"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// OrderService defines order operations consumed by HTTP handlers.
type OrderService interface {
	Place(ctx context.Context, tc *tenant.TenantContext, in services.PlaceOrderInput) (*services.PlaceOrderResult, error)
	Get(ctx context.Context, tc *tenant.TenantContext, id string) (*domain.Order, error)
	ListPage(ctx context.Context, tc *tenant.TenantContext, page, pageSize int) ([]domain.Order, int64, error)
	RecordPayment(ctx context.Context, tc *tenant.TenantContext, orderID, method string, amountCents int64, reference string) (*domain.Payment, error)
}

// StatsService defines the dashboard snapshot operation.
type StatsService interface {
	Snapshot(ctx context.Context, tc *tenant.TenantContext, since time.Time) services.StatsResult
}

//
// DTOs
//

// OrderItemRequest is one requested line in a new order.
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required" format:"uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1" example:"2"`
}

// PlaceOrderRequest is the JSON payload for placing an order.
type PlaceOrderRequest struct {
	CustomerEmail string             `json:"customer_email" binding:"required,email" example:"jo@example.com"`
	CustomerName  string             `json:"customer_name" example:"Jo Doe"`
	CustomerPhone string             `json:"customer_phone" example:"+49 30 1234567"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1"`
}

// PlaceOrderResponse wraps the placed order; Replayed is true when the
// Idempotency-Key matched a previous placement and that order is returned.
type PlaceOrderResponse struct {
	Order    *domain.Order `json:"order"`
	Replayed bool          `json:"replayed"`
}

// RecordPaymentRequest is the JSON payload for recording a payment.
type RecordPaymentRequest struct {
	Method      string `json:"method" binding:"required,oneof=card cash transfer" example:"card"`
	AmountCents int64  `json:"amount_cents" binding:"required,min=0" example:"2399"`
	Reference   string `json:"reference" example:"psp-7f3b9"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

//
// Handlers
//

// PlaceOrder godoc
// @ID          placeOrder
// @Summary     Place an order
// @Description Places an order against current catalog prices and stock. Supply an
// @Description Idempotency-Key header to make retries safe: a repeated key returns
// @Description the original order instead of placing a second one.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                      false  "Retry-safe key"
// @Param       body             body    handlers.PlaceOrderRequest  true   "Order payload"
//
// @Success     201  {object}  handlers.PlaceOrderResponse
// @Success     200  {object}  handlers.PlaceOrderResponse  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Out of stock"
// @Router      /orders [post]
func (h *Handlers) PlaceOrder(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.PlaceOrderInput{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if key, present := middleware.GetIdempotencyKey(c); present {
		in.IdempotencyKey = key
		in.ActorID = middleware.ActorID(c)
	}

	res, err := h.orderSvc.Place(c.Request.Context(), tc, in)
	switch {
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidCustomer):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrProductNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrOutOfStock):
		fail(c, http.StatusConflict, ErrCodeOutOfStock, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	case res.Replayed:
		ok(c, http.StatusOK, PlaceOrderResponse{Order: res.Order, Replayed: true})
	default:
		ok(c, http.StatusCreated, PlaceOrderResponse{Order: res.Order})
	}
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders (paginated, newest first)
// @Tags        Orders
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListOrdersResponse
// @Router      /orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	page, pageSize := clampPagination(c)
	items, total, err := h.orderSvc.ListPage(c.Request.Context(), tc, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListOrdersResponse{Orders: items, Pagination: paginationOf(page, pageSize, total)})
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Fetch an order with its items
// @Tags        Orders
// @Produce     json
//
// @Param       id  path  string  true  "Order ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Order
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Router      /orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}
	o, err := h.orderSvc.Get(c.Request.Context(), tc, id)
	if errors.Is(err, services.ErrOrderNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, o)
}

// RecordPayment godoc
// @ID          recordPayment
// @Summary     Record a payment against an order
// @Description Appends a captured payment. The order flips to paid once payments
// @Description cover its total.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                          true  "Order ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RecordPaymentRequest   true  "Payment payload"
//
// @Success     201  {object}  domain.Payment
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payment"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Router      /orders/{id}/payments [post]
func (h *Handlers) RecordPayment(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.orderSvc.RecordPayment(c.Request.Context(), tc, c.Param("id"), req.Method, req.AmountCents, req.Reference)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
	case errors.Is(err, services.ErrInvalidPayment):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPayment, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusCreated, p)
	}
}

// GetStats godoc
// @ID          getStats
// @Summary     Store dashboard snapshot
// @Description Returns product, customer, and order counts plus revenue. When the
// @Description tenant database cannot answer, responds 200 with zeros and
// @Description degraded=true instead of failing the dashboard.
// @Tags        Stats
// @Produce     json
//
// @Param       since  query  string  false  "RFC 3339 lower bound for orders/revenue"
//
// @Success     200  {object}  services.StatsResult
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "since must be RFC 3339")
			return
		}
		since = t
	}
	ok(c, http.StatusOK, h.statsSvc.Snapshot(c.Request.Context(), tc, since))
}
