// Platform store HTTP handlers.
//
// This file exposes REST endpoints for the store lifecycle on the platform
// (landlord) side:
//   - POST   /stores                    (register)
//   - GET    /stores                    (list, paginated)
//   - GET    /stores/{id}               (fetch)
//   - POST   /stores/{id}/provision     (create + migrate + seed the tenant database)
//   - POST   /stores/{id}/suspend       (gate traffic off)
//   - POST   /stores/{id}/reactivate    (gate traffic back on)
//   - POST   /stores/{id}/close         (soft close)
//   - PUT    /stores/{id}/domain        (attach/detach custom domain)
//   - POST   /stores/{id}/trial         (start one-time trial)
//   - DELETE /stores/{id}               (hard delete, drops the tenant database)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/services"
	"github.com/vendora/go-commerce-backend/internal/tenant"
	"github.com/vendora/go-commerce-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// StoreService defines store lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type StoreService interface {
	// Create registers a store owned by ownerID under a unique slug.
	Create(ctx context.Context, ownerID, name, slug string) (*domain.Store, error)
	// Get fetches one store by id.
	Get(ctx context.Context, id uint64) (*domain.Store, error)
	// ListPage returns a page of stores and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Store, int64, error)
	// Provision creates, migrates, and seeds the store's own database.
	Provision(ctx context.Context, id uint64) (*domain.Store, error)
	// Suspend gates the store off from serving requests.
	Suspend(ctx context.Context, id uint64) error
	// Reactivate lifts a suspension.
	Reactivate(ctx context.Context, id uint64) error
	// Close permanently closes the store, keeping its data.
	Close(ctx context.Context, id uint64) error
	// HardDelete drops the tenant database and erases the registry row.
	HardDelete(ctx context.Context, id uint64) error
	// UpdateCustomDomain attaches (non-nil) or detaches (nil) a custom domain.
	UpdateCustomDomain(ctx context.Context, id uint64, customDomain *string) (*domain.Store, error)
	// StartTrial starts the one-time trial window.
	StartTrial(ctx context.Context, id uint64, days int) (*domain.Store, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for platform and store-scoped APIs.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	storeSvc   StoreService
	catalogSvc CatalogService
	orderSvc   OrderService
	statsSvc   StatsService
	authSvc    AuthService
	// resolver serves platform endpoints that address a store by explicit id
	// (employee bootstrap) outside the tenant middleware.
	resolver TenantResolver
}

// New constructs and returns a Handlers instance bound to the given services.
func New(storeSvc StoreService, catalogSvc CatalogService, orderSvc OrderService, statsSvc StatsService, authSvc AuthService, resolver TenantResolver) *Handlers {
	return &Handlers{
		storeSvc:   storeSvc,
		catalogSvc: catalogSvc,
		orderSvc:   orderSvc,
		statsSvc:   statsSvc,
		authSvc:    authSvc,
		resolver:   resolver,
	}
}

//
// DTOs
//

// CreateStoreRequest is the JSON payload for registering a store.
type CreateStoreRequest struct {
	// Name is the display name of the store.
	Name string `json:"name" binding:"required,min=1,max=255" example:"Kaffee Nord"`
	// Slug is the unique short name; lowercased and normalized server-side.
	Slug string `json:"slug" binding:"required,min=1,max=64" example:"kaffee-nord"`
	// OwnerID references an existing platform owner.
	OwnerID string `json:"owner_id" binding:"required" format:"uuid"`
}

// UpdateDomainRequest is the JSON payload for attaching or detaching a
// custom domain. An empty domain detaches.
type UpdateDomainRequest struct {
	Domain string `json:"domain" example:"shop.kaffee-nord.de"`
}

// StartTrialRequest is the JSON payload for starting a trial window.
type StartTrialRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365" example:"14"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListStoresResponse wraps a page of stores and pagination information.
type ListStoresResponse struct {
	Stores     []domain.Store `json:"stores"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationOf builds the pagination envelope for a page of results.
func paginationOf(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// storeID parses the :id path parameter. A second return of false means the
// handler already wrote a 400 response.
func storeID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "store id must be a positive integer")
		return 0, false
	}
	return id, true
}

//
// Handlers
//

// CreateStore godoc
// @ID          createStore
// @Summary     Register a new store
// @Description Registers a store under a unique slug. The store starts in pending
// @Description status without a database; call provision to make it serveable.
// @Tags        Stores
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateStoreRequest  true  "Create store payload"
//
// @Success     201  {object}  domain.Store
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Slug already taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores [post]
func (h *Handlers) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	store, err := h.storeSvc.Create(c.Request.Context(), req.OwnerID, strings.TrimSpace(req.Name), req.Slug)
	switch {
	case errors.Is(err, services.ErrInvalidSlug):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid slug")
	case errors.Is(err, services.ErrSlugTaken):
		fail(c, http.StatusConflict, ErrCodeSlugTaken, "slug already taken")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	default:
		ok(c, http.StatusCreated, store)
	}
}

// ListStores godoc
// @ID          listStores
// @Summary     List stores (paginated)
// @Tags        Stores
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListStoresResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores [get]
func (h *Handlers) ListStores(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.storeSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListStoresResponse{Stores: items, Pagination: paginationOf(page, pageSize, total)})
}

// GetStore godoc
// @ID          getStore
// @Summary     Fetch a store
// @Tags        Stores
// @Produce     json
//
// @Param       id  path  int  true  "Store ID"
//
// @Success     200  {object}  domain.Store
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Router      /stores/{id} [get]
func (h *Handlers) GetStore(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	store, err := h.storeSvc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "store not found")
		return
	}
	ok(c, http.StatusOK, store)
}

// ProvisionStore godoc
// @ID          provisionStore
// @Summary     Provision a store's database
// @Description Creates the store's physical database, migrates the tenant schema,
// @Description seeds defaults, and activates the store. Idempotent: provisioning an
// @Description already-provisioned store is a no-op.
// @Tags        Stores
// @Produce     json
//
// @Param       id  path  int  true  "Store ID"
//
// @Success     200  {object}  domain.Store
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Provisioning failed"
// @Router      /stores/{id}/provision [post]
func (h *Handlers) ProvisionStore(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	store, err := h.storeSvc.Provision(c.Request.Context(), id)
	var pe *tenant.ProvisioningError
	switch {
	case errors.Is(err, services.ErrStoreNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "store not found")
	case errors.As(err, &pe):
		fail(c, http.StatusBadGateway, ErrCodeProvisioningFailed, "provisioning failed at step "+pe.Step)
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, store)
	}
}

// SuspendStore godoc
// @ID          suspendStore
// @Summary     Suspend a store
// @Description Suspended stores keep their data but reject all tenant traffic
// @Description immediately (host cache entries are invalidated).
// @Tags        Stores
// @Produce     json
//
// @Param       id  path  int  true  "Store ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Router      /stores/{id}/suspend [post]
func (h *Handlers) SuspendStore(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	if err := h.storeSvc.Suspend(c.Request.Context(), id); err != nil {
		failStoreErr(c, err)
		return
	}
	noContent(c)
}

// ReactivateStore godoc
// @ID          reactivateStore
// @Summary     Reactivate a suspended store
// @Tags        Stores
// @Produce     json
//
// @Param       id  path  int  true  "Store ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Router      /stores/{id}/reactivate [post]
func (h *Handlers) ReactivateStore(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	if err := h.storeSvc.Reactivate(c.Request.Context(), id); err != nil {
		failStoreErr(c, err)
		return
	}
	noContent(c)
}

// CloseStore godoc
// @ID          closeStore
// @Summary     Close a store
// @Description Closing is permanent from the merchant's perspective but keeps the
// @Description tenant database for export and audit. Use DELETE for full erasure.
// @Tags        Stores
// @Produce     json
//
// @Param       id  path  int  true  "Store ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Router      /stores/{id}/close [post]
func (h *Handlers) CloseStore(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	if err := h.storeSvc.Close(c.Request.Context(), id); err != nil {
		failStoreErr(c, err)
		return
	}
	noContent(c)
}

// DeleteStore godoc
// @ID          deleteStore
// @Summary     Hard-delete a store
// @Description Drops the store's database and erases its registry row. Irreversible.
// @Tags        Stores
// @Produce     json
//
// @Param       id  path  int  true  "Store ID"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Router      /stores/{id} [delete]
func (h *Handlers) DeleteStore(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	if err := h.storeSvc.HardDelete(c.Request.Context(), id); err != nil {
		failStoreErr(c, err)
		return
	}
	noContent(c)
}

// UpdateStoreDomain godoc
// @ID          updateStoreDomain
// @Summary     Attach or detach a custom domain
// @Description An empty domain detaches the current one. Both the old and the new
// @Description host resolve correctly on the very next request.
// @Tags        Stores
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                            true  "Store ID"
// @Param       body  body  handlers.UpdateDomainRequest   true  "Domain payload"
//
// @Success     200  {object}  domain.Store
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Domain already taken"
// @Router      /stores/{id}/domain [put]
func (h *Handlers) UpdateStoreDomain(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	var req UpdateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	var dom *string
	if d := strings.TrimSpace(req.Domain); d != "" {
		dom = &d
	}

	store, err := h.storeSvc.UpdateCustomDomain(c.Request.Context(), id, dom)
	switch {
	case errors.Is(err, services.ErrStoreNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "store not found")
	case errors.Is(err, services.ErrDomainTaken):
		fail(c, http.StatusConflict, ErrCodeDomainTaken, "domain already taken")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, store)
	}
}

// StartStoreTrial godoc
// @ID          startStoreTrial
// @Summary     Start the one-time trial window
// @Tags        Stores
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                          true  "Store ID"
// @Param       body  body  handlers.StartTrialRequest   true  "Trial payload"
//
// @Success     200  {object}  domain.Store
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Router      /stores/{id}/trial [post]
func (h *Handlers) StartStoreTrial(c *gin.Context) {
	id, ok2 := storeID(c)
	if !ok2 {
		return
	}
	var req StartTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	store, err := h.storeSvc.StartTrial(c.Request.Context(), id, req.Days)
	if err != nil {
		failStoreErr(c, err)
		return
	}
	ok(c, http.StatusOK, store)
}

// failStoreErr maps common store service errors to responses.
func failStoreErr(c *gin.Context, err error) {
	if errors.Is(err, services.ErrStoreNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "store not found")
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}
