// Catalog HTTP handlers.
//
// This file exposes REST endpoints for products and categories inside one
// store. All routes live under the tenant group: the resolution middleware
// has already bound the store's database, and handlers pull the
// TenantContext out of the request before touching any data.
//
//   - POST   /products          (create)
//   - GET    /products          (list, paginated, optional name filter)
//   - GET    /products/{id}     (fetch)
//   - PATCH  /products/{id}     (partial update)
//   - DELETE /products/{id}     (soft delete)
//   - POST   /categories        (create)
//   - GET    /categories        (list)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/http/middleware"
	"github.com/vendora/go-commerce-backend/internal/services"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// CatalogService defines product and category operations consumed by HTTP
// handlers. Every call takes the TenantContext bound for this request; the
// service never reaches for a connection on its own.
type CatalogService interface {
	CreateProduct(ctx context.Context, tc *tenant.TenantContext, in services.CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, tc *tenant.TenantContext, id string) (*domain.Product, error)
	ListProductsPage(ctx context.Context, tc *tenant.TenantContext, nameFilter string, page, pageSize int) ([]domain.Product, int64, error)
	UpdateProduct(ctx context.Context, tc *tenant.TenantContext, id string, in services.UpdateProductInput) error
	DeleteProduct(ctx context.Context, tc *tenant.TenantContext, id string) error
	CreateCategory(ctx context.Context, tc *tenant.TenantContext, name string, position int) (*domain.Category, error)
	ListCategories(ctx context.Context, tc *tenant.TenantContext) ([]domain.Category, error)
}

//
// DTOs
//

// CreateProductRequest is the JSON payload for creating a product.
type CreateProductRequest struct {
	SKU         string  `json:"sku" binding:"required,min=1,max=64" example:"TSHIRT-M-BLK"`
	Name        string  `json:"name" binding:"required,min=1,max=255" example:"Black tee (M)"`
	Description string  `json:"description"`
	CategoryID  *string `json:"category_id" format:"uuid"`
	PriceCents  int64   `json:"price_cents" binding:"min=0" example:"1999"`
	Currency    string  `json:"currency" example:"EUR"`
	Stock       int     `json:"stock" binding:"min=0" example:"120"`
}

// UpdateProductRequest is the JSON payload for partially updating a product.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name       *string `json:"name"`
	PriceCents *int64  `json:"price_cents"`
	Stock      *int    `json:"stock"`
	IsActive   *bool   `json:"is_active"`
	CategoryID *string `json:"category_id"`
}

// CreateCategoryRequest is the JSON payload for creating a category.
type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255" example:"Apparel"`
	Position int    `json:"position" binding:"min=0"`
}

// ListProductsResponse wraps a page of products and pagination information.
type ListProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// tenantCtx pulls the bound TenantContext for this request. Routes in the
// tenant group always have one; a miss means a wiring bug, answered with 500
// rather than a panic.
func tenantCtx(c *gin.Context) (*tenant.TenantContext, bool) {
	tc, ok := middleware.TenantFrom(c)
	if !ok {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "no tenant bound for request")
		return nil, false
	}
	return tc, true
}

//
// Handlers
//

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Tags        Catalog
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateProductRequest  true  "Create product payload"
//
// @Success     201  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "SKU already taken"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.catalogSvc.CreateProduct(c.Request.Context(), tc, services.CreateProductInput{
		SKU:         req.SKU,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Stock:       req.Stock,
	})
	switch {
	case errors.Is(err, services.ErrInvalidProduct), errors.Is(err, services.ErrInvalidPrice):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrCategoryNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category does not exist")
	case errors.Is(err, services.ErrSKUTaken):
		fail(c, http.StatusConflict, ErrCodeSKUTaken, "sku already taken")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	default:
		ok(c, http.StatusCreated, p)
	}
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products (paginated)
// @Tags        Catalog
// @Produce     json
//
// @Param       q          query  string  false  "Filter by name substring"
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListProductsResponse
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	page, pageSize := clampPagination(c)
	items, total, err := h.catalogSvc.ListProductsPage(c.Request.Context(), tc, c.Query("q"), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListProductsResponse{Products: items, Pagination: paginationOf(page, pageSize, total)})
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Fetch a product
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Product
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "product id must be a UUID")
		return
	}
	p, err := h.catalogSvc.GetProduct(c.Request.Context(), tc, id)
	if errors.Is(err, services.ErrProductNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Partially update a product
// @Tags        Catalog
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                         true  "Product ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateProductRequest  true  "Fields to update"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [patch]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.catalogSvc.UpdateProduct(c.Request.Context(), tc, c.Param("id"), services.UpdateProductInput{
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
		IsActive:   req.IsActive,
		CategoryID: req.CategoryID,
	})
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
	case errors.Is(err, services.ErrInvalidProduct), errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrCategoryNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		noContent(c)
	}
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a product
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	err := h.catalogSvc.DeleteProduct(c.Request.Context(), tc, c.Param("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// CreateCategory godoc
// @ID          createCategory
// @Summary     Create a category
// @Tags        Catalog
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateCategoryRequest  true  "Create category payload"
//
// @Success     201  {object}  domain.Category
// @Failure     409  {object}  handlers.ErrorResponse  "Category name already exists"
// @Router      /categories [post]
func (h *Handlers) CreateCategory(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cat, err := h.catalogSvc.CreateCategory(c.Request.Context(), tc, req.Name, req.Position)
	switch {
	case errors.Is(err, services.ErrInvalidCategory):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrCategoryTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "category already exists")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	default:
		ok(c, http.StatusCreated, cat)
	}
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Tags        Catalog
// @Produce     json
//
// @Success     200  {array}  domain.Category
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	tc, ok2 := tenantCtx(c)
	if !ok2 {
		return
	}
	cats, err := h.catalogSvc.ListCategories(c.Request.Context(), tc)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, cats)
}
