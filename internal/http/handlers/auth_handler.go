// Employee authentication HTTP handlers.
//
// Login runs inside the tenant group: the store is already bound when the
// credentials are checked, so an employee of store A can never obtain a
// token by logging in through store B's host. Employee provisioning has two
// doors: a platform endpoint used to bootstrap the first (owner) employee of
// a freshly provisioned store, and a store-scoped endpoint restricted to
// owners and managers.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendora/go-commerce-backend/internal/domain"
	"github.com/vendora/go-commerce-backend/internal/services"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// AuthService defines employee authentication operations consumed by HTTP
// handlers.
type AuthService interface {
	// Login verifies credentials against the bound store and returns a
	// signed employee token.
	Login(ctx context.Context, tc *tenant.TenantContext, email, password string) (string, *domain.Employee, error)
	// CreateEmployee hashes the password and inserts a new employee.
	CreateEmployee(ctx context.Context, tc *tenant.TenantContext, email, name, role, password string) (*domain.Employee, error)
}

// LoginRequest is the JSON payload for employee login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"anna@kaffee-nord.de"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// LoginResponse carries the signed token and the authenticated employee.
type LoginResponse struct {
	Token    string           `json:"token"`
	Employee *domain.Employee `json:"employee"`
}

// CreateEmployeeRequest is the JSON payload for adding an employee.
type CreateEmployeeRequest struct {
	Email    string `json:"email" binding:"required,email" example:"anna@kaffee-nord.de"`
	Name     string `json:"name" binding:"required,min=1,max=255" example:"Anna Berg"`
	Role     string `json:"role" binding:"omitempty,oneof=owner manager staff" example:"staff"`
	Password string `json:"password" binding:"required,min=8"`
}

// Login godoc
// @ID          employeeLogin
// @Summary     Authenticate a store employee
// @Description Verifies email and password against the resolved store and returns
// @Description a JWT carrying the store id, employee id, and role claims.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	tc, okTC := tenantCtx(c)
	if !okTC {
		return
	}
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	token, emp, err := h.authSvc.Login(c.Request.Context(), tc, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "login failed")
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, Employee: emp})
}

// CreateEmployee godoc
// @ID          createEmployee
// @Summary     Add an employee to the resolved store
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.CreateEmployeeRequest  true  "New employee"
//
// @Success     201  {object}  domain.Employee
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /employees [post]
func (h *Handlers) CreateEmployee(c *gin.Context) {
	tc, okTC := tenantCtx(c)
	if !okTC {
		return
	}
	h.createEmployee(c, tc)
}

// BootstrapStoreEmployee godoc
// @ID          bootstrapStoreEmployee
// @Summary     Create the first employee of a store (platform)
// @Description Resolves the store by its explicit id and inserts an employee into
// @Description its database. Intended for onboarding flows that need an owner
// @Description account before any employee token exists.
// @Tags        Platform
// @Accept      json
// @Produce     json
// @Param       id    path  int                             true  "Store ID"
// @Param       body  body  handlers.CreateEmployeeRequest  true  "New employee"
//
// @Success     201  {object}  domain.Employee
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Store not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stores/{id}/employees [post]
func (h *Handlers) BootstrapStoreEmployee(c *gin.Context) {
	id, okID := storeID(c)
	if !okID {
		return
	}
	tc, err := h.resolver.Resolve(c.Request.Context(), tenant.ResolveRequest{StoreID: id})
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrTenantInactive):
			fail(c, http.StatusForbidden, ErrCodeTenantInactive, "store is not accepting requests")
		case errors.Is(err, tenant.ErrTenantNotFound):
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "store not found")
		default:
			fail(c, http.StatusServiceUnavailable, ErrCodeTenantUnavailable, "store database unavailable")
		}
		return
	}
	h.createEmployee(c, tc)
}

func (h *Handlers) createEmployee(c *gin.Context, tc *tenant.TenantContext) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	emp, err := h.authSvc.CreateEmployee(c.Request.Context(), tc, req.Email, req.Name, req.Role, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmployee):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrWeakPassword):
			fail(c, http.StatusBadRequest, ErrCodeWeakPassword, err.Error())
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeEmailTaken, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create employee")
		}
		return
	}
	ok(c, http.StatusCreated, emp)
}
