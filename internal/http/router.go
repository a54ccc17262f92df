// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, tenant resolution, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Tenant resolution as a route-group concern: platform routes never bind
//     a store, store routes never run without one
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/config"
	"github.com/vendora/go-commerce-backend/internal/http/handlers"
	"github.com/vendora/go-commerce-backend/internal/http/middleware"
	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/services"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// Deps carries the long-lived components the router wires into handlers.
type Deps struct {
	// Landlord is the platform database handle.
	Landlord *gorm.DB
	// Resolver resolves requests to bound tenant contexts.
	Resolver *tenant.Resolver
	// Provisioner creates and destroys tenant databases.
	Provisioner *tenant.Provisioner
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned API: platform routes under <base>/platform and
// store-scoped routes under <base> behind tenant resolution.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip compression for responses
//  8. CORS and Security headers
//
// Tenant resolution, the idempotency validator, and the rate limiter run at
// group level: resolution must precede the replay lookup (it needs the bound
// connection), and the validator must precede the limiter so replays bypass
// it.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (customer emails/phones in queries)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-Webhook-Signature",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compress list-heavy JSON responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Idempotency + rate limiting are group-level: the replay lookup needs
	// the tenant connection that resolution binds, and the limiter must run
	// after the validator so replays bypass it. Both are built here and
	// installed per group below.
	idem := middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, actorID, key string, now time.Time) (bool, error) {
			tc, ok := tenant.FromContext(ctx)
			if !ok {
				return false, nil
			}
			rec, err := repo.GetIdempotency(ctx, tc.DB, actorID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByStoreActorOrIP())

	// CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← landlord/provisioner/resolver
	storeSvc := &services.StoreService{
		Landlord:    deps.Landlord,
		Provisioner: deps.Provisioner,
		Invalidator: deps.Resolver,
	}
	catalogSvc := services.NewCatalogService()
	orderSvc := services.NewOrderService(cfg.IdempotencyTTL)
	statsSvc := &services.StatsService{Logger: log.Logger}
	authSvc := services.NewAuthService([]byte(cfg.JWTSecret), cfg.JWTTTL)

	h := handlers.New(storeSvc, catalogSvc, orderSvc, statsSvc, authSvc, deps.Resolver)
	wh := handlers.NewWebhook(deps.Resolver, orderSvc, []byte(cfg.WebhookSecret))

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Platform API: store lifecycle operations against the landlord database.
	// No tenant binding happens here; these routes exist precisely for stores
	// that may not have a database yet.
	platform := api.Group("/platform", rl.Handler())
	{
		platform.POST("/stores", h.CreateStore)
		platform.GET("/stores", h.ListStores)
		platform.GET("/stores/:id", h.GetStore)
		platform.POST("/stores/:id/provision", h.ProvisionStore)
		platform.POST("/stores/:id/suspend", h.SuspendStore)
		platform.POST("/stores/:id/reactivate", h.ReactivateStore)
		platform.POST("/stores/:id/close", h.CloseStore)
		platform.POST("/stores/:id/trial", h.StartStoreTrial)
		platform.PUT("/stores/:id/domain", h.UpdateStoreDomain)
		platform.DELETE("/stores/:id", h.DeleteStore)
		platform.POST("/stores/:id/employees", h.BootstrapStoreEmployee)
	}

	// Webhooks: explicit store id in the payload, resolution per event.
	api.POST("/webhooks/payments", rl.Handler(), wh.PaymentEvent)

	// Store API: every route binds the addressed store's database first,
	// then validates idempotency keys against it, then rate-limits (replays
	// bypass the limiter).
	store := api.Group("", middleware.TenantResolution(deps.Resolver), idem, rl.Handler())
	{
		// Storefront (anonymous)
		store.GET("/products", h.ListProducts)
		store.GET("/products/:id", h.GetProduct)
		store.GET("/categories", h.ListCategories)
		store.POST("/orders", h.PlaceOrder)
		store.POST("/auth/login", h.Login)

		// Management (employee token required)
		mgmt := store.Group("", middleware.RequireEmployee([]byte(cfg.JWTSecret)))
		{
			mgmt.POST("/products", h.CreateProduct)
			mgmt.PATCH("/products/:id", h.UpdateProduct)
			mgmt.DELETE("/products/:id", h.DeleteProduct)
			mgmt.POST("/categories", h.CreateCategory)
			mgmt.POST("/employees", middleware.RequireRole("owner", "manager"), h.CreateEmployee)
			mgmt.GET("/orders", h.ListOrders)
			mgmt.GET("/orders/:id", h.GetOrder)
			mgmt.POST("/orders/:id/payments", h.RecordPayment)
			mgmt.GET("/stats", h.GetStats)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
