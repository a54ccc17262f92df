// Request-time tenant resolver.
//
// Per unit of work the resolver moves UNRESOLVED → RESOLVING → BOUND (or
// FAILED): it determines which store an inbound request addresses, loads the
// registry record, verifies the store may serve traffic, and binds the
// tenant connection — all before any tenant-scoped query executes.
//
// Resolution strategies, in precedence order:
//
//  1. Token: an authenticated employee token carries the store id it was
//     issued for. The claim is cryptographically tied to a tenant, so it
//     wins over the spoofable Host header when both are present.
//  2. Explicit store id: webhook flows that already mapped an external key
//     (messaging account, payment reference) to a store.
//  3. Host: exact custom-domain match, else <slug>.<base-domain>. Host
//     lookups go through a short-TTL in-process cache with explicit
//     invalidation on any domain/slug/database change.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// EmployeeClaims is the JWT payload issued to store employees. StoreID is
// the tenant binding; the resolver trusts it over the request host.
type EmployeeClaims struct {
	StoreID    uint64 `json:"store_id"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// ResolveRequest carries the resolution keys extracted from an inbound unit
// of work. Zero values mean "strategy not applicable".
type ResolveRequest struct {
	// Host is the HTTP Host header (port allowed; normalized internally).
	Host string
	// Token is a raw employee JWT, when the request is authenticated.
	Token string
	// StoreID is an explicit id supplied by webhook collaborators that have
	// already mapped their own key (e.g. a phone-number id) to a store.
	StoreID uint64
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	BaseDomain string
	JWTSecret  []byte
	CacheTTL   time.Duration
	// CacheMaxEntries bounds the host→store cache. Zero defaults to 4096.
	CacheMaxEntries int64
	Logger          zerolog.Logger
}

// Resolver resolves inbound requests to bound tenant contexts.
type Resolver struct {
	landlord *gorm.DB
	binder   *Binder
	opts     ResolverOptions
	cache    *ristretto.Cache[string, *domain.Store]
}

// NewResolver constructs a Resolver over the landlord handle and binder.
func NewResolver(landlord *gorm.DB, binder *Binder, opts ResolverOptions) (*Resolver, error) {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.CacheMaxEntries <= 0 {
		opts.CacheMaxEntries = 4096
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *domain.Store]{
		NumCounters: opts.CacheMaxEntries * 10,
		MaxCost:     opts.CacheMaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Resolver{landlord: landlord, binder: binder, opts: opts, cache: cache}, nil
}

// Close releases cache resources.
func (r *Resolver) Close() {
	r.cache.Close()
}

// Resolve determines the store addressed by req, verifies it may serve
// traffic, and binds the tenant connection. The returned TenantContext is
// read-only for the remainder of the unit of work.
//
// Failures are distinguishable: ErrTenantNotFound (no match),
// ErrTenantInactive (matched but gated), *BindingError (connection). The
// caller decides HTTP status and user-facing message.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*TenantContext, error) {
	store, strategy, err := r.locate(ctx, req)
	if err != nil {
		resolutionsTotal.WithLabelValues(strategy, outcomeOf(err)).Inc()
		return nil, err
	}

	if !store.AccessibleForRequests() {
		resolutionsTotal.WithLabelValues(strategy, "inactive").Inc()
		return nil, fmt.Errorf("store %d (status %s): %w", store.ID, store.Status, ErrTenantInactive)
	}

	tc, err := r.binder.Bind(ctx, store)
	if err != nil {
		resolutionsTotal.WithLabelValues(strategy, "bind_error").Inc()
		return nil, err
	}
	resolutionsTotal.WithLabelValues(strategy, "ok").Inc()
	return tc, nil
}

// locate picks the resolution strategy and loads the Store record.
func (r *Resolver) locate(ctx context.Context, req ResolveRequest) (*domain.Store, string, error) {
	if req.Token != "" {
		store, err := r.byToken(ctx, req.Token)
		return store, "token", err
	}
	if req.StoreID != 0 {
		store, err := FindStoreByID(ctx, r.landlord, req.StoreID)
		return store, "explicit", err
	}
	if req.Host != "" {
		store, err := r.byHost(ctx, req.Host)
		return store, "host", err
	}
	return nil, "none", fmt.Errorf("no resolution key on request: %w", ErrTenantNotFound)
}

// byToken validates the employee JWT and loads the store its claims name.
// An invalid or expired token resolves to tenant-not-found: the token is the
// only key the caller presented, and it identifies nothing.
func (r *Resolver) byToken(ctx context.Context, raw string) (*domain.Store, error) {
	claims := &EmployeeClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.opts.JWTSecret, nil
	})
	if err != nil || !tok.Valid || claims.StoreID == 0 {
		return nil, fmt.Errorf("employee token rejected: %w", ErrTenantNotFound)
	}
	return FindStoreByID(ctx, r.landlord, claims.StoreID)
}

// byHost resolves via the host cache, falling through to the registry on
// miss. Only positive results are cached; a store added a moment ago must
// resolve on the very next request.
func (r *Resolver) byHost(ctx context.Context, host string) (*domain.Store, error) {
	key := NormalizeHost(host)
	if store, ok := r.cache.Get(key); ok {
		hostCacheHits.WithLabelValues("hit").Inc()
		return store, nil
	}
	hostCacheHits.WithLabelValues("miss").Inc()

	store, err := FindStoreByHost(ctx, r.landlord, key, r.opts.BaseDomain)
	if err != nil {
		return nil, err
	}
	r.cache.SetWithTTL(key, store, 1, r.opts.CacheTTL)
	return store, nil
}

// InvalidateHost drops cached entries for the given hosts immediately,
// without waiting for the TTL. Callers mutating a store's custom domain,
// slug, or database name must invalidate every host the store was reachable
// under (InvalidateStore builds that set).
func (r *Resolver) InvalidateHost(hosts ...string) {
	for _, h := range hosts {
		if h == "" {
			continue
		}
		r.cache.Del(NormalizeHost(h))
	}
	// Deletes go through ristretto's write buffer; flush so the entries are
	// really gone when this returns, not merely scheduled to go.
	r.cache.Wait()
}

// InvalidateStore invalidates every host entry store may be cached under:
// its custom domain and its subdomain of the platform base domain. Extra
// hosts (e.g. a just-replaced old domain) can be passed alongside.
func (r *Resolver) InvalidateStore(store *domain.Store, extraHosts ...string) {
	hosts := make([]string, 0, len(extraHosts)+2)
	if store.CustomDomain != nil {
		hosts = append(hosts, *store.CustomDomain)
	}
	if r.opts.BaseDomain != "" {
		hosts = append(hosts, store.Slug+"."+r.opts.BaseDomain)
	}
	hosts = append(hosts, extraHosts...)
	r.InvalidateHost(hosts...)
}

// outcomeOf maps a locate error to a bounded metric label.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return "not_found"
	case errors.Is(err, ErrTenantInactive):
		return "inactive"
	default:
		return "error"
	}
}
