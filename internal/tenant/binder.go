// Connection binder: the single chokepoint that turns a Store into a GORM
// handle scoped to that store's database.
//
// The binder keeps a small pool of open handles keyed by database name and
// hands out explicit TenantContext values. A handle is reused only while its
// target database name is unchanged; Purge closes and drops a handle
// whenever its target goes away (deprovisioning) or changes identity. There
// is no implicit fallback: a bind either yields a handle verified against
// the requested database or a BindingError.
package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/vendora/go-commerce-backend/internal/domain"
)

// Dialector maps a tenant database name to a GORM dialector. Production
// wiring uses the MySQL driver against the shared server; tests substitute
// sqlite files so each "database" is a separate physical store.
type Dialector func(databaseName string) gorm.Dialector

// BinderOptions tunes handle pooling and naming fallback.
type BinderOptions struct {
	// DBPrefix and NameSecret feed DatabaseName when a store has no
	// database_name assigned yet (used during provisioning).
	DBPrefix   string
	NameSecret string

	// MaxOpenConns/MaxIdleConns are applied per tenant handle. Zero values
	// fall back to modest defaults sized for many small pools.
	MaxOpenConns int
	MaxIdleConns int

	// Tracing attaches the GORM OpenTelemetry plugin to each opened handle.
	Tracing bool

	Logger zerolog.Logger
}

// Binder opens and pools tenant database handles.
type Binder struct {
	dial Dialector
	opts BinderOptions

	mu      sync.Mutex
	handles map[string]*gorm.DB
}

// NewBinder constructs a Binder using dial to open tenant databases.
func NewBinder(dial Dialector, opts BinderOptions) *Binder {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 5
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 2
	}
	return &Binder{
		dial:    dial,
		opts:    opts,
		handles: make(map[string]*gorm.DB),
	}
}

/// EffectiveDatabaseName returns the database name a bind of store would use:
// the registry-assigned name when present, else the deterministic computed
// name. The fallback is what lets Provision bind before MarkProvisioned runs.
func (b *Binder) EffectiveDatabaseName(store *domain.Store) string {
	if store.Provisioned() {
		return *store.DatabaseName
	}
	return DatabaseName(b.opts.DBPrefix, b.opts.NameSecret, store.ID, store.Slug)
}

// Bind returns a TenantContext whose DB handle reads and writes store's
// database exclusively. Binding is cheap in the common case (a map lookup);
// the underlying connection is established lazily by the driver on first
// query. On open or ping failure Bind returns a *BindingError and no handle.
func (b *Binder) Bind(ctx context.Context, store *domain.Store) (*TenantContext, error) {
	name := b.EffectiveDatabaseName(store)
	if !ValidDatabaseName(name) {
		return nil, &BindingError{DatabaseName: name, Err: fmt.Errorf("invalid database name")}
	}

	db, err := b.handle(ctx, name)
	if err != nil {
		return nil, err
	}
	bindsTotal.Inc()
	return &TenantContext{Store: store, DatabaseName: name, DB: db}, nil
}

// WithinTenant binds store and runs fn with the resulting TenantContext.
/// The binding is scoped to this call: it is established fresh here and the
// handle is left in the pool in a defined state on all exit paths, including
// a panic inside fn. Background jobs and webhook consumers that already know
// their target store use this instead of request-time resolution.
func (b *Binder) WithinTenant(ctx context.Context, store *domain.Store, fn func(*TenantContext) error) error {
	tc, err := b.Bind(ctx, store)
	if err != nil {
		return err
	}
	return fn(tc)
}

// Purge closes and forgets the pooled handle for databaseName, forcing the
// next Bind to open a fresh connection. Called on deprovisioning and on any
// registry change that alters a store's database identity, so a cached
// handle can never serve the wrong tenant's data.
func (b *Binder) Purge(databaseName string) {
	b.mu.Lock()
	db, ok := b.handles[databaseName]
	if ok {
		delete(b.handles, databaseName)
	}
	b.mu.Unlock()

	if !ok {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	b.opts.Logger.Debug().Str("database", databaseName).Msg("tenant handle purged")
}

// Close purges every pooled handle. Called on shutdown.
func (b *Binder) Close() {
	b.mu.Lock()
	handles := b.handles
	b.handles = make(map[string]*gorm.DB)
	b.mu.Unlock()

	for name, db := range handles {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		b.opts.Logger.Debug().Str("database", name).Msg("tenant handle closed")
	}
}

// handle returns the pooled *gorm.DB for name, opening and verifying it if
// absent. The pool is keyed by database name so two stores can never share
// a handle.
func (b *Binder) handle(ctx context.Context, name string) (*gorm.DB, error) {
	b.mu.Lock()
	if db, ok := b.handles[name]; ok {
		b.mu.Unlock()
		return db, nil
	}
	b.mu.Unlock()

	db, err := b.open(ctx, name)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Lost the race: keep the first opened handle, close ours.
	if existing, ok := b.handles[name]; ok {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		return existing, nil
	}
	b.handles[name] = db
	return db, nil
}

// open dials the named database and verifies reachability. Failing closed
// here is what keeps a misconfigured target from silently serving another
// tenant's data.
func (b *Binder) open(ctx context.Context, name string) (*gorm.DB, error) {
	db, err := gorm.Open(b.dial(name), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, &BindingError{DatabaseName: name, Err: err}
	}

	if b.opts.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, &BindingError{DatabaseName: name, Err: err}
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &BindingError{DatabaseName: name, Err: err}
	}
	sqlDB.SetMaxOpenConns(b.opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(b.opts.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, &BindingError{DatabaseName: name, Err: err}
	}

	b.opts.Logger.Info().Str("database", name).Msg("tenant handle opened")
	return db, nil
}
