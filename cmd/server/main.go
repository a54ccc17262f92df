// Server entry point: loads configuration, opens the landlord database,
// builds the tenant core (binder, resolver, provisioner), wires the HTTP
// router, and runs with graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/vendora/go-commerce-backend/internal/config"
	httpapi "github.com/vendora/go-commerce-backend/internal/http"
	"github.com/vendora/go-commerce-backend/internal/migrate"
	"github.com/vendora/go-commerce-backend/internal/observability"
	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/sysutil"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op unless OTEL_ENABLED)
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Landlord database and platform schema
	landlord, err := repo.OpenLandlord(cfg.DB, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Msg("open landlord database failed")
	}
	if err := migrate.Landlord(ctx, landlord); err != nil {
		log.Fatal().Err(err).Msg("landlord migration failed")
	}

	// Tenant core: server-level admin handle, binder, resolver, provisioner.
	// The admin handle connects without a database selected so it can issue
	// CREATE/DROP DATABASE.
	adminDB, err := gorm.Open(mysql.Open(cfg.DB.DSN("")), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("open admin database handle failed")
	}

	binder := tenant.NewBinder(func(name string) gorm.Dialector {
		return mysql.Open(cfg.DB.DSN(name))
	}, tenant.BinderOptions{
		DBPrefix:   cfg.Tenant.DBPrefix,
		NameSecret: cfg.Tenant.NameSecret,
		Tracing:    cfg.OTEL.Enabled,
		Logger:     log.Logger,
	})
	defer binder.Close()

	resolver, err := tenant.NewResolver(landlord, binder, tenant.ResolverOptions{
		BaseDomain: cfg.Tenant.BaseDomain,
		JWTSecret:  []byte(cfg.JWTSecret),
		CacheTTL:   cfg.Tenant.CacheTTL,
		Logger:     log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("resolver setup failed")
	}
	defer resolver.Close()

	provisioner := &tenant.Provisioner{
		Landlord: landlord,
		Admin:    tenant.SQLAdmin{DB: adminDB},
		Binder:   binder,
		Migrator: migrate.TenantMigrator{Logger: log.Logger},
		Seeder:   migrate.StoreSeeder{},
		Timeout:  cfg.Tenant.ProvisionTimeout,
		Logger:   log.Logger,
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Landlord:    landlord,
		Resolver:    resolver,
		Provisioner: provisioner,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}

	if sqlDB, err := landlord.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if sqlDB, err := adminDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	fmt.Println("server stopped")
}
