// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains bootstrapping helpers for the landlord
// database handle.
package repo

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/vendora/go-commerce-backend/internal/config"
)

// OpenLandlord opens the central platform database and applies pool limits.
// The landlord handle is long-lived and shared by every request; tenant
// handles are managed separately by the binder.
func OpenLandlord(cfg config.DBConfig, withTracing bool) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN(cfg.Landlord)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if withTracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for consistency across services and handlers.
var ErrNotFound = gorm.ErrRecordNotFound
