// Package db opens the registry database and owns schema migration.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/transport-authority/vehicle-registry/pkg/audit"
	"github.com/transport-authority/vehicle-registry/pkg/notify"
	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

// Open connects to the configured database. Supported types: sqlite
// (embedded, used for dev and tests), mysql, postgres.
func Open(dbType, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	switch dbType {
	case "sqlite", "":
		if dsn == "" {
			dsn = "registry.db"
		}
		gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return gdb, nil
	case "mysql":
		gdb, err := gorm.Open(mysql.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
		return gdb, nil
	case "postgres":
		gdb, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q (want sqlite, mysql, or postgres)", dbType)
	}
}

// Migrate creates or updates every registry table.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&owner.Owner{},
		&vehicle.Vehicle{},
		&plate.Plate{},
		&ownership.Record{},
		&notify.Notification{},
		&audit.Event{},
	); err != nil {
		return fmt.Errorf("migrate registry schema: %w", err)
	}
	return nil
}
