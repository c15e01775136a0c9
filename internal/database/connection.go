package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reseller_hub/internal/logger"
)

const sqliteScheme = "sqlite://"

// Initialize opens the database named by databaseURL. postgres:// URLs use
// the postgres driver; sqlite://path opens a local file (or :memory:).
func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.NewGormLogger(gormlogger.Warn),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	isSQLite := strings.HasPrefix(databaseURL, sqliteScheme)
	if isSQLite {
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, sqliteScheme))
	} else {
		dialector = postgres.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if isSQLite {
		// One writer at a time; also keeps :memory: databases on one connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log := logger.WithComponent("database")
	log.Info().Bool("sqlite", isSQLite).Msg("Database connected")
	return db, nil
}

// Ping checks that the database accepts connections.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
