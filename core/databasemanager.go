package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// DatabaseManager owns the global connection pool. Handlers and jobs
// borrow gorm handles through GetDB rather than holding a *gorm.DB.
type DatabaseManager struct {
	SqlDB    *sql.DB
	LogLevel LogLevel

	// gormDB short-circuits GetDB when the manager wraps an already
	// opened handle, e.g. an embedded test database.
	gormDB *gorm.DB
}

// NewFromGorm wraps an existing gorm handle instead of owning a pool.
func NewFromGorm(db *gorm.DB) *DatabaseManager {
	return &DatabaseManager{gormDB: db, LogLevel: LogLevelSilent}
}

// New creates the global pool. dsn must include the schema and parseTime=true.
func New(dsn string, maxConnection int) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{SqlDB: sqlDB}, nil
}

// GetDB wraps the pool into a gorm handle for one unit of work.
func (dm *DatabaseManager) GetDB(ctx context.Context) (*gorm.DB, error) {
	if dm.gormDB != nil {
		return dm.gormDB.WithContext(ctx), nil
	}

	dialector := mysql.New(mysql.Config{
		Conn: dm.SqlDB,
	})

	gormLogLevel := logger.Silent
	switch dm.LogLevel {
	case LogLevelError:
		gormLogLevel = logger.Error
	case LogLevelWarn:
		gormLogLevel = logger.Warn
	case LogLevelInfo:
		gormLogLevel = logger.Info
	case LogLevelSilent:
		gormLogLevel = logger.Silent
	default:
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db.WithContext(ctx), nil
}

// Close closes the global pool
func (dm *DatabaseManager) Close() error {
	if dm.SqlDB == nil {
		return nil
	}
	return dm.SqlDB.Close()
}
