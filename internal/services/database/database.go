// Package database opens the gorm connection backing the operation log.
package database

import (
	"fmt"
	"time"

	"github.com/Egham-7/numseq/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps a gorm connection with the driver it was opened with
type DB struct {
	*gorm.DB
	config     models.DatabaseConfig
	driverName string
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping() error {
	if db.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) DriverName() string {
	return db.driverName
}

// IsClickHouse reports whether migrations must go through raw DDL
func (db *DB) IsClickHouse() bool {
	return db.config.Type == models.ClickHouse
}

func (db *DB) setConnectionPool() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		fiberlog.Warnf("Database: cannot tune connection pool: %v", err)
		return
	}

	if db.config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	}
	if db.config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)
	}
	if db.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(db.config.ConnMaxLifetime) * time.Second)
	}
}

// New opens and pings a connection for config.Type
func New(config models.DatabaseConfig) (*DB, error) {
	var (
		dialector gorm.Dialector
		driver    string
		err       error
	)

	switch config.Type {
	case models.PostgreSQL:
		dialector, driver = postgresDialector(config), "postgres"
	case models.MySQL:
		dialector, driver = mysqlDialector(config), "mysql"
	case models.SQLite:
		dialector, err = sqliteDialector(config)
		driver = "sqlite3"
	case models.ClickHouse:
		dialector, driver = clickhouseDialector(config), "clickhouse"
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// ClickHouse has incomplete prepared statement support
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", config.Type, err)
	}

	db := &DB{
		DB:         gormDB,
		config:     config,
		driverName: driver,
	}
	db.setConnectionPool()

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", config.Type, err)
	}

	fiberlog.Infof("Database: connected using %s driver", driver)
	return db, nil
}
