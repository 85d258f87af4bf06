package database

import (
	"fmt"

	"github.com/Egham-7/numseq/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ClickHouse gets explicit DDL; AutoMigrate trips over the driver's column introspection.
const clickhouseOperationRecordsDDL = `
CREATE TABLE IF NOT EXISTS operation_records (
	id UInt64,
	request_id String NOT NULL DEFAULT '',
	operation String NOT NULL DEFAULT '',
	source_kind String NOT NULL DEFAULT '',
	source_name String NOT NULL DEFAULT '',
	checksum String NOT NULL DEFAULT '',
	status_code Int32 NOT NULL DEFAULT 0,
	error_type String NOT NULL DEFAULT '',
	cache_hit UInt8 NOT NULL DEFAULT 0,
	latency_ms Int64 NOT NULL DEFAULT 0,
	user_agent String NOT NULL DEFAULT '',
	ip_address String NOT NULL DEFAULT '',
	created_at DateTime NOT NULL DEFAULT now()
) ENGINE = MergeTree()
ORDER BY (operation, created_at)
SETTINGS index_granularity = 8192;
`

// Migrate creates the operation log schema
func Migrate(db *DB) error {
	if db.IsClickHouse() {
		if err := db.Exec(clickhouseOperationRecordsDDL).Error; err != nil {
			return fmt.Errorf("failed to create operation_records table: %w", err)
		}
		fiberlog.Debug("Database: ClickHouse schema ready")
		return nil
	}

	if err := db.AutoMigrate(&models.OperationRecord{}); err != nil {
		return fmt.Errorf("failed to migrate operation_records: %w", err)
	}
	fiberlog.Debugf("Database: %s schema ready", db.driverName)
	return nil
}
