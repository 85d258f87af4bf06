package models

import "time"

// Source kinds recorded in the operation log
const (
	SourceKindFile      = "file"
	SourceKindMultipart = "multipart"
	SourceKindRaw       = "raw"
)

// OperationRecord is one entry of the operation log. It never carries the computed value.
type OperationRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RequestID  string    `gorm:"not null;size:100;index;default:''" json:"request_id"`
	Operation  string    `gorm:"not null;size:50;index;default:''" json:"operation"`
	SourceKind string    `gorm:"not null;size:20;default:''" json:"source_kind"`
	SourceName string    `gorm:"not null;size:512;default:''" json:"source_name,omitzero"`
	Checksum   string    `gorm:"not null;size:32;index;default:''" json:"checksum,omitzero"`
	StatusCode int       `gorm:"not null;default:0" json:"status_code"`
	ErrorType  string    `gorm:"not null;size:50;default:''" json:"error_type,omitzero"`
	CacheHit   bool      `gorm:"not null;default:false" json:"cache_hit"`
	LatencyMs  int64     `gorm:"not null;default:0" json:"latency_ms"`
	UserAgent  string    `gorm:"not null;size:255;default:''" json:"user_agent,omitzero"`
	IPAddress  string    `gorm:"not null;size:45;default:''" json:"ip_address,omitzero"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (OperationRecord) TableName() string {
	return "operation_records"
}

// RecordOperationParams carries what the HTTP layer knows about a finished operation
type RecordOperationParams struct {
	RequestID  string
	Operation  string
	SourceKind string
	SourceName string
	Checksum   string
	StatusCode int
	ErrorType  string
	CacheHit   bool
	LatencyMs  int64
	UserAgent  string
	IPAddress  string
}

// OperationStats aggregates the operation log for one operation kind
type OperationStats struct {
	Operation       string  `json:"operation"`
	TotalRequests   int64   `json:"total_requests"`
	SuccessRequests int64   `json:"success_requests"`
	FailedRequests  int64   `json:"failed_requests"`
	CacheHits       int64   `json:"cache_hits"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}
