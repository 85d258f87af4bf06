// Package usage persists operation metadata and serves aggregate statistics over it.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/Egham-7/numseq/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) RecordOperation(ctx context.Context, params models.RecordOperationParams) (*models.OperationRecord, error) {
	record := models.OperationRecord{
		RequestID:  params.RequestID,
		Operation:  params.Operation,
		SourceKind: params.SourceKind,
		SourceName: params.SourceName,
		Checksum:   params.Checksum,
		StatusCode: params.StatusCode,
		ErrorType:  params.ErrorType,
		CacheHit:   params.CacheHit,
		LatencyMs:  params.LatencyMs,
		UserAgent:  params.UserAgent,
		IPAddress:  params.IPAddress,
	}

	if record.RequestID == "" {
		record.RequestID = uuid.NewString()
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to record operation: %w", err)
	}

	return &record, nil
}

// Recent lists the latest records, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]models.OperationRecord, error) {
	var records []models.OperationRecord

	query := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return records, nil
}

// Stats aggregates records per operation. Zero bounds are open.
func (s *Service) Stats(ctx context.Context, from, to time.Time) ([]models.OperationStats, error) {
	query := s.db.WithContext(ctx).Model(&models.OperationRecord{})

	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	stats := []models.OperationStats{}
	err := query.
		Select(
			"operation, "+
				"COUNT(*) as total_requests, "+
				"COUNT(CASE WHEN status_code >= 200 AND status_code < 300 THEN 1 END) as success_requests, "+
				"COUNT(CASE WHEN status_code >= 400 OR status_code = 0 THEN 1 END) as failed_requests, "+
				"COUNT(CASE WHEN cache_hit = ? THEN 1 END) as cache_hits, "+
				"COALESCE(AVG(latency_ms), 0) as avg_latency_ms",
			true,
		).
		Group("operation").
		Order("operation").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get operation stats: %w", err)
	}

	return stats, nil
}

// DeleteOlderThan removes records created before cutoff and returns how many went
func (s *Service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.OperationRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old operations: %w", result.Error)
	}
	return result.RowsAffected, nil
}
