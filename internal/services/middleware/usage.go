// Package middleware holds fiber middleware that needs access to the service layer.
package middleware

import (
	"errors"
	"time"

	"github.com/Egham-7/numseq/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const traceLocalKey = "operation_trace"

// Recorder accepts finished operations; implementations must not block
type Recorder interface {
	Submit(params models.RecordOperationParams)
}

// OperationTrace is filled in by handlers while they serve an operation
type OperationTrace struct {
	RequestID  string
	Operation  string
	SourceKind string
	SourceName string
	Checksum   string
	ErrorType  string
	CacheHit   bool
}

// Trace returns the trace attached to c, attaching a new one when there is none
func Trace(c *fiber.Ctx) *OperationTrace {
	if trace, ok := c.Locals(traceLocalKey).(*OperationTrace); ok {
		return trace
	}
	trace := &OperationTrace{}
	c.Locals(traceLocalKey, trace)
	return trace
}

type OperationTracker struct {
	recorder Recorder
}

func NewOperationTracker(recorder Recorder) *OperationTracker {
	return &OperationTracker{recorder: recorder}
}

// TrackOperations records every request whose handler attached a trace with an operation
func (t *OperationTracker) TrackOperations() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		trace, ok := c.Locals(traceLocalKey).(*OperationTrace)
		if !ok || trace == nil || trace.Operation == "" {
			return err
		}

		statusCode := c.Response().StatusCode()
		errorType := trace.ErrorType
		if err != nil {
			// the error handler has not run yet
			statusCode = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			var appErr *models.AppError
			switch {
			case errors.As(err, &appErr):
				statusCode = appErr.GetStatusCode()
				if errorType == "" {
					errorType = string(appErr.Type)
				}
			case errors.As(err, &fiberErr):
				statusCode = fiberErr.Code
			}
			if errorType == "" {
				errorType = string(models.ErrorTypeInternal)
			}
		}

		t.recorder.Submit(models.RecordOperationParams{
			RequestID:  trace.RequestID,
			Operation:  trace.Operation,
			SourceKind: trace.SourceKind,
			SourceName: trace.SourceName,
			Checksum:   trace.Checksum,
			StatusCode: statusCode,
			ErrorType:  errorType,
			CacheHit:   trace.CacheHit,
			LatencyMs:  time.Since(start).Milliseconds(),
			UserAgent:  utils.CopyString(c.Get(fiber.HeaderUserAgent)),
			IPAddress:  utils.CopyString(c.IP()),
		})

		return err
	}
}
