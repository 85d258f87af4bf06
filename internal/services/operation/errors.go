package operation

import (
	"context"
	"errors"
	"net/http"

	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/sequence"
)

// MapError maps a failure returned by the sequence engine (or the plumbing
// around it) to an AppError. AppErrors pass through unchanged.
func MapError(operation string, err error) *models.AppError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var parseErr *sequence.ParseError
	var opErr *sequence.UnsupportedOperationError

	switch {
	case errors.As(err, &parseErr):
		return &models.AppError{
			Type:       models.ErrorTypeParse,
			Message:    "Invalid characters in the file provided",
			Code:       "INVALID_NUMBER",
			StatusCode: http.StatusBadRequest,
			Cause:      err,
		}
	case errors.Is(err, sequence.ErrEmptyInput):
		return &models.AppError{
			Type:       models.ErrorTypeEmptyInput,
			Message:    "Provided file is empty",
			Code:       "EMPTY_INPUT",
			StatusCode: http.StatusBadRequest,
			Cause:      err,
		}
	case errors.Is(err, sequence.ErrNoRunFound):
		return &models.AppError{
			Type:       models.ErrorTypeNoSequence,
			Message:    "No sequences were found in the file",
			Code:       "NO_SEQUENCE",
			StatusCode: http.StatusBadRequest,
			Cause:      err,
		}
	case errors.As(err, &opErr):
		return &models.AppError{
			Type:       models.ErrorTypeUnsupportedOperation,
			Message:    "Provided unsupported operation",
			Code:       "UNSUPPORTED_OPERATION",
			StatusCode: http.StatusBadRequest,
			Cause:      err,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewTimeoutError(operation, err)
	case errors.Is(err, context.Canceled):
		return models.NewCanceledError(operation, err)
	default:
		return models.NewInternalError("internal server error", err)
	}
}
