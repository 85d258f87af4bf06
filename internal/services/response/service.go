package response

import (
	"net/http"
	"strings"

	"github.com/Egham-7/numseq/internal/models"

	"github.com/gofiber/fiber/v2"
)

const successMessage = "successful request"

// BaseService provides common HTTP response utilities that can be embedded and specialized
type BaseService struct{}

// NewBaseService creates a new base response service
func NewBaseService() *BaseService {
	return &BaseService{}
}

// StatusName renders a status code the way the envelope reports it, e.g. 400 -> BAD_REQUEST
func StatusName(code int) string {
	if code == models.StatusClientClosedRequest {
		return "CLIENT_CLOSED_REQUEST"
	}
	text := http.StatusText(code)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}

// Error writes the error envelope for err with its mapped status code
func (s *BaseService) Error(c *fiber.Ctx, requestID string, err *models.AppError) error {
	status := err.GetStatusCode()
	return c.Status(status).JSON(models.APIErrorResponse{
		Status:       StatusName(status),
		Message:      err.Message,
		DebugMessage: err.DebugMessage(),
		Type:         err.Type,
		Code:         err.Code,
		RequestID:    requestID,
	})
}

// Operation writes the success envelope for a computed operation
func (s *BaseService) Operation(c *fiber.Ctx, operation string, cached bool, data any) error {
	return c.JSON(models.APIResponse{
		Status:    StatusName(fiber.StatusOK),
		Message:   successMessage,
		Operation: operation,
		Cached:    cached,
		Data:      data,
	})
}

// Success sends a 200 OK response with the provided data
func (s *BaseService) Success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}
