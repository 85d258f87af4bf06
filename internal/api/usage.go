package api

import (
	"strconv"
	"time"

	"github.com/Egham-7/numseq/internal/services/usage"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const maxRecentLimit = 500

type UsageHandler struct {
	usageService *usage.Service
}

func NewUsageHandler(usageService *usage.Service) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

func (h *UsageHandler) RegisterRoutes(app *fiber.App, basePath string) {
	group := app.Group(basePath)
	group.Get("/stats", h.GetStats)
	group.Get("/recent", h.GetRecent)
}

// GetStats aggregates the operation log per operation between the optional RFC3339 bounds from and to
func (h *UsageHandler) GetStats(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid from date format, expected RFC3339",
		})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid to date format, expected RFC3339",
		})
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "to must not be before from",
		})
	}

	stats, err := h.usageService.Stats(c.UserContext(), from, to)
	if err != nil {
		fiberlog.Errorf("Failed to get operation stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get operation stats",
		})
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}

func (h *UsageHandler) GetRecent(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid limit",
		})
	}

	records, err := h.usageService.Recent(c.UserContext(), min(limit, maxRecentLimit))
	if err != nil {
		fiberlog.Errorf("Failed to list operations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list operations",
		})
	}

	return c.JSON(records)
}

func parseTimeQuery(c *fiber.Ctx, key string) (time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
