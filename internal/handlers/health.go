package handlers

import (
	"context"
	"time"

	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CacheInspector is satisfied by *cache.CacheService.
type CacheInspector interface {
	HealthCheck(ctx context.Context) error
	Stats() map[string]interface{}
	GetStats(ctx context.Context) *redis.PoolStats
}

type HealthHandler struct {
	db      Pinger
	cache   CacheInspector
	version string
}

// NewHealthHandler builds the health endpoints. cache may be nil.
func NewHealthHandler(db Pinger, cache CacheInspector, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// HealthCheck reports dependency status; 503 when the database is down.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{"database": "connected", "redis": "disabled"}
	if err := h.db.PingContext(ctx); err != nil {
		services["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}
	if h.cache != nil {
		services["redis"] = "connected"
		if err := h.cache.HealthCheck(ctx); err != nil {
			services["redis"] = "unavailable"
		}
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   state,
		"version":  h.version,
		"services": services,
	})
}

func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.cache == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "cache is not configured")
	}
	poolStats := h.cache.GetStats(c.UserContext())

	return c.JSON(fiber.Map{
		"cache_stats": h.cache.Stats(),
		"pool_stats": fiber.Map{
			"hits":        poolStats.Hits,
			"misses":      poolStats.Misses,
			"timeouts":    poolStats.Timeouts,
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"stale_conns": poolStats.StaleConns,
		},
	})
}
