package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"my-site/infrastructure/cache"
)

// CacheStatsProvider is the part of the feed cache the health check reads.
type CacheStatsProvider interface {
	Stats() cache.Stats
}

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct {
	cache CacheStatsProvider
}

func NewHealthHandler(cache CacheStatsProvider) IHealthHandler {
	return &HealthHandler{cache: cache}
}

// Healthz returns OK for health checks
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	stats := h.cache.Stats()
	ctx.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"cacheEntries": stats.EntryCount,
		"cache":        stats,
	})
}
