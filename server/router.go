package server

import (
	"time"

	httpHandler "my-site/interfaces/http"
	"my-site/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
}

func InitiateRouter(
	cfg RouterConfig,
	rssHandler httpHandler.IYouTubeRSSHandler,
	mediaHandler httpHandler.IMediaHandler,
	healthHandler httpHandler.IHealthHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", middleware.MetricsHandler)

	api := router.Group("api")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Handler())
	}

	api.GET("/youtube-rss", rssHandler.GetLatestVideos)
	api.GET("/media/:folder", mediaHandler.ListFolder)

	return router
}

// corsConfig allows any origin when none is configured or "*" is listed.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "X-From-Cache", "X-Cache-Age", "X-Cache-TTL", "Retry-After", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}
