package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"my-site/domain/dto"
	"my-site/infrastructure/utils"
	"my-site/usecase"
)

const (
	cacheControlFresh = "public, max-age=300, stale-while-revalidate=600"
	cacheControlStale = "public, max-age=60, stale-while-revalidate=300"
	cacheControlNone  = "no-cache"
	retryAfterSeconds = "300"
)

type IYouTubeRSSHandler interface {
	GetLatestVideos(ctx *gin.Context)
}

type YouTubeRSSHandler struct {
	rssUseCase usecase.IYouTubeRSSUseCase
}

func NewYouTubeRSSHandler(rssUseCase usecase.IYouTubeRSSUseCase) IYouTubeRSSHandler {
	return &YouTubeRSSHandler{rssUseCase: rssUseCase}
}

// GetLatestVideos handles GET /api/youtube-rss?max=N
func (h *YouTubeRSSHandler) GetLatestVideos(ctx *gin.Context) {
	maxItems := utils.ParsePositiveInt(ctx.Query("max"), usecase.DefaultMaxItems)

	res := h.rssUseCase.GetLatestVideos(ctx.Request.Context(), maxItems)
	writeFeedHeaders(ctx, res)
	ctx.JSON(res.StatusCode, res.Response)
}

func writeFeedHeaders(ctx *gin.Context, res *dto.YouTubeRSSResult) {
	switch res.Source {
	case dto.FeedSourceFreshCache:
		ctx.Header("Cache-Control", cacheControlFresh)
		ctx.Header("X-From-Cache", "fresh")
		ttlLeft := res.CacheTTL - res.CacheAge
		if ttlLeft < 0 {
			ttlLeft = 0
		}
		ctx.Header("X-Cache-TTL", strconv.Itoa(ttlLeft))
	case dto.FeedSourceFetched:
		ctx.Header("Cache-Control", cacheControlFresh)
		ctx.Header("X-From-Cache", "fresh")
	case dto.FeedSourceStaleFallback:
		ctx.Header("Cache-Control", cacheControlStale)
		ctx.Header("X-From-Cache", "stale")
		ctx.Header("X-Cache-Age", strconv.Itoa(res.CacheAge))
	case dto.FeedSourceUnavailable:
		ctx.Header("Cache-Control", cacheControlNone)
		ctx.Header("Retry-After", retryAfterSeconds)
	default:
		ctx.Header("Cache-Control", cacheControlNone)
	}
	if res.StatusCode == 0 {
		res.StatusCode = http.StatusInternalServerError
	}
}
