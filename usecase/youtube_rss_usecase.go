package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"my-site/domain/dto"
	"my-site/domain/model"
	"my-site/domain/repository"
	"my-site/infrastructure/logger"
)

const (
	// DefaultFetchItems is how many entries are parsed per upstream fetch; requests slice from it.
	DefaultFetchItems = 20
	DefaultMaxItems   = 12

	UnavailableMessage   = "Feed RSS temporariamente indisponível. Tente novamente em alguns minutos."
	InternalErrorMessage = "Erro interno do servidor"
)

var (
	feedFreshHits     = metrics.NewCounter(`youtube_rss_requests_total{source="fresh-cache"}`)
	feedFetched       = metrics.NewCounter(`youtube_rss_requests_total{source="fetched"}`)
	feedStaleServed   = metrics.NewCounter(`youtube_rss_requests_total{source="stale-fallback"}`)
	feedUnavailable   = metrics.NewCounter(`youtube_rss_requests_total{source="unavailable"}`)
	feedInternalError = metrics.NewCounter(`youtube_rss_requests_total{source="internal-error"}`)
	upstreamDuration  = metrics.NewHistogram(`youtube_rss_upstream_duration_seconds`)
)

type IYouTubeRSSUseCase interface {
	GetLatestVideos(ctx context.Context, maxItems int) *dto.YouTubeRSSResult
}

type YouTubeRSSUseCase struct {
	feed       repository.IYouTubeFeed
	cache      repository.IYouTubeFeedCache
	cacheKey   string
	fetchItems int
}

type YouTubeRSSOption func(*YouTubeRSSUseCase)

// WithCacheKey overrides the key the feed batch is stored under.
func WithCacheKey(key string) YouTubeRSSOption {
	return func(u *YouTubeRSSUseCase) {
		if key != "" {
			u.cacheKey = key
		}
	}
}

func WithFetchItems(n int) YouTubeRSSOption {
	return func(u *YouTubeRSSUseCase) {
		if n > 0 {
			u.fetchItems = n
		}
	}
}

func NewYouTubeRSSUseCase(feed repository.IYouTubeFeed, cache repository.IYouTubeFeedCache, opts ...YouTubeRSSOption) IYouTubeRSSUseCase {
	u := &YouTubeRSSUseCase{
		feed:       feed,
		cache:      cache,
		cacheKey:   "youtube-rss-leoveio",
		fetchItems: DefaultFetchItems,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// GetLatestVideos serves the feed from cache when fresh, refreshes it when missing or stale and
// falls back to stale data when the upstream fails. It never returns nil.
func (u *YouTubeRSSUseCase) GetLatestVideos(ctx context.Context, maxItems int) (result *dto.YouTubeRSSResult) {
	if maxItems < 1 {
		maxItems = DefaultMaxItems
	}

	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithField("panic", fmt.Sprint(r)).Error("YouTube RSS request failed")
			feedInternalError.Inc()
			result = failure(dto.FeedSourceInternalError, http.StatusInternalServerError, InternalErrorMessage)
		}
	}()

	cached, found := u.cache.Get(u.cacheKey)
	if found && !cached.IsStale {
		age, _ := u.cache.GetCacheAge(u.cacheKey)
		ttl, _ := u.cache.TTL(u.cacheKey)
		feedFreshHits.Inc()
		logger.GetLogger().WithField("age", age).Debug("Serving YouTube RSS from fresh cache")
		return success(cached.Data, maxItems, dto.FeedSourceFreshCache, age, int(ttl/time.Second))
	}

	started := time.Now()
	videos, err := u.feed.FetchVideos(ctx, u.fetchItems)
	upstreamDuration.UpdateDuration(started)
	if err == nil {
		u.cache.Set(u.cacheKey, videos)
		feedFetched.Inc()
		logger.GetLogger().WithField("count", len(videos)).Info("YouTube RSS refreshed from upstream")
		return success(videos, maxItems, dto.FeedSourceFetched, 0, 0)
	}

	logger.GetLogger().WithField("error", err).Error("Failed to fetch YouTube RSS")

	// Re-read so an entry written by a concurrent request is not missed.
	if cached, found = u.cache.Get(u.cacheKey); found {
		age, _ := u.cache.GetCacheAge(u.cacheKey)
		feedStaleServed.Inc()
		logger.GetLogger().WithField("age", age).Warn("Serving stale YouTube RSS cache")
		return success(cached.Data, maxItems, dto.FeedSourceStaleFallback, age, 0)
	}

	feedUnavailable.Inc()
	return failure(dto.FeedSourceUnavailable, http.StatusServiceUnavailable, UnavailableMessage)
}

func success(videos []model.YouTubeVideo, maxItems int, source dto.FeedSource, age, ttlSeconds int) *dto.YouTubeRSSResult {
	page := videos
	if len(page) > maxItems {
		page = page[:maxItems]
	}
	if page == nil {
		page = []model.YouTubeVideo{}
	}

	fromCache := source != dto.FeedSourceFetched
	cacheAge := age
	return &dto.YouTubeRSSResult{
		Response: dto.YouTubeRSSResponse{
			Videos:     page,
			TotalCount: len(videos),
			FromCache:  fromCache,
			CacheAge:   &cacheAge,
		},
		Source:     source,
		StatusCode: http.StatusOK,
		CacheAge:   age,
		CacheTTL:   ttlSeconds,
	}
}

func failure(source dto.FeedSource, status int, message string) *dto.YouTubeRSSResult {
	return &dto.YouTubeRSSResult{
		Response: dto.YouTubeRSSResponse{
			Videos:     []model.YouTubeVideo{},
			TotalCount: 0,
			FromCache:  false,
			Error:      message,
		},
		Source:     source,
		StatusCode: status,
	}
}
