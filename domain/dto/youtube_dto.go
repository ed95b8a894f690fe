package dto

import "my-site/domain/model"

// YouTubeRSSResponse is the envelope returned by GET /api/youtube-rss, on success and on failure
type YouTubeRSSResponse struct {
	Videos     []model.YouTubeVideo `json:"videos"`
	TotalCount int                  `json:"totalCount"`
	FromCache  bool                 `json:"fromCache"`
	CacheAge   *int                 `json:"cacheAge,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// FeedSource tells how a response was produced; the HTTP layer derives caching headers from it.
type FeedSource string

const (
	FeedSourceFreshCache    FeedSource = "fresh-cache"
	FeedSourceFetched       FeedSource = "fetched"
	FeedSourceStaleFallback FeedSource = "stale-fallback"
	FeedSourceUnavailable   FeedSource = "unavailable"
	FeedSourceInternalError FeedSource = "internal-error"
)

// YouTubeRSSResult is what the feed use case hands back to the handler
type YouTubeRSSResult struct {
	Response   YouTubeRSSResponse
	Source     FeedSource
	StatusCode int
	// CacheAge is the age in seconds of the entry that was served; zero for fresh fetches.
	CacheAge int
	// CacheTTL is the TTL in seconds of the served entry.
	CacheTTL int
}
