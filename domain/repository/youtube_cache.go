package repository

import (
	"time"

	"my-site/domain/model"
)

// CachedFeed is the read view of a cache entry; IsStale is computed at read time.
type CachedFeed struct {
	Data    []model.YouTubeVideo
	IsStale bool
}

// IYouTubeFeedCache defines the process-local cache for parsed feed batches
type IYouTubeFeedCache interface {
	// Set replaces the entry for key. A missing or non-positive ttl means the default TTL.
	Set(key string, data []model.YouTubeVideo, ttl ...time.Duration)
	// Get returns the stored data and its staleness, or false when nothing is cached.
	Get(key string) (*CachedFeed, bool)
	Has(key string) bool
	Delete(key string) bool
	// GetCacheAge returns the entry age in whole seconds.
	GetCacheAge(key string) (int, bool)
	// TTL returns the TTL the entry was stored with.
	TTL(key string) (time.Duration, bool)
}
