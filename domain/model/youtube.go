package model

import "time"

// YouTubeVideo represents a normalized entry of the channel RSS feed
type YouTubeVideo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	Thumbnail       string `json:"thumbnail"`
	PublishedAt     string `json:"publishedAt"`
	DurationSeconds *int   `json:"durationSeconds,omitempty"`
	DurationHint    string `json:"durationHint"`
	IsShort         bool   `json:"isShort"`
	ChannelTitle    string `json:"channelTitle"`
}

// FeedCacheEntry is one cached batch of videos. It is replaced as a whole on every write.
type FeedCacheEntry struct {
	Data      []YouTubeVideo
	Timestamp time.Time
	TTL       time.Duration
}

// Age returns how long ago the entry was captured, relative to now.
func (e FeedCacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// IsStale reports whether the entry outlived its TTL. Stale entries are still servable.
func (e FeedCacheEntry) IsStale(now time.Time) bool {
	return e.Age(now) > e.TTL
}
