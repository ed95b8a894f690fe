package cache

import (
	"context"
	"sync"
	"time"

	"my-site/domain/model"
	"my-site/domain/repository"
	"my-site/infrastructure/logger"
	"my-site/infrastructure/utils"
)

const (
	// EvictionGrace is how long an entry survives past its TTL before Cleanup removes it.
	EvictionGrace          = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// Verify interface implementation
var _ repository.IYouTubeFeedCache = (*FeedCache)(nil)

// FeedCache is the process-wide in-memory store of parsed feed batches.
// Entries become stale after their TTL but stay readable until the sweep evicts them.
type FeedCache struct {
	mu         sync.RWMutex
	entries    map[string]model.FeedCacheEntry
	defaultTTL time.Duration
	interval   time.Duration
	now        utils.Clock

	lifecycle   sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	lastCleanup time.Time
}

type Option func(*FeedCache)

// WithClock replaces the time source (tests).
func WithClock(clock utils.Clock) Option {
	return func(c *FeedCache) {
		c.now = clock
	}
}

// WithCleanupInterval sets the sweep period used by Start.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *FeedCache) {
		if d > 0 {
			c.interval = d
		}
	}
}

func NewFeedCache(defaultTTL time.Duration, opts ...Option) *FeedCache {
	if defaultTTL <= 0 {
		defaultTTL = 300 * time.Second
	}
	c := &FeedCache{
		entries:    make(map[string]model.FeedCacheEntry),
		defaultTTL: defaultTTL,
		interval:   DefaultCleanupInterval,
		now:        utils.GetCurrentTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FeedCache) Set(key string, data []model.YouTubeVideo, ttl ...time.Duration) {
	entryTTL := c.defaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		entryTTL = ttl[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = model.FeedCacheEntry{
		Data:      data,
		Timestamp: c.now(),
		TTL:       entryTTL,
	}
}

func (c *FeedCache) Get(key string) (*repository.CachedFeed, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &repository.CachedFeed{
		Data:    entry.Data,
		IsStale: entry.IsStale(c.now()),
	}, true
}

func (c *FeedCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

func (c *FeedCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear drops every entry.
func (c *FeedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]model.FeedCacheEntry)
}

func (c *FeedCache) GetCacheAge(key string) (int, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return int(entry.Age(c.now()) / time.Second), true
}

func (c *FeedCache) TTL(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return entry.TTL, true
}

func (c *FeedCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup evicts entries older than their TTL plus EvictionGrace and returns how many were removed.
func (c *FeedCache) Cleanup() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if entry.Age(now) > entry.TTL+EvictionGrace {
			delete(c.entries, key)
			removed++
		}
	}
	c.lastCleanup = now
	return removed
}

type Stats struct {
	EntryCount      int       `json:"entryCount"`
	DefaultTTL      int       `json:"defaultTtlSeconds"`
	LastCleanupTime time.Time `json:"lastCleanupTime"`
}

func (c *FeedCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		EntryCount:      len(c.entries),
		DefaultTTL:      int(c.defaultTTL / time.Second),
		LastCleanupTime: c.lastCleanup,
	}
}

// Start launches the periodic sweep. Calling Start on a running cache is a no-op.
// The sweep ends when ctx is cancelled or Stop is called.
func (c *FeedCache) Start(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.Cleanup(); removed > 0 {
					logger.GetLogger().WithField("removed", removed).Info("Feed cache cleanup evicted entries")
				}
			}
		}
	}()
	logger.GetLogger().WithField("interval", c.interval.String()).Info("Feed cache cleanup started")
}

// Stop halts the sweep and waits for it to exit. Safe to call when not started.
func (c *FeedCache) Stop() {
	c.lifecycle.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.lifecycle.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
