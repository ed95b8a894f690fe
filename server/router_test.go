package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"my-site/domain/dto"
	"my-site/infrastructure/cache"
	"my-site/infrastructure/clients/youtube"
	"my-site/infrastructure/storage"
	httpHandler "my-site/interfaces/http"
	"my-site/interfaces/middleware"
	"my-site/server"
	"my-site/usecase"
)

const upstreamFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>vid1</yt:videoId>
    <title>Primeiro</title>
    <published>2025-05-02T21:00:00+00:00</published>
  </entry>
  <entry>
    <yt:videoId>vid2</yt:videoId>
    <title>Segundo #shorts</title>
  </entry>
  <entry>
    <yt:videoId>vid3</yt:videoId>
    <title>Terceiro</title>
  </entry>
</feed>`

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type testApp struct {
	router   http.Handler
	clock    *clock
	upstream *httptest.Server
	down     *atomic.Bool
	hits     *atomic.Int32
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	down := &atomic.Bool{}
	hits := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(upstreamFeed))
	}))
	t.Cleanup(upstream.Close)

	mediaRoot := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(mediaRoot, "show"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "show", "b.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "show", "a.mp4"), []byte("x"), 0o644))

	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	feedCache := cache.NewFeedCache(5*time.Minute, cache.WithClock(c.Now))
	rssClient := youtube.NewRSSClient(youtube.WithFeedURL(upstream.URL), youtube.WithHTTPClient(upstream.Client()))

	router := server.InitiateRouter(
		server.RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, RateLimiter: middleware.NewRateLimiter(1000, 1000)},
		httpHandler.NewYouTubeRSSHandler(usecase.NewYouTubeRSSUseCase(rssClient, feedCache)),
		httpHandler.NewMediaHandler(usecase.NewMediaUseCase(storage.NewLocalMediaStore(mediaRoot))),
		httpHandler.NewHealthHandler(feedCache),
	)
	return &testApp{router: router, clock: c, upstream: upstream, down: down, hits: hits}
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeFeed(t *testing.T, w *httptest.ResponseRecorder) dto.YouTubeRSSResponse {
	t.Helper()
	var res dto.YouTubeRSSResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestRouter_FeedLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Miss: fetched from upstream.
	w := app.get("/api/youtube-rss?max=2")
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeFeed(t, w)
	assert.False(t, res.FromCache)
	assert.Equal(t, 3, res.TotalCount)
	require.Len(t, res.Videos, 2)
	assert.Equal(t, "vid1", res.Videos[0].ID)
	assert.True(t, res.Videos[1].IsShort)
	assert.Equal(t, "fresh", w.Header().Get("X-From-Cache"))

	// Fresh hit: upstream is not called again.
	app.clock.now = app.clock.now.Add(time.Minute)
	w = app.get("/api/youtube-rss")
	res = decodeFeed(t, w)
	assert.True(t, res.FromCache)
	require.NotNil(t, res.CacheAge)
	assert.Equal(t, 60, *res.CacheAge)
	assert.Equal(t, "240", w.Header().Get("X-Cache-TTL"))
	assert.Equal(t, int32(1), app.hits.Load())

	// Stale and upstream down: stale data is still served.
	app.down.Store(true)
	app.clock.now = app.clock.now.Add(10 * time.Minute)
	w = app.get("/api/youtube-rss?max=1")
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeFeed(t, w)
	assert.True(t, res.FromCache)
	assert.Len(t, res.Videos, 1)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "stale", w.Header().Get("X-From-Cache"))
	assert.Equal(t, "660", w.Header().Get("X-Cache-Age"))
	assert.Equal(t, int32(2), app.hits.Load())
}

func TestRouter_FeedUnavailableWithoutCache(t *testing.T) {
	app := newTestApp(t)
	app.down.Store(true)

	w := app.get("/api/youtube-rss")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	res := decodeFeed(t, w)
	assert.Empty(t, res.Videos)
	assert.NotNil(t, res.Videos)
	assert.NotEmpty(t, res.Error)
}

func TestRouter_Media(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/api/media/show")
	require.Equal(t, http.StatusOK, w.Code)
	var res dto.MediaFolderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.TotalFiles)
	require.Len(t, res.Photos, 1)
	assert.Equal(t, "/show/b.jpg", res.Photos[0].Path)

	assert.Equal(t, http.StatusNotFound, app.get("/api/media/missing").Code)
	assert.Equal(t, http.StatusBadRequest, app.get("/api/media/bad..name").Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	app.get("/api/youtube-rss")

	w := app.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["cacheEntries"])

	w = app.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "youtube_rss_requests_total")
}

func TestRouter_CORS(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/youtube-rss", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
