package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"my-site/domain/repository"
	"my-site/infrastructure/cache"
	youtubeclient "my-site/infrastructure/clients/youtube"
	"my-site/infrastructure/configuration"
	"my-site/infrastructure/logger"
	"my-site/infrastructure/storage"
	httpHandler "my-site/interfaces/http"
	"my-site/interfaces/middleware"
	"my-site/server"
	"my-site/usecase"

	"github.com/gin-gonic/gin"

	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	config, err := configuration.Load()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to load configuration")
		os.Exit(1)
	}
	logger.SetLevel(config.App.LogLevel)
	if config.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	feedCache := cache.NewFeedCache(config.YouTube.TTL(), cache.WithCleanupInterval(config.YouTube.CleanupInterval))
	feedCache.Start(ctx)
	defer feedCache.Stop()

	rssClient := youtubeclient.NewRSSClient(
		youtubeclient.WithFeedURL(config.YouTube.FeedURL),
		youtubeclient.WithUserAgent(config.YouTube.UserAgent),
		youtubeclient.WithTimeout(config.YouTube.FetchTimeout),
		youtubeclient.WithParser(youtubeclient.NewParser(
			youtubeclient.WithFallbackChannelTitle(config.YouTube.ChannelTitle),
		)),
	)
	rssUseCase := usecase.NewYouTubeRSSUseCase(rssClient, feedCache,
		usecase.WithCacheKey(config.YouTube.CacheKey),
		usecase.WithFetchItems(config.YouTube.FetchItems),
	)

	mediaStore, err := newMediaStore(config.Media)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Media store initialization failed")
		os.Exit(1)
	}
	mediaUseCase := usecase.NewMediaUseCase(mediaStore)

	router := server.InitiateRouter(
		server.RouterConfig{
			AllowedOrigins: config.App.AllowedOrigins,
			RateLimiter:    middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst),
		},
		httpHandler.NewYouTubeRSSHandler(rssUseCase),
		httpHandler.NewMediaHandler(mediaUseCase),
		httpHandler.NewHealthHandler(feedCache),
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"port":    config.App.Port,
		"feedUrl": config.YouTube.FeedURL,
		"media":   config.Media.Backend,
	}).Info("Starting application")

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.GetLogger().Info("Application shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		feedCache.Stop()
		os.Exit(2)
	}
}

func newMediaStore(cfg configuration.Media) (repository.IMediaStore, error) {
	switch cfg.Backend {
	case "fs":
		return storage.NewLocalMediaStore(cfg.Root), nil
	case "minio", "s3":
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewMinioMediaStore(client, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}
