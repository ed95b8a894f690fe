package repository

import (
	"context"

	"my-site/domain/model"
)

// IYouTubeFeed fetches and normalizes the channel RSS feed from upstream
type IYouTubeFeed interface {
	// FetchVideos downloads the feed and returns at most maxItems parsed videos.
	FetchVideos(ctx context.Context, maxItems int) ([]model.YouTubeVideo, error)
}
