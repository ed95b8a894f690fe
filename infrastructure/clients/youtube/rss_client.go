package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"my-site/domain/model"
	"my-site/domain/repository"
)

const (
	DefaultFeedURL      = "https://www.youtube.com/feeds/videos.xml?channel_id=UC1ajCC-_nKsdSMbY95XMucg"
	DefaultUserAgent    = "LeoVeio-Site/1.0"
	DefaultFetchTimeout = 10 * time.Second

	maxFeedBytes = 5 << 20
)

// ErrUpstreamTimeout is returned when the feed did not answer within the fetch timeout.
var ErrUpstreamTimeout = errors.New("youtube RSS feed timed out")

// UpstreamError is returned for non-2xx answers from the feed endpoint.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("youtube RSS feed returned HTTP %d: %s", e.StatusCode, e.Status)
}

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the RSSClient.
type ClientOption func(*RSSClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *RSSClient) {
		c.httpClient = httpClient
	}
}

// WithFeedURL overrides the feed location (useful for testing).
func WithFeedURL(url string) ClientOption {
	return func(c *RSSClient) {
		if url != "" {
			c.feedURL = url
		}
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *RSSClient) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds a single upstream fetch.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *RSSClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithParser(parser *Parser) ClientOption {
	return func(c *RSSClient) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// Verify interface implementation
var _ repository.IYouTubeFeed = (*RSSClient)(nil)

// RSSClient downloads the public channel feed; no credentials are needed.
type RSSClient struct {
	httpClient HTTPClient
	feedURL    string
	userAgent  string
	timeout    time.Duration
	parser     *Parser
}

func NewRSSClient(opts ...ClientOption) *RSSClient {
	c := &RSSClient{
		httpClient: &http.Client{},
		feedURL:    DefaultFeedURL,
		userAgent:  DefaultUserAgent,
		timeout:    DefaultFetchTimeout,
		parser:     NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchVideos downloads and parses the feed. Timeouts, transport failures, non-2xx statuses
// and unreadable documents are all returned as errors.
func (c *RSSClient) FetchVideos(ctx context.Context, maxItems int) ([]model.YouTubeVideo, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return c.parser.Parse(body, maxItems)
}

func (c *RSSClient) fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrUpstreamTimeout, c.timeout)
		}
		return nil, fmt.Errorf("failed to fetch RSS feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrUpstreamTimeout, c.timeout)
		}
		return nil, fmt.Errorf("failed to read RSS feed: %w", err)
	}
	return body, nil
}
