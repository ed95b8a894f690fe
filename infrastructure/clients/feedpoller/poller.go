package feedpoller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-querystring/query"

	"my-site/domain/dto"
	"my-site/domain/model"
	"my-site/infrastructure/logger"
)

const (
	DefaultMaxItems       = 12
	DefaultRetryCount     = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultRequestTimeout = 15 * time.Second

	maxEnvelopeBytes = 2 << 20
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
	PhaseSuccess  Phase = "success"
	PhaseFailed   Phase = "failed"
)

// State is what a UI renders from. Data is only ever replaced as a whole,
// and a failed fetch keeps whatever Data a previous fetch obtained.
type State struct {
	Data         []model.YouTubeVideo
	Loading      bool
	Error        string
	FromCache    bool
	CacheAge     int
	RetryAttempt int
	Phase        Phase
}

// EnvelopeError is a well-formed answer from the feed endpoint that carries an error.
// It is final and never retried.
type EnvelopeError struct {
	StatusCode int
	Message    string
}

func (e *EnvelopeError) Error() string {
	return e.Message
}

// TransientError is a failure to talk to the endpoint at all (transport error or client timeout).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("request feed: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type feedQuery struct {
	Max int `url:"max"`
}

type Option func(*Poller)

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(p *Poller) {
		if httpClient != nil {
			p.httpClient = httpClient
		}
	}
}

func WithMaxItems(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.maxItems = n
		}
	}
}

// WithRetryCount sets how many retries follow the first attempt. Zero disables retrying.
func WithRetryCount(n int) Option {
	return func(p *Poller) {
		if n >= 0 {
			p.retryCount = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.retryDelay = d
		}
	}
}

// WithRequestTimeout bounds each attempt independently of the server's own upstream timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.requestTimeout = d
		}
	}
}

// WithRefetchInterval makes Start refresh periodically. Zero means fetch once.
func WithRefetchInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d >= 0 {
			p.refetchInterval = d
		}
	}
}

func WithEnabled(enabled bool) Option {
	return func(p *Poller) {
		p.enabled = enabled
	}
}

// WithOnUpdate registers a callback invoked with a copy of the state after every change.
func WithOnUpdate(fn func(State)) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// Poller consumes the /api/youtube-rss endpoint on behalf of a frontend.
type Poller struct {
	endpoint        string
	httpClient      HTTPClient
	maxItems        int
	retryCount      int
	retryDelay      time.Duration
	requestTimeout  time.Duration
	refetchInterval time.Duration
	enabled         bool
	onUpdate        func(State)

	mu    sync.Mutex
	state State

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewPoller builds a poller for endpoint, the full URL of the feed route.
func NewPoller(endpoint string, opts ...Option) *Poller {
	p := &Poller{
		endpoint:       endpoint,
		httpClient:     &http.Client{},
		maxItems:       DefaultMaxItems,
		retryCount:     DefaultRetryCount,
		retryDelay:     DefaultRetryDelay,
		requestTimeout: DefaultRequestTimeout,
		enabled:        true,
		state:          State{Data: []model.YouTubeVideo{}, Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the current state.
func (p *Poller) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Fetch runs one bounded fetch cycle: the first attempt plus up to retryCount retries,
// spaced by retryDelay, for transient failures only.
func (p *Poller) Fetch(ctx context.Context) error {
	if !p.enabled {
		return nil
	}

	p.update(func(s *State) {
		s.Loading = true
		s.Error = ""
		s.Phase = PhaseFetching
		s.RetryAttempt = 0
	})

	var envelope *dto.YouTubeRSSResponse
	operation := func() error {
		res, err := p.fetchOnce(ctx)
		if err != nil {
			return err
		}
		envelope = res
		return nil
	}

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		logger.GetLogger().
			WithField("error", err).
			WithField("attempt", attempt).
			WithField("retries", p.retryCount).
			WithField("wait", wait.String()).
			Warn("Feed request failed, retrying")
		p.update(func(s *State) {
			s.RetryAttempt = attempt
		})
	}

	var policy backoff.BackOff = backoff.NewConstantBackOff(p.retryDelay)
	policy = backoff.WithMaxRetries(policy, uint64(p.retryCount))
	policy = backoff.WithContext(policy, ctx)

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to fetch YouTube videos")
		p.update(func(s *State) {
			s.Loading = false
			s.Error = err.Error()
			s.Phase = PhaseFailed
			s.RetryAttempt = 0
		})
		return err
	}

	videos := envelope.Videos
	if videos == nil {
		videos = []model.YouTubeVideo{}
	}
	cacheAge := 0
	if envelope.CacheAge != nil {
		cacheAge = *envelope.CacheAge
	}
	p.update(func(s *State) {
		s.Data = videos
		s.FromCache = envelope.FromCache
		s.CacheAge = cacheAge
		s.Loading = false
		s.Error = ""
		s.Phase = PhaseSuccess
		s.RetryAttempt = 0
	})
	return nil
}

// Retry restarts fetching from attempt zero.
func (p *Poller) Retry(ctx context.Context) error {
	return p.Fetch(ctx)
}

// Refetch is Fetch under the name the periodic refresh uses.
func (p *Poller) Refetch(ctx context.Context) error {
	return p.Fetch(ctx)
}

// Start performs the initial fetch in the background and, when a refetch interval is set,
// keeps refreshing until ctx is cancelled or Stop is called. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	if !p.enabled {
		return
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		_ = p.Fetch(ctx)
		if p.refetchInterval <= 0 {
			return
		}

		ticker := time.NewTicker(p.refetchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = p.Refetch(ctx)
			}
		}
	}()
}

// Stop cancels any in-flight fetch or pending retry and waits for the background loop to exit.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.lifecycle.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// fetchOnce performs a single attempt. Errors wrapped in backoff.Permanent stop the retry loop.
func (p *Poller) fetchOnce(ctx context.Context) (*dto.YouTubeRSSResponse, error) {
	target, err := p.requestURL()
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, &TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, &TransientError{Err: err}
	}

	var envelope dto.YouTubeRSSResponse
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if decodeErr == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return nil, backoff.Permanent(&EnvelopeError{StatusCode: resp.StatusCode, Message: msg})
	}
	if decodeErr != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode feed response: %w", decodeErr))
	}
	if envelope.Error != "" {
		return nil, backoff.Permanent(&EnvelopeError{StatusCode: resp.StatusCode, Message: envelope.Error})
	}
	return &envelope, nil
}

func (p *Poller) requestURL() (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid feed endpoint %q: %w", p.endpoint, err)
	}
	values, err := query.Values(feedQuery{Max: p.maxItems})
	if err != nil {
		return "", fmt.Errorf("encode feed query: %w", err)
	}
	q := u.Query()
	for k, v := range values {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *Poller) update(fn func(*State)) {
	p.mu.Lock()
	fn(&p.state)
	snapshot := p.state
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
}

// IsTransient reports whether err came from failing to reach the endpoint.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
