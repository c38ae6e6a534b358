// Package igdb provides a rate-limited IGDB catalog client with
// transparent token renewal and adaptive concurrency reduction under
// sustained rate limiting.
package igdb

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"
	defaultAPIURL   = "https://api.igdb.com/v4/games"

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	// Rate limit: at most 4 request-starts per second, bucket reset each second.
	rateCapacity   = 4
	refillInterval = time.Second

	// A second 429 within this window halves the concurrency limit.
	adaptiveCooldown = 30 * time.Second
)

// Config holds client construction options.
type Config struct {
	ClientID     string
	ClientSecret string
	Offline      bool
	Concurrency  int
	AdaptiveRate bool
}

// Client is a bounded-concurrency, token-bucket-throttled IGDB client.
// In offline mode every call is a no-op returning empty results.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	cfg    Config
	retry  RetryPolicy

	// Overridable for tests.
	tokenURL string
	apiURL   string
	now      func() time.Time

	gate   *gate
	bucket *tokenBucket

	mu          sync.Mutex
	accessToken string
	last429     time.Time
}

// New creates a new IGDB client. Initialize must be called before Search.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 2
	}
	return &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   logger,
		cfg:      cfg,
		retry:    defaultRetryPolicy(),
		tokenURL: defaultTokenURL,
		apiURL:   defaultAPIURL,
		now:      time.Now,
		gate:     newGate(cfg.Concurrency),
		bucket:   newTokenBucket(rateCapacity, refillInterval),
	}
}

// SetRetryPolicy overrides the retry policy. Intended for tests.
func (c *Client) SetRetryPolicy(p RetryPolicy) {
	c.retry = p
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.bucket.stop()
}

// Concurrency returns the current concurrency limit, which adaptive
// rate handling may have reduced since construction.
func (c *Client) Concurrency() int {
	return c.gate.Limit()
}

// Initialize obtains an access token via the client-credentials grant.
// Offline mode skips the network entirely. Missing credentials or a
// failed token request are fatal to the run, so the error is returned
// as-is for the caller to treat as process-ending.
func (c *Client) Initialize(ctx context.Context) error {
	if c.cfg.Offline {
		c.logger.Info("offline mode enabled, skipping catalog init")
		return nil
	}
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return wrapError("token", "", fmt.Errorf("missing client credentials"))
	}

	token, err := c.fetchToken(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
	return nil
}

// fetchToken performs the client-credentials grant against the token endpoint.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("client_secret", c.cfg.ClientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", wrapError("token", "", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", wrapError("token", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", wrapError("token", "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.UnmarshalRead(resp.Body, &tokenResp); err != nil {
		return "", wrapError("token", "", fmt.Errorf("parse response: %w", err))
	}
	if tokenResp.AccessToken == "" {
		return "", wrapError("token", "", fmt.Errorf("empty access token in response"))
	}
	return tokenResp.AccessToken, nil
}

// refreshToken replaces the stored token after a 401.
func (c *Client) refreshToken(ctx context.Context) error {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
	return nil
}

// execute runs one catalog query through the concurrency gate, the
// token bucket, and the retry loop. Token expiry refreshes and retries
// immediately; rate limiting invokes adaptive handling and backs off;
// any other failure logs and yields an empty result.
func (c *Client) execute(ctx context.Context, query string) []Game {
	c.gate.acquire()
	defer c.gate.release()

	attempts := 0
	for {
		attempts++
		c.bucket.acquire()

		games, err := c.post(ctx, query)
		switch {
		case err == nil:
			return games

		case errors.Is(err, ErrTokenExpired):
			c.logger.Info("access token expired, renewing")
			if rerr := c.refreshToken(ctx); rerr != nil {
				c.logger.Warn("token renewal failed, retrying", "error", rerr)
			}

		case errors.Is(err, ErrRateLimited):
			c.logger.Warn("catalog rate limit hit, backing off")
			c.handle429()
			select {
			case <-time.After(c.retry.Backoff):
			case <-ctx.Done():
				return nil
			}

		default:
			c.logger.Error("catalog request failed", "error", err)
			return nil
		}

		if c.retry.exhausted(attempts) {
			c.logger.Warn("retry budget exhausted", "attempts", attempts)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// post performs a single API request and maps HTTP status to errors.
func (c *Client) post(ctx context.Context, query string) ([]Game, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(query))
	if err != nil {
		return nil, wrapError("search", "", err)
	}
	req.Header.Set("Client-ID", c.cfg.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError("search", "", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var games []Game
		if err := json.UnmarshalRead(resp.Body, &games); err != nil {
			return nil, wrapError("search", "", fmt.Errorf("parse response: %w", err))
		}
		return games, nil
	case http.StatusUnauthorized:
		return nil, ErrTokenExpired
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, wrapError("search", "", fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(body))))
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, wrapError("search", "", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// handle429 halves the concurrency limit when 429s repeat within the
// cooldown window. A lone rejection only stamps the clock.
func (c *Client) handle429() {
	if !c.cfg.AdaptiveRate {
		return
	}

	now := c.now()

	c.mu.Lock()
	repeated := !c.last429.IsZero() && now.Sub(c.last429) < adaptiveCooldown
	c.last429 = now
	c.mu.Unlock()

	if repeated {
		old, current := c.gate.halve()
		if current < old {
			c.logger.Warn("repeated 429, reducing concurrency", "from", old, "to", current)
		}
	}
}
