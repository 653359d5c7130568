// Package kodi polls the Kodi JSON-RPC web interface for the active item and its playback position.
package kodi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/client"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/metrics"
	"github.com/Belphemur/KodiPresence/internal/models"
)

const (
	endpointInfo   = "info"
	endpointLength = "length"
)

type itemResult struct {
	Item models.PlaybackInfo `json:"item"`
}

// Sleeper blocks for d or until ctx is done, returning ctx.Err() in the latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper backed by a timer.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures a Client. Zero values fall back to the defaults of a stock Kodi setup.
type Options struct {
	BaseURL     string // e.g. http://localhost:8080
	PlayerID    int
	MaxAttempts int
	RateLimit   time.Duration
	HTTPClient  *http.Client
	Sleep       Sleeper
}

// Client fetches playback state from Kodi
type Client struct {
	httpClient  *http.Client
	baseURL     string
	playerID    int
	maxAttempts int
	rateLimit   time.Duration
	sleep       Sleeper
}

// New creates a Client from explicit options
func New(opts Options) *Client {
	c := &Client{
		httpClient:  opts.HTTPClient,
		baseURL:     opts.BaseURL,
		playerID:    opts.PlayerID,
		maxAttempts: opts.MaxAttempts,
		rateLimit:   opts.RateLimit,
		sleep:       opts.Sleep,
	}
	if c.httpClient == nil {
		c.httpClient = client.New(client.Options{Timeout: 5 * time.Second, UserAgent: config.GetUserAgent()})
	}
	if c.playerID == 0 {
		c.playerID = 1
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 5
	}
	if c.sleep == nil {
		c.sleep = SleepContext
	}
	return c
}

// NewClient creates a Client for the Kodi instance described by cfg
func NewClient(cfg *config.Config) *Client {
	httpClient := client.New(client.Options{
		Timeout:   config.ParseDuration("kodi.timeout", cfg.Kodi.Timeout, 5*time.Second),
		UserAgent: cfg.UserAgent,
		Username:  cfg.Kodi.Username,
		Password:  cfg.Kodi.Password,
	})

	return New(Options{
		BaseURL:     fmt.Sprintf("http://%s:%d", cfg.Kodi.Host, cfg.Kodi.Port),
		PlayerID:    cfg.Kodi.PlayerID,
		MaxAttempts: cfg.Poll.MaxAttempts,
		RateLimit:   config.ParseDuration("poll.rate_limit", cfg.Poll.RateLimit, 3*time.Second),
		HTTPClient:  httpClient,
	})
}

// FetchInfo returns the item currently loaded in the player.
// A JSON-RPC error (typically: no active player) is reported as an unknown item.
func (c *Client) FetchInfo(ctx context.Context) (models.PlaybackInfo, error) {
	req := newRequest("Player.GetItem", itemParams{PlayerID: c.playerID, Properties: infoProperties})

	resp, err := fetchWithRetry[itemResult](ctx, c, endpointInfo, req)
	if err != nil {
		return models.PlaybackInfo{}, err
	}
	if resp.Result == nil {
		return models.PlaybackInfo{Type: models.ItemUnknown}, nil
	}

	info := resp.Result.Item
	if info.Type == "" {
		info.Type = models.ItemUnknown
	}
	return info, nil
}

// FetchLength returns elapsed time, total time and speed of the player.
// A JSON-RPC error is reported as a stopped player (speed 0, zero times).
func (c *Client) FetchLength(ctx context.Context) (models.PlaybackLength, error) {
	req := newRequest("Player.GetProperties", itemParams{PlayerID: c.playerID, Properties: lengthProperties})

	resp, err := fetchWithRetry[models.PlaybackLength](ctx, c, endpointLength, req)
	if err != nil {
		return models.PlaybackLength{}, err
	}
	if resp.Result == nil {
		return models.PlaybackLength{}, nil
	}
	return *resp.Result, nil
}

// fetchWithRetry performs up to maxAttempts GETs. A failed attempt n (0-based) is
// followed by a 2^n second backoff; a successful one by the rate limit delay.
func fetchWithRetry[T any](ctx context.Context, c *Client, endpoint string, req rpcRequest) (*rpcResponse[T], error) {
	logger := config.GetLogger()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		var resp rpcResponse[T]
		err := c.call(ctx, req, &resp)
		if err == nil {
			metrics.KodiFetchTotal.WithLabelValues(endpoint, "success").Inc()
			if resp.Error != nil {
				logger.Debug().Err(resp.Error).Str("endpoint", endpoint).Msg("Kodi answered with an error, assuming nothing is playing")
			}
			if err := c.sleep(ctx, c.rateLimit); err != nil {
				return nil, err
			}
			return &resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		backoff := time.Duration(1<<attempt) * time.Second
		metrics.KodiFetchRetriesTotal.WithLabelValues(endpoint).Inc()
		logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Can't connect to Kodi web interface. Are you sure it's running? Is the web interface on?")

		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	metrics.KodiFetchTotal.WithLabelValues(endpoint, "failed").Inc()
	return nil, fmt.Errorf("%w: %s after %d attempts: %w", apperrors.ErrPlayerUnavailable, endpoint, c.maxAttempts, lastErr)
}

// call performs a single JSON-RPC request and decodes the envelope into out.
func (c *Client) call(ctx context.Context, req rpcRequest, out any) error {
	target, err := requestURL(c.baseURL, req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.Method, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &apperrors.HTTPStatusError{URL: c.baseURL + "/jsonrpc", StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s response: empty body", req.Method)
		}
		return fmt.Errorf("decode %s response: %w", req.Method, err)
	}
	return nil
}
