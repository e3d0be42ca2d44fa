package tutorcruncher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/sync/errgroup"
)

// ErrRateLimited is returned when the API answers 429 Too Many Requests.
var ErrRateLimited = errors.New("tutorcruncher rate limit")

// Config holds TutorCruncher client configuration.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"` // e.g. https://secure.tutorcruncher.com/api
	Token             string        `mapstructure:"token"`
	Enabled           bool          `mapstructure:"enabled"`
	PageDelay         time.Duration `mapstructure:"page_delay"`
	DetailDelay       time.Duration `mapstructure:"detail_delay"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	Backoff           time.Duration `mapstructure:"backoff"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	DetailConcurrency int           `mapstructure:"detail_concurrency"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://secure.tutorcruncher.com/api",
		PageDelay:         500 * time.Millisecond,
		DetailDelay:       700 * time.Millisecond,
		MaxAttempts:       5,
		Backoff:           2 * time.Second,
		HTTPTimeout:       30 * time.Second,
		DetailConcurrency: 1,
	}
}

// Validate checks the configuration of an enabled client.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if !govalidator.IsURL(c.BaseURL) {
		return fmt.Errorf("tutorcruncher base_url %q is not a valid url", c.BaseURL)
	}
	if c.Token == "" {
		return fmt.Errorf("tutorcruncher token is required")
	}
	return nil
}

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// Client is a session against the TutorCruncher REST API.
// A new Client is created for every sync run.
type Client struct {
	c      Config
	client *http.Client
}

// New creates a new client session.
func New(c *Config) *Client {
	cfg := *c
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.DetailConcurrency <= 0 {
		cfg.DetailConcurrency = 1
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		c:      cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type page struct {
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.c.BaseURL + path
}

func (c *Client) get(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request to %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Token "+c.c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: url, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// FetchAllPages follows the "next" links of a list endpoint and returns every result.
func (c *Client) FetchAllPages(ctx context.Context, path string) ([]json.RawMessage, error) {
	var results []json.RawMessage
	next := c.url(path)
	for next != "" {
		slog.Default().DebugContext(ctx, "fetching tutorcruncher page", slog.String("url", next))

		var p page
		if err := c.get(ctx, next, &p); err != nil {
			return nil, err
		}
		if p.Results == nil {
			slog.Default().WarnContext(ctx, "unexpected tutorcruncher page format",
				slog.String("url", next))
			break
		}
		results = append(results, p.Results...)

		if err := sleep(ctx, c.c.PageDelay); err != nil {
			return nil, err
		}
		next = ""
		if p.Next != nil {
			next = c.url(*p.Next)
		}
	}
	return results, nil
}

// FetchInstance fetches {path}{id}/, retrying rate limits and connection resets with a
// linear backoff. Any other error is returned straight away.
func (c *Client) FetchInstance(ctx context.Context, path string, id int) (json.RawMessage, error) {
	url := c.url(fmt.Sprintf("%s/%d/", strings.TrimRight(path, "/"), id))
	var err error
	for attempt := 1; attempt <= c.c.MaxAttempts; attempt++ {
		var raw json.RawMessage
		err = c.get(ctx, url, &raw)
		if err == nil {
			return raw, nil
		}
		if !retryable(err) {
			return nil, err
		}
		wait := c.c.Backoff * time.Duration(attempt)
		slog.Default().WarnContext(ctx, "tutorcruncher instance fetch throttled, backing off",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("err", err.Error()))
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("giving up on %s after %d attempts: %w", url, c.c.MaxAttempts, err)
}

// FetchAllDetailed lists path and then fetches the full instance of every listed object.
// Instances that cannot be fetched are skipped.
func (c *Client) FetchAllDetailed(ctx context.Context, path string) ([]json.RawMessage, error) {
	summaries, err := c.FetchAllPages(ctx, path)
	if err != nil {
		return nil, err
	}

	full := make([]json.RawMessage, len(summaries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.c.DetailConcurrency)
	for i, s := range summaries {
		id, ok := RecordId(s)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := sleep(ctx, c.c.DetailDelay); err != nil {
				return err
			}
			raw, err := c.FetchInstance(ctx, path, id)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Default().WarnContext(ctx, "failed to fetch tutorcruncher instance",
					slog.String("path", path),
					slog.Int("id", id),
					slog.String("err", err.Error()))
				return nil
			}
			full[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := full[:0]
	for _, raw := range full {
		if raw != nil {
			out = append(out, raw)
		}
	}
	return out, nil
}

func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, syscall.ECONNRESET)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
