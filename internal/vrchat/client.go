package vrchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"worldshelf/internal/logging"
)

// World models the public world payload.
type World struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AuthorID    string  `json:"authorId,omitempty"`
	AuthorName  *string `json:"authorName,omitempty"`
	Description string  `json:"description,omitempty"`
	// ThumbnailImageURL is the current thumbnail; ImageURL is the legacy field.
	ThumbnailImageURL string  `json:"thumbnailImageUrl,omitempty"`
	ImageURL          *string `json:"imageUrl,omitempty"`
	Tags              Tags    `json:"tags"`
	Capacity          int     `json:"capacity,omitempty"`
	Favorites         int     `json:"favorites,omitempty"`
	Visits            int     `json:"visits,omitempty"`
	ReleaseStatus     string  `json:"releaseStatus,omitempty"`
}

// Thumbnail returns the thumbnail URL, falling back to the legacy image URL.
func (w *World) Thumbnail() (string, bool) {
	if w.ThumbnailImageURL != "" {
		return w.ThumbnailImageURL, true
	}
	if w.ImageURL != nil {
		return *w.ImageURL, true
	}
	return "", false
}

// Author returns the author name when the response carried one.
func (w *World) Author() (string, bool) {
	if w.AuthorName == nil {
		return "", false
	}
	return *w.AuthorName, true
}

// AuthorTags returns the author-chosen tags without their prefix.
func (w *World) AuthorTags() []string {
	return AuthorTags(w.Tags)
}

// Fetcher retrieves world details by VRChat world ID.
type Fetcher interface {
	GetWorld(ctx context.Context, worldID string) (*World, error)
}

// Client provides access to the VRChat world endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger

	maxFailures uint32
	cooldown    time.Duration
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit sets the request rate. A non-positive rate disables limiting.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithBreaker configures how many consecutive failures open the circuit and
// how long it stays open.
func WithBreaker(maxFailures int, cooldown time.Duration) Option {
	return func(c *Client) {
		if maxFailures > 0 {
			c.maxFailures = uint32(maxFailures)
		}
		if cooldown > 0 {
			c.cooldown = cooldown
		}
	}
}

// WithLogger attaches a logger for breaker state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a VRChat client.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("vrchat base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("vrchat user agent required")
	}
	client := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(1), 1),
		logger:      logging.NewNop(),
		maxFailures: 3,
		cooldown:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vrchat",
		MaxRequests: 1,
		Timeout:     client.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= client.maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientFault(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			client.logger.Info("vrchat circuit state changed",
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	})
	return client, nil
}

// GetWorld fetches the public details of a world.
func (c *Client) GetWorld(ctx context.Context, worldID string) (*World, error) {
	worldID = strings.TrimSpace(worldID)
	if worldID == "" {
		return nil, errors.New("world id must not be empty")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{WorldID: worldID, Err: err}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchWorld(ctx, worldID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("fetch world %s: %w", worldID, ErrCircuitOpen)
	}
	if err != nil {
		return nil, err
	}
	return result.(*World), nil
}

func (c *Client) fetchWorld(ctx context.Context, worldID string) (*World, error) {
	endpoint := c.baseURL + "/worlds/" + url.PathEscape(worldID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, &NetworkError{WorldID: worldID, Latency: latency, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &RemoteError{WorldID: worldID, StatusCode: resp.StatusCode, Latency: latency}
	}

	var payload World
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode vrchat world %s: %w", worldID, err)
	}
	return &payload, nil
}
