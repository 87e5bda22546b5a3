// Package lichess fetches head-to-head game exports from the Lichess API.
package lichess

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/logger"
	"github.com/vytor/chessduel/internal/models"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://lichess.org"
	DefaultMaxRetries = 3
	DefaultBackoff    = 2 * time.Second

	maxLineBytes = 4 << 20
)

// Options configures a Client. Zero values fall back to the defaults above,
// one request per second and a 60 second timeout.
type Options struct {
	BaseURL       string
	Token         string
	MaxRetries    int
	RatePerSecond float64
	Backoff       time.Duration
	HTTPClient    *http.Client
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	log        *logger.Logger
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		log:        logger.Default().WithPrefix("lichess"),
	}
}

// FetchParams selects the games of Username, optionally only those against
// Versus, created in [Since, Until].
type FetchParams struct {
	Username string
	Versus   string
	Since    time.Time
	Until    time.Time
}

// Query renders the export query string.
func (p FetchParams) Query() url.Values {
	q := url.Values{}
	if !p.Since.IsZero() {
		q.Set("since", strconv.FormatInt(p.Since.UnixMilli(), 10))
	}
	if !p.Until.IsZero() {
		q.Set("until", strconv.FormatInt(p.Until.UnixMilli(), 10))
	}
	for _, flag := range []string{"accuracy", "clocks", "division", "moves", "opening", "evals"} {
		q.Set(flag, "true")
	}
	q.Set("sort", "dateAsc")
	if p.Versus != "" {
		q.Set("vs", p.Versus)
	}
	return q
}

// FetchGames downloads the export for p. 429 responses are retried with
// exponential backoff (Backoff, 2*Backoff, 4*Backoff...) up to MaxRetries.
func (c *Client) FetchGames(ctx context.Context, p FetchParams) ([]models.Game, error) {
	if p.Username == "" {
		return nil, apperrors.NewValidationError("username", "required")
	}
	log := logger.FromContext(ctx).WithPrefix("lichess").WithField("username", p.Username)

	endpoint := fmt.Sprintf("%s/api/games/user/%s?%s", c.baseURL, url.PathEscape(p.Username), p.Query().Encode())

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		log.Debug("fetching games from: %s (attempt %d)", endpoint, attempt+1)
		start := time.Now()
		games, status, err := c.do(ctx, endpoint)
		if err != nil {
			log.Error("failed to fetch games: %v", err)
			return nil, err
		}
		log.Debug("export response received in %v, status=%d", time.Since(start), status)

		if status != http.StatusTooManyRequests {
			log.Info("fetched %d games", len(games))
			return games, nil
		}
		if attempt >= c.maxRetries {
			log.Warn("rate limited, giving up after %d retries", c.maxRetries)
			return nil, apperrors.NewRateLimitedError(attempt + 1)
		}

		wait := c.backoff << attempt
		log.Warn("rate limited, waiting %v before retry %d/%d", wait, attempt+1, c.maxRetries)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// do performs one request. A 429 is reported through the status with a nil
// error so the caller can decide whether to retry.
func (c *Client) do(ctx context.Context, endpoint string) ([]models.Game, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/x-ndjson")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		games, err := DecodeNDJSON(resp.Body)
		return games, resp.StatusCode, err
	case http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	case http.StatusUnauthorized:
		return nil, resp.StatusCode, apperrors.NewUnauthorizedError("lichess rejected the API token")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, apperrors.NewUpstreamError(resp.StatusCode,
			fmt.Errorf("export status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
}

// DecodeNDJSON parses one game per line, skipping blank lines.
func DecodeNDJSON(r io.Reader) ([]models.Game, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	games := []models.Game{}
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var g models.Game
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("decode game on line %d: %w", line, err)
		}
		games = append(games, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return games, nil
}
