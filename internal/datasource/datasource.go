// Package datasource fetches per-ticker fundamentals (free cash flow
// history, price, ratios, shares outstanding) and headlines from remote
// market data providers.
//
// Failures are typed so callers can tell "no such ticker" from "no usable
// data" from "malformed response" from "network failure".
package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/valuescreen/internal/infra"
	"github.com/seenimoa/valuescreen/pkg/models"
)

// FundamentalsProvider is implemented by every fundamentals source.
type FundamentalsProvider interface {
	// Name returns the human-readable name of the source.
	Name() string

	// GetFundamentals returns the fundamentals snapshot for ticker.
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)
}

// HeadlineSource is implemented by news sources.
type HeadlineSource interface {
	Name() string
	GetHeadlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
}

// --- Errors ---

// ErrTickerNotFound is returned when the provider does not know the ticker.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrNoData is returned when the ticker exists but the provider has no
// usable fundamentals for it.
var ErrNoData = errors.New("no fundamentals data")

// ErrMissingAPIKey is returned by sources that need credentials.
var ErrMissingAPIKey = errors.New("api key not configured")

// ErrRateLimited is returned when the remote side answers 429.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrMalformed reports a response that could not be interpreted.
type ErrMalformed struct {
	Source string
	Err    error
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Source, e.Err)
}

func (e *ErrMalformed) Unwrap() error { return e.Err }

// ErrNetwork reports a transport failure or an unexpected HTTP status.
type ErrNetwork struct {
	Source string
	Err    error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Source, e.Err)
}

func (e *ErrNetwork) Unwrap() error { return e.Err }

// classify maps an infra error onto this package's taxonomy.
func classify(source, ticker string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var httpErr *infra.ErrHTTP
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %s", source, ErrTickerNotFound, ticker)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w", source, ErrRateLimited)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w (HTTP %d)", source, ErrMissingAPIKey, httpErr.StatusCode)
		}
		return &ErrNetwork{Source: source, Err: err}
	}

	var decErr *infra.DecodeError
	if errors.As(err, &decErr) {
		return &ErrMalformed{Source: source, Err: decErr.Err}
	}
	return &ErrNetwork{Source: source, Err: err}
}

// --- Options ---

// options is shared by all sources.
type options struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	cacheTTL time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a source.
type Option func(*options)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option { return func(o *options) { o.baseURL = u } }

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.client = c } }

// WithRateLimit sets the maximum requests per second. Zero disables limiting.
func WithRateLimit(perSecond int) Option {
	return func(o *options) { o.limiter = infra.NewLimiter(perSecond) }
}

// WithCacheTTL sets how long responses are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option { return func(o *options) { o.cacheTTL = ttl } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(defaultBase string, opts []Option) options {
	o := options{
		baseURL:  defaultBase,
		client:   infra.NewHTTPClient(0),
		limiter:  infra.NewLimiter(5),
		cacheTTL: 5 * time.Minute,
		logger:   &log.DefaultLogger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
