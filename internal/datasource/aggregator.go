package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/valuescreen/internal/config"
	"github.com/seenimoa/valuescreen/pkg/models"
	"github.com/seenimoa/valuescreen/pkg/utils"
)

// NewProvider builds a fundamentals source by name, accepting the names
// config.CanonicalProvider knows. fmpKey is only used by the "fmp" provider.
func NewProvider(name, fmpKey string, opts ...Option) (FundamentalsProvider, error) {
	canonical, _ := config.CanonicalProvider(name)
	switch canonical {
	case config.ProviderYahoo:
		return NewYFinance(opts...), nil
	case config.ProviderFMP:
		return NewFMP(fmpKey, opts...), nil
	}
	return nil, fmt.Errorf("unknown provider %q (want %s or %s)", name, config.ProviderYahoo, config.ProviderFMP)
}

// Snapshot is everything the aggregator gathered for one ticker.
type Snapshot struct {
	Fundamentals *models.Fundamentals `json:"fundamentals"`
	Headlines    []models.NewsArticle `json:"headlines,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
	FetchedAt    time.Time            `json:"fetched_at"`
}

// AggregatorConfig wires the sources used by an Aggregator. Fallback and
// News may be nil.
type AggregatorConfig struct {
	Primary   FundamentalsProvider
	Fallback  FundamentalsProvider
	News      HeadlineSource
	NewsLimit int
	Logger    *log.Logger
}

// Aggregator fetches fundamentals and headlines concurrently, falling back
// to a secondary fundamentals source when the primary fails.
type Aggregator struct {
	primary   FundamentalsProvider
	fallback  FundamentalsProvider
	news      HeadlineSource
	newsLimit int
	logger    *log.Logger
}

// NewAggregator creates an aggregator from cfg.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	logger := cfg.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Aggregator{
		primary:   cfg.Primary,
		fallback:  cfg.Fallback,
		news:      cfg.News,
		newsLimit: cfg.NewsLimit,
		logger:    logger,
	}
}

// Sources returns the names of the configured sources, primary first.
func (a *Aggregator) Sources() []string {
	var names []string
	for _, p := range []FundamentalsProvider{a.primary, a.fallback} {
		if p != nil {
			names = append(names, p.Name())
		}
	}
	if a.news != nil {
		names = append(names, a.news.Name())
	}
	return names
}

// Fetch returns a snapshot for ticker. Fundamentals failures are fatal;
// headline failures are recorded as warnings.
func (a *Aggregator) Fetch(ctx context.Context, ticker string) (*Snapshot, error) {
	symbol, err := utils.ParseTicker(ticker)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{FetchedAt: time.Now().UTC()}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fd, err := a.FetchFundamentals(gctx, symbol)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.Fundamentals = fd
		mu.Unlock()
		return nil
	})

	if a.news != nil {
		g.Go(func() error {
			articles, err := a.news.GetHeadlines(gctx, symbol, a.newsLimit)
			if err != nil {
				if gctx.Err() == nil {
					a.logger.Warn().Str("ticker", symbol).Err(err).Msg("headlines unavailable")
				}
				mu.Lock()
				snap.Warnings = append(snap.Warnings, fmt.Sprintf("headlines: %v", err))
				mu.Unlock()
				return nil // non-fatal
			}
			mu.Lock()
			snap.Headlines = articles
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// FetchFundamentals asks the primary source and, unless the primary reports
// that the ticker does not exist, retries with the fallback.
func (a *Aggregator) FetchFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	if a.primary == nil {
		return nil, errors.New("no fundamentals provider configured")
	}

	fd, err := a.primary.GetFundamentals(ctx, ticker)
	if err == nil {
		return fd, nil
	}
	if a.fallback == nil || errors.Is(err, ErrTickerNotFound) || ctx.Err() != nil {
		return nil, err
	}

	a.logger.Info().
		Str("ticker", ticker).
		Str("primary", a.primary.Name()).
		Str("fallback", a.fallback.Name()).
		Err(err).
		Msg("primary source failed, trying fallback")

	fd, ferr := a.fallback.GetFundamentals(ctx, ticker)
	if ferr == nil {
		return fd, nil
	}
	if errors.Is(ferr, ErrMissingAPIKey) {
		return nil, err
	}
	return nil, fmt.Errorf("%w (fallback: %w)", err, ferr)
}
