package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/valuescreen/internal/infra"
	"github.com/seenimoa/valuescreen/pkg/models"
)

const (
	fmpBaseURL = "https://financialmodelingprep.com/api/v3"

	// fmpCashFlowYears is how many annual statements are requested.
	fmpCashFlowYears = 10
)

// FMP implements FundamentalsProvider using Financial Modeling Prep.
// Free tier: 250 requests/day; a snapshot costs four requests.
type FMP struct {
	opts   options
	apiKey string
	cache  *infra.Cache[*models.Fundamentals]
}

// NewFMP creates a Financial Modeling Prep source.
func NewFMP(apiKey string, opts ...Option) *FMP {
	o := buildOptions(fmpBaseURL, opts)
	return &FMP{
		opts:   o,
		apiKey: apiKey,
		cache:  infra.NewCache[*models.Fundamentals](o.cacheTTL),
	}
}

// Name returns the data source name.
func (f *FMP) Name() string { return "Financial Modeling Prep" }

// --- FMP response types ---

type fmpQuote struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	MarketCap         float64  `json:"marketCap"`
	PE                *float64 `json:"pe"`
	SharesOutstanding *float64 `json:"sharesOutstanding"`
}

type fmpProfile struct {
	CompanyName string `json:"companyName"`
	Sector      string `json:"sector"`
	Currency    string `json:"currency"`
}

type fmpCashFlow struct {
	Date               string  `json:"date"`
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
	FreeCashFlow       float64 `json:"freeCashFlow"`
}

type fmpRatiosTTM struct {
	ReturnOnEquityTTM     *float64 `json:"returnOnEquityTTM"`
	PriceEarningsRatioTTM *float64 `json:"priceEarningsRatioTTM"`
	PriceToBookRatioTTM   *float64 `json:"priceToBookRatioTTM"`
	DebtEquityRatioTTM    *float64 `json:"debtEquityRatioTTM"`
}

// --- Public methods ---

// GetFundamentals returns the fundamentals snapshot for ticker. Quote,
// profile, cash flow statements and TTM ratios are fetched concurrently.
// Cash flows are returned most recent first, as FMP sends them.
func (f *FMP) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", f.Name(), ErrMissingAPIKey)
	}
	symbol := strings.ToUpper(strings.TrimSpace(ticker))

	cacheKey := "fund:" + symbol
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached, nil
	}

	var (
		quotes   []fmpQuote
		profiles []fmpProfile
		flows    []fmpCashFlow
		ratios   []fmpRatiosTTM
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.get(gctx, "/quote/"+url.PathEscape(symbol), nil, &quotes) })
	g.Go(func() error { return f.get(gctx, "/profile/"+url.PathEscape(symbol), nil, &profiles) })
	g.Go(func() error {
		return f.get(gctx, "/cash-flow-statement/"+url.PathEscape(symbol),
			url.Values{"limit": {fmt.Sprint(fmpCashFlowYears)}}, &flows)
	})
	g.Go(func() error { return f.get(gctx, "/ratios-ttm/"+url.PathEscape(symbol), nil, &ratios) })
	if err := g.Wait(); err != nil {
		return nil, classify(f.Name(), symbol, err)
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", f.Name(), ErrTickerNotFound, symbol)
	}

	q := quotes[0]
	fd := &models.Fundamentals{
		Ticker:            symbol,
		Name:              q.Name,
		MarketCap:         q.MarketCap,
		Price:             q.Price,
		SharesOutstanding: q.SharesOutstanding,
		Source:            f.Name(),
		FetchedAt:         f.opts.now(),
	}
	fd.Ratios.PE = q.PE

	if len(profiles) > 0 {
		p := profiles[0]
		fd.Name = coalesce(p.CompanyName, fd.Name)
		fd.Sector = p.Sector
		fd.Currency = p.Currency
	}

	if len(ratios) > 0 {
		r := ratios[0]
		fd.Ratios.ROE = r.ReturnOnEquityTTM
		fd.Ratios.PB = r.PriceToBookRatioTTM
		fd.Ratios.DebtEquity = r.DebtEquityRatioTTM
		if r.PriceEarningsRatioTTM != nil {
			fd.Ratios.PE = r.PriceEarningsRatioTTM
		}
	}

	for _, cf := range flows {
		period, err := time.Parse("2006-01-02", cf.Date)
		if err != nil {
			return nil, &ErrMalformed{Source: f.Name(), Err: fmt.Errorf("cash flow date %q: %w", cf.Date, err)}
		}
		fd.CashFlows = append(fd.CashFlows, models.CashFlowPeriod{
			Period:             period,
			OperatingCashFlow:  cf.OperatingCashFlow,
			CapitalExpenditure: cf.CapitalExpenditure,
			FreeCashFlow:       cf.FreeCashFlow,
		})
	}

	f.cache.Set(cacheKey, fd)
	return fd, nil
}

func (f *FMP) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := f.opts.limiter.Wait(ctx); err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", f.apiKey)

	f.opts.logger.Debug().Str("source", "fmp").Str("path", path).Msg("fetching")
	return infra.GetJSON(ctx, f.opts.client, f.opts.baseURL+path+"?"+params.Encode(), nil, out)
}
