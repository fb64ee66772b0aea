package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/valuescreen/internal/infra"
	"github.com/seenimoa/valuescreen/pkg/models"
)

const yfinanceBaseURL = "https://query1.finance.yahoo.com"

// yfModules are the quoteSummary modules needed for a fundamentals snapshot.
var yfModules = []string{
	"price",
	"summaryDetail",
	"defaultKeyStatistics",
	"financialData",
	"assetProfile",
	"cashflowStatementHistory",
}

// YFinance implements FundamentalsProvider using the Yahoo Finance
// quoteSummary API.
type YFinance struct {
	opts  options
	cache *infra.Cache[*models.Fundamentals]
}

// NewYFinance creates a new Yahoo Finance source.
func NewYFinance(opts ...Option) *YFinance {
	o := buildOptions(yfinanceBaseURL, opts)
	return &YFinance{
		opts:  o,
		cache: infra.NewCache[*models.Fundamentals](o.cacheTTL),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance quoteSummary types ---

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yfNum is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper. Missing values come
// back as {} so Raw is a pointer.
type yfNum struct {
	Raw *float64 `json:"raw"`
}

func (n *yfNum) value() *float64 {
	if n == nil {
		return nil
	}
	return n.Raw
}

func (n *yfNum) float() float64 {
	if n == nil || n.Raw == nil {
		return 0
	}
	return *n.Raw
}

type yfSummaryResult struct {
	Price *struct {
		Symbol             string `json:"symbol"`
		ShortName          string `json:"shortName"`
		LongName           string `json:"longName"`
		Currency           string `json:"currency"`
		RegularMarketPrice *yfNum `json:"regularMarketPrice"`
		MarketCap          *yfNum `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		TrailingPE *yfNum `json:"trailingPE"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		PriceToBook       *yfNum `json:"priceToBook"`
		SharesOutstanding *yfNum `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		CurrentPrice   *yfNum `json:"currentPrice"`
		ReturnOnEquity *yfNum `json:"returnOnEquity"`
		DebtToEquity   *yfNum `json:"debtToEquity"` // percent
	} `json:"financialData"`
	AssetProfile *struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`
	CashflowStatementHistory *struct {
		Statements []yfCashflowStatement `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

type yfCashflowStatement struct {
	EndDate                          *yfNum `json:"endDate"`
	TotalCashFromOperatingActivities *yfNum `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              *yfNum `json:"capitalExpenditures"`
}

// --- Public methods ---

// GetFundamentals returns the fundamentals snapshot for ticker. Cash flows
// are returned in Yahoo's order, most recent first.
func (y *YFinance) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))

	cacheKey := "fund:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached, nil
	}

	if err := y.opts.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.opts.baseURL, url.PathEscape(symbol), strings.Join(yfModules, ","))

	y.opts.logger.Debug().Str("source", "yahoo").Str("ticker", symbol).Msg("fetching fundamentals")

	var resp yfSummaryResponse
	if err := infra.GetJSON(ctx, y.opts.client, u, nil, &resp); err != nil {
		return nil, classify(y.Name(), symbol, err)
	}

	if e := resp.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w: %s", y.Name(), ErrTickerNotFound, symbol)
		}
		return nil, &ErrMalformed{Source: y.Name(), Err: fmt.Errorf("%s: %s", e.Code, e.Description)}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", y.Name(), ErrTickerNotFound, symbol)
	}

	fd, err := y.convert(symbol, resp.QuoteSummary.Result[0])
	if err != nil {
		return nil, err
	}

	y.cache.Set(cacheKey, fd)
	return fd, nil
}

func (y *YFinance) convert(symbol string, r yfSummaryResult) (*models.Fundamentals, error) {
	fd := &models.Fundamentals{
		Ticker:    symbol,
		Source:    y.Name(),
		FetchedAt: y.opts.now(),
	}

	if p := r.Price; p != nil {
		fd.Name = coalesce(p.LongName, p.ShortName)
		fd.Currency = p.Currency
		fd.MarketCap = p.MarketCap.float()
		fd.Price = p.RegularMarketPrice.value()
	}
	if fin := r.FinancialData; fin != nil {
		if fd.Price == nil {
			fd.Price = fin.CurrentPrice.value()
		}
		fd.Ratios.ROE = fin.ReturnOnEquity.value()
		if de := fin.DebtToEquity.value(); de != nil {
			ratio := *de / 100
			fd.Ratios.DebtEquity = &ratio
		}
	}
	if sd := r.SummaryDetail; sd != nil {
		fd.Ratios.PE = sd.TrailingPE.value()
	}
	if ks := r.DefaultKeyStatistics; ks != nil {
		fd.Ratios.PB = ks.PriceToBook.value()
		fd.SharesOutstanding = ks.SharesOutstanding.value()
	}
	if ap := r.AssetProfile; ap != nil {
		fd.Sector = ap.Sector
	}

	if cf := r.CashflowStatementHistory; cf != nil {
		for i, st := range cf.Statements {
			if st.EndDate.value() == nil {
				return nil, &ErrMalformed{Source: y.Name(), Err: fmt.Errorf("cash flow statement %d has no end date", i)}
			}
			ocf := st.TotalCashFromOperatingActivities.value()
			if ocf == nil {
				continue
			}
			capex := st.CapitalExpenditures.float()
			fd.CashFlows = append(fd.CashFlows, models.CashFlowPeriod{
				Period:             time.Unix(int64(st.EndDate.float()), 0).UTC(),
				OperatingCashFlow:  *ocf,
				CapitalExpenditure: capex,
				FreeCashFlow:       *ocf + capex,
			})
		}
	}

	if fd.Price == nil && len(fd.CashFlows) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", y.Name(), ErrNoData, symbol)
	}
	return fd, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
