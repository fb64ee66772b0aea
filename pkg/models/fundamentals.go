package models

import "time"

// Ratios holds the valuation and quality ratios used by the fundamental
// checklist. A nil field means the provider did not report it.
type Ratios struct {
	ROE        *float64 `json:"roe,omitempty"`         // return on equity, decimal (0.18 = 18%)
	PE         *float64 `json:"pe,omitempty"`          // trailing price / earnings
	PB         *float64 `json:"pb,omitempty"`          // price / book
	DebtEquity *float64 `json:"debt_equity,omitempty"` // total debt / equity, as a ratio (not %)
}

// CashFlowPeriod is one fiscal period of the cash flow statement.
type CashFlowPeriod struct {
	Period             time.Time `json:"period"`
	OperatingCashFlow  float64   `json:"operating_cash_flow"`
	CapitalExpenditure float64   `json:"capital_expenditure"` // negative when cash went out
	FreeCashFlow       float64   `json:"free_cash_flow"`
}

// Fundamentals is everything a provider returns for one ticker.
type Fundamentals struct {
	Ticker            string           `json:"ticker"`
	Name              string           `json:"name"`
	Sector            string           `json:"sector,omitempty"`
	Currency          string           `json:"currency,omitempty"`
	MarketCap         float64          `json:"market_cap,omitempty"`
	Price             *float64         `json:"price,omitempty"`
	SharesOutstanding *float64         `json:"shares_outstanding,omitempty"`
	Ratios            Ratios           `json:"ratios"`
	CashFlows         []CashFlowPeriod `json:"cash_flows"` // provider order, see Source
	Source            string           `json:"source"`
	FetchedAt         time.Time        `json:"fetched_at"`
}

// NewsArticle is a headline related to a ticker.
type NewsArticle struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Float returns a pointer to v. Handy for populating optional fields.
func Float(v float64) *float64 { return &v }
