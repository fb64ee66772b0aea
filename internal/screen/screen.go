// Package screen runs the value-investing pipeline for one company: the
// fundamental checklist, the moat tally, the DCF valuation, the margin of
// safety and the final rating.
package screen

import (
	"errors"
	"math"
	"time"

	"github.com/seenimoa/valuescreen/internal/scoring"
	"github.com/seenimoa/valuescreen/internal/valuation"
	"github.com/seenimoa/valuescreen/pkg/models"
)

// Inputs are the user-supplied parts of a screen.
type Inputs struct {
	Parameters valuation.Parameters
	Moat       scoring.MoatFactors
}

// ErrorInfo is the serializable form of a pipeline error.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	kind := valuation.Kind(err)
	if kind == "" {
		kind = "error"
	}
	return &ErrorInfo{Kind: kind, Message: err.Error()}
}

// Report is the outcome of screening one company.
type Report struct {
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name,omitempty"`
	Sector      string    `json:"sector,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Source      string    `json:"source,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Price             *float64      `json:"price,omitempty"`
	SharesOutstanding *float64      `json:"shares_outstanding,omitempty"`
	MarketCap         float64       `json:"market_cap,omitempty"`
	Ratios            models.Ratios `json:"ratios"`
	Observations      int           `json:"observations"`

	Fundamentals scoring.Scorecard `json:"fundamentals"`
	// ChecklistPassed is true when the company meets most of the
	// fundamental checklist.
	ChecklistPassed bool                `json:"checklist_passed"`
	Moat            scoring.MoatFactors `json:"moat"`
	MoatScore       int                 `json:"moat_score"`

	Parameters     valuation.Parameters `json:"parameters"`
	Valuation      *valuation.Result    `json:"valuation,omitempty"`
	ValuationError *ErrorInfo           `json:"valuation_error,omitempty"`

	// IntrinsicValuePerShare is nil when the valuation failed or the share
	// count is unknown.
	IntrinsicValuePerShare *float64         `json:"intrinsic_value_per_share,omitempty"`
	Margin                 valuation.Margin `json:"margin_of_safety"`
	MarginError            *ErrorInfo       `json:"margin_error,omitempty"`
	Rating                 valuation.Rating `json:"rating"`

	Headlines []models.NewsArticle `json:"headlines,omitempty"`
	Warnings  []string             `json:"warnings,omitempty"`

	valuationErr error
}

// Err returns the valuation error, if any, with its concrete type intact.
func (r *Report) Err() error { return r.valuationErr }

// Screen evaluates f with the given inputs. It never fails: a valuation that
// cannot be computed is recorded in the report and leaves the margin
// undefined.
func Screen(f *models.Fundamentals, in Inputs) *Report {
	rep := &Report{
		Ticker:            f.Ticker,
		Name:              f.Name,
		Sector:            f.Sector,
		Currency:          f.Currency,
		Source:            f.Source,
		GeneratedAt:       time.Now().UTC(),
		Price:             f.Price,
		SharesOutstanding: f.SharesOutstanding,
		MarketCap:         f.MarketCap,
		Ratios:            f.Ratios,
		Observations:      len(f.CashFlows),
		Fundamentals:      scoring.EvaluateFundamentals(f.Ratios),
		Moat:              in.Moat,
		MoatScore:         in.Moat.Score(),
		Parameters:        in.Parameters,
	}

	rep.ChecklistPassed = rep.Fundamentals.Passed()

	obs := make([]valuation.Observation, len(f.CashFlows))
	for i, cf := range f.CashFlows {
		obs[i] = valuation.Observation{Period: cf.Period, Value: cf.FreeCashFlow}
	}

	res, err := valuation.ComputeIntrinsicValue(valuation.NewSeries(obs), in.Parameters)
	if err != nil {
		rep.valuationErr = err
		rep.ValuationError = errorInfo(err)
		rep.setMargin(valuation.MarginUndefined(err))
	} else {
		rep.Valuation = &res
		rep.setMargin(rep.marginPerShare(res.IntrinsicValue))
	}

	rep.Rating = valuation.RankInvestment(rep.Fundamentals.Score, rep.MoatScore, rep.Margin)
	return rep
}

// marginPerShare converts the firm-level intrinsic value into a per-share
// figure and compares it with the market price.
func (r *Report) marginPerShare(intrinsic float64) valuation.Margin {
	shares := r.SharesOutstanding
	if shares == nil || *shares <= 0 || math.IsNaN(*shares) || math.IsInf(*shares, 0) {
		v := math.NaN()
		if shares != nil {
			v = *shares
		}
		return valuation.MarginUndefined(&valuation.InvalidParameterError{
			Field:  "shares_outstanding",
			Value:  v,
			Reason: "unknown or not positive; per-share value undefined",
		})
	}

	perShare := intrinsic / *shares
	if math.IsNaN(perShare) || math.IsInf(perShare, 0) {
		return valuation.MarginUndefined(&valuation.InvalidParameterError{
			Field:  "shares_outstanding",
			Value:  *shares,
			Reason: "per-share value overflows",
		})
	}
	r.IntrinsicValuePerShare = &perShare
	return valuation.MarginOf(perShare, r.Price)
}

func (r *Report) setMargin(m valuation.Margin) {
	r.Margin = m
	r.MarginError = errorInfo(m.Err)
}

// Undervalued reports whether the per-share value exceeds the market price.
func (r *Report) Undervalued() bool {
	return r.Margin.Defined && r.Margin.Value > 0
}

// IsValuationError reports whether err came from the valuation engine.
func IsValuationError(err error) bool {
	return errors.Is(err, valuation.ErrInsufficientData) ||
		errors.Is(err, valuation.ErrInvalidParameter) ||
		errors.Is(err, valuation.ErrInvalidPrice)
}
