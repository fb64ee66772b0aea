// Package valuation implements the discounted cash flow engine: intrinsic
// value from a free cash flow history, margin of safety against a market
// price, and the investment rank derived from both.
//
// Every function here is pure. Nothing is logged, cached, or defaulted;
// invalid inputs come back as typed errors.
package valuation

import (
	"math"
	"strconv"
)

const (
	// DefaultSplitYear is the forecast year at which a two-stage model
	// switches from initial to terminal growth.
	DefaultSplitYear = 5

	// MaxForecastYears bounds the projection horizon.
	MaxForecastYears = 100
)

// Parameters holds the inputs of a DCF valuation. Rates are decimals
// (0.07 = 7%).
type Parameters struct {
	GrowthRateInitial  float64 `json:"growth_rate_initial"`
	GrowthRateTerminal float64 `json:"growth_rate_terminal"`
	DiscountRate       float64 `json:"discount_rate"`
	ForecastYears      int     `json:"forecast_years"`
	// SplitYear is the last year that grows at GrowthRateInitial. Zero means
	// single-stage: GrowthRateInitial applies to the whole horizon.
	SplitYear int `json:"split_year,omitempty"`
}

// Validate checks the parameter invariants.
func (p Parameters) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"growth_rate_initial", p.GrowthRateInitial},
		{"growth_rate_terminal", p.GrowthRateTerminal},
		{"discount_rate", p.DiscountRate},
	}
	for _, r := range rates {
		if !finite(r.v) {
			return &InvalidParameterError{Field: r.name, Value: r.v, Reason: "must be a finite number"}
		}
	}

	if p.ForecastYears <= 0 {
		return &InvalidParameterError{Field: "forecast_years", Value: float64(p.ForecastYears), Reason: "must be at least 1"}
	}
	if p.ForecastYears > MaxForecastYears {
		return &InvalidParameterError{
			Field:  "forecast_years",
			Value:  float64(p.ForecastYears),
			Reason: "must be at most " + strconv.Itoa(MaxForecastYears),
		}
	}
	if p.SplitYear < 0 {
		return &InvalidParameterError{Field: "split_year", Value: float64(p.SplitYear), Reason: "must not be negative"}
	}
	// The perpetuity denominator (r - g) must be positive.
	if p.DiscountRate <= p.GrowthRateTerminal {
		return &InvalidParameterError{
			Field:  "discount_rate",
			Value:  p.DiscountRate,
			Reason: "must be greater than growth_rate_terminal",
		}
	}
	return nil
}

// growthFor returns the growth rate applied in forecast year y.
func (p Parameters) growthFor(y int) float64 {
	if p.SplitYear == 0 || y <= p.SplitYear {
		return p.GrowthRateInitial
	}
	return p.GrowthRateTerminal
}

// YearProjection is one row of the forecast schedule.
type YearProjection struct {
	Year       int     `json:"year"`
	Growth     float64 `json:"growth"`
	CashFlow   float64 `json:"cash_flow"`
	Discounted float64 `json:"discounted"`
}

// Result contains the output of a DCF valuation.
type Result struct {
	BaseCashFlow           float64          `json:"base_cash_flow"`
	PresentValueOfForecast float64          `json:"present_value_of_forecast"`
	TerminalValue          float64          `json:"terminal_value"`
	PresentValueOfTerminal float64          `json:"present_value_of_terminal"`
	IntrinsicValue         float64          `json:"intrinsic_value"`
	Schedule               []YearProjection `json:"schedule"`
}

// ComputeIntrinsicValue projects the base cash flow (mean of the three most
// recent observations) over params.ForecastYears and discounts it, together
// with a Gordon growth terminal value, back to present value.
//
// Growth in year y is compounded from year 0 with the absolute year index as
// exponent, including years past the split: CF(y) = base * (1+g(y))^y.
// This is not the textbook two-stage chain where stage two compounds from the
// stage one ending value.
//
// Any projected or discounted amount that overflows float64 fails the
// valuation with an *InvalidParameterError instead of returning Inf or NaN.
func ComputeIntrinsicValue(series Series, params Parameters) (Result, error) {
	base, err := series.BaseCashFlow()
	if err != nil {
		return Result{}, err
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		BaseCashFlow: base,
		Schedule:     make([]YearProjection, 0, params.ForecastYears),
	}

	var finalCF float64
	for y := 1; y <= params.ForecastYears; y++ {
		g := params.growthFor(y)
		cf := base * math.Pow(1+g, float64(y))
		pv := cf / math.Pow(1+params.DiscountRate, float64(y))
		if !finite(cf) || !finite(pv) {
			return Result{}, overflow("cash flow projection", y, cf)
		}

		res.PresentValueOfForecast += pv
		res.Schedule = append(res.Schedule, YearProjection{Year: y, Growth: g, CashFlow: cf, Discounted: pv})
		finalCF = cf
	}

	// Terminal value using Gordon Growth Model.
	res.TerminalValue = finalCF * (1 + params.GrowthRateTerminal) / (params.DiscountRate - params.GrowthRateTerminal)
	res.PresentValueOfTerminal = res.TerminalValue / math.Pow(1+params.DiscountRate, float64(params.ForecastYears))

	res.IntrinsicValue = res.PresentValueOfForecast + res.PresentValueOfTerminal

	for _, v := range []struct {
		field string
		v     float64
	}{
		{"present_value_of_forecast", res.PresentValueOfForecast},
		{"terminal_value", res.TerminalValue},
		{"present_value_of_terminal", res.PresentValueOfTerminal},
		{"intrinsic_value", res.IntrinsicValue},
	} {
		if !finite(v.v) {
			return Result{}, overflow(v.field, params.ForecastYears, v.v)
		}
	}
	return res, nil
}

func overflow(field string, year int, v float64) error {
	return &InvalidParameterError{
		Field:  field,
		Value:  v,
		Reason: "overflows at year " + strconv.Itoa(year) + "; lower the growth rate or the horizon",
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
