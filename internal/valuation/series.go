package valuation

import (
	"sort"
	"strconv"
	"time"
)

// MinObservations is the number of trailing periods averaged into the base
// cash flow.
const MinObservations = 3

// Observation is a single fiscal-period free cash flow.
type Observation struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Series is a free cash flow history in ascending chronological order:
// the oldest period first, the most recent period last.
type Series struct {
	values []float64
}

// NewSeries builds a Series from dated observations in any order. The input
// slice is not modified. Observations sharing a period keep their input order.
func NewSeries(obs []Observation) Series {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	values := make([]float64, len(sorted))
	for i, o := range sorted {
		values[i] = o.Value
	}
	return Series{values: values}
}

// SeriesOf builds a Series from values that are already oldest-first.
func SeriesOf(values ...float64) Series {
	v := make([]float64, len(values))
	copy(v, values)
	return Series{values: v}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.values) }

// Values returns a copy of the observations, oldest first.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Trailing returns the last n observations, oldest first. If the series is
// shorter than n, the whole series is returned.
func (s Series) Trailing(n int) []float64 {
	if n >= len(s.values) {
		return s.Values()
	}
	out := make([]float64, n)
	copy(out, s.values[len(s.values)-n:])
	return out
}

// BaseCashFlow returns the mean of the most recent MinObservations values.
func (s Series) BaseCashFlow() (float64, error) {
	if len(s.values) < MinObservations {
		return 0, &InsufficientDataError{Have: len(s.values), Need: MinObservations}
	}
	var sum float64
	for i, v := range s.Trailing(MinObservations) {
		if !finite(v) {
			return 0, &InvalidParameterError{
				Field:  "free cash flow",
				Value:  v,
				Reason: "observation " + strconv.Itoa(len(s.values)-MinObservations+i) + " is not a finite number",
			}
		}
		sum += v
	}
	base := sum / MinObservations
	if !finite(base) {
		return 0, &InvalidParameterError{Field: "free cash flow", Value: base, Reason: "mean of recent observations overflows"}
	}
	return base, nil
}
