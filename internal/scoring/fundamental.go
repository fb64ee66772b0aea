// Package scoring implements the fundamental checklist and the qualitative
// moat tally. All inputs are passed explicitly.
package scoring

import (
	"fmt"

	"github.com/seenimoa/valuescreen/pkg/models"
)

// Checklist thresholds.
const (
	MinROE        = 0.15
	MaxPE         = 20.0
	MaxDebtEquity = 0.5
	MaxPB         = 3.0

	// PassScore is the score at which a stock meets most of the checklist.
	PassScore = 3
	// ChecklistMax is the number of checklist rules.
	ChecklistMax = 4
)

// Check is the outcome of a single checklist rule.
type Check struct {
	Name   string   `json:"name"`
	Passed bool     `json:"passed"`
	Value  *float64 `json:"value,omitempty"`
	Reason string   `json:"reason"`
}

// Scorecard is the result of the fundamental checklist.
type Scorecard struct {
	Score  int     `json:"score"`
	Max    int     `json:"max"`
	Checks []Check `json:"checks"`
}

// Passed reports whether the scorecard meets most criteria.
func (s Scorecard) Passed() bool { return s.Score >= PassScore }

// Reasons returns the reason text of every check, in order.
func (s Scorecard) Reasons() []string {
	out := make([]string, len(s.Checks))
	for i, c := range s.Checks {
		out[i] = c.Reason
	}
	return out
}

// EvaluateFundamentals scores profitability, valuation and leverage, one
// point per rule. A missing ratio fails its rule.
func EvaluateFundamentals(r models.Ratios) Scorecard {
	checks := []Check{
		rule("ROE", r.ROE,
			func(v float64) bool { return v > MinROE },
			"ROE > 15%", "ROE too low"),
		rule("PE Ratio", r.PE,
			func(v float64) bool { return v > 0 && v < MaxPE },
			"PE Ratio < 20", "PE Ratio too high"),
		rule("Debt to Equity", r.DebtEquity,
			func(v float64) bool { return v >= 0 && v < MaxDebtEquity },
			"Low Debt to Equity", "Too much leverage"),
		rule("Price/Book", r.PB,
			func(v float64) bool { return v > 0 && v < MaxPB },
			"Price/Book < 3", "Price/Book too high"),
	}

	sc := Scorecard{Max: len(checks), Checks: checks}
	for _, c := range checks {
		if c.Passed {
			sc.Score++
		}
	}
	return sc
}

func rule(name string, v *float64, pass func(float64) bool, ok, fail string) Check {
	if v == nil {
		return Check{Name: name, Reason: fmt.Sprintf("%s unavailable", name)}
	}
	c := Check{Name: name, Value: v}
	if pass(*v) {
		c.Passed = true
		c.Reason = ok
	} else {
		c.Reason = fail
	}
	return c
}
