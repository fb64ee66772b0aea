package valuation

// Rating is the investment verdict.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingAverage   Rating = "Average"
	RatingAvoid     Rating = "Avoid"
)

// Rank thresholds.
const (
	excellentMargin = 0.30
	excellentTotal  = 6
	goodMargin      = 0.20
	goodTotal       = 5
	averageTotal    = 4
)

// RankInvestment combines the fundamental and qualitative scores with the
// margin of safety. Rules are checked in order and the first match wins:
//
//	margin > 0.30 and total >= 6  → Excellent
//	margin > 0.20 and total >= 5  → Good
//	total >= 4                    → Average
//	otherwise                     → Avoid
//
// When the margin is undefined only the total thresholds are consulted.
func RankInvestment(fundamentalScore, qualitativeScore int, margin Margin) Rating {
	total := fundamentalScore + qualitativeScore

	if !margin.Defined {
		switch {
		case total >= excellentTotal:
			return RatingExcellent
		case total >= goodTotal:
			return RatingGood
		case total >= averageTotal:
			return RatingAverage
		default:
			return RatingAvoid
		}
	}

	switch {
	case margin.Value > excellentMargin && total >= excellentTotal:
		return RatingExcellent
	case margin.Value > goodMargin && total >= goodTotal:
		return RatingGood
	case total >= averageTotal:
		return RatingAverage
	default:
		return RatingAvoid
	}
}
