package valuation

// ComputeMarginOfSafety returns (intrinsicValue - marketPrice) / marketPrice.
// A zero, negative, or non-finite price is an *InvalidPriceError.
func ComputeMarginOfSafety(intrinsicValue, marketPrice float64) (float64, error) {
	if !finite(marketPrice) || marketPrice <= 0 {
		return 0, &InvalidPriceError{Price: marketPrice}
	}
	if !finite(intrinsicValue) {
		return 0, &InvalidParameterError{Field: "intrinsic_value", Value: intrinsicValue, Reason: "must be a finite number"}
	}
	m := (intrinsicValue - marketPrice) / marketPrice
	if !finite(m) {
		return 0, &InvalidParameterError{Field: "margin_of_safety", Value: m, Reason: "overflows for this price"}
	}
	return m, nil
}

// Margin is a margin of safety that may be unavailable. When Defined is
// false, Value is meaningless and Err says why.
type Margin struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
	Err     error   `json:"-"`
}

// MarginUndefined returns a Margin carrying err.
func MarginUndefined(err error) Margin {
	return Margin{Err: err}
}

// MarginValue returns a defined Margin. A non-finite v yields an undefined
// margin carrying an *InvalidParameterError.
func MarginValue(v float64) Margin {
	if !finite(v) {
		return MarginUndefined(&InvalidParameterError{Field: "margin_of_safety", Value: v, Reason: "must be a finite number"})
	}
	return Margin{Value: v, Defined: true}
}

// MarginOf computes the margin of safety against an optional price. A nil
// price yields an undefined margin carrying an *InvalidPriceError.
func MarginOf(intrinsicValue float64, marketPrice *float64) Margin {
	if marketPrice == nil {
		return MarginUndefined(&InvalidPriceError{Missing: true})
	}
	m, err := ComputeMarginOfSafety(intrinsicValue, *marketPrice)
	if err != nil {
		return MarginUndefined(err)
	}
	return MarginValue(m)
}
