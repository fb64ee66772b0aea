package valuation

import (
	"errors"
	"fmt"
)

// --- Sentinel errors ---

// ErrInsufficientData matches any *InsufficientDataError via errors.Is.
var ErrInsufficientData = errors.New("insufficient cash flow data")

// ErrInvalidParameter matches any *InvalidParameterError via errors.Is.
var ErrInvalidParameter = errors.New("invalid valuation parameter")

// ErrInvalidPrice matches any *InvalidPriceError via errors.Is.
var ErrInvalidPrice = errors.New("invalid market price")

// InsufficientDataError is returned when the cash flow series is too short
// to derive a base cash flow.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient cash flow data: have %d observations, need at least %d", e.Have, e.Need)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// InvalidParameterError is returned when a valuation parameter violates its
// invariant. Offending values are reported, never clamped.
type InvalidParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// InvalidPriceError is returned when a margin of safety is requested against
// a missing or non-positive market price.
type InvalidPriceError struct {
	Price   float64
	Missing bool
}

func (e *InvalidPriceError) Error() string {
	if e.Missing {
		return "invalid market price: price not available"
	}
	return fmt.Sprintf("invalid market price: %g must be positive", e.Price)
}

// Is reports whether target is ErrInvalidPrice.
func (e *InvalidPriceError) Is(target error) bool { return target == ErrInvalidPrice }

// Kind returns a short machine-readable name for an engine error, or "" if
// err did not come from this package.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	default:
		return ""
	}
}
