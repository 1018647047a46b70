package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Rounding modes for Decimal.Places.
const (
	RoundHalfUp   = "half-up" // default
	RoundHalfEven = "half-even"
	RoundCeiling  = "ceiling"
	RoundFloor    = "floor"
	RoundUp       = "up"
	RoundDown     = "down"
)

// Decimal checks a JSON string or number and converts it to a
// decimal.Decimal. Non-finite values never convert; an arbitrary-precision
// decimal has no representation for them.
type Decimal struct {
	// Places, when non-nil, rounds the value to that many decimal places
	// using Rounding.
	Places   *int32
	Rounding string
	// Bounds compare after rounding.
	Gte, Lte, Gt, Lt *decimal.Decimal
}

func (c Decimal) Check(_ context.Context, v any) (any, error) {
	d, err := decimalFromAny(v)
	if err != nil {
		return nil, err
	}
	if c.Places != nil {
		d = roundPlaces(d, *c.Places, c.Rounding)
	}
	if c.Gte != nil && d.Cmp(*c.Gte) < 0 {
		return nil, valueError(fmt.Sprintf("Must be >= %s.", c.Gte))
	}
	if c.Lte != nil && d.Cmp(*c.Lte) > 0 {
		return nil, valueError(fmt.Sprintf("Must be <= %s.", c.Lte))
	}
	if c.Gt != nil && d.Cmp(*c.Gt) <= 0 {
		return nil, valueError(fmt.Sprintf("Must be > %s.", c.Gt))
	}
	if c.Lt != nil && d.Cmp(*c.Lt) >= 0 {
		return nil, valueError(fmt.Sprintf("Must be < %s.", c.Lt))
	}
	return d, nil
}

func decimalFromAny(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case string:
		return decimalFromString(t)
	case json.Number:
		return decimalFromString(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, valueError("Special numeric values are not permitted.")
		}
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimalFromAny(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	}
	return decimal.Decimal{}, valueError("Not a valid decimal.")
}

func decimalFromString(s string) (decimal.Decimal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nan", "-nan", "inf", "-inf", "infinity", "-infinity":
		return decimal.Decimal{}, valueError("Special numeric values are not permitted.")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, valueError("Not a valid decimal.")
	}
	return d, nil
}

func roundPlaces(d decimal.Decimal, places int32, mode string) decimal.Decimal {
	switch mode {
	case RoundHalfEven:
		return d.RoundBank(places)
	case RoundCeiling:
		return d.RoundCeil(places)
	case RoundFloor:
		return d.RoundFloor(places)
	case RoundUp:
		return d.RoundUp(places)
	case RoundDown:
		return d.RoundDown(places)
	default:
		return d.Round(places)
	}
}
