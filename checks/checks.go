// Package checks provides small value checkers that validate a decoded JSON
// value and convert it to its native Go form. Checkers compose with And/Or
// and stay independent of the document layer: failures carry a detail text,
// an optional member token, and a flag telling a JSON-type mismatch from a
// bad value.
package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Checker validates v and returns its converted form.
type Checker interface {
	Check(ctx context.Context, v any) (any, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, v any) (any, error)

func (f CheckerFunc) Check(ctx context.Context, v any) (any, error) { return f(ctx, v) }

// Error is a single failed check.
type Error struct {
	// WrongType marks a mismatch of the JSON type itself rather than of the
	// value.
	WrongType bool
	// Member optionally names the object member or array index the failure
	// belongs to.
	Member string
	Detail string
}

func (e *Error) Error() string {
	if e.Member != "" {
		return e.Member + ": " + e.Detail
	}
	return e.Detail
}

func typeError(detail string) *Error  { return &Error{WrongType: true, Detail: detail} }
func valueError(detail string) *Error { return &Error{Detail: detail} }

// AsError extracts a checks.Error from err.
func AsError(err error) (*Error, bool) {
	ce, ok := err.(*Error)
	return ce, ok
}

// And pipes checkers left to right: the output of each feeds the next. The
// first failure wins. And() of nothing is Any().
func And(cs ...Checker) Checker {
	return CheckerFunc(func(ctx context.Context, v any) (any, error) {
		cur := v
		for _, c := range cs {
			out, err := c.Check(ctx, cur)
			if err != nil {
				return nil, err
			}
			cur = out
		}
		return cur, nil
	})
}

// Or tries checkers left to right and returns the first success. When every
// branch fails the first branch's error is reported. Or() of nothing is a
// programming error.
func Or(cs ...Checker) Checker {
	if len(cs) == 0 {
		panic("checks.Or: at least one checker is required")
	}
	return CheckerFunc(func(ctx context.Context, v any) (any, error) {
		var first error
		for _, c := range cs {
			out, err := c.Check(ctx, v)
			if err == nil {
				return out, nil
			}
			if first == nil {
				first = err
			}
		}
		return nil, first
	})
}

// Any passes every value through unchanged.
func Any() Checker {
	return CheckerFunc(func(_ context.Context, v any) (any, error) { return v, nil })
}

// Null passes only JSON null.
func Null() Checker {
	return CheckerFunc(func(_ context.Context, v any) (any, error) {
		if v != nil {
			return nil, typeError("Must be null.")
		}
		return nil, nil
	})
}

// String checks a JSON string. The zero value accepts any non-blank string.
type String struct {
	AllowBlank bool
	MinLen     int // 0 = no minimum
	MaxLen     int // 0 = no maximum
	Pattern    *regexp.Regexp
	Choices    []string
}

func (s String) Check(_ context.Context, v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, valueError("Must be a string.")
	}
	if s.Pattern != nil {
		if !s.Pattern.MatchString(str) {
			return nil, valueError(fmt.Sprintf("Does not match pattern %s.", s.Pattern))
		}
	} else {
		if !s.AllowBlank && str == "" {
			return nil, valueError("Blank string is not allowed.")
		}
		if s.MinLen > 0 && len(str) < s.MinLen {
			return nil, valueError(fmt.Sprintf("Must be at least %d characters long.", s.MinLen))
		}
		if s.MaxLen > 0 && len(str) > s.MaxLen {
			return nil, valueError(fmt.Sprintf("Must be at most %d characters long.", s.MaxLen))
		}
	}
	if len(s.Choices) > 0 {
		found := false
		for _, c := range s.Choices {
			if c == str {
				found = true
				break
			}
		}
		if !found {
			return nil, valueError(fmt.Sprintf("Must be one of: %s.", strings.Join(s.Choices, ", ")))
		}
	}
	return str, nil
}

// Int checks an integral JSON number and converts it to int64. Bounds are
// inclusive for Gte/Lte and exclusive for Gt/Lt.
type Int struct {
	Gte, Lte, Gt, Lt *int64
}

func (c Int) Check(_ context.Context, v any) (any, error) {
	n, ok := int64FromAny(v)
	if !ok {
		return nil, valueError("Not a valid integer.")
	}
	if c.Gte != nil && n < *c.Gte {
		return nil, valueError(fmt.Sprintf("Must be >= %d.", *c.Gte))
	}
	if c.Lte != nil && n > *c.Lte {
		return nil, valueError(fmt.Sprintf("Must be <= %d.", *c.Lte))
	}
	if c.Gt != nil && n <= *c.Gt {
		return nil, valueError(fmt.Sprintf("Must be > %d.", *c.Gt))
	}
	if c.Lt != nil && n >= *c.Lt {
		return nil, valueError(fmt.Sprintf("Must be < %d.", *c.Lt))
	}
	return n, nil
}

// Float checks a JSON number and converts it to float64.
type Float struct {
	Gte, Lte, Gt, Lt *float64
}

func (c Float) Check(_ context.Context, v any) (any, error) {
	f, ok := float64FromAny(v)
	if !ok {
		return nil, valueError("Not a valid number.")
	}
	if c.Gte != nil && f < *c.Gte {
		return nil, valueError(fmt.Sprintf("Must be >= %v.", *c.Gte))
	}
	if c.Lte != nil && f > *c.Lte {
		return nil, valueError(fmt.Sprintf("Must be <= %v.", *c.Lte))
	}
	if c.Gt != nil && f <= *c.Gt {
		return nil, valueError(fmt.Sprintf("Must be > %v.", *c.Gt))
	}
	if c.Lt != nil && f >= *c.Lt {
		return nil, valueError(fmt.Sprintf("Must be < %v.", *c.Lt))
	}
	return f, nil
}

// Bool checks a JSON bool.
func Bool() Checker {
	return CheckerFunc(func(_ context.Context, v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, typeError("Must be a boolean.")
		}
		return b, nil
	})
}

// int64FromAny converts decoded JSON numbers and native Go integers to
// int64. Fractional values do not convert.
func int64FromAny(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		// integral floats like 1e3 still qualify
		if f, err := t.Float64(); err == nil {
			return int64FromFloat(f)
		}
		return 0, false
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float32:
		return int64FromFloat(float64(t))
	case float64:
		return int64FromFloat(t)
	}
	return 0, false
}

func int64FromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// float64FromAny converts decoded JSON numbers and native Go numbers to
// float64.
func float64FromAny(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
