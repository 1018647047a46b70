package checks

import (
	"context"
	"fmt"
	"math/big"
	"net/mail"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// RFC3339 checks a date-time string and converts it to time.Time. DateOnly
// restricts the layout to a calendar date.
type RFC3339 struct {
	DateOnly bool
}

func (c RFC3339) Check(_ context.Context, v any) (any, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s, ok := v.(string)
	if !ok {
		if c.DateOnly {
			return nil, valueError("Must be a date string.")
		}
		return nil, valueError("Must be a date-time string.")
	}
	t, err := parseRFC3339(s, c.DateOnly)
	if err != nil {
		if c.DateOnly {
			return nil, valueError("Not a valid RFC 3339 date (expected YYYY-MM-DD).")
		}
		return nil, valueError("Not a valid RFC 3339 date-time.")
	}
	return t, nil
}

func parseRFC3339(s string, dateOnly bool) (time.Time, error) {
	if dateOnly {
		return time.Parse(time.DateOnly, s)
	}
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 renders t in its wire form, a calendar date when dateOnly.
func FormatRFC3339(t time.Time, dateOnly bool) string {
	if dateOnly {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

// Seconds checks a JSON number of seconds and converts it to time.Duration.
type Seconds struct {
	Min, Max *time.Duration
}

func (c Seconds) Check(_ context.Context, v any) (any, error) {
	var d time.Duration
	if t, ok := v.(time.Duration); ok {
		d = t
	} else {
		f, ok := float64FromAny(v)
		if !ok {
			return nil, typeError("Must be a number.")
		}
		d = time.Duration(f * float64(time.Second))
	}
	if c.Min != nil && d < *c.Min {
		return nil, valueError(fmt.Sprintf("The timedelta must be >= %v.", *c.Min))
	}
	if c.Max != nil && d > *c.Max {
		return nil, valueError(fmt.Sprintf("The timedelta must be <= %v.", *c.Max))
	}
	return d, nil
}

// ComplexPair checks an object with numeric "real" and "imag" members and
// converts it to complex128.
func ComplexPair() Checker {
	return CheckerFunc(func(_ context.Context, v any) (any, error) {
		if z, ok := v.(complex128); ok {
			return z, nil
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeError("Must be an object with a 'real' and 'imag' member.")
		}
		rawRe, ok := m["real"]
		if !ok {
			return nil, valueError("Does not have a 'real' member.")
		}
		rawIm, ok := m["imag"]
		if !ok {
			return nil, valueError("Does not have an 'imag' member.")
		}
		re, ok := float64FromAny(rawRe)
		if !ok {
			return nil, &Error{Member: "real", Detail: "The real part must be a number."}
		}
		im, ok := float64FromAny(rawIm)
		if !ok {
			return nil, &Error{Member: "imag", Detail: "The imaginary part must be a number."}
		}
		return complex(re, im), nil
	})
}

// Fraction checks an object with integer "numerator" and "denominator"
// members and converts it to *big.Rat. Min/Max bound the ratio.
type Fraction struct {
	Min, Max *big.Rat
}

func (c Fraction) Check(_ context.Context, v any) (any, error) {
	var r *big.Rat
	if t, ok := v.(*big.Rat); ok {
		r = t
	} else {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeError("Must be an object with a 'numerator' and 'denominator' member.")
		}
		rawNum, ok := m["numerator"]
		if !ok {
			return nil, valueError("Does not have a 'numerator' member.")
		}
		rawDen, ok := m["denominator"]
		if !ok {
			return nil, valueError("Does not have a 'denominator' member.")
		}
		num, ok := int64FromAny(rawNum)
		if !ok {
			return nil, &Error{Member: "numerator", Detail: "The numerator must be an integer."}
		}
		den, ok := int64FromAny(rawDen)
		if !ok {
			return nil, &Error{Member: "denominator", Detail: "The denominator must be an integer."}
		}
		if den == 0 {
			return nil, &Error{Member: "denominator", Detail: "The denominator must be not equal to zero."}
		}
		r = big.NewRat(num, den)
	}
	if c.Min != nil && r.Cmp(c.Min) < 0 {
		return nil, valueError(fmt.Sprintf("Must be >= %s.", c.Min.RatString()))
	}
	if c.Max != nil && r.Cmp(c.Max) > 0 {
		return nil, valueError(fmt.Sprintf("Must be <= %s.", c.Max.RatString()))
	}
	return r, nil
}

// UUID checks a hexadecimal UUID string and converts it to uuid.UUID.
// Version, when non-zero, pins the UUID version.
type UUID struct {
	Version int
}

func (c UUID) Check(_ context.Context, v any) (any, error) {
	var u uuid.UUID
	if t, ok := v.(uuid.UUID); ok {
		u = t
	} else {
		s, ok := v.(string)
		if !ok {
			return nil, typeError("The UUID must be a hexadecimal string.")
		}
		parsed, err := uuid.Parse(s)
		if err != nil {
			return nil, valueError("The UUID is badly formed (the representation as hexadecimal string is needed).")
		}
		u = parsed
	}
	if c.Version != 0 && int(u.Version()) != c.Version {
		return nil, valueError(fmt.Sprintf("Not a UUID%d.", c.Version))
	}
	return u, nil
}

// URL checks a URI string and converts it to *url.URL.
func URL() Checker {
	return CheckerFunc(func(_ context.Context, v any) (any, error) {
		if u, ok := v.(*url.URL); ok {
			return u, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, typeError("Must be a string.")
		}
		u, err := url.Parse(s)
		if err != nil {
			return nil, valueError("Not a valid URI.")
		}
		return u, nil
	})
}

// Email checks a syntactically valid, bare email address.
func Email() Checker {
	return CheckerFunc(func(_ context.Context, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, typeError("Must be a string.")
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Name != "" || addr.Address != s {
			return nil, valueError("Not a valid Email address.")
		}
		return s, nil
	})
}
