package fields

import (
	"context"
	"regexp"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/checks"
	js "github.com/reoring/japi/jsonschema"
)

// stringAttr handles plain string members.
type stringAttr struct {
	attr[stringAttr]
	allowBlank bool
	minLen     int
	maxLen     int
	pattern    *regexp.Regexp
	choices    []string
}

// String declares a string member.
func String(name string) *stringAttr {
	f := &stringAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Str is a shorthand for String.
func Str(name string) *stringAttr { return String(name) }

// AllowBlank accepts the empty string as value.
func (f *stringAttr) AllowBlank() *stringAttr {
	f.allowBlank = true
	return f
}

// MinLen requires at least n characters.
func (f *stringAttr) MinLen(n int) *stringAttr {
	f.minLen = n
	return f
}

// MaxLen allows at most n characters.
func (f *stringAttr) MaxLen(n int) *stringAttr {
	f.maxLen = n
	return f
}

// Pattern requires the value to match the regular expression expr.
// A pattern replaces the blank and length checks.
func (f *stringAttr) Pattern(expr string) *stringAttr {
	f.pattern = regexp.MustCompile(expr)
	return f
}

// Choices restricts the value to the given set.
func (f *stringAttr) Choices(choices ...string) *stringAttr {
	f.choices = choices
	return f
}

func (f *stringAttr) checker() checks.Checker {
	return checks.String{
		AllowBlank: f.allowBlank,
		MinLen:     f.minLen,
		MaxLen:     f.maxLen,
		Pattern:    f.pattern,
		Choices:    f.choices,
	}
}

func (f *stringAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *stringAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *stringAttr) Serialize(ctx context.Context, native any) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
}

func (f *stringAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "string"}
	if f.pattern != nil {
		s.Pattern = f.pattern.String()
	} else {
		if f.minLen > 0 {
			s.MinLength = intPtr(f.minLen)
		} else if !f.allowBlank {
			s.MinLength = intPtr(1)
		}
		if f.maxLen > 0 {
			s.MaxLength = intPtr(f.maxLen)
		}
	}
	if len(f.choices) > 0 {
		for _, c := range f.choices {
			s.Enum = append(s.Enum, c)
		}
	}
	return nullable(s, f.allowNone), nil
}

// integerAttr handles whole-number members. Wire numbers with a fractional
// part are rejected; the native form is int64.
type integerAttr struct {
	attr[integerAttr]
	gte, lte, gt, lt *int64
}

// Integer declares an integer member.
func Integer(name string) *integerAttr {
	f := &integerAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Gte requires the value to be >= n.
func (f *integerAttr) Gte(n int64) *integerAttr {
	f.gte = &n
	return f
}

// Lte requires the value to be <= n.
func (f *integerAttr) Lte(n int64) *integerAttr {
	f.lte = &n
	return f
}

// Gt requires the value to be > n.
func (f *integerAttr) Gt(n int64) *integerAttr {
	f.gt = &n
	return f
}

// Lt requires the value to be < n.
func (f *integerAttr) Lt(n int64) *integerAttr {
	f.lt = &n
	return f
}

func (f *integerAttr) checker() checks.Checker {
	return checks.Int{Gte: f.gte, Lte: f.lte, Gt: f.gt, Lt: f.lt}
}

func (f *integerAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *integerAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *integerAttr) Serialize(ctx context.Context, native any) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
}

func (f *integerAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "integer"}
	if f.gte != nil {
		s.Minimum = float64Ptr(float64(*f.gte))
	}
	if f.lte != nil {
		s.Maximum = float64Ptr(float64(*f.lte))
	}
	if f.gt != nil {
		s.ExclusiveMinimum = float64Ptr(float64(*f.gt))
	}
	if f.lt != nil {
		s.ExclusiveMaximum = float64Ptr(float64(*f.lt))
	}
	return nullable(s, f.allowNone), nil
}

// floatAttr handles floating point members; the native form is float64.
type floatAttr struct {
	attr[floatAttr]
	gte, lte, gt, lt *float64
}

// Float declares a floating point member.
func Float(name string) *floatAttr {
	f := &floatAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Number is a shorthand for Float.
func Number(name string) *floatAttr { return Float(name) }

// Gte requires the value to be >= n.
func (f *floatAttr) Gte(n float64) *floatAttr {
	f.gte = &n
	return f
}

// Lte requires the value to be <= n.
func (f *floatAttr) Lte(n float64) *floatAttr {
	f.lte = &n
	return f
}

// Gt requires the value to be > n.
func (f *floatAttr) Gt(n float64) *floatAttr {
	f.gt = &n
	return f
}

// Lt requires the value to be < n.
func (f *floatAttr) Lt(n float64) *floatAttr {
	f.lt = &n
	return f
}

func (f *floatAttr) checker() checks.Checker {
	return checks.Float{Gte: f.gte, Lte: f.lte, Gt: f.gt, Lt: f.lt}
}

func (f *floatAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *floatAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *floatAttr) Serialize(ctx context.Context, native any) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
}

func (f *floatAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "number"}
	if f.gte != nil {
		s.Minimum = f.gte
	}
	if f.lte != nil {
		s.Maximum = f.lte
	}
	if f.gt != nil {
		s.ExclusiveMinimum = f.gt
	}
	if f.lt != nil {
		s.ExclusiveMaximum = f.lt
	}
	return nullable(s, f.allowNone), nil
}

// booleanAttr handles true/false members.
type booleanAttr struct {
	attr[booleanAttr]
}

// Boolean declares a boolean member.
func Boolean(name string) *booleanAttr {
	f := &booleanAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Bool is a shorthand for Boolean.
func Bool(name string) *booleanAttr { return Boolean(name) }

func (f *booleanAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, checks.Bool(), f.allowNone, data, sp)
	return err
}

func (f *booleanAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, checks.Bool(), f.allowNone, data, sp)
}

func (f *booleanAttr) Serialize(ctx context.Context, native any) (any, error) {
	return deserializeChecked(ctx, checks.Bool(), f.allowNone, native, japi.RootPointer)
}

func (f *booleanAttr) JSONSchema() (*js.Schema, error) {
	return nullable(&js.Schema{Type: "boolean"}, f.allowNone), nil
}

func intPtr(n int) *int             { return &n }
func float64Ptr(n float64) *float64 { return &n }
