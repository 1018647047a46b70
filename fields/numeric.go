package fields

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/checks"
	js "github.com/reoring/japi/jsonschema"
)

// decimalAttr handles arbitrary-precision decimal members. The wire form is
// a string or number; the native form is decimal.Decimal. Serialization
// emits a string so precision survives the round trip.
type decimalAttr struct {
	attr[decimalAttr]
	places           *int32
	rounding         string
	gte, lte, gt, lt *decimal.Decimal
}

// Decimal declares a decimal member.
func Decimal(name string) *decimalAttr {
	f := &decimalAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Places rounds the value to n decimal places.
func (f *decimalAttr) Places(n int32) *decimalAttr {
	f.places = &n
	return f
}

// Rounding selects the rounding mode used by Places. See the checks
// package for the mode names; the default is half-up.
func (f *decimalAttr) Rounding(mode string) *decimalAttr {
	f.rounding = mode
	return f
}

// Gte requires the value to be >= d.
func (f *decimalAttr) Gte(d decimal.Decimal) *decimalAttr {
	f.gte = &d
	return f
}

// Lte requires the value to be <= d.
func (f *decimalAttr) Lte(d decimal.Decimal) *decimalAttr {
	f.lte = &d
	return f
}

// Gt requires the value to be > d.
func (f *decimalAttr) Gt(d decimal.Decimal) *decimalAttr {
	f.gt = &d
	return f
}

// Lt requires the value to be < d.
func (f *decimalAttr) Lt(d decimal.Decimal) *decimalAttr {
	f.lt = &d
	return f
}

func (f *decimalAttr) checker() checks.Checker {
	return checks.Decimal{
		Places:   f.places,
		Rounding: f.rounding,
		Gte:      f.gte,
		Lte:      f.lte,
		Gt:       f.gt,
		Lt:       f.lt,
	}
}

func (f *decimalAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *decimalAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *decimalAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	return out.(decimal.Decimal).String(), nil
}

func (f *decimalAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{OneOf: []*js.Schema{
		{Type: "string", Format: "decimal"},
		{Type: "number"},
	}}
	return nullable(s, f.allowNone), nil
}

// fractionAttr handles rational-number members, objects with an integer
// "numerator" and "denominator". The native form is *big.Rat.
type fractionAttr struct {
	attr[fractionAttr]
	min, max *big.Rat
}

// Fraction declares a rational-number member.
func Fraction(name string) *fractionAttr {
	f := &fractionAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Min requires the ratio to be >= r.
func (f *fractionAttr) Min(r *big.Rat) *fractionAttr {
	f.min = r
	f.assertBounds()
	return f
}

// Max requires the ratio to be <= r.
func (f *fractionAttr) Max(r *big.Rat) *fractionAttr {
	f.max = r
	f.assertBounds()
	return f
}

func (f *fractionAttr) assertBounds() {
	if f.min != nil && f.max != nil && f.min.Cmp(f.max) > 0 {
		panic("fields: fraction min must be <= max")
	}
}

func (f *fractionAttr) checker() checks.Checker {
	return checks.Fraction{Min: f.min, Max: f.max}
}

func (f *fractionAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *fractionAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *fractionAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	r := out.(*big.Rat)
	return map[string]any{
		"numerator":   r.Num().Int64(),
		"denominator": r.Denom().Int64(),
	}, nil
}

func (f *fractionAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"numerator":   {Type: "integer"},
			"denominator": {Type: "integer"},
		},
		Required: []string{"numerator", "denominator"},
	}
	return nullable(s, f.allowNone), nil
}

// complexAttr handles complex-number members, objects with a numeric
// "real" and "imag". The native form is complex128.
type complexAttr struct {
	attr[complexAttr]
}

// Complex declares a complex-number member.
func Complex(name string) *complexAttr {
	f := &complexAttr{}
	f.attr = newAttr(f, name)
	return f
}

func (f *complexAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, checks.ComplexPair(), f.allowNone, data, sp)
	return err
}

func (f *complexAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, checks.ComplexPair(), f.allowNone, data, sp)
}

func (f *complexAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, checks.ComplexPair(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	z := out.(complex128)
	return map[string]any{"real": real(z), "imag": imag(z)}, nil
}

func (f *complexAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"real": {Type: "number"},
			"imag": {Type: "number"},
		},
		Required: []string{"real", "imag"},
	}
	return nullable(s, f.allowNone), nil
}
