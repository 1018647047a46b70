package fields

import (
	"context"
	"fmt"
	"sort"

	japi "github.com/reoring/japi"
	js "github.com/reoring/japi/jsonschema"
)

// dictAttr handles object members with free-form keys. Every value runs
// through the value descriptor; keys must be valid member names. The
// native form is map[string]any.
type dictAttr struct {
	attr[dictAttr]
	value Field
}

// Dict declares an object member. value describes the entries; a nil
// value accepts anything.
func Dict(name string, value Field) *dictAttr {
	f := &dictAttr{value: value}
	f.attr = newAttr(f, name)
	return f
}

func (f *dictAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := f.Deserialize(ctx, data, sp)
	return err
}

func (f *dictAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return f.convert(ctx, data, sp, Field.Deserialize)
}

func (f *dictAttr) Serialize(ctx context.Context, native any) (any, error) {
	return f.convert(ctx, native, japi.RootPointer, serializeAt)
}

func (f *dictAttr) convert(ctx context.Context, data any, sp japi.Pointer, via func(Field, context.Context, any, japi.Pointer) (any, error)) (any, error) {
	if data == nil {
		if f.allowNone {
			return nil, nil
		}
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, "The value must not be null.")}
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, japi.ErrorList{japi.NewInvalidType(sp, "Must be an object.")}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	var errs japi.ErrorList
	for _, k := range keys {
		if !japi.IsMemberName(k) {
			errs = japi.AppendErrors(errs, japi.ErrorList{
				japi.NewInvalidValue(sp.Field(k), fmt.Sprintf("Member name %q is not allowed.", k)),
			})
			continue
		}
		if f.value == nil {
			out[k] = m[k]
			continue
		}
		v, err := via(f.value, ctx, m[k], sp.Field(k))
		if err != nil {
			errs = japi.AppendErrors(errs, err)
			continue
		}
		out[k] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (f *dictAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "object"}
	if f.value != nil {
		vs, err := f.value.JSONSchema()
		if err != nil {
			return nil, err
		}
		s.AdditionalProperties = vs
	} else {
		s.AdditionalProperties = true
	}
	return nullable(s, f.allowNone), nil
}

// listAttr handles homogeneous array members. The native form is []any.
type listAttr struct {
	attr[listAttr]
	elem     Field
	minItems int
	maxItems int
}

// List declares an array member. elem describes the items; a nil elem
// accepts anything.
func List(name string, elem Field) *listAttr {
	f := &listAttr{elem: elem}
	f.attr = newAttr(f, name)
	return f
}

// MinItems requires at least n items.
func (f *listAttr) MinItems(n int) *listAttr {
	f.minItems = n
	return f
}

// MaxItems allows at most n items.
func (f *listAttr) MaxItems(n int) *listAttr {
	f.maxItems = n
	return f
}

func (f *listAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := f.Deserialize(ctx, data, sp)
	return err
}

func (f *listAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return f.convert(ctx, data, sp, Field.Deserialize)
}

func (f *listAttr) Serialize(ctx context.Context, native any) (any, error) {
	return f.convert(ctx, native, japi.RootPointer, serializeAt)
}

func (f *listAttr) convert(ctx context.Context, data any, sp japi.Pointer, via func(Field, context.Context, any, japi.Pointer) (any, error)) (any, error) {
	if data == nil {
		if f.allowNone {
			return nil, nil
		}
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, "The value must not be null.")}
	}
	items, ok := data.([]any)
	if !ok {
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, "Must be an array.")}
	}
	if f.minItems > 0 && len(items) < f.minItems {
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, fmt.Sprintf("Must contain at least %d items.", f.minItems))}
	}
	if f.maxItems > 0 && len(items) > f.maxItems {
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, fmt.Sprintf("Must contain at most %d items.", f.maxItems))}
	}

	out := make([]any, 0, len(items))
	var errs japi.ErrorList
	for i, item := range items {
		if f.elem == nil {
			out = append(out, item)
			continue
		}
		v, err := via(f.elem, ctx, item, sp.Index(i))
		if err != nil {
			errs = japi.AppendErrors(errs, err)
			continue
		}
		out = append(out, v)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (f *listAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	if f.elem != nil {
		es, err := f.elem.JSONSchema()
		if err != nil {
			return nil, err
		}
		s.Items = es
	}
	if f.minItems > 0 {
		s.MinItems = intPtr(f.minItems)
	}
	if f.maxItems > 0 {
		s.MaxItems = intPtr(f.maxItems)
	}
	return nullable(s, f.allowNone), nil
}

// tupleAttr handles fixed-arity array members with one descriptor per
// position. The native form is []any of the same arity.
type tupleAttr struct {
	attr[tupleAttr]
	elems []Field
}

// Tuple declares a fixed-arity array member.
func Tuple(name string, elems ...Field) *tupleAttr {
	f := &tupleAttr{elems: elems}
	f.attr = newAttr(f, name)
	return f
}

func (f *tupleAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := f.Deserialize(ctx, data, sp)
	return err
}

func (f *tupleAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return f.convert(ctx, data, sp, Field.Deserialize)
}

func (f *tupleAttr) Serialize(ctx context.Context, native any) (any, error) {
	return f.convert(ctx, native, japi.RootPointer, serializeAt)
}

func (f *tupleAttr) convert(ctx context.Context, data any, sp japi.Pointer, via func(Field, context.Context, any, japi.Pointer) (any, error)) (any, error) {
	if data == nil {
		if f.allowNone {
			return nil, nil
		}
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, "The value must not be null.")}
	}
	items, ok := data.([]any)
	if !ok {
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, "Must be an array.")}
	}
	if len(items) != len(f.elems) {
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, fmt.Sprintf("Must contain exactly %d items.", len(f.elems)))}
	}

	out := make([]any, 0, len(items))
	var errs japi.ErrorList
	for i, item := range items {
		v, err := via(f.elems[i], ctx, item, sp.Index(i))
		if err != nil {
			errs = japi.AppendErrors(errs, err)
			continue
		}
		out = append(out, v)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (f *tupleAttr) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	for _, e := range f.elems {
		es, err := e.JSONSchema()
		if err != nil {
			return nil, err
		}
		s.PrefixItems = append(s.PrefixItems, es)
	}
	n := len(f.elems)
	s.MinItems = intPtr(n)
	s.MaxItems = intPtr(n)
	return nullable(s, f.allowNone), nil
}
