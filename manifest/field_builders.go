package manifest

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/fields"
)

// optSet reads typed options out of one declaration entry. It records the
// first conversion error and which keys were consumed, so done can flag
// leftovers as unknown options.
type optSet struct {
	path string
	m    map[string]any
	used map[string]bool
	err  error
}

func newOptSet(path string, m map[string]any) *optSet {
	return &optSet{path: path, m: m, used: make(map[string]bool, len(m))}
}

func (o *optSet) fail(key, format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf("manifest: %s: %s: %s", o.path, key, fmt.Sprintf(format, args...))
	}
}

func (o *optSet) raw(key string) (any, bool) {
	v, ok := o.m[key]
	if ok {
		o.used[key] = true
	}
	return v, ok
}

func (o *optSet) str(key string) (string, bool) {
	v, ok := o.raw(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		o.fail(key, "must be a string")
		return "", false
	}
	return s, true
}

func (o *optSet) boolean(key string) (bool, bool) {
	v, ok := o.raw(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		o.fail(key, "must be a boolean")
		return false, false
	}
	return b, true
}

// flag reads a boolean option that is off by default.
func (o *optSet) flag(key string) bool {
	b, ok := o.boolean(key)
	return ok && b
}

func (o *optSet) integer(key string) (int64, bool) {
	v, ok := o.raw(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	}
	o.fail(key, "must be an integer")
	return 0, false
}

func (o *optSet) float(key string) (float64, bool) {
	v, ok := o.raw(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	o.fail(key, "must be a number")
	return 0, false
}

func (o *optSet) strings(key string) ([]string, bool) {
	v, ok := o.raw(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				o.fail(key, "must be a list of strings")
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	o.fail(key, "must be a string or a list of strings")
	return nil, false
}

// events reads an event option: a single name or a list, combined with OR.
func (o *optSet) events(key string) (japi.Event, bool) {
	names, ok := o.strings(key)
	if !ok {
		return 0, false
	}
	var ev japi.Event
	for _, name := range names {
		e, err := japi.ParseEvent(name)
		if err != nil {
			o.fail(key, "unknown event %q", name)
			return 0, false
		}
		ev |= e
	}
	return ev, true
}

func (o *optSet) mapping(key string) (map[string]any, bool) {
	v, ok := o.raw(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		o.fail(key, "must be a mapping")
		return nil, false
	}
	return m, true
}

func (o *optSet) mappings(key string) ([]map[string]any, bool) {
	v, ok := o.raw(key)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		o.fail(key, "must be a list of mappings")
		return nil, false
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			o.fail(key, "must be a list of mappings")
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

// duration reads a Go duration string ("90s", "1h30m") or a plain number of
// seconds.
func (o *optSet) duration(key string) (time.Duration, bool) {
	v, ok := o.raw(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			o.fail(key, "invalid duration %q", t)
			return 0, false
		}
		return d, true
	case int:
		return time.Duration(t) * time.Second, true
	case int64:
		return time.Duration(t) * time.Second, true
	case float64:
		return time.Duration(t * float64(time.Second)), true
	}
	o.fail(key, "must be a duration string or a number of seconds")
	return 0, false
}

func (o *optSet) decimalValue(key string) (decimal.Decimal, bool) {
	v, ok := o.raw(key)
	if !ok {
		return decimal.Decimal{}, false
	}
	switch t := v.(type) {
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			o.fail(key, "invalid decimal %q", t)
			return decimal.Decimal{}, false
		}
		return d, true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	}
	o.fail(key, "must be a decimal string or a number")
	return decimal.Decimal{}, false
}

// rat reads a fraction bound: "3/4", an integer, or a float.
func (o *optSet) rat(key string) (*big.Rat, bool) {
	v, ok := o.raw(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		r, ok := new(big.Rat).SetString(t)
		if !ok {
			o.fail(key, "invalid fraction %q", t)
			return nil, false
		}
		return r, true
	case int:
		return big.NewRat(int64(t), 1), true
	case int64:
		return big.NewRat(t, 1), true
	case float64:
		return new(big.Rat).SetFloat64(t), true
	}
	o.fail(key, "must be a fraction string or a number")
	return nil, false
}

// done returns the recorded error, or an unknown-option error for any key
// no reader consumed.
func (o *optSet) done() error {
	if o.err != nil {
		return o.err
	}
	leftover := make([]string, 0)
	for key := range o.m {
		if !o.used[key] {
			leftover = append(leftover, key)
		}
	}
	if len(leftover) == 0 {
		return nil
	}
	sort.Strings(leftover)
	return fmt.Errorf("manifest: %s: unknown option %q", o.path, leftover[0])
}

// fieldChain is the fluent surface every descriptor shares.
type fieldChain[T any] interface {
	MappedKey(string) T
	AllowNone() T
	WritableOn(japi.Event) T
	RequiredOn(japi.Event) T
	InMeta() T
	LoadOnly() T
}

// relChain adds the relationship options.
type relChain[T any] interface {
	fieldChain[T]
	Dereference(bool) T
	RequireDataOn(japi.Event) T
	ForeignTypes(...string) T
}

func applyCommon[T fieldChain[T]](f T, o *optSet) T {
	if k, ok := o.str("key"); ok {
		f = f.MappedKey(k)
	}
	if o.flag("allowNone") {
		f = f.AllowNone()
	}
	if ev, ok := o.events("writable"); ok {
		f = f.WritableOn(ev)
	}
	if ev, ok := o.events("required"); ok {
		f = f.RequiredOn(ev)
	}
	if o.flag("meta") {
		f = f.InMeta()
	}
	if o.flag("loadOnly") {
		f = f.LoadOnly()
	}
	return f
}

func buildField(path, name string, m map[string]any) (fields.Field, error) {
	o := newOptSet(path, m)
	kind, ok := o.str("field")
	if !ok && o.err == nil {
		return nil, fmt.Errorf("manifest: %s: missing field kind", path)
	}

	var f fields.Field
	switch kind {
	case "str", "string":
		s := fields.Str(name)
		if o.flag("allowBlank") {
			s = s.AllowBlank()
		}
		if n, ok := o.integer("minLen"); ok {
			s = s.MinLen(int(n))
		}
		if n, ok := o.integer("maxLen"); ok {
			s = s.MaxLen(int(n))
		}
		if p, ok := o.str("pattern"); ok {
			s = s.Pattern(p)
		}
		if cs, ok := o.strings("choices"); ok {
			s = s.Choices(cs...)
		}
		f = applyCommon(s, o)

	case "int", "integer":
		n := fields.Integer(name)
		if v, ok := o.integer("gte"); ok {
			n = n.Gte(v)
		}
		if v, ok := o.integer("lte"); ok {
			n = n.Lte(v)
		}
		if v, ok := o.integer("gt"); ok {
			n = n.Gt(v)
		}
		if v, ok := o.integer("lt"); ok {
			n = n.Lt(v)
		}
		f = applyCommon(n, o)

	case "float", "number":
		n := fields.Float(name)
		if v, ok := o.float("gte"); ok {
			n = n.Gte(v)
		}
		if v, ok := o.float("lte"); ok {
			n = n.Lte(v)
		}
		if v, ok := o.float("gt"); ok {
			n = n.Gt(v)
		}
		if v, ok := o.float("lt"); ok {
			n = n.Lt(v)
		}
		f = applyCommon(n, o)

	case "bool", "boolean":
		f = applyCommon(fields.Bool(name), o)

	case "decimal":
		d := fields.Decimal(name)
		if v, ok := o.integer("places"); ok {
			d = d.Places(int32(v))
		}
		if mode, ok := o.str("rounding"); ok {
			d = d.Rounding(mode)
		}
		if v, ok := o.decimalValue("gte"); ok {
			d = d.Gte(v)
		}
		if v, ok := o.decimalValue("lte"); ok {
			d = d.Lte(v)
		}
		if v, ok := o.decimalValue("gt"); ok {
			d = d.Gt(v)
		}
		if v, ok := o.decimalValue("lt"); ok {
			d = d.Lt(v)
		}
		f = applyCommon(d, o)

	case "fraction":
		fr := fields.Fraction(name)
		if r, ok := o.rat("min"); ok {
			fr = fr.Min(r)
		}
		if r, ok := o.rat("max"); ok {
			fr = fr.Max(r)
		}
		f = applyCommon(fr, o)

	case "complex":
		f = applyCommon(fields.Complex(name), o)

	case "datetime", "date-time":
		f = applyCommon(fields.DateTime(name), o)

	case "date":
		f = applyCommon(fields.Date(name), o)

	case "timedelta":
		td := fields.TimeDelta(name)
		if d, ok := o.duration("min"); ok {
			td = td.Min(d)
		}
		if d, ok := o.duration("max"); ok {
			td = td.Max(d)
		}
		f = applyCommon(td, o)

	case "uuid":
		u := fields.UUID(name)
		if v, ok := o.integer("version"); ok {
			u = u.Version(int(v))
		}
		f = applyCommon(u, o)

	case "uri":
		f = applyCommon(fields.URI(name), o)

	case "email":
		f = applyCommon(fields.Email(name), o)

	case "dict":
		var value fields.Field
		if vm, ok := o.mapping("of"); ok {
			var err error
			if value, err = buildField(path+".of", "", vm); err != nil {
				return nil, err
			}
		}
		f = applyCommon(fields.Dict(name, value), o)

	case "list":
		var elem fields.Field
		if em, ok := o.mapping("of"); ok {
			var err error
			if elem, err = buildField(path+".of", "", em); err != nil {
				return nil, err
			}
		}
		l := fields.List(name, elem)
		if n, ok := o.integer("minItems"); ok {
			l = l.MinItems(int(n))
		}
		if n, ok := o.integer("maxItems"); ok {
			l = l.MaxItems(int(n))
		}
		f = applyCommon(l, o)

	case "tuple":
		ems, ok := o.mappings("items")
		if !ok && o.err == nil {
			return nil, fmt.Errorf("manifest: %s: items: missing tuple items", path)
		}
		elems := make([]fields.Field, 0, len(ems))
		for i, em := range ems {
			e, err := buildField(fmt.Sprintf("%s.items[%d]", path, i), "", em)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		f = applyCommon(fields.Tuple(name, elems...), o)

	default:
		if o.err == nil {
			return nil, fmt.Errorf("manifest: %s: unknown field kind %q", path, kind)
		}
	}

	if err := o.done(); err != nil {
		return nil, err
	}
	return f, nil
}

func applyRelOpts[T relChain[T]](r T, o *optSet) T {
	r = applyCommon(r, o)
	if ts, ok := o.strings("foreignTypes"); ok {
		r = r.ForeignTypes(ts...)
	}
	if b, ok := o.boolean("dereference"); ok {
		r = r.Dereference(b)
	}
	if ev, ok := o.events("requireData"); ok {
		r = r.RequireDataOn(ev)
	}
	return r
}

func buildRelationship(path, name string, m map[string]any) (fields.Relationship, error) {
	o := newOptSet(path, m)
	kind, ok := o.str("kind")
	if !ok && o.err == nil {
		return nil, fmt.Errorf("manifest: %s: missing relationship kind", path)
	}

	var r fields.Relationship
	switch kind {
	case "to-one":
		r = applyRelOpts(fields.ToOne(name), o)
	case "to-many":
		r = applyRelOpts(fields.ToMany(name), o)
	default:
		if o.err == nil {
			return nil, fmt.Errorf("manifest: %s: unknown relationship kind %q", path, kind)
		}
	}

	if err := o.done(); err != nil {
		return nil, err
	}
	return r, nil
}

func buildLink(path, name string, m map[string]any) (fields.Linker, error) {
	o := newOptSet(path, m)
	route, ok := o.str("route")
	if !ok && o.err == nil {
		return nil, fmt.Errorf("manifest: %s: missing route", path)
	}

	l := fields.Link(name, route)
	if o.flag("normalize") {
		l = l.Normalize()
	}
	if rel, ok := o.str("linkOf"); ok {
		l = l.LinkOf(rel)
	}

	if err := o.done(); err != nil {
		return nil, err
	}
	return l, nil
}
