// Package fields provides the descriptors a resource schema is declared
// with: typed attributes that validate, deserialize and serialize single
// JSON:API resource members, plus link and relationship descriptors for
// resource linkage.
//
// Every descriptor is immutable after construction and stateless per call.
// Wire values are the any-trees japi.DecodeValue yields; native values are
// ordinary Go types (string, int64, time.Time, decimal.Decimal, ...).
package fields

import (
	"context"
	"fmt"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/checks"
	js "github.com/reoring/japi/jsonschema"
)

// Field is the contract every descriptor fulfills. The schema layer drives
// PreValidate -> Deserialize -> PostValidate for input and Serialize for
// output, passing the source pointer of the member being processed.
type Field interface {
	// Name is the member name in the document.
	Name() string
	// Key is the member key in the native map; defaults to Name.
	Key() string
	// AllowsNone reports whether an explicit null is a valid value.
	AllowsNone() bool
	// Writable tells on which request events the member may be written.
	Writable() japi.Event
	// Required tells on which request events the member must be present.
	Required() japi.Event
	// IsMeta marks the descriptor as part of the resource's meta object.
	IsMeta() bool
	// IsLoadOnly marks the descriptor as deserialize-only.
	IsLoadOnly() bool

	// PreValidate checks the raw wire value before conversion.
	PreValidate(ctx context.Context, data any, sp japi.Pointer) error
	// Deserialize converts the wire value to its native form. It performs
	// the same checks PreValidate does, so it is safe to call on its own.
	Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error)
	// PostValidate checks the converted native value.
	PostValidate(ctx context.Context, native any, sp japi.Pointer) error
	// Serialize converts a native value back to its wire form.
	Serialize(ctx context.Context, native any) (any, error)
	// JSONSchema describes the wire form for export.
	JSONSchema() (*js.Schema, error)
}

// ValidateFunc is a post-deserialization hook attached with ValidateWith.
type ValidateFunc func(ctx context.Context, native any, sp japi.Pointer) error

// attr carries the state shared by all descriptors. F is the concrete
// descriptor type so the fluent setters keep their chain type.
type attr[F any] struct {
	self      *F
	name      string
	key       string
	allowNone bool
	writable  japi.Event
	required  japi.Event
	meta      bool
	loadOnly  bool
	validate  ValidateFunc
}

func newAttr[F any](self *F, name string) attr[F] {
	if name != "" && !japi.IsMemberName(name) {
		panic(fmt.Sprintf("fields: field name %q is not allowed", name))
	}
	return attr[F]{self: self, name: name, writable: japi.EventAlways, required: japi.EventNever}
}

func (a *attr[F]) Name() string { return a.name }

func (a *attr[F]) Key() string {
	if a.key != "" {
		return a.key
	}
	return a.name
}

func (a *attr[F]) AllowsNone() bool     { return a.allowNone }
func (a *attr[F]) Writable() japi.Event { return a.writable }
func (a *attr[F]) Required() japi.Event { return a.required }
func (a *attr[F]) IsMeta() bool         { return a.meta }
func (a *attr[F]) IsLoadOnly() bool     { return a.loadOnly }

// MappedKey sets the key the native map uses for this member.
func (a *attr[F]) MappedKey(key string) *F {
	a.key = key
	return a.self
}

// AllowNone accepts an explicit null as value.
func (a *attr[F]) AllowNone() *F {
	a.allowNone = true
	return a.self
}

// WritableOn restricts the events on which the member may be written.
func (a *attr[F]) WritableOn(ev japi.Event) *F {
	a.writable = ev
	return a.self
}

// RequiredOn marks the member required on the given events.
func (a *attr[F]) RequiredOn(ev japi.Event) *F {
	a.required = ev
	return a.self
}

// InMeta moves the member into the resource's meta object.
func (a *attr[F]) InMeta() *F {
	a.meta = true
	return a.self
}

// LoadOnly skips the member during serialization.
func (a *attr[F]) LoadOnly() *F {
	a.loadOnly = true
	return a.self
}

// ValidateWith attaches a hook run by PostValidate on the native value.
func (a *attr[F]) ValidateWith(fn ValidateFunc) *F {
	a.validate = fn
	return a.self
}

func (a *attr[F]) PostValidate(ctx context.Context, native any, sp japi.Pointer) error {
	if a.validate != nil {
		return a.validate(ctx, native, sp)
	}
	return nil
}

// deserializeChecked applies the shared null policy, runs the checker, and
// maps failures onto document errors at sp.
func deserializeChecked(ctx context.Context, c checks.Checker, allowNone bool, data any, sp japi.Pointer) (any, error) {
	if data == nil {
		if allowNone {
			return nil, nil
		}
		return nil, japi.ErrorList{japi.NewInvalidValue(sp, "The value must not be null.")}
	}
	out, err := c.Check(ctx, data)
	if err != nil {
		return nil, checkErrorAt(err, sp)
	}
	return out, nil
}

// checkErrorAt converts a checks failure into the document error model.
func checkErrorAt(err error, sp japi.Pointer) error {
	if ce, ok := checks.AsError(err); ok {
		p := sp
		if ce.Member != "" {
			p = sp.Field(ce.Member)
		}
		if ce.WrongType {
			return japi.ErrorList{japi.NewInvalidType(p, ce.Detail)}
		}
		return japi.ErrorList{japi.NewInvalidValue(p, ce.Detail)}
	}
	return japi.AppendErrors(nil, err)
}

// serializeAt runs f.Serialize and rebases any errors under sp so failures
// inside containers keep their position.
func serializeAt(f Field, ctx context.Context, native any, sp japi.Pointer) (any, error) {
	out, err := f.Serialize(ctx, native)
	if err != nil {
		return nil, rebaseErrors(err, sp)
	}
	return out, nil
}

func rebaseErrors(err error, base japi.Pointer) error {
	el := japi.AppendErrors(nil, err)
	for i := range el {
		el[i].SourcePointer = base + el[i].SourcePointer
	}
	return el
}

// nullable wraps s when the descriptor accepts null.
func nullable(s *js.Schema, allowNone bool) *js.Schema {
	if allowNone {
		return js.Nullable(s)
	}
	return s
}
