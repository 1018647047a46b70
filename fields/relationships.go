package fields

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	japi "github.com/reoring/japi"
	js "github.com/reoring/japi/jsonschema"
)

// Relationship is implemented by the to-one and to-many descriptors. The
// schema layer files these into the resource's relationships object.
type Relationship interface {
	Field
	Relation() japi.Relation
	Links() []Linker
}

// Linker is implemented by link descriptors. The schema layer files links
// into the resource's links object, or into the links object of the
// relationship named by LinkedRelation.
type Linker interface {
	Field
	LinkedRelation() string
}

// Pagination decorates a serialized to-many relationship with pagination
// links and meta members.
type Pagination interface {
	Links() map[string]any
	Meta() map[string]any
}

// linkField produces a member of a links object. Links are read-only;
// the route is a template whose {type}, {id} and {relation} placeholders
// are filled from the identifier of the serialized value.
type linkField struct {
	attr[linkField]
	route     string
	linkOf    string
	normalize bool
}

// Link declares a links-object member built from the route template.
func Link(name, route string) *linkField {
	f := &linkField{route: route}
	f.attr = newAttr(f, name)
	f.writable = japi.EventNever
	return f
}

// Normalize emits the link as {"href": url} instead of a bare string.
func (f *linkField) Normalize() *linkField {
	f.normalize = true
	return f
}

// LinkOf attaches the link to the links object of the named relationship
// instead of the resource's own links object.
func (f *linkField) LinkOf(relation string) *linkField {
	f.linkOf = relation
	return f
}

// LinkedRelation returns the relationship name set with LinkOf.
func (f *linkField) LinkedRelation() string { return f.linkOf }

func (f *linkField) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	return japi.ErrorList{japi.NewReadOnly(sp, fmt.Sprintf("The link %q is read-only.", f.name))}
}

func (f *linkField) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return nil, f.PreValidate(ctx, data, sp)
}

func (f *linkField) Serialize(ctx context.Context, native any) (any, error) {
	rid, err := ensureIdentifier(ctx, native)
	if err != nil {
		return nil, err
	}
	url := strings.NewReplacer(
		"{type}", rid.Type,
		"{id}", rid.ID,
		"{relation}", f.linkOf,
	).Replace(f.route)
	if f.normalize {
		return map[string]any{"href": url}, nil
	}
	return url, nil
}

func (f *linkField) JSONSchema() (*js.Schema, error) {
	if f.normalize {
		return &js.Schema{
			Type: "object",
			Properties: map[string]*js.Schema{
				"href": {Type: "string", Format: "uri"},
			},
			Required: []string{"href"},
		}, nil
	}
	return &js.Schema{Type: "string", Format: "uri"}, nil
}

// relationship carries the state shared by the to-one and to-many
// descriptors.
type relationship[F any] struct {
	attr[F]
	dereference  bool
	requireData  japi.Event
	foreignTypes []string
	links        []*linkField
}

func newRelationship[F any](self *F, name string) relationship[F] {
	return relationship[F]{
		attr:        newAttr(self, name),
		dereference: true,
		requireData: japi.EventAlways,
	}
}

// Dereference controls whether the linkage is meant to be resolved after
// decoding. A dereferenced relationship always requires the data member.
func (r *relationship[F]) Dereference(v bool) *F {
	r.dereference = v
	return r.self
}

// RequireDataOn requires the data member on the given events.
func (r *relationship[F]) RequireDataOn(ev japi.Event) *F {
	r.requireData = ev
	return r.self
}

// ForeignTypes restricts the types accepted in resource identifiers.
func (r *relationship[F]) ForeignTypes(types ...string) *F {
	r.foreignTypes = types
	return r.self
}

// AddLink attaches a link to the relationship's links object. The link's
// relation defaults to this relationship.
func (r *relationship[F]) AddLink(l *linkField) *F {
	if l.linkOf == "" {
		l.linkOf = r.name
	}
	r.links = append(r.links, l)
	return r.self
}

// Links returns the links attached to the relationship.
func (r *relationship[F]) Links() []Linker {
	out := make([]Linker, len(r.links))
	for i, l := range r.links {
		out[i] = l
	}
	return out
}

// validateResourceIdentifier asserts that data is a resource identifier
// object with an accepted type.
func (r *relationship[F]) validateResourceIdentifier(data any, sp japi.Pointer) error {
	m, ok := data.(map[string]any)
	if !ok {
		return japi.ErrorList{japi.NewInvalidType(sp, "Must be an object.")}
	}
	_, hasType := m["type"]
	_, hasID := m["id"]
	if !hasType || !hasID {
		return japi.ErrorList{japi.NewInvalidValue(sp, `Must contain a "type" and an "id" member.`)}
	}
	if len(r.foreignTypes) > 0 {
		t := asString(m["type"])
		for _, ft := range r.foreignTypes {
			if t == ft {
				return nil
			}
		}
		return japi.ErrorList{japi.NewInvalidValue(sp.Field("type"), fmt.Sprintf("Unexpected type: %q.", t))}
	}
	return nil
}

// validateRelationshipObject asserts that data is a relationship object:
// a non-empty object whose members are limited to links, data and meta,
// with data present when the relationship calls for it.
func (r *relationship[F]) validateRelationshipObject(ctx context.Context, data any, sp japi.Pointer) error {
	m, ok := data.(map[string]any)
	if !ok {
		return japi.ErrorList{japi.NewInvalidType(sp, "Must be an object.")}
	}
	if len(m) == 0 {
		return japi.ErrorList{japi.NewInvalidValue(sp, `Must contain at least a "data", "links" or "meta" member.`)}
	}
	for k := range m {
		if k != "links" && k != "data" && k != "meta" {
			return japi.ErrorList{japi.NewInvalidValue(sp, fmt.Sprintf("Unexpected member: '%s'.", k))}
		}
	}
	if r.dereference || r.requireData.Intersects(japi.EventFrom(ctx)) {
		if _, ok := m["data"]; !ok {
			return japi.ErrorList{japi.NewInvalidValue(sp, `The "data" member is required.`)}
		}
	}
	return nil
}

// nullPolicy applies the shared null handling for relationship objects.
func (r *relationship[F]) nullPolicy(sp japi.Pointer) error {
	if r.allowNone {
		return nil
	}
	return japi.ErrorList{japi.NewInvalidValue(sp, "The value must not be null.")}
}

// toOneRel describes a to-one relationship; the native form of its
// linkage is a japi.ResourceID or nil.
type toOneRel struct {
	relationship[toOneRel]
}

// ToOne declares a to-one relationship member.
func ToOne(name string) *toOneRel {
	f := &toOneRel{}
	f.relationship = newRelationship(f, name)
	return f
}

func (f *toOneRel) Relation() japi.Relation { return japi.RelationToOne }

func (f *toOneRel) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	if data == nil {
		return f.nullPolicy(sp)
	}
	if err := f.validateRelationshipObject(ctx, data, sp); err != nil {
		return err
	}
	m := data.(map[string]any)
	if linkage, ok := m["data"]; ok && linkage != nil {
		return f.validateResourceIdentifier(linkage, sp.Field("data"))
	}
	return nil
}

func (f *toOneRel) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	if err := f.PreValidate(ctx, data, sp); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	m := data.(map[string]any)
	linkage, ok := m["data"]
	if !ok || linkage == nil {
		return nil, nil
	}
	lm := linkage.(map[string]any)
	return japi.ResourceID{Type: asString(lm["type"]), ID: asString(lm["id"])}, nil
}

func (f *toOneRel) Serialize(ctx context.Context, native any) (any, error) {
	doc := map[string]any{}
	switch t := native.(type) {
	case nil:
		doc["data"] = nil
	case japi.ResourceID:
		doc["data"] = t.AsMap()
	case *japi.ResourceID:
		if t == nil {
			doc["data"] = nil
		} else {
			doc["data"] = t.AsMap()
		}
	case map[string]any:
		// Resource linkage passes through untouched.
		_, hasType := t["type"]
		_, hasID := t["id"]
		if hasType && hasID {
			doc["data"] = t
		}
	default:
		rid, err := ensureIdentifier(ctx, native)
		if err != nil {
			return nil, err
		}
		doc["data"] = rid.AsMap()
	}
	return doc, nil
}

func (f *toOneRel) JSONSchema() (*js.Schema, error) {
	return &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"data": js.Nullable(identifierSchema()),
		},
	}, nil
}

// toManyRel describes a to-many relationship; the native form of its
// linkage is a []japi.ResourceID.
type toManyRel struct {
	relationship[toManyRel]
	pagination Pagination
}

// ToMany declares a to-many relationship member.
func ToMany(name string) *toManyRel {
	f := &toManyRel{}
	f.relationship = newRelationship(f, name)
	return f
}

// Paginate decorates the serialized relationship with the pagination's
// links and meta members.
func (f *toManyRel) Paginate(p Pagination) *toManyRel {
	f.pagination = p
	return f
}

func (f *toManyRel) Relation() japi.Relation { return japi.RelationToMany }

func (f *toManyRel) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	if data == nil {
		return f.nullPolicy(sp)
	}
	if err := f.validateRelationshipObject(ctx, data, sp); err != nil {
		return err
	}
	m := data.(map[string]any)
	linkage, ok := m["data"]
	if !ok {
		return nil
	}
	items, ok := linkage.([]any)
	if !ok {
		return japi.ErrorList{japi.NewInvalidType(sp.Field("data"), `The "data" must be an array of resource identifier objects.`)}
	}
	var errs japi.ErrorList
	for i, item := range items {
		if err := f.validateResourceIdentifier(item, sp.Field("data").Index(i)); err != nil {
			errs = japi.AppendErrors(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f *toManyRel) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	if err := f.PreValidate(ctx, data, sp); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	m := data.(map[string]any)
	linkage, ok := m["data"]
	if !ok {
		return []japi.ResourceID{}, nil
	}
	items := linkage.([]any)
	rids := make([]japi.ResourceID, 0, len(items))
	for _, item := range items {
		lm := item.(map[string]any)
		rids = append(rids, japi.ResourceID{Type: asString(lm["type"]), ID: asString(lm["id"])})
	}
	return rids, nil
}

func (f *toManyRel) Serialize(ctx context.Context, native any) (any, error) {
	doc := map[string]any{}
	if items, ok := asCollection(native); ok {
		data := make([]any, 0, len(items))
		for _, item := range items {
			rid, err := ensureIdentifier(ctx, item)
			if err != nil {
				return nil, err
			}
			data = append(data, rid.AsMap())
		}
		doc["data"] = data
	}
	if f.pagination != nil {
		links, ok := doc["links"].(map[string]any)
		if !ok {
			links = map[string]any{}
		}
		for k, v := range f.pagination.Links() {
			links[k] = v
		}
		doc["links"] = links
		meta := map[string]any{}
		for k, v := range f.pagination.Meta() {
			meta[k] = v
		}
		doc["meta"] = meta
	}
	return doc, nil
}

func (f *toManyRel) JSONSchema() (*js.Schema, error) {
	return &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"data": {Type: "array", Items: identifierSchema()},
		},
	}, nil
}

func identifierSchema() *js.Schema {
	return &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"type": {Type: "string"},
			"id":   {Type: "string"},
		},
		Required: []string{"type", "id"},
	}
}

// ensureIdentifier resolves native to a resource identifier through the
// registry carried in ctx.
func ensureIdentifier(ctx context.Context, native any) (japi.ResourceID, error) {
	reg, ok := japi.RegistryFrom(ctx)
	if !ok {
		reg = japi.NewRegistry()
	}
	return reg.EnsureIdentifier(native)
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// asCollection flattens slices and arrays of any element type.
func asCollection(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []japi.ResourceID:
		out := make([]any, len(t))
		for i, rid := range t {
			out[i] = rid
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
