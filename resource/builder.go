// Package resource declares JSON:API resource schemas from field
// descriptors and drives the deserialization and serialization of
// resource objects.
//
// A schema is assembled with the builder:
//
//	articles := resource.New("articles").
//		Attr(
//			fields.Str("title").MinLen(1).RequiredOn(japi.EventPost),
//			fields.DateTime("created-at").WritableOn(japi.EventNever),
//		).
//		Rel(fields.ToOne("author").ForeignTypes("people")).
//		MustBuild()
//
// and implements japi.Schema, so it registers with a japi.Registry.
package resource

import (
	"context"
	"fmt"
	"sort"

	"github.com/iancoleman/strcase"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/fields"
)

// RefineFunc is a cross-member validation hook run against the native map
// after every member deserialized cleanly.
type RefineFunc func(ctx context.Context, native map[string]any) error

type refine struct {
	name string
	fn   RefineFunc
}

// Builder assembles a Schema. The zero value is not usable; start with New.
type Builder struct {
	typename string
	id       fields.Field
	attrs    []fields.Field
	rels     []fields.Relationship
	links    []fields.Linker
	refines  []refine
	inflect  func(string) string
	deflect  func(string) string
	objectID func(resource any) (string, error)
}

// New starts a schema builder for the given type name. Member names on the
// wire derive from the declared field names through the inflector, kebab-case
// by default; native map keys derive through the deflector, snake_case by
// default.
func New(typename string) *Builder {
	return &Builder{
		typename: typename,
		inflect:  strcase.ToKebab,
		deflect:  strcase.ToSnake,
	}
}

// ID sets the descriptor validating the resource object's id member.
// Without it a plain string field is used.
func (b *Builder) ID(f fields.Field) *Builder {
	b.id = f
	return b
}

// Attr declares attribute members. Fields flagged with InMeta are filed
// into the resource's meta object instead.
func (b *Builder) Attr(fs ...fields.Field) *Builder {
	b.attrs = append(b.attrs, fs...)
	return b
}

// Rel declares relationship members.
func (b *Builder) Rel(rs ...fields.Relationship) *Builder {
	b.rels = append(b.rels, rs...)
	return b
}

// LinkField declares links-object members. A link carrying LinkOf is filed
// into the links object of that relationship.
func (b *Builder) LinkField(ls ...fields.Linker) *Builder {
	b.links = append(b.links, ls...)
	return b
}

// Refine registers a named cross-member hook run after deserialization.
func (b *Builder) Refine(name string, fn RefineFunc) *Builder {
	b.refines = append(b.refines, refine{name: name, fn: fn})
	return b
}

// Inflect overrides how wire member names derive from declared field names.
func (b *Builder) Inflect(fn func(string) string) *Builder {
	b.inflect = fn
	return b
}

// Deflect overrides how native map keys derive from declared field names.
func (b *Builder) Deflect(fn func(string) string) *Builder {
	b.deflect = fn
	return b
}

// ObjectID overrides how the id of a resource object is derived during
// serialization.
func (b *Builder) ObjectID(fn func(resource any) (string, error)) *Builder {
	b.objectID = fn
	return b
}

// Build validates the declaration and returns the Schema.
func (b *Builder) Build() (*Schema, error) {
	var errs japi.ErrorList
	if !japi.IsMemberName(b.typename) {
		errs = append(errs, japi.NewValidationError("/data/type", fmt.Sprintf("Type name %q is not allowed.", b.typename)))
	}

	idField := b.id
	if idField == nil {
		idField = fields.Str("id")
	}

	s := &Schema{
		typename: b.typename,
		id:       member{name: "id", key: nativeKey(idField, b.deflect), field: idField, sp: "/data/id"},
		relLinks: map[string][]fields.Linker{},
		refines:  b.refines,
		objectID: b.objectID,
	}

	seen := map[string]japi.Pointer{}
	file := func(f fields.Field, bucket string) (member, bool) {
		name := f.Name()
		if b.inflect != nil {
			name = b.inflect(name)
		}
		m := member{name: name, key: nativeKey(f, b.deflect), field: f, sp: japi.Pointer("/data/" + bucket).Field(name)}
		if !japi.IsMemberName(name) {
			errs = append(errs, japi.NewValidationError(m.sp, fmt.Sprintf("Member name %q is not allowed.", name)))
			return m, false
		}
		if prev, dup := seen[name]; dup {
			errs = append(errs, japi.NewValidationError(m.sp, fmt.Sprintf("Member %q is already declared at %s.", name, prev)))
			return m, false
		}
		seen[name] = m.sp
		return m, true
	}

	for _, f := range b.attrs {
		bucket := "attributes"
		if f.IsMeta() {
			bucket = "meta"
		}
		m, ok := file(f, bucket)
		if !ok {
			continue
		}
		if f.IsMeta() {
			s.metas = append(s.metas, m)
		} else {
			s.attrs = append(s.attrs, m)
		}
	}
	for _, r := range b.rels {
		m, ok := file(r, "relationships")
		if !ok {
			continue
		}
		s.rels = append(s.rels, m)
	}

	relByName := map[string]bool{}
	for _, m := range s.rels {
		relByName[m.field.Name()] = true
		relByName[m.name] = true
	}
	for _, l := range b.links {
		if rel := l.LinkedRelation(); rel != "" {
			if !relByName[rel] {
				errs = append(errs, japi.NewValidationError(
					japi.Pointer("/data/relationships").Field(rel),
					fmt.Sprintf("Links can be added only for relationship fields; %q is not one.", rel),
				))
				continue
			}
			wire := rel
			if b.inflect != nil {
				wire = b.inflect(rel)
			}
			s.relLinks[wire] = append(s.relLinks[wire], l)
			continue
		}
		m, ok := file(l, "links")
		if !ok {
			continue
		}
		s.links = append(s.links, m)
	}

	sortMembers(s.attrs)
	sortMembers(s.metas)
	sortMembers(s.rels)
	sortMembers(s.links)

	if len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func nativeKey(f fields.Field, deflect func(string) string) string {
	if f.Key() != f.Name() {
		return f.Key()
	}
	if deflect == nil {
		return f.Name()
	}
	return deflect(f.Name())
}

func sortMembers(ms []member) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
}
