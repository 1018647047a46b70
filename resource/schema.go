package resource

import (
	"context"
	"fmt"
	"sort"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/fields"
)

// member binds a field descriptor to its place in the document.
type member struct {
	name  string // wire member name
	key   string // native map key
	field fields.Field
	sp    japi.Pointer
}

// Schema is a built resource declaration. It implements japi.Schema.
type Schema struct {
	typename string
	id       member
	attrs    []member
	metas    []member
	rels     []member
	links    []member
	relLinks map[string][]fields.Linker
	refines  []refine
	objectID func(resource any) (string, error)
}

var _ japi.Schema = (*Schema)(nil)

// Type returns the JSON:API type name.
func (s *Schema) Type() string { return s.typename }

// ObjectID derives the id of a resource object for serialization and for
// identifier resolution through the registry.
func (s *Schema) ObjectID(resource any) (string, error) {
	if s.objectID != nil {
		return s.objectID(resource)
	}
	return defaultObjectID(resource)
}

// resourceMembers are the members a resource object may carry.
var resourceMembers = map[string]bool{
	"type": true, "id": true,
	"attributes": true, "relationships": true, "meta": true, "links": true,
}

// Deserialize validates and decodes a resource object. doc is either the
// decoded document, in which case its data member is unwrapped, or the bare
// resource object. It returns the native map keyed by the members' native
// keys and a presence map recording which members the input carried.
func (s *Schema) Deserialize(ctx context.Context, doc any, opt japi.DeserializeOpt) (map[string]any, japi.PresenceMap, error) {
	raw := doc
	if m, ok := doc.(map[string]any); ok {
		if inner, wrapped := m["data"]; wrapped {
			raw = inner
		}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, japi.ErrorList{japi.NewInvalidType("/data", "Must be an object.")}
	}

	ev := opt.Event
	if ev == 0 {
		ev = japi.EventFrom(ctx)
	}

	var errs japi.ErrorList
	out := map[string]any{}
	pm := japi.PresenceMap{}

	if rawType, has := obj["type"]; !has {
		errs = append(errs, japi.NewInvalidValue("/data/type", "The 'type' member is missing."))
	} else if got := asString(rawType); got != s.typename {
		errs = append(errs, japi.NewInvalidValue("/data/type", fmt.Sprintf("Unexpected type: %q.", got)))
	}

	rawID, hasID := obj["id"]
	if opt.RequireID && !hasID {
		errs = append(errs, japi.NewInvalidValue("/data/id", "The 'id' member is missing."))
	}
	if hasID {
		recordPresence(pm, s.id.sp, rawID)
		if v, err := deserializeMember(ctx, s.id, rawID); err != nil {
			errs = japi.AppendErrors(errs, err)
		} else {
			out[s.id.key] = v
		}
	}

	unknown := make([]string, 0)
	for name := range obj {
		if !resourceMembers[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, japi.NewUnknownMember(japi.Pointer("/data").Field(name), fmt.Sprintf("Unexpected member: '%s'.", name)))
	}

	errs = s.deserializeBucket(ctx, obj, "attributes", s.attrs, ev, out, pm, errs)
	errs = s.deserializeBucket(ctx, obj, "meta", s.metas, ev, out, pm, errs)
	errs = s.deserializeBucket(ctx, obj, "relationships", s.rels, ev, out, pm, errs)

	if len(errs) > 0 {
		return nil, nil, errs
	}

	for _, r := range s.refines {
		if err := r.fn(ctx, out); err != nil {
			errs = japi.AppendErrors(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return out, pm, nil
}

func (s *Schema) deserializeBucket(
	ctx context.Context,
	obj map[string]any,
	bucket string,
	members []member,
	ev japi.Event,
	out map[string]any,
	pm japi.PresenceMap,
	errs japi.ErrorList,
) japi.ErrorList {
	bucketSP := japi.Pointer("/data").Field(bucket)
	raw, present := obj[bucket]
	bm := map[string]any{}
	if present {
		var ok bool
		if bm, ok = raw.(map[string]any); !ok {
			return append(errs, japi.NewInvalidType(bucketSP, "Must be an object."))
		}
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.name] = true
	}
	unknown := make([]string, 0)
	for name := range bm {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, japi.NewUnknownMember(bucketSP.Field(name), fmt.Sprintf("Unexpected member: '%s'.", name)))
	}

	for _, m := range members {
		raw, has := bm[m.name]
		if !has {
			if m.field.Required().Intersects(ev) {
				errs = append(errs, japi.NewRequired(m.sp, requiredDetail(m)))
			}
			continue
		}
		if ev.Intersects(japi.EventAlways) && !m.field.Writable().Intersects(ev) {
			errs = append(errs, japi.NewReadOnly(m.sp, fmt.Sprintf("The field '%s' is readonly.", m.name)))
			continue
		}
		recordPresence(pm, m.sp, raw)
		v, err := deserializeMember(ctx, m, raw)
		if err != nil {
			errs = japi.AppendErrors(errs, err)
			continue
		}
		out[m.key] = v
	}
	return errs
}

func deserializeMember(ctx context.Context, m member, raw any) (any, error) {
	v, err := m.field.Deserialize(ctx, raw, m.sp)
	if err != nil {
		return nil, err
	}
	if err := m.field.PostValidate(ctx, v, m.sp); err != nil {
		return nil, err
	}
	return v, nil
}

func requiredDetail(m member) string {
	if _, ok := m.field.(fields.Relationship); ok {
		return fmt.Sprintf("Relationship '%s' is required.", m.name)
	}
	return fmt.Sprintf("Attribute '%s' is required.", m.name)
}

func recordPresence(pm japi.PresenceMap, sp japi.Pointer, raw any) {
	p := japi.PresenceSeen
	if raw == nil {
		p |= japi.PresenceWasNull
	}
	pm[sp] |= p
}

// Serialize composes the resource object for a native value. The accessor
// reads members from maps by native key and from structs by tag-resolved
// field name or Get method.
func (s *Schema) Serialize(ctx context.Context, resource any, opt japi.SerializeOpt) (map[string]any, error) {
	var errs japi.ErrorList

	id, err := s.ObjectID(resource)
	if err != nil {
		return nil, japi.AppendErrors(nil, err)
	}
	out := map[string]any{"type": s.typename, "id": id}
	// Links template on the parent identity, not on the native value.
	self := japi.ResourceID{Type: s.typename, ID: id}

	var fieldset map[string]bool
	if opt.Fields != nil {
		fieldset = make(map[string]bool, len(opt.Fields))
		for _, f := range opt.Fields {
			fieldset[f] = true
		}
	}
	included := func(m member) bool {
		if m.field.IsLoadOnly() {
			return false
		}
		return fieldset == nil || fieldset[m.name]
	}

	attrs := map[string]any{}
	for _, m := range s.attrs {
		if !included(m) {
			continue
		}
		value, ok := getValue(resource, m.key)
		if !ok {
			continue
		}
		v, err := m.field.Serialize(ctx, value)
		if err != nil {
			errs = japi.AppendErrors(errs, rebaseErrors(err, m.sp))
			continue
		}
		attrs[m.name] = v
	}
	if len(attrs) > 0 {
		out["attributes"] = attrs
	}

	meta := map[string]any{}
	for _, m := range s.metas {
		if !included(m) {
			continue
		}
		value, ok := getValue(resource, m.key)
		if !ok {
			continue
		}
		v, err := m.field.Serialize(ctx, value)
		if err != nil {
			errs = japi.AppendErrors(errs, rebaseErrors(err, m.sp))
			continue
		}
		meta[m.name] = v
	}
	if len(meta) > 0 {
		out["meta"] = meta
	}

	rels := map[string]any{}
	for _, m := range s.rels {
		if !included(m) {
			continue
		}
		value, ok := getValue(resource, m.key)
		if !ok {
			continue
		}
		v, err := m.field.Serialize(ctx, value)
		if err != nil {
			errs = japi.AppendErrors(errs, rebaseErrors(err, m.sp))
			continue
		}
		relObj, ok := v.(map[string]any)
		if !ok {
			relObj = map[string]any{"data": v}
		}
		rel := m.field.(fields.Relationship)
		relLinks := append(rel.Links(), s.relLinks[m.name]...)
		if len(relLinks) > 0 {
			links, ok := relObj["links"].(map[string]any)
			if !ok {
				links = map[string]any{}
			}
			for _, l := range relLinks {
				lv, err := l.Serialize(ctx, self)
				if err != nil {
					errs = japi.AppendErrors(errs, rebaseErrors(err, m.sp.Field("links").Field(l.Name())))
					continue
				}
				links[l.Name()] = lv
			}
			relObj["links"] = links
		}
		rels[m.name] = relObj
	}
	if len(rels) > 0 {
		out["relationships"] = rels
	}

	links := map[string]any{}
	for _, m := range s.links {
		if !included(m) {
			continue
		}
		lv, err := m.field.Serialize(ctx, self)
		if err != nil {
			errs = japi.AppendErrors(errs, rebaseErrors(err, m.sp))
			continue
		}
		links[m.name] = lv
	}
	if len(links) > 0 {
		out["links"] = links
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func rebaseErrors(err error, base japi.Pointer) japi.ErrorList {
	el := japi.AppendErrors(nil, err)
	for i := range el {
		el[i].SourcePointer = base + el[i].SourcePointer
	}
	return el
}
