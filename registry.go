package japi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"

	"github.com/reoring/japi/i18n"
)

// Registry maps resource typenames and native Go types to their schemas.
// Populate it once at startup; lookups never mutate it. Concurrent
// registration is not supported.
type Registry struct {
	schemas map[string]Schema
	natives map[reflect.Type]Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]Schema),
		natives: make(map[reflect.Type]Schema),
	}
}

// Register adds a schema under its typename. Optional natives are sample
// values (or reflect.Types) whose dynamic Go type will resolve to the schema
// in Lookup and EnsureIdentifier.
func (r *Registry) Register(s Schema, natives ...any) error {
	if s == nil {
		return fmt.Errorf("japi: nil schema")
	}
	name := s.Type()
	if !IsMemberName(name) {
		return fmt.Errorf("japi: type name %q is not allowed", name)
	}
	if _, dup := r.schemas[name]; dup {
		return fmt.Errorf("japi: type %q already registered", name)
	}
	r.schemas[name] = s
	for _, n := range natives {
		rt, ok := n.(reflect.Type)
		if !ok {
			rt = reflect.TypeOf(n)
		}
		if rt == nil {
			continue
		}
		r.natives[rt] = s
	}
	return nil
}

// Types returns the registered typenames in ascending order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a schema from a typename string, a reflect.Type, or any
// value whose dynamic type was registered as a native.
func (r *Registry) Lookup(key any) (Schema, error) {
	switch k := key.(type) {
	case string:
		if s, ok := r.schemas[k]; ok {
			return s, nil
		}
		return nil, unknownType(k)
	case Schema:
		return k, nil
	case reflect.Type:
		if s, ok := r.natives[k]; ok {
			return s, nil
		}
		return nil, unknownType(k.String())
	default:
		rt := reflect.TypeOf(key)
		if s, ok := r.natives[rt]; ok {
			return s, nil
		}
		return nil, unknownType(fmt.Sprintf("%T", key))
	}
}

func unknownType(name string) error {
	return ErrorList{{
		Status: http.StatusNotFound,
		Code:   CodeUnknownType,
		Title:  i18n.T(CodeUnknownType, nil),
		Detail: fmt.Sprintf("No schema registered for type %q.", name),
	}}
}

// EnsureIdentifier returns the ResourceID for obj. Accepted inputs:
//
//   - a ResourceID (returned unchanged)
//   - a two-element sequence [typename, id]
//   - an object carrying "type" and "id" members, such as a resource
//     identifier or a whole resource object
//   - any value whose dynamic type resolves to a registered schema; the id
//     then comes from Schema.ObjectID
func (r *Registry) EnsureIdentifier(obj any) (ResourceID, error) {
	switch v := obj.(type) {
	case ResourceID:
		return v, nil
	case *ResourceID:
		if v != nil {
			return *v, nil
		}
	case []any:
		if len(v) != 2 {
			return ResourceID{}, invalidIdentifier("Must be a two-element [type, id] sequence.")
		}
		return ResourceID{Type: stringify(v[0]), ID: stringify(v[1])}, nil
	case []string:
		if len(v) != 2 {
			return ResourceID{}, invalidIdentifier("Must be a two-element [type, id] sequence.")
		}
		return ResourceID{Type: v[0], ID: v[1]}, nil
	case [2]string:
		return ResourceID{Type: v[0], ID: v[1]}, nil
	case map[string]any:
		t, okT := v["type"]
		id, okID := v["id"]
		if !okT || !okID {
			return ResourceID{}, invalidIdentifier(`Must contain a "type" and an "id" member.`)
		}
		return ResourceID{Type: stringify(t), ID: stringify(id)}, nil
	case map[string]string:
		t, okT := v["type"]
		id, okID := v["id"]
		if !okT || !okID {
			return ResourceID{}, invalidIdentifier(`Must contain a "type" and an "id" member.`)
		}
		return ResourceID{Type: t, ID: id}, nil
	}

	schema, err := r.Lookup(obj)
	if err != nil {
		return ResourceID{}, err
	}
	id, err := schema.ObjectID(obj)
	if err != nil {
		return ResourceID{}, AppendErrors(nil, err)
	}
	return ResourceID{Type: schema.Type(), ID: id}, nil
}

func invalidIdentifier(detail string) error {
	return ErrorList{{
		Status: http.StatusBadRequest,
		Code:   CodeInvalidIdentifier,
		Title:  i18n.T(CodeInvalidIdentifier, nil),
		Detail: detail,
	}}
}

// stringify renders identifier parts the way the document does: strings stay
// as-is, numbers keep their literal form.
func stringify(v any) string {
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
