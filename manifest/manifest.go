// Package manifest loads resource schema declarations from YAML. A manifest
// is a multi-document stream, one resource type per document:
//
//	type: articles
//	attributes:
//	  title:  { field: str, minLen: 1, required: [post] }
//	  rating: { field: float, gte: 0, lte: 10 }
//	relationships:
//	  author: { kind: to-one, foreignTypes: [people] }
//	links:
//	  self: { route: /api/articles/{id} }
//
// Declarations compile to the same schemas the resource builder produces.
// Errors here are plain build-time errors, not wire error lists.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/resource"
)

// Decl is one parsed manifest document.
type Decl struct {
	Index         int // position in the stream
	Type          string
	ID            map[string]any
	Attributes    map[string]map[string]any
	Relationships map[string]map[string]any
	Links         map[string]map[string]any
}

// Parse reads every YAML document from r. Empty documents are skipped;
// anything else must be a mapping with at least a type member.
func Parse(r io.Reader) ([]Decl, error) {
	dec := yaml.NewDecoder(r)
	var decls []Decl
	for i := 0; ; i++ {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("manifest: document %d: %w", i, err)
		}
		if node == nil {
			continue
		}
		m := asStringMap(node)
		if m == nil {
			return nil, fmt.Errorf("manifest: document %d: not a mapping", i)
		}
		d, err := declOf(i, m)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

var declMembers = map[string]bool{
	"type": true, "id": true,
	"attributes": true, "relationships": true, "links": true,
}

func declOf(i int, m map[string]any) (Decl, error) {
	d := Decl{Index: i}

	name, ok := m["type"].(string)
	if !ok || name == "" {
		return d, fmt.Errorf("manifest: document %d: missing type name", i)
	}
	d.Type = name

	for key := range m {
		if !declMembers[key] {
			return d, fmt.Errorf("manifest: document %d: unknown member %q", i, key)
		}
	}

	if raw, ok := m["id"]; ok {
		idm, ok := raw.(map[string]any)
		if !ok {
			return d, fmt.Errorf("manifest: document %d: id: must be a mapping of options", i)
		}
		d.ID = idm
	}

	var err error
	if d.Attributes, err = sectionOf(i, "attributes", m["attributes"]); err != nil {
		return d, err
	}
	if d.Relationships, err = sectionOf(i, "relationships", m["relationships"]); err != nil {
		return d, err
	}
	if d.Links, err = sectionOf(i, "links", m["links"]); err != nil {
		return d, err
	}
	return d, nil
}

func sectionOf(i int, section string, raw any) (map[string]map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("manifest: document %d: %s: not a mapping", i, section)
	}
	out := make(map[string]map[string]any, len(m))
	for name, v := range m {
		opts, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("manifest: document %d: %s.%s: must be a mapping of options", i, section, name)
		}
		out[name] = opts
	}
	return out, nil
}

// Build compiles declarations into resource schemas, in declaration order.
func Build(decls []Decl) ([]*resource.Schema, error) {
	out := make([]*resource.Schema, 0, len(decls))
	for _, d := range decls {
		s, err := buildSchema(d)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Load parses r, compiles every declaration and registers the schemas in a
// fresh registry.
func Load(r io.Reader) (*japi.Registry, error) {
	decls, err := Parse(r)
	if err != nil {
		return nil, err
	}
	schemas, err := Build(decls)
	if err != nil {
		return nil, err
	}
	reg := japi.NewRegistry()
	for _, s := range schemas {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func buildSchema(d Decl) (*resource.Schema, error) {
	b := resource.New(d.Type)

	if d.ID != nil {
		f, err := buildField(fmt.Sprintf("document %d: id", d.Index), "id", d.ID)
		if err != nil {
			return nil, err
		}
		b.ID(f)
	}

	for _, name := range sortedKeys(d.Attributes) {
		path := fmt.Sprintf("document %d: attributes.%s", d.Index, name)
		f, err := buildField(path, name, d.Attributes[name])
		if err != nil {
			return nil, err
		}
		b.Attr(f)
	}
	for _, name := range sortedKeys(d.Relationships) {
		path := fmt.Sprintf("document %d: relationships.%s", d.Index, name)
		r, err := buildRelationship(path, name, d.Relationships[name])
		if err != nil {
			return nil, err
		}
		b.Rel(r)
	}
	for _, name := range sortedKeys(d.Links) {
		path := fmt.Sprintf("document %d: links.%s", d.Index, name)
		l, err := buildLink(path, name, d.Links[name])
		if err != nil {
			return nil, err
		}
		b.LinkField(l)
	}

	s, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("manifest: document %d: %w", d.Index, err)
	}
	return s, nil
}

func sortedKeys(m map[string]map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// asStringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func asStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return asStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
