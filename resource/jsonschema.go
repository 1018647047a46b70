package resource

import (
	japi "github.com/reoring/japi"
	js "github.com/reoring/japi/jsonschema"
)

// JSONSchema exports the resource-object shape for documentation and
// tooling. The export mirrors the deserializer: unknown members rejected,
// members required on any request event listed as required. Links are
// serialize-only and stay out of the export.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	idSchema, err := s.id.field.JSONSchema()
	if err != nil {
		return nil, err
	}
	root := &js.Schema{
		Type: "object",
		Properties: map[string]*js.Schema{
			"type": {Type: "string", Enum: []any{s.typename}},
			"id":   idSchema,
		},
		Required:             []string{"type"},
		AdditionalProperties: false,
	}

	buckets := []struct {
		name    string
		members []member
	}{
		{"attributes", s.attrs},
		{"relationships", s.rels},
		{"meta", s.metas},
	}
	for _, b := range buckets {
		if len(b.members) == 0 {
			continue
		}
		obj, err := bucketSchema(b.members)
		if err != nil {
			return nil, err
		}
		root.Properties[b.name] = obj
	}
	return root, nil
}

func bucketSchema(members []member) (*js.Schema, error) {
	obj := &js.Schema{
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, len(members)),
		AdditionalProperties: false,
	}
	for _, m := range members {
		ps, err := m.field.JSONSchema()
		if err != nil {
			return nil, err
		}
		obj.Properties[m.name] = ps
		if m.field.Required().Intersects(japi.EventAlways) {
			obj.Required = append(obj.Required, m.name)
		}
	}
	return obj, nil
}
