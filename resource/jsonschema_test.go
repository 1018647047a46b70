package resource_test

import (
	"testing"
)

func TestJSONSchemaExport(t *testing.T) {
	s := articlesSchema(t)
	export, err := s.JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema: %v", err)
	}

	if export.Type != "object" || export.AdditionalProperties != false {
		t.Fatalf("root shape: type=%q additionalProperties=%v", export.Type, export.AdditionalProperties)
	}
	if len(export.Required) != 1 || export.Required[0] != "type" {
		t.Fatalf("root required = %v", export.Required)
	}
	tp := export.Properties["type"]
	if tp == nil || len(tp.Enum) != 1 || tp.Enum[0] != "articles" {
		t.Fatalf("type member = %+v", tp)
	}
	if export.Properties["id"] == nil {
		t.Fatalf("id member missing")
	}
	if _, ok := export.Properties["links"]; ok {
		t.Fatalf("links are serialize-only and must stay out of the export")
	}

	attrs := export.Properties["attributes"]
	if attrs == nil || attrs.AdditionalProperties != false {
		t.Fatalf("attributes bucket = %+v", attrs)
	}
	title := attrs.Properties["title"]
	if title == nil || title.Type != "string" || title.MinLength == nil || *title.MinLength != 1 {
		t.Fatalf("title = %+v", title)
	}
	if len(attrs.Required) != 1 || attrs.Required[0] != "title" {
		t.Fatalf("attributes required = %v", attrs.Required)
	}
	// Nullable members export as a oneOf with null.
	slug := attrs.Properties["slug"]
	if slug == nil || len(slug.OneOf) != 2 || slug.OneOf[1].Type != "null" {
		t.Fatalf("slug = %+v", slug)
	}
	// The readonly attribute keeps its mapped wire name.
	created := attrs.Properties["created-at"]
	if created == nil || created.Format != "date-time" {
		t.Fatalf("created-at = %+v", created)
	}

	rels := export.Properties["relationships"]
	if rels == nil {
		t.Fatalf("relationships bucket missing")
	}
	author := rels.Properties["author"]
	if author == nil || author.Properties["data"] == nil || len(author.Properties["data"].OneOf) != 2 {
		t.Fatalf("author = %+v", author)
	}
	comments := rels.Properties["comments"]
	if comments == nil || comments.Properties["data"] == nil || comments.Properties["data"].Type != "array" {
		t.Fatalf("comments = %+v", comments)
	}

	meta := export.Properties["meta"]
	if meta == nil || meta.Properties["token"] == nil {
		t.Fatalf("meta bucket = %+v", meta)
	}
}
