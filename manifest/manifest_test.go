package manifest_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/manifest"
)

const blogManifest = `
type: articles
attributes:
  title:      { field: str, minLen: 1, required: [post] }
  rating:     { field: float, gte: 0, lte: 10 }
  price:      { field: decimal, places: 2 }
  created_at: { field: datetime, writable: [never] }
relationships:
  author: { kind: to-one, foreignTypes: [people] }
links:
  self: { route: "/api/articles/{id}" }
---
type: people
attributes:
  name:  { field: str }
  email: { field: email, allowNone: true }
`

func TestLoadManifest(t *testing.T) {
	reg, err := manifest.Load(strings.NewReader(blogManifest))
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	types := reg.Types()
	if len(types) != 2 || types[0] != "articles" || types[1] != "people" {
		t.Fatalf("got %v", types)
	}

	s, err := reg.Lookup("articles")
	if err != nil {
		t.Fatalf("lookup err: %v", err)
	}

	doc, err := japi.DecodeValue([]byte(`{
		"data": {
			"type": "articles",
			"attributes": {"title": "Hello", "rating": 7.5, "price": 19.99},
			"relationships": {"author": {"data": {"type": "people", "id": "42"}}}
		}
	}`))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}

	ctx := context.Background()
	native, _, err := s.Deserialize(ctx, doc, japi.DeserializeOpt{Event: japi.EventPost})
	if err != nil {
		t.Fatalf("deserialize err: %v", err)
	}
	if native["title"] != "Hello" || native["rating"] != 7.5 {
		t.Fatalf("got %v", native)
	}
	if got := native["price"].(decimal.Decimal).String(); got != "19.99" {
		t.Fatalf("got %q", got)
	}
	if native["author"].(japi.ResourceID).ID != "42" {
		t.Fatalf("got %v", native["author"])
	}

	// declared gates survive the trip through YAML
	_, _, err = s.Deserialize(ctx, map[string]any{
		"data": map[string]any{"type": "articles", "attributes": map[string]any{}},
	}, japi.DeserializeOpt{Event: japi.EventPost})
	el, _ := japi.AsErrorList(err)
	if len(el) != 1 || el[0].Code != japi.CodeRequired {
		t.Fatalf("got %v", err)
	}

	out, err := s.Serialize(ctx, map[string]any{"id": "7", "title": "Hello"}, japi.SerializeOpt{})
	if err != nil {
		t.Fatalf("serialize err: %v", err)
	}
	links := out["links"].(map[string]any)
	if links["self"] != "/api/articles/7" {
		t.Fatalf("got %v", links)
	}
}

func TestParseSkipsNullDocuments(t *testing.T) {
	decls, err := manifest.Parse(strings.NewReader("null\n---\ntype: articles\n"))
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(decls) != 1 || decls[0].Type != "articles" {
		t.Fatalf("got %+v", decls)
	}
	if decls[0].Index != 1 {
		t.Fatalf("got index %d", decls[0].Index)
	}
}

func TestBuildFieldKinds(t *testing.T) {
	src := `
type: samples
attributes:
  flag:     { field: bool }
  count:    { field: int, gte: 0 }
  ratio:    { field: fraction, min: 0/1, max: 1/1 }
  z:        { field: complex }
  day:      { field: date }
  lifetime: { field: timedelta, min: 2s }
  uid:      { field: uuid, version: 4 }
  homepage: { field: uri }
  prefs:    { field: dict, of: { field: bool } }
  tags:     { field: list, of: { field: str }, minItems: 1 }
  point:    { field: tuple, items: [{ field: float }, { field: float }] }
relationships:
  parents: { kind: to-many, requireData: [post, patch] }
`
	reg, err := manifest.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	s, err := reg.Lookup("samples")
	if err != nil {
		t.Fatalf("lookup err: %v", err)
	}

	doc, err := japi.DecodeValue([]byte(`{
		"data": {
			"type": "samples",
			"attributes": {
				"flag": true,
				"count": 3,
				"ratio": {"numerator": 3, "denominator": 4},
				"z": {"real": 1, "imag": -2},
				"day": "2026-08-21",
				"lifetime": 90,
				"uid": "16fd2706-8baf-433b-82eb-8c7fada847da",
				"homepage": "https://example.org/",
				"prefs": {"dark": true},
				"tags": ["go", "api"],
				"point": [1.5, -2.5]
			},
			"relationships": {
				"parents": {"data": [{"type": "samples", "id": "1"}]}
			}
		}
	}`))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}

	native, _, err := s.Deserialize(context.Background(), doc, japi.DeserializeOpt{})
	if err != nil {
		t.Fatalf("deserialize err: %v", err)
	}
	if native["flag"] != true || native["count"] != int64(3) {
		t.Fatalf("got %v", native)
	}
	if native["lifetime"] != 90*time.Second {
		t.Fatalf("got %v", native["lifetime"])
	}
	if got := native["tags"].([]any); len(got) != 2 || got[0] != "go" {
		t.Fatalf("got %v", got)
	}
	if got := native["parents"].([]japi.ResourceID); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got %v", got)
	}
}

func TestManifestErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing type", "attributes: {}\n", "missing type name"},
		{"not a mapping", "- a\n- b\n", "not a mapping"},
		{"unknown member", "type: a\nextra: {}\n", `unknown member "extra"`},
		{"unknown kind", "type: a\nattributes:\n  x: { field: strr }\n", `unknown field kind "strr"`},
		{"missing kind", "type: a\nattributes:\n  x: { minLen: 1 }\n", "missing field kind"},
		{"unknown option", "type: a\nattributes:\n  x: { field: str, blank: true }\n", `unknown option "blank"`},
		{"bad option type", "type: a\nattributes:\n  x: { field: str, minLen: nope }\n", "must be an integer"},
		{"bad event", "type: a\nattributes:\n  x: { field: str, required: [sometimes] }\n", `unknown event "sometimes"`},
		{"missing tuple items", "type: a\nattributes:\n  x: { field: tuple }\n", "missing tuple items"},
		{"unknown rel kind", "type: a\nrelationships:\n  x: { kind: to-few }\n", `unknown relationship kind "to-few"`},
		{"missing route", "type: a\nlinks:\n  self: { normalize: true }\n", "missing route"},
		{"duplicate member", "type: a\nattributes:\n  author: { field: str }\nrelationships:\n  author: { kind: to-one }\n", "already declared"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manifest.Load(strings.NewReader(tc.src))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsDuplicateTypes(t *testing.T) {
	src := "type: a\n---\ntype: a\n"
	_, err := manifest.Load(strings.NewReader(src))
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("got %v", err)
	}
}
