package japi_test

import (
	"testing"

	japi "github.com/reoring/japi"
)

func TestIsMemberName(t *testing.T) {
	valid := []string{"a", "Z", "0", "ab", "title", "created-at", "created_at", "a-b_c", "a0"}
	for _, s := range valid {
		if !japi.IsMemberName(s) {
			t.Errorf("%q must be allowed", s)
		}
	}
	invalid := []string{"", "-", "_", "-ab", "ab-", "_ab", "ab_", "a b", "a.b", "a/b", "äöü"}
	for _, s := range invalid {
		if japi.IsMemberName(s) {
			t.Errorf("%q must be rejected", s)
		}
	}
}

func TestValidateContentType(t *testing.T) {
	if err := japi.ValidateContentType(japi.ContentType); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := japi.ValidateContentType("application/json")
	el, ok := japi.AsErrorList(err)
	if !ok || el[0].Code != japi.CodeUnsupportedMediaType || el[0].Status != 415 {
		t.Fatalf("got %v", err)
	}

	if err := japi.ValidateContentType("application/vnd.api+json; charset=utf-8"); err == nil {
		t.Fatalf("media type parameters must be rejected")
	}
	if err := japi.ValidateContentType(""); err == nil {
		t.Fatalf("empty header must be rejected")
	}
}

func TestEventFlags(t *testing.T) {
	if !japi.EventAlways.Has(japi.EventPost) {
		t.Fatalf("always must include post")
	}
	if japi.EventPost.Has(japi.EventAlways) {
		t.Fatalf("post must not include always")
	}
	if japi.EventPost.Has(0) {
		t.Fatalf("zero flag never matches")
	}
	if japi.EventNever.Intersects(japi.EventAlways) {
		t.Fatalf("never must not intersect request events")
	}
	if !(japi.EventPost | japi.EventPatch).Intersects(japi.EventPatch) {
		t.Fatalf("expected intersection")
	}
}

func TestEventString(t *testing.T) {
	if got := (japi.EventPost | japi.EventPatch).String(); got != "POST|PATCH" {
		t.Fatalf("got %q", got)
	}
	if got := japi.Event(0).String(); got != "NONE" {
		t.Fatalf("got %q", got)
	}
	if got := japi.EventNever.String(); got != "NEVER" {
		t.Fatalf("got %q", got)
	}
}

func TestParseEvent(t *testing.T) {
	cases := map[string]japi.Event{
		"get":    japi.EventGet,
		"post":   japi.EventPost,
		"create": japi.EventPost,
		"PATCH":  japi.EventPatch,
		"update": japi.EventPatch,
		"delete": japi.EventDelete,
		"never":  japi.EventNever,
		"always": japi.EventAlways,
	}
	for in, want := range cases {
		got, err := japi.ParseEvent(in)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := japi.ParseEvent("sometimes"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRelationString(t *testing.T) {
	if japi.RelationToOne.String() != "to-one" || japi.RelationToMany.String() != "to-many" {
		t.Fatalf("got %v / %v", japi.RelationToOne, japi.RelationToMany)
	}
}

func TestResourceID(t *testing.T) {
	rid := japi.ResourceID{Type: "articles", ID: "7"}
	if rid.String() != "articles/7" {
		t.Fatalf("got %q", rid.String())
	}
	m := rid.AsMap()
	if m["type"] != "articles" || m["id"] != "7" {
		t.Fatalf("got %v", m)
	}
}

func TestPresenceMap(t *testing.T) {
	a := japi.PresenceMap{"/data/attributes/title": japi.PresenceSeen}
	b := japi.PresenceMap{
		"/data/attributes/title": japi.PresenceWasNull,
		"/data/attributes/slug":  japi.PresenceSeen,
	}
	merged := japi.MergePresence(a, b)
	if !merged.Seen("/data/attributes/title") || !merged.WasNull("/data/attributes/title") {
		t.Fatalf("got %v", merged)
	}
	if !merged.Seen("/data/attributes/slug") || merged.WasNull("/data/attributes/slug") {
		t.Fatalf("got %v", merged)
	}
	if merged.Seen("/data/attributes/other") {
		t.Fatalf("unexpected presence")
	}
	if japi.MergePresence(nil, nil) != nil {
		t.Fatalf("nil merge must stay nil")
	}
}
