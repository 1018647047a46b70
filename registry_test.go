package japi_test

import (
	"context"
	"reflect"
	"testing"

	japi "github.com/reoring/japi"
)

// stubSchema is a minimal japi.Schema for registry tests.
type stubSchema struct{ typename string }

func (s stubSchema) Type() string { return s.typename }

func (s stubSchema) ObjectID(resource any) (string, error) {
	return resource.(widget).ID, nil
}

func (s stubSchema) Deserialize(context.Context, any, japi.DeserializeOpt) (map[string]any, japi.PresenceMap, error) {
	return nil, nil, nil
}

func (s stubSchema) Serialize(context.Context, any, japi.SerializeOpt) (map[string]any, error) {
	return nil, nil
}

type widget struct{ ID string }

func TestRegistryRegister(t *testing.T) {
	reg := japi.NewRegistry()
	if err := reg.Register(stubSchema{"widgets"}, widget{}); err != nil {
		t.Fatalf("register err: %v", err)
	}
	if err := reg.Register(stubSchema{"widgets"}); err == nil {
		t.Fatalf("duplicate type must be rejected")
	}
	if err := reg.Register(stubSchema{"-bad-"}); err == nil {
		t.Fatalf("bad type name must be rejected")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("nil schema must be rejected")
	}
}

func TestRegistryTypes(t *testing.T) {
	reg := japi.NewRegistry()
	for _, name := range []string{"zebras", "articles", "people"} {
		if err := reg.Register(stubSchema{name}); err != nil {
			t.Fatalf("register err: %v", err)
		}
	}
	want := []string{"articles", "people", "zebras"}
	if got := reg.Types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := japi.NewRegistry()
	s := stubSchema{"widgets"}
	if err := reg.Register(s, widget{}, reflect.TypeOf(&widget{})); err != nil {
		t.Fatalf("register err: %v", err)
	}

	if got, err := reg.Lookup("widgets"); err != nil || got.Type() != "widgets" {
		t.Fatalf("got %v, %v", got, err)
	}
	if got, err := reg.Lookup(widget{ID: "1"}); err != nil || got.Type() != "widgets" {
		t.Fatalf("got %v, %v", got, err)
	}
	if got, err := reg.Lookup(reflect.TypeOf(widget{})); err != nil || got.Type() != "widgets" {
		t.Fatalf("got %v, %v", got, err)
	}
	if got, err := reg.Lookup(&widget{ID: "1"}); err != nil || got.Type() != "widgets" {
		t.Fatalf("pointer native: got %v, %v", got, err)
	}
	if got, err := reg.Lookup(s); err != nil || got.Type() != "widgets" {
		t.Fatalf("schema passthrough: got %v, %v", got, err)
	}

	_, err := reg.Lookup("gadgets")
	el, ok := japi.AsErrorList(err)
	if !ok || el[0].Code != japi.CodeUnknownType || el[0].Status != 404 {
		t.Fatalf("got %v", err)
	}
}

func TestEnsureIdentifier(t *testing.T) {
	reg := japi.NewRegistry()
	if err := reg.Register(stubSchema{"widgets"}, widget{}); err != nil {
		t.Fatalf("register err: %v", err)
	}

	want := japi.ResourceID{Type: "widgets", ID: "9"}

	cases := []struct {
		name string
		in   any
	}{
		{"identifier", japi.ResourceID{Type: "widgets", ID: "9"}},
		{"identifier pointer", &japi.ResourceID{Type: "widgets", ID: "9"}},
		{"sequence", []any{"widgets", "9"}},
		{"string sequence", []string{"widgets", "9"}},
		{"string pair", [2]string{"widgets", "9"}},
		{"object", map[string]any{"type": "widgets", "id": "9"}},
		{"string object", map[string]string{"type": "widgets", "id": "9"}},
		{"native", widget{ID: "9"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := reg.EnsureIdentifier(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Fatalf("got %v", got)
			}
		})
	}
}

func TestEnsureIdentifierErrors(t *testing.T) {
	reg := japi.NewRegistry()

	_, err := reg.EnsureIdentifier([]any{"widgets"})
	el, ok := japi.AsErrorList(err)
	if !ok || el[0].Code != japi.CodeInvalidIdentifier {
		t.Fatalf("got %v", err)
	}

	if _, err := reg.EnsureIdentifier(map[string]any{"type": "widgets"}); err == nil {
		t.Fatalf("missing id member must be rejected")
	}

	_, err = reg.EnsureIdentifier(struct{}{})
	el, ok = japi.AsErrorList(err)
	if !ok || el[0].Code != japi.CodeUnknownType {
		t.Fatalf("got %v", err)
	}
}

func TestRegistryContext(t *testing.T) {
	reg := japi.NewRegistry()
	ctx := japi.WithRegistry(context.Background(), reg)
	got, ok := japi.RegistryFrom(ctx)
	if !ok || got != reg {
		t.Fatalf("registry lost in context")
	}
	if _, ok := japi.RegistryFrom(context.Background()); ok {
		t.Fatalf("empty context must not yield a registry")
	}

	ctx = japi.WithEvent(ctx, japi.EventPatch)
	if got := japi.EventFrom(ctx); got != japi.EventPatch {
		t.Fatalf("got %v", got)
	}
	if got := japi.EventFrom(context.Background()); got != japi.EventNever {
		t.Fatalf("got %v", got)
	}
}
