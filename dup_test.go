package japi_test

import (
	"strings"
	"testing"

	japi "github.com/reoring/japi"
)

func TestDetectDuplicateMembers(t *testing.T) {
	if err := japi.DetectDuplicateMembers([]byte(`{"a":1,"b":[{"c":2}],"d":null}`)); err != nil {
		t.Fatalf("clean document: %v", err)
	}

	err := japi.DetectDuplicateMembers([]byte(`{"a":1,"b":2,"a":3}`))
	el, ok := japi.AsErrorList(err)
	if !ok || len(el) != 1 {
		t.Fatalf("expected one duplicate, got %v", err)
	}
	e := el[0]
	if e.Code != japi.CodeDuplicateMember || e.Status != 400 {
		t.Fatalf("code/status = %s/%d", e.Code, e.Status)
	}
	if e.Detail != "Duplicate member: 'a'." {
		t.Fatalf("detail = %q", e.Detail)
	}
	if e.SourcePointer.String() != "/a" {
		t.Fatalf("pointer = %q", e.SourcePointer)
	}
}

func TestDetectDuplicateMembersPointers(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "nested objects",
			doc:  `{"data":{"attributes":{"title":1,"title":2,"title":3}}}`,
			want: []string{"/data/attributes/title", "/data/attributes/title"},
		},
		{
			name: "inside array element",
			doc:  `{"items":[{"n":1},{"n":1,"n":2}]}`,
			want: []string{"/items/1/n"},
		},
		{
			name: "container values",
			doc:  `{"a":{"x":1},"a":{"y":2}}`,
			want: []string{"/a"},
		},
		{
			name: "escaped member",
			doc:  `{"a/b":1,"a/b":2}`,
			want: []string{"/a~1b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, ok := japi.AsErrorList(japi.DetectDuplicateMembers([]byte(tt.doc)))
			if !ok {
				t.Fatalf("expected duplicates in %s", tt.doc)
			}
			if len(el) != len(tt.want) {
				t.Fatalf("got %d errors, want %d: %v", len(el), len(tt.want), el)
			}
			for i, want := range tt.want {
				if got := el[i].SourcePointer.String(); got != want {
					t.Errorf("error %d at %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestDetectDuplicateMembersMalformed(t *testing.T) {
	err := japi.DetectDuplicateMembers([]byte(`{"a":`))
	if err == nil {
		t.Fatalf("expected a decode error")
	}
	if _, ok := japi.AsErrorList(err); ok {
		t.Fatalf("malformed input should not come back as an ErrorList")
	}
}

func TestDetectDuplicateMembersReader(t *testing.T) {
	err := japi.DetectDuplicateMembersReader(strings.NewReader(`{"k":true,"k":false}`))
	el, ok := japi.AsErrorList(err)
	if !ok || len(el) != 1 || el[0].SourcePointer.String() != "/k" {
		t.Fatalf("got %v", err)
	}
}
