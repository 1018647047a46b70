package japi

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

// ContentType is the JSON:API media type.
const ContentType = "application/vnd.api+json"

// MemberNameRule is the regular expression rule for allowed member and type
// names. Single characters must be alphanumeric; longer names may contain
// '-' and '_' anywhere but the edges.
const MemberNameRule = `[a-zA-Z0-9]([a-zA-Z0-9\-_]+[a-zA-Z0-9]|[a-zA-Z0-9]?)`

var memberNameRegexp = regexp.MustCompile(`^` + MemberNameRule + `$`)

// IsMemberName reports whether s is an allowed JSON:API member name.
func IsMemberName(s string) bool { return memberNameRegexp.MatchString(s) }

// ValidateContentType checks a Content-Type header value against the JSON:API
// media type. The media type must match exactly and carry no parameters.
func ValidateContentType(header string) error {
	mt, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ErrorList{NewUnsupportedMediaType(fmt.Sprintf("Invalid media type %q.", header))}
	}
	if mt != ContentType {
		return ErrorList{NewUnsupportedMediaType(fmt.Sprintf("Unsupported media type %q.", mt))}
	}
	if len(params) > 0 {
		return ErrorList{NewUnsupportedMediaType("Media type parameters are not allowed.")}
	}
	return nil
}

// Event represents the request intent a field reacts to. Events combine as
// bit flags, so a field may for example be writable on EventPost|EventPatch.
type Event uint8

const (
	EventGet Event = 1 << iota
	EventPost
	EventPatch
	EventDelete
	EventNever

	EventAlways = EventGet | EventPost | EventPatch | EventDelete
	EventCreate = EventPost
	EventUpdate = EventPatch
)

// Has reports whether every flag of e is set.
func (ev Event) Has(e Event) bool { return ev&e == e && e != 0 }

// Intersects reports whether ev and e share at least one flag.
func (ev Event) Intersects(e Event) bool { return ev&e != 0 }

func (ev Event) String() string {
	if ev == 0 {
		return "NONE"
	}
	parts := make([]string, 0, 5)
	for _, f := range []struct {
		e Event
		s string
	}{
		{EventGet, "GET"},
		{EventPost, "POST"},
		{EventPatch, "PATCH"},
		{EventDelete, "DELETE"},
		{EventNever, "NEVER"},
	} {
		if ev&f.e != 0 {
			parts = append(parts, f.s)
		}
	}
	return strings.Join(parts, "|")
}

// ParseEvent resolves an event name ("get", "post", "patch", "delete",
// "create", "update", "never", "always") to its flag value.
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "get":
		return EventGet, nil
	case "post", "create":
		return EventPost, nil
	case "patch", "update":
		return EventPatch, nil
	case "delete":
		return EventDelete, nil
	case "never":
		return EventNever, nil
	case "always":
		return EventAlways, nil
	}
	return 0, fmt.Errorf("japi: unknown event %q", s)
}

// Relation distinguishes to-one from to-many relationships.
type Relation uint8

const (
	RelationToOne Relation = iota + 1
	RelationToMany
)

func (r Relation) String() string {
	switch r {
	case RelationToOne:
		return "to-one"
	case RelationToMany:
		return "to-many"
	}
	return fmt.Sprintf("Relation(%d)", uint8(r))
}

// ResourceID identifies a single resource by its typename and id.
type ResourceID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r ResourceID) String() string { return r.Type + "/" + r.ID }

// AsMap returns the identifier in its JSON object form.
func (r ResourceID) AsMap() map[string]any {
	return map[string]any{"type": r.Type, "id": r.ID}
}
