package japi

import "context"

// Schema is the contract a resource schema exposes to the registry and to
// relationship descriptors. Concrete schemas are built with the resource
// package; the registry only relies on this interface.
type Schema interface {
	// Type returns the JSON:API typename the schema serves.
	Type() string

	// ObjectID extracts the id string from a native resource value.
	ObjectID(resource any) (string, error)

	// Deserialize validates a resource document (or a bare resource object)
	// and converts its members to their native forms. The returned map is
	// keyed by field keys; the PresenceMap records which members the input
	// actually carried.
	Deserialize(ctx context.Context, doc any, opt DeserializeOpt) (map[string]any, PresenceMap, error)

	// Serialize renders a native resource value as a JSON:API resource
	// object.
	Serialize(ctx context.Context, resource any, opt SerializeOpt) (map[string]any, error)
}

// DeserializeOpt carries per-call deserialization options.
type DeserializeOpt struct {
	// Event selects the writable/required rules to enforce. EventNever skips
	// both checks.
	Event Event
	// RequireID demands the resource object to carry an id member, as PATCH
	// requests do.
	RequireID bool
}

// SerializeOpt carries per-call serialization options.
type SerializeOpt struct {
	// Fields restricts the attributes/relationships emitted (sparse
	// fieldsets). Nil means all.
	Fields []string
}
