package japi

import "context"

type registryKey struct{}
type eventKey struct{}

// WithRegistry stores the registry in the context for use by descriptors
// that resolve identifiers (relationships, links).
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// RegistryFrom retrieves the registry from the context.
func RegistryFrom(ctx context.Context) (*Registry, bool) {
	r, ok := ctx.Value(registryKey{}).(*Registry)
	return r, ok && r != nil
}

// WithEvent stores the request event in the context so schema and field code
// can apply writable/required rules.
func WithEvent(ctx context.Context, ev Event) context.Context {
	return context.WithValue(ctx, eventKey{}, ev)
}

// EventFrom retrieves the request event from the context, EventNever when
// unset.
func EventFrom(ctx context.Context) Event {
	if ev, ok := ctx.Value(eventKey{}).(Event); ok {
		return ev
	}
	return EventNever
}
