package japi

// Presence is the bit flag recorded per document member during
// deserialization. It lets callers distinguish an absent member from an
// explicit null, which matters for PATCH semantics.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Member appeared in the input.
	PresenceWasNull                      // Member value was null.
)

// PresenceMap maps source pointers to Presence flags.
type PresenceMap map[Pointer]Presence

// Seen reports whether the member at sp appeared in the input.
func (pm PresenceMap) Seen(sp Pointer) bool {
	return pm[sp]&PresenceSeen != 0
}

// WasNull reports whether the member at sp was an explicit null.
func (pm PresenceMap) WasNull(sp Pointer) bool {
	return pm[sp]&PresenceWasNull != 0
}

// MergePresence returns a new PresenceMap that is the bitwise-OR merge of a
// and b.
func MergePresence(a, b PresenceMap) PresenceMap {
	if a == nil && b == nil {
		return nil
	}
	out := make(PresenceMap, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] |= v
	}
	return out
}
