package japi

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer is an RFC 6901 JSON Pointer into a JSON:API document, for example
// /data/attributes/title. The zero value addresses the document root.
type Pointer string

// RootPointer addresses the whole document.
const RootPointer Pointer = ""

// ParsePointer validates s as a JSON Pointer. The empty string is the root;
// any other pointer must start with '/'.
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return RootPointer, nil
	}
	if !strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("japi: pointer %q must start with '/'", s)
	}
	return Pointer(s), nil
}

// escape applies the RFC 6901 token escaping: '~' -> '~0', '/' -> '~1'.
func escapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// Field returns the pointer extended by one member name token.
func (p Pointer) Field(name string) Pointer {
	if name == "" {
		return p
	}
	return p + Pointer("/"+escapeToken(name))
}

// Index returns the pointer extended by one array index token.
func (p Pointer) Index(i int) Pointer {
	return p + Pointer("/"+strconv.Itoa(i))
}

// Tokens splits the pointer into its unescaped reference tokens.
func (p Pointer) Tokens() []string {
	if p == "" {
		return nil
	}
	raw := strings.Split(string(p)[1:], "/")
	out := make([]string, len(raw))
	for i, t := range raw {
		out[i] = unescapeToken(t)
	}
	return out
}

// Parent returns the pointer with its last token removed. The root pointer is
// its own parent.
func (p Pointer) Parent() Pointer {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return RootPointer
	}
	return p[:i]
}

// Last returns the unescaped last token, or "" at the root.
func (p Pointer) Last() string {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return unescapeToken(string(p)[i+1:])
}

func (p Pointer) String() string { return string(p) }
