package japi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/reoring/japi/i18n"
)

// DetectDuplicateMembers scans raw JSON for object members that occur more
// than once within the same object. The document format requires member
// names to be unique, but decoders silently keep the last occurrence, so a
// caller that cares runs this scan over the raw bytes before DecodeValue.
// Duplicates come back as an ErrorList with one entry per repeated member.
func DetectDuplicateMembers(data []byte) error {
	return DetectDuplicateMembersReader(bytes.NewReader(data))
}

// DetectDuplicateMembersReader scans a stream. The reader is consumed fully.
func DetectDuplicateMembersReader(r io.Reader) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var el ErrorList
	var frames []dupFrame

	// complete marks the enclosing container's current value as read.
	complete := func() {
		if len(frames) == 0 {
			return
		}
		top := &frames[len(frames)-1]
		if top.array {
			top.index++
		} else {
			top.haveKey = false
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("japi: decode: %w", err)
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				frames = append(frames, dupFrame{keys: map[string]struct{}{}})
			case '[':
				frames = append(frames, dupFrame{array: true})
			default:
				frames = frames[:len(frames)-1]
				complete()
			}
		case string:
			if n := len(frames); n > 0 && !frames[n-1].array && !frames[n-1].haveKey {
				top := &frames[n-1]
				if _, dup := top.keys[t]; dup {
					el = append(el, Error{
						Status:        http.StatusBadRequest,
						Code:          CodeDuplicateMember,
						Title:         i18n.T(CodeDuplicateMember, nil),
						Detail:        fmt.Sprintf("Duplicate member: '%s'.", t),
						SourcePointer: dupPointer(frames, t),
					})
				}
				top.keys[t] = struct{}{}
				top.key = t
				top.haveKey = true
				continue
			}
			complete()
		default:
			complete()
		}
	}
	if len(el) > 0 {
		return el
	}
	return nil
}

// dupFrame tracks one open container during the token walk.
type dupFrame struct {
	array   bool
	index   int                 // arrays: index of the element being read
	keys    map[string]struct{} // objects: member names seen so far
	key     string              // objects: member whose value is pending
	haveKey bool
}

// dupPointer locates name inside the innermost frame. Outer frames
// contribute the member or index their walk is currently inside of.
func dupPointer(frames []dupFrame, name string) Pointer {
	p := RootPointer
	for _, f := range frames[:len(frames)-1] {
		if f.array {
			p = p.Index(f.index)
		} else {
			p = p.Field(f.key)
		}
	}
	return p.Field(name)
}
