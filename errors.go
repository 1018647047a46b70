package japi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/reoring/japi/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeInvalidValue         = "invalid_value"
	CodeRequired             = "required"
	CodeReadOnly             = "read_only"
	CodeUnknownMember        = "unknown_member"
	CodeDuplicateMember      = "duplicate_member"
	CodeUnknownType          = "unknown_type"
	CodeInvalidIdentifier    = "invalid_identifier"
	CodeValidationError      = "validation_error"
	CodeUnsupportedMediaType = "unsupported_media_type"
)

// Error is a single JSON:API error object.
type Error struct {
	ID     string // Optional unique identifier for this occurrence.
	Status int    // HTTP status code this error maps to.
	Code   string // One of the codes listed above.
	Title  string // Short, code-stable summary.
	Detail string // Human-readable explanation specific to this occurrence.
	// SourcePointer locates the offending document member; SourceParameter
	// names an offending query parameter. At most one of them is set.
	SourcePointer   Pointer
	SourceParameter string
	Meta            map[string]any
}

// Error summarizes as "code at pointer: detail".
func (e Error) Error() string {
	b := &strings.Builder{}
	code := e.Code
	if code == "" {
		code = strconv.Itoa(e.Status)
	}
	b.WriteString(code)
	if e.SourcePointer != RootPointer {
		fmt.Fprintf(b, " at %s", e.SourcePointer)
	} else if e.SourceParameter != "" {
		fmt.Fprintf(b, " at ?%s", e.SourceParameter)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// MarshalJSON renders the JSON:API error-object shape. Status is a string
// member per the document format; source carries pointer or parameter only
// when set.
func (e Error) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, 7)
	if e.ID != "" {
		obj["id"] = e.ID
	}
	if e.Status != 0 {
		obj["status"] = strconv.Itoa(e.Status)
	}
	if e.Code != "" {
		obj["code"] = e.Code
	}
	if e.Title != "" {
		obj["title"] = e.Title
	}
	if e.Detail != "" {
		obj["detail"] = e.Detail
	}
	if e.SourcePointer != RootPointer {
		obj["source"] = map[string]any{"pointer": e.SourcePointer.String()}
	} else if e.SourceParameter != "" {
		obj["source"] = map[string]any{"parameter": e.SourceParameter}
	}
	if len(e.Meta) > 0 {
		obj["meta"] = e.Meta
	}
	return EncodeValue(obj)
}

// ErrorList is a collection of error objects that implements error.
type ErrorList []Error

// Error summarizes the first few entries.
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(el)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(el[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Status returns the most severe HTTP status carried by the list, or 400 for
// an empty or status-less list.
func (el ErrorList) Status() int {
	st := 0
	for _, e := range el {
		if e.Status > st {
			st = e.Status
		}
	}
	if st == 0 {
		st = http.StatusBadRequest
	}
	return st
}

// Document returns the JSON:API top-level errors document.
func (el ErrorList) Document() map[string]any {
	errs := make([]any, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return map[string]any{"errors": errs}
}

// JSON encodes the errors document.
func (el ErrorList) JSON() ([]byte, error) { return EncodeValue(el.Document()) }

// AppendErrors appends errors to the destination, initializing the slice when
// needed. A nested ErrorList in more is flattened.
func AppendErrors(dst ErrorList, more ...error) ErrorList {
	if dst == nil && len(more) > 0 {
		dst = ErrorList{}
	}
	for _, err := range more {
		if err == nil {
			continue
		}
		if el, ok := AsErrorList(err); ok {
			dst = append(dst, el...)
			continue
		}
		var e Error
		if errors.As(err, &e) {
			dst = append(dst, e)
			continue
		}
		dst = append(dst, Error{
			Status: http.StatusInternalServerError,
			Detail: err.Error(),
		})
	}
	return dst
}

// AsErrorList extracts an ErrorList from an error using errors.As internally.
func AsErrorList(err error) (ErrorList, bool) {
	if err == nil {
		return nil, false
	}
	var el ErrorList
	if errors.As(err, &el) {
		return el, true
	}
	return nil, false
}

// NewValidationError returns a generic 400 validation error at sp.
func NewValidationError(sp Pointer, detail string) Error {
	return Error{
		Status:        http.StatusBadRequest,
		Code:          CodeValidationError,
		Title:         i18n.T(CodeValidationError, nil),
		Detail:        detail,
		SourcePointer: sp,
	}
}

// NewInvalidType reports a member whose JSON type is wrong. JSON:API answers
// type conflicts with 409.
func NewInvalidType(sp Pointer, detail string) Error {
	return Error{
		Status:        http.StatusConflict,
		Code:          CodeInvalidType,
		Title:         i18n.T(CodeInvalidType, nil),
		Detail:        detail,
		SourcePointer: sp,
	}
}

// NewInvalidValue reports a member with the right JSON type but an invalid
// value.
func NewInvalidValue(sp Pointer, detail string) Error {
	return Error{
		Status:        http.StatusBadRequest,
		Code:          CodeInvalidValue,
		Title:         i18n.T(CodeInvalidValue, nil),
		Detail:        detail,
		SourcePointer: sp,
	}
}

// NewRequired reports an absent member that the current event requires.
func NewRequired(sp Pointer, detail string) Error {
	return Error{
		Status:        http.StatusBadRequest,
		Code:          CodeRequired,
		Title:         i18n.T(CodeRequired, nil),
		Detail:        detail,
		SourcePointer: sp,
	}
}

// NewReadOnly reports a member that the current event may not write.
func NewReadOnly(sp Pointer, detail string) Error {
	return Error{
		Status:        http.StatusForbidden,
		Code:          CodeReadOnly,
		Title:         i18n.T(CodeReadOnly, nil),
		Detail:        detail,
		SourcePointer: sp,
	}
}

// NewUnknownMember reports a document member no field claims.
func NewUnknownMember(sp Pointer, detail string) Error {
	return Error{
		Status:        http.StatusBadRequest,
		Code:          CodeUnknownMember,
		Title:         i18n.T(CodeUnknownMember, nil),
		Detail:        detail,
		SourcePointer: sp,
	}
}

// NewUnsupportedMediaType reports a Content-Type outside the JSON:API media
// type.
func NewUnsupportedMediaType(detail string) Error {
	return Error{
		Status: http.StatusUnsupportedMediaType,
		Code:   CodeUnsupportedMediaType,
		Title:  i18n.T(CodeUnsupportedMediaType, nil),
		Detail: detail,
	}
}
