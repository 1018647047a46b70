package fields

import (
	"context"
	"encoding/hex"
	"net/url"

	guuid "github.com/google/uuid"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/checks"
	js "github.com/reoring/japi/jsonschema"
)

// uuidAttr handles UUID members; the native form is uuid.UUID. Dashed,
// braced and URN spellings are accepted on input; output is the plain
// 32-digit hexadecimal form.
type uuidAttr struct {
	attr[uuidAttr]
	version int
}

// UUID declares a UUID member.
func UUID(name string) *uuidAttr {
	f := &uuidAttr{}
	f.attr = newAttr(f, name)
	return f
}

// Version pins the accepted UUID version.
func (f *uuidAttr) Version(n int) *uuidAttr {
	f.version = n
	return f
}

func (f *uuidAttr) checker() checks.Checker {
	return checks.UUID{Version: f.version}
}

func (f *uuidAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
	return err
}

func (f *uuidAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, f.checker(), f.allowNone, data, sp)
}

func (f *uuidAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, f.checker(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	u := out.(guuid.UUID)
	return hex.EncodeToString(u[:]), nil
}

func (f *uuidAttr) JSONSchema() (*js.Schema, error) {
	return nullable(&js.Schema{Type: "string", Format: "uuid"}, f.allowNone), nil
}

// uriAttr handles URI members; the native form is *url.URL.
type uriAttr struct {
	attr[uriAttr]
}

// URI declares a URI member.
func URI(name string) *uriAttr {
	f := &uriAttr{}
	f.attr = newAttr(f, name)
	return f
}

func (f *uriAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, checks.URL(), f.allowNone, data, sp)
	return err
}

func (f *uriAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, checks.URL(), f.allowNone, data, sp)
}

func (f *uriAttr) Serialize(ctx context.Context, native any) (any, error) {
	out, err := deserializeChecked(ctx, checks.URL(), f.allowNone, native, japi.RootPointer)
	if err != nil || out == nil {
		return nil, err
	}
	return out.(*url.URL).String(), nil
}

func (f *uriAttr) JSONSchema() (*js.Schema, error) {
	return nullable(&js.Schema{Type: "string", Format: "uri"}, f.allowNone), nil
}

// emailAttr handles email-address members; the native form is string.
type emailAttr struct {
	attr[emailAttr]
}

// Email declares an email-address member.
func Email(name string) *emailAttr {
	f := &emailAttr{}
	f.attr = newAttr(f, name)
	return f
}

func (f *emailAttr) PreValidate(ctx context.Context, data any, sp japi.Pointer) error {
	_, err := deserializeChecked(ctx, checks.Email(), f.allowNone, data, sp)
	return err
}

func (f *emailAttr) Deserialize(ctx context.Context, data any, sp japi.Pointer) (any, error) {
	return deserializeChecked(ctx, checks.Email(), f.allowNone, data, sp)
}

func (f *emailAttr) Serialize(ctx context.Context, native any) (any, error) {
	return deserializeChecked(ctx, checks.Email(), f.allowNone, native, japi.RootPointer)
}

func (f *emailAttr) JSONSchema() (*js.Schema, error) {
	return nullable(&js.Schema{Type: "string", Format: "email"}, f.allowNone), nil
}
