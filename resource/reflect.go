package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"

	japi "github.com/reoring/japi"
)

// resolveStructKey resolves a struct field's native key.
// Priority: japi tag > json tag name > snake_cased field name; "-" disables
// the field.
func resolveStructKey(sf reflect.StructField) string {
	if jt := sf.Tag.Get("japi"); jt != "" {
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return strcase.ToSnake(sf.Name)
}

// getValue reads a member value from a native resource: maps by key,
// structs by tag-resolved field, then by a Get method.
func getValue(resource any, key string) (any, bool) {
	if m, ok := resource.(map[string]any); ok {
		v, ok := m[key]
		return v, ok
	}

	rv := reflect.ValueOf(resource)
	base := rv
	for base.Kind() == reflect.Pointer {
		if base.IsNil() {
			return nil, false
		}
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct {
		rt := base.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := resolveStructKey(sf)
			if name == "-" {
				continue
			}
			if name == key {
				return base.Field(i).Interface(), true
			}
		}
	}

	if rv.IsValid() {
		method := rv.MethodByName("Get" + strcase.ToCamel(key))
		if method.IsValid() && method.Type().NumIn() == 0 && method.Type().NumOut() >= 1 {
			return method.Call(nil)[0].Interface(), true
		}
	}
	return nil, false
}

// defaultObjectID derives the id of a resource object: identifiers carry
// it, maps hold an id member, structs expose a GetID method or an ID field.
func defaultObjectID(resource any) (string, error) {
	switch t := resource.(type) {
	case japi.ResourceID:
		return t.ID, nil
	case *japi.ResourceID:
		if t == nil {
			return "", errors.New("resource: nil identifier")
		}
		return t.ID, nil
	case map[string]any:
		if v, ok := t["id"]; ok {
			return asString(v), nil
		}
		return "", errors.New("resource: map carries no id member")
	}

	rv := reflect.ValueOf(resource)
	if rv.IsValid() {
		if m := rv.MethodByName("GetID"); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			return asString(m.Call(nil)[0].Interface()), nil
		}
	}
	base := rv
	for base.Kind() == reflect.Pointer {
		if base.IsNil() {
			return "", fmt.Errorf("resource: cannot derive an id for %T", resource)
		}
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct {
		if f := base.FieldByName("ID"); f.IsValid() {
			return asString(f.Interface()), nil
		}
	}
	return "", fmt.Errorf("resource: cannot derive an id for %T", resource)
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
