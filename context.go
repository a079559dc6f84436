package promptml

import (
	"reflect"
	"strings"
)

// Context carries the variable values template expressions resolve
// against. Nested values are reached with dotted paths: "user.name" walks
// maps by key and structs by exported field, dereferencing pointers and
// interfaces along the way.
type Context map[string]any

// Resolve looks up a dotted path and reports whether every step resolved.
// An empty path or "." yields the whole context.
func (c Context) Resolve(path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" || path == "." {
		return map[string]any(c), true
	}
	path = strings.TrimPrefix(path, ".")

	var current any = map[string]any(c)
	for _, field := range strings.Split(path, ".") {
		if field == "" {
			continue
		}
		v, ok := resolveField(current, field)
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

// resolveField extracts one step of a dotted path from data via
// reflection: map key for maps, exported field name for structs.
func resolveField(data any, field string) (any, bool) {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(field).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		fv := v.FieldByName(field)
		if !fv.IsValid() || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	default:
		return nil, false
	}
}
