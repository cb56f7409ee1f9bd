package store

import (
	"database/sql/driver"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

var (
	timeType   = reflect.TypeFor[time.Time]()
	valuerType = reflect.TypeFor[driver.Valuer]()
)

// Lookup resolves a dotted path such as "account.owner.id" against param.
// Each segment indexes a map with string keys, indexes a slice ("ids.0")
// or names a struct field (see fieldIndex). Pointers and interfaces are followed; a nil one part
// way down the path resolves to nil. A scalar root answers any single
// segment with itself. An untyped nil root resolves nothing.
func Lookup(param any, path string) (any, bool) {
	if param == nil {
		return nil, false
	}
	segments := strings.Split(path, ".")
	v := reflect.ValueOf(param)
	if len(segments) == 1 && isScalar(v) {
		return param, true
	}
	for _, name := range segments {
		v = indirect(v)
		if !v.IsValid() {
			return nil, true
		}
		next, ok := child(v, name)
		if !ok {
			return nil, false
		}
		v = next
	}
	if !v.IsValid() {
		return nil, true
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil, true
	}
	return v.Interface(), true
}

func child(v reflect.Value, name string) (reflect.Value, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !e.IsValid() {
			return reflect.Value{}, false
		}
		return e, true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(i), true
	case reflect.Struct:
		idx, ok := fieldIndex(v.Type())[normalize(name)]
		if !ok {
			return reflect.Value{}, false
		}
		f, err := v.FieldByIndexErr(idx)
		if err != nil {
			// nil embedded pointer
			return reflect.Value{}, true
		}
		return f, true
	}
	return reflect.Value{}, false
}

// indirect follows pointers and interfaces, returning the zero Value when
// it meets a nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isScalar(v reflect.Value) bool {
	v = indirect(v)
	if !v.IsValid() {
		return true
	}
	if v.Type() == timeType || v.Type().Implements(valuerType) {
		return true
	}
	switch v.Kind() {
	case reflect.Map, reflect.Struct:
		return false
	}
	return true
}

var fieldCache sync.Map // reflect.Type -> map[string][]int

// fieldIndex maps the normalized names a struct field answers to onto its
// index path. A field answers its db tag, its name and its snake_case
// name, all compared case-insensitively. Fields tagged db:"-" and
// unexported fields are skipped.
func fieldIndex(t reflect.Type) map[string][]int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string][]int)
	}
	index := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || (f.Anonymous && f.Type.Kind() == reflect.Struct) {
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			// a tag wins over any other field's plain name
			index[normalize(name)] = f.Index
			continue
		}
		for _, name := range []string{f.Name, snakeCase(f.Name)} {
			if _, taken := index[normalize(name)]; !taken {
				index[normalize(name)] = f.Index
			}
		}
	}
	actual, _ := fieldCache.LoadOrStore(t, index)
	return actual.(map[string][]int)
}

func normalize(name string) string {
	return strings.ToLower(name)
}

// snakeCase converts CamelCase to snake_case, keeping initialisms
// together: UserID -> user_id, HTTPServer -> http_server.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Flatten turns param into the map scripts see as params. Maps with string
// keys are copied, structs contribute one entry per field under its
// snake_case (or db tag) name, and anything else is exposed as both
// "_parameter" and "value".
func Flatten(param any) map[string]any {
	out := make(map[string]any)
	if param == nil {
		return out
	}
	v := indirect(reflect.ValueOf(param))
	switch {
	case !v.IsValid():
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	case v.Kind() == reflect.Struct && !isScalar(v):
		for _, f := range reflect.VisibleFields(v.Type()) {
			if !f.IsExported() || (f.Anonymous && f.Type.Kind() == reflect.Struct) {
				continue
			}
			name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
			if name == "-" {
				continue
			}
			if name == "" {
				name = snakeCase(f.Name)
			}
			fv, err := v.FieldByIndexErr(f.Index)
			if err != nil {
				continue
			}
			out[name] = fv.Interface()
		}
		return out
	}
	out["_parameter"] = param
	out["value"] = param
	return out
}
