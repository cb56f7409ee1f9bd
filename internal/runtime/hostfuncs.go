package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/risor-io/risor/object"
)

// makePlaceholdersFn creates the "placeholders" host function, which
// expands a list parameter into one placeholder per element for IN
// clauses.
//
// placeholders("ids", 3) → "#{ids.0}, #{ids.1}, #{ids.2}"
func makePlaceholdersFn() *object.Builtin {
	return object.NewBuiltin("placeholders", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("placeholders", 2, len(args))
		}
		name, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("placeholders: name must be a string, got %s", args[0].Type())
		}
		n, ok := args[1].(*object.Int)
		if !ok {
			return object.Errorf("placeholders: count must be an int, got %s", args[1].Type())
		}
		if n.Value() < 0 {
			return object.Errorf("placeholders: negative count %d", n.Value())
		}
		return object.NewString(placeholderList(name.Value(), int(n.Value())))
	})
}

func placeholderList(name string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("#{%s.%d}", name, i)
	}
	return strings.Join(parts, ", ")
}

// toObject converts a Go value into the Risor object scripts see. Values
// with no natural Risor form are exposed as their string representation.
func toObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case object.Object:
		return val
	case string:
		return object.NewString(val)
	case []byte:
		return object.NewString(string(val))
	case bool:
		return object.NewBool(val)
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case time.Time:
		return object.NewString(val.Format(time.RFC3339Nano))
	case map[string]any:
		m := make(map[string]object.Object, len(val))
		for k, e := range val {
			m[k] = toObject(e)
		}
		return object.NewMap(m)
	case []any:
		items := make([]object.Object, len(val))
		for i, e := range val {
			items[i] = toObject(e)
		}
		return object.NewList(items)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return object.Nil
		}
		return toObject(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return object.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return object.NewInt(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return object.NewFloat(rv.Float())
	case reflect.String:
		return object.NewString(rv.String())
	case reflect.Bool:
		return object.NewBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		items := make([]object.Object, rv.Len())
		for i := range items {
			items[i] = toObject(rv.Index(i).Interface())
		}
		return object.NewList(items)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]object.Object, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = toObject(iter.Value().Interface())
			}
			return object.NewMap(m)
		}
	}
	return object.NewString(fmt.Sprintf("%v", v))
}

// logObject provides log.Debug/Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Debug(msg string) {
	l.logger.Debug(msg)
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}
