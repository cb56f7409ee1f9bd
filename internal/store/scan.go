package store

import (
	"database/sql"
	"fmt"
	"reflect"
)

// ScanOne scans at most one row into dest, which must be a non-nil
// pointer. No rows leaves dest untouched; more than one row is
// ErrTooManyResults.
func ScanOne(rows *sql.Rows, dest any) error {
	dv, err := destValue(dest)
	if err != nil {
		return err
	}
	sc, err := newRowScanner(rows, dv.Type())
	if err != nil {
		return err
	}
	if !rows.Next() {
		return rows.Err()
	}
	v, err := sc.scan(rows)
	if err != nil {
		return err
	}
	if rows.Next() {
		return ErrTooManyResults
	}
	if err := rows.Err(); err != nil {
		return err
	}
	dv.Set(v)
	return nil
}

// ScanList appends rows to the slice dest points to, skipping offset rows
// and stopping after limit rows when limit is positive. dest always ends up
// non-nil.
func ScanList(rows *sql.Rows, offset, limit int, dest any) error {
	dv, err := destValue(dest)
	if err != nil {
		return err
	}
	if dv.Kind() != reflect.Slice {
		return fmt.Errorf("scan: list destination must point to a slice, got %s", dv.Type())
	}
	sc, err := newRowScanner(rows, dv.Type().Elem())
	if err != nil {
		return err
	}
	list := reflect.MakeSlice(dv.Type(), 0, 0)
	err = window(rows, offset, limit, func() (bool, error) {
		v, err := sc.scan(rows)
		if err != nil {
			return false, err
		}
		list = reflect.Append(list, v)
		return true, nil
	})
	if err != nil {
		return err
	}
	dv.Set(list)
	return nil
}

// ScanMap scans rows into the map dest points to. Each row is keyed by its
// key property, resolved with Lookup against the scanned value. Later rows
// replace earlier ones with the same key.
func ScanMap(rows *sql.Rows, key string, offset, limit int, dest any) error {
	dv, err := destValue(dest)
	if err != nil {
		return err
	}
	if dv.Kind() != reflect.Map {
		return fmt.Errorf("scan: map destination must point to a map, got %s", dv.Type())
	}
	if key == "" {
		return fmt.Errorf("scan: map destination needs a key property")
	}
	keyType := dv.Type().Key()
	sc, err := newRowScanner(rows, dv.Type().Elem())
	if err != nil {
		return err
	}
	m := reflect.MakeMap(dv.Type())
	err = window(rows, offset, limit, func() (bool, error) {
		v, err := sc.scan(rows)
		if err != nil {
			return false, err
		}
		raw, ok := Lookup(v.Interface(), key)
		if !ok {
			return false, fmt.Errorf("scan: row has no property %q", key)
		}
		k, err := mapKey(raw, keyType)
		if err != nil {
			return false, err
		}
		m.SetMapIndex(k, v)
		return true, nil
	})
	if err != nil {
		return err
	}
	dv.Set(m)
	return nil
}

// Each calls fn with every row in the window as a column-name keyed map.
// Iteration ends early when fn returns false.
func Each(rows *sql.Rows, offset, limit int, fn func(row map[string]any) (bool, error)) error {
	sc, err := newRowScanner(rows, reflect.TypeFor[map[string]any]())
	if err != nil {
		return err
	}
	return window(rows, offset, limit, func() (bool, error) {
		v, err := sc.scan(rows)
		if err != nil {
			return false, err
		}
		return fn(v.Interface().(map[string]any))
	})
}

// window drives rows through fn, skipping offset rows first and stopping
// after limit rows when limit is positive.
func window(rows *sql.Rows, offset, limit int, fn func() (bool, error)) error {
	taken := 0
	for rows.Next() {
		if offset > 0 {
			offset--
			continue
		}
		if limit > 0 && taken >= limit {
			break
		}
		taken++
		more, err := fn()
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	return rows.Err()
}

func destValue(dest any) (reflect.Value, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("scan: destination must be a non-nil pointer, got %T", dest)
	}
	return rv.Elem(), nil
}

func mapKey(raw any, keyType reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(keyType), nil
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.Type().AssignableTo(keyType):
		return rv, nil
	case keyType.Kind() == reflect.String:
		return reflect.ValueOf(fmt.Sprint(raw)).Convert(keyType), nil
	case rv.Type().ConvertibleTo(keyType) && rv.Kind() != reflect.String:
		return rv.Convert(keyType), nil
	}
	return reflect.Value{}, fmt.Errorf("scan: key %v (%T) cannot be used as %s", raw, raw, keyType)
}

// rowScanner materialises rows of one result set as values of type t.
type rowScanner struct {
	cols []string
	t    reflect.Type
	// fields holds, per column, the struct field index path, or nil when
	// the column has no matching field.
	fields [][]int
}

func newRowScanner(rows *sql.Rows, t reflect.Type) (*rowScanner, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("scan: columns: %w", err)
	}
	sc := &rowScanner{cols: cols, t: t}
	if st := structType(t); st != nil {
		index := fieldIndex(st)
		sc.fields = make([][]int, len(cols))
		for i, col := range cols {
			sc.fields[i] = index[normalize(col)]
		}
	}
	return sc, nil
}

// structType returns the struct type rows are scanned field by field into,
// or nil when t is scanned as a single value.
func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType || reflect.PointerTo(t).Implements(scannerType) {
		return nil
	}
	return t
}

var scannerType = reflect.TypeFor[sql.Scanner]()

func (sc *rowScanner) scan(rows *sql.Rows) (reflect.Value, error) {
	t := sc.t
	switch {
	case sc.fields != nil:
		return sc.scanStruct(rows)
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.Interface:
		row, err := sc.scanMap(rows)
		if err != nil {
			return reflect.Value{}, err
		}
		m := reflect.MakeMapWithSize(t, len(row))
		for k, v := range row {
			if v == nil {
				m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), reflect.Zero(t.Elem()))
				continue
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), reflect.ValueOf(v))
		}
		return m, nil
	case t.Kind() == reflect.Interface && len(sc.cols) > 1:
		row, err := sc.scanMap(rows)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&row).Elem().Convert(t), nil
	case t.Kind() == reflect.Interface:
		var v any
		if err := rows.Scan(sc.targets(0, &v)...); err != nil {
			return reflect.Value{}, fmt.Errorf("scan: %w", err)
		}
		out := reflect.New(t).Elem()
		if v = normalizeValue(v); v != nil {
			out.Set(reflect.ValueOf(v))
		}
		return out, nil
	default:
		// Scanning through a double pointer lets NULL land as the zero value.
		pp := reflect.New(reflect.PointerTo(t))
		if err := rows.Scan(sc.targets(0, pp.Interface())...); err != nil {
			return reflect.Value{}, fmt.Errorf("scan: %w", err)
		}
		if p := pp.Elem(); !p.IsNil() {
			return p.Elem(), nil
		}
		return reflect.Zero(t), nil
	}
}

// targets returns scan destinations with dest in column i and discards
// everywhere else.
func (sc *rowScanner) targets(i int, dest any) []any {
	out := make([]any, len(sc.cols))
	for j := range out {
		out[j] = new(any)
	}
	if len(out) > 0 {
		out[i] = dest
	}
	return out
}

func (sc *rowScanner) scanStruct(rows *sql.Rows) (reflect.Value, error) {
	st := structType(sc.t)
	sv := reflect.New(st)
	dests := make([]any, len(sc.cols))
	ptrs := make([]reflect.Value, len(sc.cols))
	for i, idx := range sc.fields {
		if idx == nil {
			dests[i] = new(any)
			continue
		}
		f, err := sv.Elem().FieldByIndexErr(idx)
		if err != nil {
			dests[i] = new(any)
			continue
		}
		ptrs[i] = reflect.New(reflect.PointerTo(f.Type()))
		dests[i] = ptrs[i].Interface()
	}
	if err := rows.Scan(dests...); err != nil {
		return reflect.Value{}, fmt.Errorf("scan: %w", err)
	}
	for i, pp := range ptrs {
		if !pp.IsValid() || pp.Elem().IsNil() {
			continue
		}
		sv.Elem().FieldByIndex(sc.fields[i]).Set(pp.Elem().Elem())
	}
	if sc.t.Kind() == reflect.Pointer {
		return sv, nil
	}
	return sv.Elem(), nil
}

func (sc *rowScanner) scanMap(rows *sql.Rows) (map[string]any, error) {
	vals := make([]any, len(sc.cols))
	dests := make([]any, len(sc.cols))
	for i := range vals {
		dests[i] = &vals[i]
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	row := make(map[string]any, len(sc.cols))
	for i, col := range sc.cols {
		row[col] = normalizeValue(vals[i])
	}
	return row, nil
}

// normalizeValue turns driver text ([]byte) into strings so map and any
// results print and compare naturally.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
