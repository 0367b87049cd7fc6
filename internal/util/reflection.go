// Package util holds reflection helpers for moving struct values in and
// out of column maps.
package util

import (
	"errors"
	"reflect"
	"strings"
)

// Field is one struct field mapped to a column.
type Field struct {
	Column    string
	Index     []int
	Primary   bool
	OmitEmpty bool
}

// parseDBTag splits a db tag of the form "column[,pk][,omitempty]".
func parseDBTag(tag string) (column string, primary, omitEmpty bool) {
	parts := strings.Split(tag, ",")
	column = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		switch strings.TrimSpace(part) {
		case "pk":
			primary = true
		case "omitempty":
			omitEmpty = true
		}
	}
	return column, primary, omitEmpty
}

func structValue(data any) (reflect.Value, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, errors.New("util: nil pointer")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("util: expected struct, got " + v.Kind().String())
	}
	return v, nil
}

// Fields lists the column fields of a struct type in declaration order.
// Untagged fields use the field name; db:"-" fields are skipped.
// Embedded structs without a tag contribute their own fields.
func Fields(t reflect.Type) []Field {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var out []Field
	collect(t, nil, &out)
	return out
}

func collect(t reflect.Type, index []int, out *[]Field) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		path := append(append([]int{}, index...), i)

		tag, tagged := sf.Tag.Lookup("db")
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !tagged {
			collect(sf.Type, path, out)
			continue
		}

		f := Field{Column: sf.Name, Index: path}
		if tagged {
			column, primary, omitEmpty := parseDBTag(tag)
			if column == "-" {
				continue
			}
			if column != "" {
				f.Column = column
			}
			f.Primary, f.OmitEmpty = primary, omitEmpty
		}
		*out = append(*out, f)
	}
}

// StructToMap returns the column values of a struct or struct pointer.
// Zero values of omitempty fields are left out.
func StructToMap(data any) (map[string]any, error) {
	v, err := structValue(data)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any)
	for _, f := range Fields(v.Type()) {
		fv := v.FieldByIndex(f.Index)
		if f.OmitEmpty && fv.IsZero() {
			continue
		}
		result[f.Column] = fv.Interface()
	}
	return result, nil
}

// PrimaryColumns returns the columns tagged pk, or "id"/"ID" when no field
// is tagged and such a field exists.
func PrimaryColumns(t reflect.Type) []string {
	fields := Fields(t)
	var cols []string
	for _, f := range fields {
		if f.Primary {
			cols = append(cols, f.Column)
		}
	}
	if len(cols) > 0 {
		return cols
	}
	for _, f := range fields {
		if strings.EqualFold(f.Column, "id") {
			return []string{f.Column}
		}
	}
	return nil
}

// FieldByColumn returns the settable field of a struct pointer mapped to
// column.
func FieldByColumn(data any, column string) (reflect.Value, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	v = v.Elem()
	for _, f := range Fields(v.Type()) {
		if f.Column == column {
			return v.FieldByIndex(f.Index), true
		}
	}
	return reflect.Value{}, false
}
