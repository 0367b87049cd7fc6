package core

import (
	"database/sql/driver"
	"reflect"
	"strings"
)

// columnRef is either a single column (one name) or a tuple of columns.
type columnRef []string

// newColumnRef copies names; a tuple of one name collapses to a single column.
func newColumnRef(names ...string) columnRef {
	ref := make(columnRef, len(names))
	copy(ref, names)
	return ref
}

func (c columnRef) isTuple() bool { return len(c) > 1 }

// valueShape tags a boundValue.
type valueShape uint8

const (
	shapeScalar valueShape = iota
	shapeRow
	shapeRowSet
)

// boundValue is the normalized right-hand side of a column comparison:
// a scalar, a row of scalars, or a set of rows.
type boundValue struct {
	shape  valueShape
	scalar any
	row    []any
	rows   [][]any
}

// params flattens the value in row-major order.
func (v boundValue) params() []any {
	switch v.shape {
	case shapeRow:
		return append([]any(nil), v.row...)
	case shapeRowSet:
		out := make([]any, 0, len(v.rows)*len(v.rows[0]))
		for _, r := range v.rows {
			out = append(out, r...)
		}
		return out
	}
	return []any{v.scalar}
}

// placeholders renders the bind keys matching params.
func (v boundValue) placeholders() string {
	switch v.shape {
	case shapeRow:
		return bindKeys(len(v.row))
	case shapeRowSet:
		rows := make([]string, len(v.rows))
		for i, r := range v.rows {
			rows[i] = bindKeys(len(r))
		}
		return "(" + strings.Join(rows, ", ") + ")"
	}
	return "?"
}

func bindKeys(n int) string {
	if n == 0 {
		return "()"
	}
	return "(" + strings.Repeat("?, ", n-1) + "?)"
}

// listOf reports whether v is a list value (any slice or array except []byte
// and driver.Valuer implementations) and returns its elements.
func listOf(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, []byte, driver.Valuer:
		return nil, false
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// unwrapSingle replaces a one-element list by its element.
func unwrapSingle(v any) (any, []any, bool) {
	items, ok := listOf(v)
	if ok && len(items) == 1 {
		return unwrapSingle(items[0])
	}
	return v, items, ok
}

// normalizeOperator upper-cases and trims op.
func normalizeOperator(op string) string {
	return strings.ToUpper(strings.Join(strings.Fields(op), " "))
}

// isSetOperator reports whether op takes a parenthesized list operand.
func isSetOperator(op string) bool {
	return op == "IN" || op == "NOT IN"
}

// scalarOperator is the operator a set operator falls back to for a scalar operand.
func scalarOperator(op string) string {
	if op == "NOT IN" {
		return "<>"
	}
	return "="
}
