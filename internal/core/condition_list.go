package core

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// Logic is the keyword joining a condition to the conditions before it.
type Logic string

// Supported logic keywords.
const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is one rendered predicate of a condition list.
// SQL uses "?" placeholders aligned with Params.
type Condition struct {
	Logic  Logic
	SQL    string
	Params []any
}

// ConditionSource is implemented by everything that can be nested as a
// parenthesized group: Conditions, WhereClause and HavingClause.
type ConditionSource interface {
	ConditionSQL() (string, []any)
}

// valueTransform wraps the quoted column and converts each bound value.
type valueTransform struct {
	column func(string) string
	value  func(any) (any, error)
}

// conditionList is the accumulator shared by Conditions, WhereClause,
// HavingClause and join ON conditions.
type conditionList struct {
	dialect dialects.Dialect
	items   []Condition
}

func newConditionList(d dialects.Dialect) conditionList {
	if d == nil {
		d = defaultDialect()
	}
	return conditionList{dialect: d}
}

func (l *conditionList) add(logic Logic, sql string, params []any) {
	if params == nil {
		params = []any{}
	}
	l.items = append(l.items, Condition{Logic: logic, SQL: sql, Params: params})
}

func (l *conditionList) has() bool { return len(l.items) > 0 }

func (l *conditionList) get() []Condition {
	out := make([]Condition, len(l.items))
	for i, c := range l.items {
		out[i] = Condition{Logic: c.Logic, SQL: c.SQL, Params: append([]any{}, c.Params...)}
	}
	return out
}

func (l *conditionList) clear() { l.items = nil }

func (l conditionList) clone() conditionList {
	return conditionList{dialect: l.dialect, items: l.get()}
}

// toSQL renders the entries in insertion order; the first logic keyword is dropped.
func (l *conditionList) toSQL() (string, []any) {
	var b strings.Builder
	params := make([]any, 0)
	for i, c := range l.items {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(string(c.Logic))
			b.WriteByte(' ')
		}
		b.WriteString(c.SQL)
		params = append(params, c.Params...)
	}
	return b.String(), params
}

func (l *conditionList) quoteColumn(column string, t valueTransform) string {
	q := l.dialect.QuoteName(column)
	if t.column != nil {
		q = t.column(q)
	}
	return q
}

func (l *conditionList) quoteColumns(columns []string, t valueTransform) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = l.quoteColumn(c, t)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// convert applies the value transform to every bound value.
func convert(params []any, t valueTransform) []any {
	if t.value == nil {
		return params
	}
	for i, p := range params {
		v, err := t.value(p)
		if err != nil {
			panic(newSQLError("wrong value in condition: %v", err))
		}
		params[i] = v
	}
	return params
}

// addColumn appends a comparison of column against value. A tuple of
// columns is delegated to addRow.
func (l *conditionList) addColumn(logic Logic, column columnRef, op string, value any, t valueTransform) {
	if len(column) == 0 {
		panic(newSQLError("undefined column in condition"))
	}
	if column.isTuple() {
		l.addRow(logic, column, op, value, t)
		return
	}

	col := l.quoteColumn(column[0], t)
	op = normalizeOperator(op)

	v, items, isList := unwrapSingle(value)
	if !isList {
		if op == "" {
			op = "="
		}
		if isSetOperator(op) {
			op = scalarOperator(op)
		}
		if v == nil && (op == "=" || op == "<>" || op == "!=") {
			if op == "=" {
				l.add(logic, col+" IS NULL", nil)
			} else {
				l.add(logic, col+" IS NOT NULL", nil)
			}
			return
		}
		l.add(logic, col+" "+op+" ?", convert([]any{v}, t))
		return
	}

	if op == "" {
		op = "IN"
	}
	if !isSetOperator(op) {
		panic(newSQLError("value could not be an array in condition for operator `%s`", op))
	}
	if len(items) == 0 {
		if op == "IN" {
			l.add(logic, "1 = 0", nil)
		} else {
			l.add(logic, "1 = 1", nil)
		}
		return
	}

	row := make([]any, len(items))
	for i, item := range items {
		inner, _, innerList := unwrapSingle(item)
		if innerList {
			panic(newSQLError("value could not be a row in condition on key #%d for a single column", i))
		}
		row[i] = inner
	}

	bv := boundValue{shape: shapeRow, row: row}
	l.add(logic, col+" "+op+" "+bv.placeholders(), convert(bv.params(), t))
}

// addRow appends a row-value comparison. Elements are validated in index
// order (shape against the operator, then arity for IN) before the overall
// value count is checked for non-IN operators.
func (l *conditionList) addRow(logic Logic, columns columnRef, op string, value any, t valueTransform) {
	op = normalizeOperator(op)

	values, isList := listOf(value)
	if !isList {
		values = []any{value}
	}

	rows := make([][]any, 0, len(values))
	scalars := make([]any, 0, len(values))
	for key, item := range values {
		v, items, itemList := unwrapSingle(item)

		if op == "" {
			if itemList {
				op = "IN"
			} else {
				op = "="
			}
		}

		if isSetOperator(op) && !itemList {
			if key != 0 {
				panic(newSQLError("row value should be an array in condition on key #%d", key))
			}
			op = scalarOperator(op)
		}

		if !isSetOperator(op) && itemList {
			panic(newSQLError("row value could not be an array in condition on key #%d for operator `%s`", key, op))
		}

		if isSetOperator(op) {
			if len(items) != len(columns) {
				panic(newSQLError("wrong row value count in condition on key #%d: expected %d, got %d",
					key, len(columns), len(items)))
			}
			rows = append(rows, items)
			continue
		}
		scalars = append(scalars, v)
	}

	if op == "" {
		op = "="
	}

	var bv boundValue
	if isSetOperator(op) {
		if len(rows) == 0 {
			l.add(logic, map[string]string{"IN": "1 = 0", "NOT IN": "1 = 1"}[op], nil)
			return
		}
		bv = boundValue{shape: shapeRowSet, rows: rows}
	} else {
		if len(scalars) != len(columns) {
			panic(newSQLError("wrong row values count in condition: expected %d, got %d", len(columns), len(scalars)))
		}
		bv = boundValue{shape: shapeRow, row: scalars}
	}

	sql := l.quoteColumns(columns, t) + " " + op + " " + bv.placeholders()
	l.add(logic, sql, convert(bv.params(), t))
}

// columnsOf converts a relation operand to its list form.
func columnsOf(v any) ([]any, bool) {
	if s, ok := v.(string); ok {
		return []any{s}, false
	}
	items, ok := listOf(v)
	if !ok {
		panic(newSQLError("wrong column in relation: %v (%T)", v, v))
	}
	return items, true
}

func columnName(v any) string {
	s, ok := v.(string)
	if !ok {
		panic(newSQLError("wrong column in relation: %v (%T)", v, v))
	}
	return s
}

func columnNames(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = columnName(item)
	}
	return out
}

// addRelation appends a column-to-column comparison without params.
// column2 is a string or a list of strings.
func (l *conditionList) addRelation(logic Logic, column1 columnRef, op string, column2 any) {
	if len(column1) == 0 {
		panic(newSQLError("undefined column in relation"))
	}
	if column1.isTuple() {
		l.addRowRelation(logic, column1, op, column2)
		return
	}

	op = normalizeOperator(op)
	items, isList := columnsOf(column2)
	if len(items) == 0 {
		panic(newSQLError("second column could not be an empty array in relation"))
	}
	if isList && len(items) == 1 {
		items, isList = []any{items[0]}, false
	}

	if op == "" {
		if isList {
			op = "IN"
		} else {
			op = "="
		}
	}
	if isSetOperator(op) && !isList {
		op = scalarOperator(op)
	}
	if !isSetOperator(op) && isList {
		panic(newSQLError("second column could not be an array in relation for operator `%s`", op))
	}

	right := l.dialect.QuoteName(columnName(items[0]))
	if isList {
		right = l.quoteColumns(columnNames(items), valueTransform{})
	}
	l.add(logic, l.dialect.QuoteName(column1[0])+" "+op+" "+right, nil)
}

// addRowRelation compares a tuple of columns against a tuple of columns
// or, for IN, against a list of column tuples.
func (l *conditionList) addRowRelation(logic Logic, columns1 columnRef, op string, columns2 any) {
	op = normalizeOperator(op)
	items, _ := columnsOf(columns2)

	rendered := make([]string, len(items))
	for key, item := range items {
		v, inner, itemList := unwrapSingle(item)

		if op == "" {
			if itemList {
				op = "IN"
			} else {
				op = "="
			}
		}

		if isSetOperator(op) && !itemList {
			if key != 0 {
				panic(newSQLError("second row column should be an array in relation on key #%d", key))
			}
			op = scalarOperator(op)
		}

		if !isSetOperator(op) && itemList {
			panic(newSQLError("second row column could not be an array in relation on key #%d for operator `%s`", key, op))
		}

		if isSetOperator(op) {
			if len(inner) != len(columns1) {
				panic(newSQLError("wrong second row column count in relation on key #%d: expected %d, got %d",
					key, len(columns1), len(inner)))
			}
			rendered[key] = l.quoteColumns(columnNames(inner), valueTransform{})
			continue
		}
		rendered[key] = l.dialect.QuoteName(columnName(v))
	}

	if isSetOperator(op) && len(items) == 0 {
		l.add(logic, map[string]string{"IN": "1 = 0", "NOT IN": "1 = 1"}[op], nil)
		return
	}
	if !isSetOperator(op) && len(items) != len(columns1) {
		panic(newSQLError("wrong second row columns count in relation: expected %d, got %d", len(columns1), len(items)))
	}

	sql := l.quoteColumns(columns1, valueTransform{}) + " " + op + " (" + strings.Join(rendered, ", ") + ")"
	l.add(logic, sql, nil)
}

func (l *conditionList) addFixed(logic Logic, column, suffix string) {
	l.add(logic, l.dialect.QuoteName(column)+suffix, nil)
}

func (l *conditionList) addBetween(logic Logic, column string, not bool, lo, hi any) {
	op := " BETWEEN ? AND ?"
	if not {
		op = " NOT BETWEEN ? AND ?"
	}
	l.add(logic, l.dialect.QuoteName(column)+op, []any{lo, hi})
}

// addRaw wraps sql in parentheses after expanding shorthand references.
func (l *conditionList) addRaw(logic Logic, sql string, params []any) {
	if n := dialects.CountPlaceholders(sql); n != len(params) {
		panic(newSQLError("wrong params count in raw condition: expected %d, got %d", n, len(params)))
	}
	l.add(logic, "("+l.dialect.QuoteSQL(sql)+")", append([]any{}, params...))
}

// addGroup renders src immediately and stores it as a parenthesized entry.
// An empty group appends nothing.
func (l *conditionList) addGroup(logic Logic, src any) {
	sql, params := l.renderGroup(src)
	if sql == "" {
		return
	}
	l.add(logic, "("+sql+")", params)
}

func (l *conditionList) renderGroup(src any) (string, []any) {
	switch s := src.(type) {
	case func(*Conditions):
		c := NewConditions(l.dialect)
		s(c)
		return c.ToSQL()
	case func(*WhereClause):
		w := NewWhereClause(l.dialect)
		s(w)
		return w.ToSQL(false)
	case func(*HavingClause):
		h := NewHavingClause(l.dialect)
		s(h)
		return h.ToSQL(false)
	case ConditionSource:
		return s.ConditionSQL()
	case Expression:
		return s.Build(l.dialect)
	}
	panic(fmt.Errorf("%w: %T", ErrUnknownConditionsFormat, src))
}
