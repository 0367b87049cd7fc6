package core

import (
	"regexp"
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

var aliasPattern = regexp.MustCompile(`(?is)^(.+?)\s+AS\s+([\w$]+)$`)

// fragment is a rendered piece of SQL with its params.
type fragment struct {
	sql    string
	params []any
}

func (f fragment) clone() fragment {
	return fragment{sql: f.sql, params: append([]any{}, f.params...)}
}

func cloneFragments(in []fragment) []fragment {
	if in == nil {
		return nil
	}
	out := make([]fragment, len(in))
	for i, f := range in {
		out[i] = f.clone()
	}
	return out
}

// rawFragment expands shorthand references in sql. A "?" count that differs
// from len(params) panics with *SQLError.
func rawFragment(d dialects.Dialect, sql string, params []any) fragment {
	if n := dialects.CountPlaceholders(sql); n != len(params) {
		panic(newSQLError("wrong params count in raw SQL: expected %d, got %d", n, len(params)))
	}
	return fragment{sql: d.QuoteSQL(sql), params: append([]any{}, params...)}
}

// joinFragments renders fragments separated by sep.
func joinFragments(items []fragment, sep string) (string, []any) {
	parts := make([]string, len(items))
	params := make([]any, 0)
	for i, f := range items {
		parts[i] = f.sql
		params = append(params, f.params...)
	}
	return strings.Join(parts, sep), params
}

// FromClause holds the FROM sources: tables, aliased tables, derived
// tables and raw SQL.
type FromClause struct {
	dialect dialects.Dialect
	items   []fromItem
}

type fromItem struct {
	fragment
	source  string // table name or alias used to attach joins
	derived bool
}

// NewFromClause creates an empty FROM clause.
func NewFromClause(d dialects.Dialect) *FromClause {
	if d == nil {
		d = defaultDialect()
	}
	return &FromClause{dialect: d}
}

// From adds tables. A table may carry an alias: "Users AS u".
func (f *FromClause) From(tables ...string) *FromClause {
	for _, t := range tables {
		f.items = append(f.items, fromItem{
			fragment: fragment{sql: f.dialect.QuoteName(t), params: []any{}},
			source:   sourceName(t),
		})
	}
	return f
}

// FromAs adds a table with an alias.
func (f *FromClause) FromAs(table, alias string) *FromClause {
	return f.From(table + " AS " + alias)
}

// FromSelect adds a derived table "(SELECT ...) AS alias". The subquery is
// rendered now; a render error panics.
func (f *FromClause) FromSelect(q *SelectQuery, alias string) *FromClause {
	sql, params, err := q.ToSQL()
	if err != nil {
		panic(err)
	}
	f.items = append(f.items, fromItem{
		fragment: fragment{sql: "(" + sql + ") AS " + f.dialect.QuoteIdentifier(alias), params: params},
		source:   alias,
		derived:  true,
	})
	return f
}

// FromRaw adds raw SQL with shorthand references expanded.
func (f *FromClause) FromRaw(sql string, params ...any) *FromClause {
	f.items = append(f.items, fromItem{fragment: rawFragment(f.dialect, sql, params)})
	return f
}

// HasFrom reports whether any source was added.
func (f *FromClause) HasFrom() bool { return len(f.items) > 0 }

// HasDerived reports whether a derived table was added.
func (f *FromClause) HasDerived() bool {
	for _, it := range f.items {
		if it.derived {
			return true
		}
	}
	return false
}

// ClearFrom removes all sources.
func (f *FromClause) ClearFrom() *FromClause {
	f.items = nil
	return f
}

// Clone returns an independent copy.
func (f *FromClause) Clone() *FromClause {
	items := make([]fromItem, len(f.items))
	for i, it := range f.items {
		items[i] = fromItem{fragment: it.fragment.clone(), source: it.source, derived: it.derived}
	}
	return &FromClause{dialect: f.dialect, items: items}
}

// ToSQL renders the sources separated by commas. Joins attached to a source
// with JoinTo are rendered right after it when joins is not nil.
func (f *FromClause) ToSQL(joins *JoinClause, useClause bool) (string, []any) {
	parts := make([]string, 0, len(f.items))
	params := make([]any, 0)
	for _, it := range f.items {
		sql := it.sql
		params = append(params, it.params...)
		if joins != nil && it.source != "" {
			if jsql, jparams := joins.ToSQL(it.source); jsql != "" {
				sql += " " + jsql
				params = append(params, jparams...)
			}
		}
		parts = append(parts, sql)
	}
	sql := strings.Join(parts, ", ")
	if useClause && sql != "" {
		sql = "FROM " + sql
	}
	return sql, params
}

// sourceName returns the alias of "table AS alias" or the bare table name.
func sourceName(table string) string {
	table = strings.TrimSpace(table)
	if m := aliasPattern.FindStringSubmatch(table); m != nil {
		return m[2]
	}
	return table
}

// JoinClause holds JOIN items, optionally attached to a FROM source.
type JoinClause struct {
	dialect dialects.Dialect
	items   []joinItem
}

type joinItem struct {
	fragment
	to string
}

// NewJoinClause creates an empty join clause.
func NewJoinClause(d dialects.Dialect) *JoinClause {
	if d == nil {
		d = defaultDialect()
	}
	return &JoinClause{dialect: d}
}

// Join adds "kind JOIN table [ON on]". on is nil, a raw SQL string (using
// params), a func(*Conditions), a ConditionSource or an Expression.
func (j *JoinClause) Join(kind, table string, on any, params ...any) *JoinClause {
	return j.JoinTo("", kind, table, on, params...)
}

// JoinTo is Join attached to the FROM source named source.
func (j *JoinClause) JoinTo(source, kind, table string, on any, params ...any) *JoinClause {
	sql := strings.ToUpper(strings.TrimSpace(kind)) + " JOIN " + j.dialect.QuoteName(table)
	values := []any{}

	switch o := on.(type) {
	case nil:
	case string:
		if o != "" {
			raw := rawFragment(j.dialect, o, params)
			sql += " ON " + raw.sql
			values = append(values, raw.params...)
		}
	default:
		l := newConditionList(j.dialect)
		onSQL, onParams := l.renderGroup(o)
		if onSQL != "" {
			sql += " ON " + onSQL
			values = append(values, onParams...)
		}
	}

	j.items = append(j.items, joinItem{fragment: fragment{sql: sql, params: values}, to: source})
	return j
}

// InnerJoin adds an INNER JOIN.
func (j *JoinClause) InnerJoin(table string, on any, params ...any) *JoinClause {
	return j.Join("INNER", table, on, params...)
}

// LeftJoin adds a LEFT JOIN.
func (j *JoinClause) LeftJoin(table string, on any, params ...any) *JoinClause {
	return j.Join("LEFT", table, on, params...)
}

// RightJoin adds a RIGHT JOIN.
func (j *JoinClause) RightJoin(table string, on any, params ...any) *JoinClause {
	return j.Join("RIGHT", table, on, params...)
}

// CrossJoin adds a CROSS JOIN.
func (j *JoinClause) CrossJoin(table string) *JoinClause {
	return j.Join("CROSS", table, nil)
}

// HasJoin reports whether any join was added.
func (j *JoinClause) HasJoin() bool { return len(j.items) > 0 }

// ClearJoin removes all joins.
func (j *JoinClause) ClearJoin() *JoinClause {
	j.items = nil
	return j
}

// Clone returns an independent copy.
func (j *JoinClause) Clone() *JoinClause {
	items := make([]joinItem, len(j.items))
	for i, it := range j.items {
		items[i] = joinItem{fragment: it.fragment.clone(), to: it.to}
	}
	return &JoinClause{dialect: j.dialect, items: items}
}

// ToSQL renders the joins attached to source; "" selects the joins that are
// not attached to any source.
func (j *JoinClause) ToSQL(source string) (string, []any) {
	var items []fragment
	for _, it := range j.items {
		if it.to == source {
			items = append(items, it.fragment)
		}
	}
	return joinFragments(items, " ")
}

// String renders the unattached joins.
func (j *JoinClause) String() string {
	sql, _ := j.ToSQL("")
	return sql
}

// GroupByClause holds GROUP BY expressions.
type GroupByClause struct {
	dialect dialects.Dialect
	items   []fragment
}

// NewGroupByClause creates an empty GROUP BY clause.
func NewGroupByClause(d dialects.Dialect) *GroupByClause {
	if d == nil {
		d = defaultDialect()
	}
	return &GroupByClause{dialect: d}
}

// GroupBy adds columns.
func (g *GroupByClause) GroupBy(columns ...string) *GroupByClause {
	for _, c := range columns {
		g.items = append(g.items, fragment{sql: g.dialect.QuoteName(c), params: []any{}})
	}
	return g
}

// GroupByRaw adds a raw expression.
func (g *GroupByClause) GroupByRaw(sql string, params ...any) *GroupByClause {
	g.items = append(g.items, rawFragment(g.dialect, sql, params))
	return g
}

// HasGroupBy reports whether any expression was added.
func (g *GroupByClause) HasGroupBy() bool { return len(g.items) > 0 }

// ClearGroupBy removes all expressions.
func (g *GroupByClause) ClearGroupBy() *GroupByClause {
	g.items = nil
	return g
}

// Clone returns an independent copy.
func (g *GroupByClause) Clone() *GroupByClause {
	return &GroupByClause{dialect: g.dialect, items: cloneFragments(g.items)}
}

// ToSQL renders "GROUP BY a, b"; empty when nothing was added.
func (g *GroupByClause) ToSQL(useClause bool) (string, []any) {
	sql, params := joinFragments(g.items, ", ")
	if useClause && sql != "" {
		sql = "GROUP BY " + sql
	}
	return sql, params
}

// OrderByClause holds ORDER BY expressions. An invalid direction is kept
// as a *QueryError reported by Err and by the statements rendering it.
type OrderByClause struct {
	dialect dialects.Dialect
	items   []fragment
	err     error
}

// NewOrderByClause creates an empty ORDER BY clause.
func NewOrderByClause(d dialects.Dialect) *OrderByClause {
	if d == nil {
		d = defaultDialect()
	}
	return &OrderByClause{dialect: d}
}

// OrderBy adds a column with an optional direction ("", ASC or DESC).
func (o *OrderByClause) OrderBy(column, direction string) *OrderByClause {
	direction = strings.ToUpper(strings.TrimSpace(direction))
	sql := o.dialect.QuoteName(column)
	switch direction {
	case "":
	case "ASC", "DESC":
		sql += " " + direction
	default:
		if o.err == nil {
			o.err = newQueryError("wrong ORDER type for statement: %q", direction)
		}
		return o
	}
	o.items = append(o.items, fragment{sql: sql, params: []any{}})
	return o
}

// OrderAsc adds "column ASC".
func (o *OrderByClause) OrderAsc(column string) *OrderByClause { return o.OrderBy(column, "ASC") }

// OrderDesc adds "column DESC".
func (o *OrderByClause) OrderDesc(column string) *OrderByClause { return o.OrderBy(column, "DESC") }

// OrderByRaw adds a raw expression.
func (o *OrderByClause) OrderByRaw(sql string, params ...any) *OrderByClause {
	o.items = append(o.items, rawFragment(o.dialect, sql, params))
	return o
}

// HasOrderBy reports whether any expression was added.
func (o *OrderByClause) HasOrderBy() bool { return len(o.items) > 0 }

// ClearOrderBy removes all expressions and any pending error.
func (o *OrderByClause) ClearOrderBy() *OrderByClause {
	o.items = nil
	o.err = nil
	return o
}

// Err returns the first invalid direction error.
func (o *OrderByClause) Err() error { return o.err }

// Clone returns an independent copy.
func (o *OrderByClause) Clone() *OrderByClause {
	return &OrderByClause{dialect: o.dialect, items: cloneFragments(o.items), err: o.err}
}

// ToSQL renders "ORDER BY a, b DESC"; empty when nothing was added.
func (o *OrderByClause) ToSQL(useClause bool) (string, []any) {
	sql, params := joinFragments(o.items, ", ")
	if useClause && sql != "" {
		sql = "ORDER BY " + sql
	}
	return sql, params
}
