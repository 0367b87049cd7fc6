package core

import (
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// UpdateQuery builds an UPDATE statement:
//
//	UPDATE t [AS a] [joins] SET ... [WHERE ...] [ORDER BY ...] [LIMIT n]
type UpdateQuery struct {
	clauses *Clauses
	set     []fragment
	err     error
}

// NewUpdateQuery creates an UPDATE for tables. A nil dialect means MySQL.
func NewUpdateQuery(d dialects.Dialect, tables ...string) *UpdateQuery {
	q := &UpdateQuery{clauses: NewClauses(d)}
	return q.Table(tables...)
}

// Dialect returns the dialect used for rendering.
func (q *UpdateQuery) Dialect() dialects.Dialect { return q.clauses.dialect }

// Clauses exposes the clause set.
func (q *UpdateQuery) Clauses() *Clauses { return q.clauses }

// Table adds tables to update. "Users AS u" is accepted; derived tables
// are rejected when the statement is rendered.
func (q *UpdateQuery) Table(tables ...string) *UpdateQuery {
	for _, t := range tables {
		if strings.HasPrefix(strings.TrimSpace(t), "(") {
			if q.err == nil {
				q.err = newQueryError("derived tables are not supported in UPDATE statement")
			}
			continue
		}
		q.clauses.From().From(t)
	}
	return q
}

// HasTables reports whether a table was added.
func (q *UpdateQuery) HasTables() bool { return q.clauses.from != nil && q.clauses.from.HasFrom() }

// Set assigns a value to column.
func (q *UpdateQuery) Set(column string, value any) *UpdateQuery {
	q.set = append(q.set, fragment{sql: q.Dialect().QuoteName(column) + " = ?", params: []any{value}})
	return q
}

// SetMultiple assigns several columns, in key order.
func (q *UpdateQuery) SetMultiple(values map[string]any) *UpdateQuery {
	for _, k := range sortedKeys(values) {
		q.Set(k, values[k])
	}
	return q
}

// SetRaw adds a raw assignment.
func (q *UpdateQuery) SetRaw(sql string, params ...any) *UpdateQuery {
	q.set = append(q.set, rawFragment(q.Dialect(), sql, params))
	return q
}

// Increment adds "column = column + ?".
func (q *UpdateQuery) Increment(column string, by int) *UpdateQuery {
	c := q.Dialect().QuoteName(column)
	q.set = append(q.set, fragment{sql: c + " = " + c + " + ?", params: []any{by}})
	return q
}

// Decrement adds "column = column - ?".
func (q *UpdateQuery) Decrement(column string, by int) *UpdateQuery {
	c := q.Dialect().QuoteName(column)
	q.set = append(q.set, fragment{sql: c + " = " + c + " - ?", params: []any{by}})
	return q
}

// HasSet reports whether an assignment was added.
func (q *UpdateQuery) HasSet() bool { return len(q.set) > 0 }

// ClearSet removes all assignments.
func (q *UpdateQuery) ClearSet() *UpdateQuery {
	q.set = nil
	return q
}

// InnerJoin adds an INNER JOIN.
func (q *UpdateQuery) InnerJoin(table string, on any, params ...any) *UpdateQuery {
	q.clauses.Join().InnerJoin(table, on, params...)
	return q
}

// LeftJoin adds a LEFT JOIN.
func (q *UpdateQuery) LeftJoin(table string, on any, params ...any) *UpdateQuery {
	q.clauses.Join().LeftJoin(table, on, params...)
	return q
}

// JoinTo adds a join rendered right after the table named source.
func (q *UpdateQuery) JoinTo(source, kind, table string, on any, params ...any) *UpdateQuery {
	q.clauses.Join().JoinTo(source, kind, table, on, params...)
	return q
}

// Where adds a WHERE column condition.
func (q *UpdateQuery) Where(column string, value any) *UpdateQuery {
	q.clauses.Where().Where(column, value)
	return q
}

// OrWhere is the OR form of Where.
func (q *UpdateQuery) OrWhere(column string, value any) *UpdateQuery {
	q.clauses.Where().OrWhere(column, value)
	return q
}

// WhereOp adds a WHERE condition with an explicit operator.
func (q *UpdateQuery) WhereOp(column, op string, value any) *UpdateQuery {
	q.clauses.Where().WhereOp(column, op, value)
	return q
}

// OrWhereOp is the OR form of WhereOp.
func (q *UpdateQuery) OrWhereOp(column, op string, value any) *UpdateQuery {
	q.clauses.Where().OrWhereOp(column, op, value)
	return q
}

// WhereRow adds a WHERE row-value condition.
func (q *UpdateQuery) WhereRow(columns []string, value any) *UpdateQuery {
	q.clauses.Where().WhereRow(columns, value)
	return q
}

// WhereIsNull adds "column IS NULL".
func (q *UpdateQuery) WhereIsNull(column string) *UpdateQuery {
	q.clauses.Where().WhereIsNull(column)
	return q
}

// WhereRaw adds a raw WHERE condition.
func (q *UpdateQuery) WhereRaw(sql string, params ...any) *UpdateQuery {
	q.clauses.Where().WhereRaw(sql, params...)
	return q
}

// OrWhereRaw is the OR form of WhereRaw.
func (q *UpdateQuery) OrWhereRaw(sql string, params ...any) *UpdateQuery {
	q.clauses.Where().OrWhereRaw(sql, params...)
	return q
}

// WhereExists sets the WHERE EXISTS slot.
func (q *UpdateQuery) WhereExists(sub *SelectQuery) *UpdateQuery {
	q.clauses.Where().WhereExists(sub)
	return q
}

// Filter runs fn against the WHERE clause.
func (q *UpdateQuery) Filter(fn func(*WhereClause)) *UpdateQuery {
	fn(q.clauses.Where())
	return q
}

// WhereClause returns the WHERE clause.
func (q *UpdateQuery) WhereClause() *WhereClause { return q.clauses.Where() }

// OrderBy adds an ORDER BY column.
func (q *UpdateQuery) OrderBy(column, direction string) *UpdateQuery {
	q.clauses.OrderBy().OrderBy(column, direction)
	return q
}

// OrderAsc adds "column ASC".
func (q *UpdateQuery) OrderAsc(column string) *UpdateQuery {
	q.clauses.OrderBy().OrderAsc(column)
	return q
}

// OrderDesc adds "column DESC".
func (q *UpdateQuery) OrderDesc(column string) *UpdateQuery {
	q.clauses.OrderBy().OrderDesc(column)
	return q
}

// Limit sets LIMIT; a negative value removes it.
func (q *UpdateQuery) Limit(n int) *UpdateQuery {
	q.clauses.SetLimit(n)
	return q
}

// Clone returns an independent copy.
func (q *UpdateQuery) Clone() *UpdateQuery {
	return &UpdateQuery{clauses: q.clauses.Clone(), set: cloneFragments(q.set), err: q.err}
}

func (q *UpdateQuery) withAppliers(a *Appliers) *UpdateQuery {
	out := q.Clone()
	out.clauses = q.clauses.apply(a)
	return out
}

// ToSQL renders the statement.
func (q *UpdateQuery) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if !q.HasTables() {
		return "", nil, newQueryError("undefined tables in UPDATE statement")
	}
	if !q.HasSet() {
		return "", nil, newQueryError("undefined SET statement in UPDATE statement")
	}
	if q.clauses.orderBy != nil && q.clauses.orderBy.Err() != nil {
		return "", nil, q.clauses.orderBy.Err()
	}

	var b sqlBuilder
	tables, params := q.clauses.from.ToSQL(q.clauses.join, false)
	b.add("UPDATE "+tables, params)
	if q.clauses.join != nil {
		b.add(q.clauses.join.ToSQL(""))
	}

	set, setParams := joinFragments(q.set, ", ")
	b.add("SET "+set, setParams)

	if q.clauses.where != nil {
		b.add(q.clauses.where.ToSQL(true))
	}
	if q.clauses.orderBy != nil {
		b.add(q.clauses.orderBy.ToSQL(true))
	}

	sql, all := b.result()
	if n, ok := q.clauses.Limit(); ok {
		sql = q.Dialect().AddLimit(sql, n)
	}
	return sql, all, nil
}

// String renders the statement, ignoring errors.
func (q *UpdateQuery) String() string {
	sql, _, _ := q.ToSQL()
	return sql
}
