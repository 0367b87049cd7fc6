package core

import (
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// DeleteQuery builds a DELETE statement:
//
//	DELETE [rows] FROM t [joins] [WHERE ...] [ORDER BY ...] [LIMIT n]
//
// rows names the tables whose rows are deleted in multi-table deletes.
type DeleteQuery struct {
	clauses *Clauses
	rows    []string
}

// NewDeleteQuery creates a DELETE from tables. A nil dialect means MySQL.
func NewDeleteQuery(d dialects.Dialect, tables ...string) *DeleteQuery {
	q := &DeleteQuery{clauses: NewClauses(d)}
	if len(tables) > 0 {
		q.clauses.From().From(tables...)
	}
	return q
}

// Dialect returns the dialect used for rendering.
func (q *DeleteQuery) Dialect() dialects.Dialect { return q.clauses.dialect }

// Clauses exposes the clause set.
func (q *DeleteQuery) Clauses() *Clauses { return q.clauses }

// From adds tables to delete from.
func (q *DeleteQuery) From(tables ...string) *DeleteQuery {
	q.clauses.From().From(tables...)
	return q
}

// RowsFrom names the tables whose rows are deleted ("DELETE t1 FROM ...").
func (q *DeleteQuery) RowsFrom(tables ...string) *DeleteQuery {
	for _, t := range tables {
		q.rows = append(q.rows, q.Dialect().QuoteName(t))
	}
	return q
}

// InnerJoin adds an INNER JOIN.
func (q *DeleteQuery) InnerJoin(table string, on any, params ...any) *DeleteQuery {
	q.clauses.Join().InnerJoin(table, on, params...)
	return q
}

// LeftJoin adds a LEFT JOIN.
func (q *DeleteQuery) LeftJoin(table string, on any, params ...any) *DeleteQuery {
	q.clauses.Join().LeftJoin(table, on, params...)
	return q
}

// Where adds a WHERE column condition.
func (q *DeleteQuery) Where(column string, value any) *DeleteQuery {
	q.clauses.Where().Where(column, value)
	return q
}

// OrWhere is the OR form of Where.
func (q *DeleteQuery) OrWhere(column string, value any) *DeleteQuery {
	q.clauses.Where().OrWhere(column, value)
	return q
}

// WhereOp adds a WHERE condition with an explicit operator.
func (q *DeleteQuery) WhereOp(column, op string, value any) *DeleteQuery {
	q.clauses.Where().WhereOp(column, op, value)
	return q
}

// OrWhereOp is the OR form of WhereOp.
func (q *DeleteQuery) OrWhereOp(column, op string, value any) *DeleteQuery {
	q.clauses.Where().OrWhereOp(column, op, value)
	return q
}

// WhereRow adds a WHERE row-value condition.
func (q *DeleteQuery) WhereRow(columns []string, value any) *DeleteQuery {
	q.clauses.Where().WhereRow(columns, value)
	return q
}

// WhereIsNull adds "column IS NULL".
func (q *DeleteQuery) WhereIsNull(column string) *DeleteQuery {
	q.clauses.Where().WhereIsNull(column)
	return q
}

// WhereRaw adds a raw WHERE condition.
func (q *DeleteQuery) WhereRaw(sql string, params ...any) *DeleteQuery {
	q.clauses.Where().WhereRaw(sql, params...)
	return q
}

// OrWhereRaw is the OR form of WhereRaw.
func (q *DeleteQuery) OrWhereRaw(sql string, params ...any) *DeleteQuery {
	q.clauses.Where().OrWhereRaw(sql, params...)
	return q
}

// WhereExists sets the WHERE EXISTS slot.
func (q *DeleteQuery) WhereExists(sub *SelectQuery) *DeleteQuery {
	q.clauses.Where().WhereExists(sub)
	return q
}

// Filter runs fn against the WHERE clause.
func (q *DeleteQuery) Filter(fn func(*WhereClause)) *DeleteQuery {
	fn(q.clauses.Where())
	return q
}

// WhereClause returns the WHERE clause.
func (q *DeleteQuery) WhereClause() *WhereClause { return q.clauses.Where() }

// OrderBy adds an ORDER BY column.
func (q *DeleteQuery) OrderBy(column, direction string) *DeleteQuery {
	q.clauses.OrderBy().OrderBy(column, direction)
	return q
}

// Limit sets LIMIT; a negative value removes it.
func (q *DeleteQuery) Limit(n int) *DeleteQuery {
	q.clauses.SetLimit(n)
	return q
}

// Clone returns an independent copy.
func (q *DeleteQuery) Clone() *DeleteQuery {
	return &DeleteQuery{clauses: q.clauses.Clone(), rows: append([]string(nil), q.rows...)}
}

func (q *DeleteQuery) withAppliers(a *Appliers) *DeleteQuery {
	out := q.Clone()
	out.clauses = q.clauses.apply(a)
	return out
}

// ToSQL renders the statement.
func (q *DeleteQuery) ToSQL() (string, []any, error) {
	if q.clauses.from == nil || !q.clauses.from.HasFrom() {
		return "", nil, newQueryError("undefined tables in DELETE statement")
	}

	var b sqlBuilder
	head := "DELETE"
	if len(q.rows) > 0 {
		head += " " + strings.Join(q.rows, ", ")
	}
	b.add(head, nil)
	if err := q.clauses.renderTail(&b, true); err != nil {
		return "", nil, err
	}

	sql, params := b.result()
	if n, ok := q.clauses.Limit(); ok {
		sql = q.Dialect().AddLimit(sql, n)
	}
	return sql, params, nil
}

// String renders the statement, ignoring errors.
func (q *DeleteQuery) String() string {
	sql, _, _ := q.ToSQL()
	return sql
}
