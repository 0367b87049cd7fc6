package core

import (
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// Statement is anything rendering to SQL and params.
type Statement interface {
	ToSQL() (string, []any, error)
}

// SelectQuery builds a SELECT statement.
//
//	q := core.NewSelectQuery(dialect).
//	    Columns("Id", "Name").
//	    From("Users").
//	    Where("Active", true).
//	    OrderDesc("Id").
//	    Limit(10)
type SelectQuery struct {
	clauses  *Clauses
	columns  []fragment
	distinct bool
}

// NewSelectQuery creates an empty SELECT. A nil dialect means MySQL.
func NewSelectQuery(d dialects.Dialect) *SelectQuery {
	return &SelectQuery{clauses: NewClauses(d)}
}

// Dialect returns the dialect used for rendering.
func (q *SelectQuery) Dialect() dialects.Dialect { return q.clauses.dialect }

// Clauses exposes the clause set.
func (q *SelectQuery) Clauses() *Clauses { return q.clauses }

// Distinct toggles SELECT DISTINCT.
func (q *SelectQuery) Distinct(on bool) *SelectQuery {
	q.distinct = on
	return q
}

// Columns adds selected columns; "Table.Column AS alias" is accepted.
func (q *SelectQuery) Columns(columns ...string) *SelectQuery {
	for _, c := range columns {
		q.columns = append(q.columns, fragment{sql: q.Dialect().QuoteName(c), params: []any{}})
	}
	return q
}

// ColumnAs adds "column AS alias".
func (q *SelectQuery) ColumnAs(column, alias string) *SelectQuery {
	return q.Columns(column + " AS " + alias)
}

// ColumnRaw adds a raw select expression.
func (q *SelectQuery) ColumnRaw(sql string, params ...any) *SelectQuery {
	q.columns = append(q.columns, rawFragment(q.Dialect(), sql, params))
	return q
}

// ColumnSelect adds "(subquery) AS alias". A render error panics.
func (q *SelectQuery) ColumnSelect(sub *SelectQuery, alias string) *SelectQuery {
	sql, params, err := sub.ToSQL()
	if err != nil {
		panic(err)
	}
	q.columns = append(q.columns, fragment{sql: "(" + sql + ") AS " + q.Dialect().QuoteIdentifier(alias), params: params})
	return q
}

// ColumnExpr adds a value expression such as Coalesce or Case.
func (q *SelectQuery) ColumnExpr(e Expression) *SelectQuery {
	sql, params := e.Build(q.Dialect())
	if sql != "" {
		q.columns = append(q.columns, fragment{sql: sql, params: append([]any{}, params...)})
	}
	return q
}

// HasColumns reports whether columns were selected.
func (q *SelectQuery) HasColumns() bool { return len(q.columns) > 0 }

// ClearColumns removes selected columns.
func (q *SelectQuery) ClearColumns() *SelectQuery {
	q.columns = nil
	return q
}

func (q *SelectQuery) aggregate(fn, column, alias string) *SelectQuery {
	expr := q.Dialect().QuoteName(column)
	if alias != "" {
		expr = fn + "(" + expr + ") AS " + q.Dialect().QuoteIdentifier(alias)
	} else {
		expr = fn + "(" + expr + ")"
	}
	q.columns = append(q.columns, fragment{sql: expr, params: []any{}})
	return q
}

// Count selects COUNT(column); an empty alias omits AS.
func (q *SelectQuery) Count(column, alias string) *SelectQuery { return q.aggregate("COUNT", column, alias) }

// Max selects MAX(column).
func (q *SelectQuery) Max(column, alias string) *SelectQuery { return q.aggregate("MAX", column, alias) }

// Min selects MIN(column).
func (q *SelectQuery) Min(column, alias string) *SelectQuery { return q.aggregate("MIN", column, alias) }

// Avg selects AVG(column).
func (q *SelectQuery) Avg(column, alias string) *SelectQuery { return q.aggregate("AVG", column, alias) }

// Sum selects SUM(column).
func (q *SelectQuery) Sum(column, alias string) *SelectQuery { return q.aggregate("SUM", column, alias) }

// From adds FROM tables.
func (q *SelectQuery) From(tables ...string) *SelectQuery {
	q.clauses.From().From(tables...)
	return q
}

// FromAs adds an aliased FROM table.
func (q *SelectQuery) FromAs(table, alias string) *SelectQuery {
	q.clauses.From().FromAs(table, alias)
	return q
}

// FromSelect adds a derived table.
func (q *SelectQuery) FromSelect(sub *SelectQuery, alias string) *SelectQuery {
	q.clauses.From().FromSelect(sub, alias)
	return q
}

// FromRaw adds a raw FROM source.
func (q *SelectQuery) FromRaw(sql string, params ...any) *SelectQuery {
	q.clauses.From().FromRaw(sql, params...)
	return q
}

// InnerJoin adds an INNER JOIN; see JoinClause.Join for on.
func (q *SelectQuery) InnerJoin(table string, on any, params ...any) *SelectQuery {
	q.clauses.Join().InnerJoin(table, on, params...)
	return q
}

// LeftJoin adds a LEFT JOIN.
func (q *SelectQuery) LeftJoin(table string, on any, params ...any) *SelectQuery {
	q.clauses.Join().LeftJoin(table, on, params...)
	return q
}

// RightJoin adds a RIGHT JOIN.
func (q *SelectQuery) RightJoin(table string, on any, params ...any) *SelectQuery {
	q.clauses.Join().RightJoin(table, on, params...)
	return q
}

// CrossJoin adds a CROSS JOIN.
func (q *SelectQuery) CrossJoin(table string) *SelectQuery {
	q.clauses.Join().CrossJoin(table)
	return q
}

// JoinTo adds a join rendered right after the FROM source named source.
func (q *SelectQuery) JoinTo(source, kind, table string, on any, params ...any) *SelectQuery {
	q.clauses.Join().JoinTo(source, kind, table, on, params...)
	return q
}

// Where adds a WHERE column condition.
func (q *SelectQuery) Where(column string, value any) *SelectQuery {
	q.clauses.Where().Where(column, value)
	return q
}

// OrWhere is the OR form of Where.
func (q *SelectQuery) OrWhere(column string, value any) *SelectQuery {
	q.clauses.Where().OrWhere(column, value)
	return q
}

// WhereOp adds a WHERE condition with an explicit operator.
func (q *SelectQuery) WhereOp(column, op string, value any) *SelectQuery {
	q.clauses.Where().WhereOp(column, op, value)
	return q
}

// OrWhereOp is the OR form of WhereOp.
func (q *SelectQuery) OrWhereOp(column, op string, value any) *SelectQuery {
	q.clauses.Where().OrWhereOp(column, op, value)
	return q
}

// WhereRow adds a WHERE row-value condition.
func (q *SelectQuery) WhereRow(columns []string, value any) *SelectQuery {
	q.clauses.Where().WhereRow(columns, value)
	return q
}

// OrWhereRow is the OR form of WhereRow.
func (q *SelectQuery) OrWhereRow(columns []string, value any) *SelectQuery {
	q.clauses.Where().OrWhereRow(columns, value)
	return q
}

// WhereGroup adds the conditions set by fn as one parenthesized group.
func (q *SelectQuery) WhereGroup(fn func(*WhereClause)) *SelectQuery {
	q.clauses.Where().WhereGroup(fn)
	return q
}

// OrWhereGroup is the OR form of WhereGroup.
func (q *SelectQuery) OrWhereGroup(fn func(*WhereClause)) *SelectQuery {
	q.clauses.Where().OrWhereGroup(fn)
	return q
}

// WhereConditions adds src, any accepted condition group source, as one
// group.
func (q *SelectQuery) WhereConditions(src any) *SelectQuery {
	q.clauses.Where().WhereConditions(src)
	return q
}

// WhereIsNull adds "column IS NULL".
func (q *SelectQuery) WhereIsNull(column string) *SelectQuery {
	q.clauses.Where().WhereIsNull(column)
	return q
}

// WhereRaw adds a raw WHERE condition.
func (q *SelectQuery) WhereRaw(sql string, params ...any) *SelectQuery {
	q.clauses.Where().WhereRaw(sql, params...)
	return q
}

// OrWhereRaw is the OR form of WhereRaw.
func (q *SelectQuery) OrWhereRaw(sql string, params ...any) *SelectQuery {
	q.clauses.Where().OrWhereRaw(sql, params...)
	return q
}

// WhereExists sets the WHERE EXISTS slot.
func (q *SelectQuery) WhereExists(sub *SelectQuery) *SelectQuery {
	q.clauses.Where().WhereExists(sub)
	return q
}

// WhereNotExists sets the WHERE NOT EXISTS slot.
func (q *SelectQuery) WhereNotExists(sub *SelectQuery) *SelectQuery {
	q.clauses.Where().WhereNotExists(sub)
	return q
}

// Filter runs fn against the WHERE clause for the full condition API.
func (q *SelectQuery) Filter(fn func(*WhereClause)) *SelectQuery {
	fn(q.clauses.Where())
	return q
}

// WhereClause returns the WHERE clause.
func (q *SelectQuery) WhereClause() *WhereClause { return q.clauses.Where() }

// GroupBy adds GROUP BY columns.
func (q *SelectQuery) GroupBy(columns ...string) *SelectQuery {
	q.clauses.GroupBy().GroupBy(columns...)
	return q
}

// GroupByRaw adds a raw GROUP BY expression.
func (q *SelectQuery) GroupByRaw(sql string, params ...any) *SelectQuery {
	q.clauses.GroupBy().GroupByRaw(sql, params...)
	return q
}

// Having adds a HAVING column condition.
func (q *SelectQuery) Having(column string, value any) *SelectQuery {
	q.clauses.Having().Having(column, value)
	return q
}

// HavingOp adds a HAVING condition with an explicit operator.
func (q *SelectQuery) HavingOp(column, op string, value any) *SelectQuery {
	q.clauses.Having().HavingOp(column, op, value)
	return q
}

// HavingRaw adds a raw HAVING condition.
func (q *SelectQuery) HavingRaw(sql string, params ...any) *SelectQuery {
	q.clauses.Having().HavingRaw(sql, params...)
	return q
}

// HavingClause returns the HAVING clause.
func (q *SelectQuery) HavingClause() *HavingClause { return q.clauses.Having() }

// OrderBy adds an ORDER BY column; direction is "", ASC or DESC.
func (q *SelectQuery) OrderBy(column, direction string) *SelectQuery {
	q.clauses.OrderBy().OrderBy(column, direction)
	return q
}

// OrderAsc adds "column ASC".
func (q *SelectQuery) OrderAsc(column string) *SelectQuery {
	q.clauses.OrderBy().OrderAsc(column)
	return q
}

// OrderDesc adds "column DESC".
func (q *SelectQuery) OrderDesc(column string) *SelectQuery {
	q.clauses.OrderBy().OrderDesc(column)
	return q
}

// OrderByRaw adds a raw ORDER BY expression.
func (q *SelectQuery) OrderByRaw(sql string, params ...any) *SelectQuery {
	q.clauses.OrderBy().OrderByRaw(sql, params...)
	return q
}

// Limit sets LIMIT; a negative value removes it.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.clauses.SetLimit(n)
	return q
}

// Offset sets OFFSET; a negative value removes it.
func (q *SelectQuery) Offset(n int) *SelectQuery {
	q.clauses.SetOffset(n)
	return q
}

// Clone returns an independent copy.
func (q *SelectQuery) Clone() *SelectQuery {
	return &SelectQuery{clauses: q.clauses.Clone(), columns: cloneFragments(q.columns), distinct: q.distinct}
}

// withAppliers returns a clone whose clauses have the appliers merged in.
func (q *SelectQuery) withAppliers(a *Appliers) *SelectQuery {
	out := q.Clone()
	out.clauses = q.clauses.apply(a)
	return out
}

// ToSQL renders "SELECT [DISTINCT] columns" followed by the clauses.
// Without columns, "*" is selected.
func (q *SelectQuery) ToSQL() (string, []any, error) {
	var b sqlBuilder

	head := "SELECT"
	if q.distinct {
		head += " DISTINCT"
	}
	if len(q.columns) == 0 {
		b.add(head+" *", nil)
	} else {
		cols, params := joinFragments(q.columns, ", ")
		b.add(head+" "+cols, params)
	}

	if err := q.clauses.renderTail(&b, true); err != nil {
		return "", nil, err
	}
	sql, params := b.result()
	return strings.TrimSpace(q.clauses.limitSQL(sql)), params, nil
}

// String renders the statement, ignoring errors.
func (q *SelectQuery) String() string {
	sql, _, _ := q.ToSQL()
	return sql
}
