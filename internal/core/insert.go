package core

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// InsertQuery builds an INSERT statement from rows of values or from a
// SELECT, optionally resolving conflicts with the dialect upsert syntax.
//
//	core.NewInsertQuery(d, "Users").
//	    Columns("Name", "Email").
//	    Values("Alice", "alice@example.com").
//	    Values("Bob", "bob@example.com")
type InsertQuery struct {
	dialect   dialects.Dialect
	table     string
	columns   []string
	rows      [][]any
	source    *SelectQuery
	conflict  []string
	update    []string
	upsert    bool
	doNothing bool
	returning string
}

// NewInsertQuery creates an INSERT into table. A nil dialect means MySQL.
func NewInsertQuery(d dialects.Dialect, table string) *InsertQuery {
	if d == nil {
		d = defaultDialect()
	}
	return &InsertQuery{dialect: d, table: table}
}

// Dialect returns the dialect used for rendering.
func (q *InsertQuery) Dialect() dialects.Dialect { return q.dialect }

// Into sets the target table.
func (q *InsertQuery) Into(table string) *InsertQuery {
	q.table = table
	return q
}

// Columns sets the inserted columns.
func (q *InsertQuery) Columns(columns ...string) *InsertQuery {
	q.columns = append([]string(nil), columns...)
	return q
}

// Values adds a row. The number of values must match the columns; a
// mismatch panics with *SQLError.
func (q *InsertQuery) Values(values ...any) *InsertQuery {
	if len(values) != len(q.columns) {
		panic(newSQLError("insert: expected %d values, got %d", len(q.columns), len(values)))
	}
	q.rows = append(q.rows, append([]any(nil), values...))
	return q
}

// ValuesMap adds a row from a map. The first call on a query without
// columns takes the map keys, sorted, as the columns; missing keys later
// insert NULL.
func (q *InsertQuery) ValuesMap(values map[string]any) *InsertQuery {
	if len(q.columns) == 0 {
		q.columns = sortedKeys(values)
	}
	row := make([]any, len(q.columns))
	for i, c := range q.columns {
		row[i] = values[c]
	}
	return q.Values(row...)
}

// Select inserts the result of a SELECT instead of explicit rows.
func (q *InsertQuery) Select(source *SelectQuery) *InsertQuery {
	q.source = source
	return q
}

// OnConflict sets the conflict target columns and enables upsert. Without a
// DoUpdate call every non-conflict column is updated.
func (q *InsertQuery) OnConflict(columns ...string) *InsertQuery {
	q.conflict = append([]string(nil), columns...)
	q.upsert = true
	return q
}

// DoUpdate sets the columns updated on conflict.
func (q *InsertQuery) DoUpdate(columns ...string) *InsertQuery {
	q.update = append([]string(nil), columns...)
	q.upsert = true
	q.doNothing = false
	return q
}

// DoNothing ignores conflicting rows.
func (q *InsertQuery) DoNothing() *InsertQuery {
	q.upsert = true
	q.doNothing = true
	q.update = nil
	return q
}

// Returning asks for column to be returned on dialects supporting it.
func (q *InsertQuery) Returning(column string) *InsertQuery {
	q.returning = column
	return q
}

// Clone returns an independent copy.
func (q *InsertQuery) Clone() *InsertQuery {
	out := *q
	out.columns = append([]string(nil), q.columns...)
	out.rows = make([][]any, len(q.rows))
	for i, r := range q.rows {
		out.rows[i] = append([]any(nil), r...)
	}
	if q.source != nil {
		out.source = q.source.Clone()
	}
	out.conflict = append([]string(nil), q.conflict...)
	out.update = append([]string(nil), q.update...)
	return &out
}

// ToSQL renders the statement.
func (q *InsertQuery) ToSQL() (string, []any, error) {
	if q.table == "" {
		return "", nil, newQueryError("undefined table in INSERT statement")
	}
	if len(q.rows) == 0 && q.source == nil {
		return "", nil, newQueryError("undefined rows in INSERT statement")
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(q.dialect.QuoteName(q.table))

	if len(q.columns) > 0 {
		quoted := make([]string, len(q.columns))
		for i, c := range q.columns {
			quoted[i] = q.dialect.QuoteName(c)
		}
		sb.WriteString(" (" + strings.Join(quoted, ", ") + ")")
	}

	params := make([]any, 0, len(q.rows)*len(q.columns))
	if q.source != nil {
		sql, sourceParams, err := q.source.ToSQL()
		if err != nil {
			return "", nil, fmt.Errorf("insert source: %w", err)
		}
		sb.WriteString(" " + sql)
		params = append(params, sourceParams...)
	} else {
		rows := make([]string, len(q.rows))
		for i, r := range q.rows {
			rows[i] = bindKeys(len(r))
			params = append(params, r...)
		}
		sb.WriteString(" VALUES " + strings.Join(rows, ", "))
	}

	if q.upsert {
		if q.doNothing {
			sb.WriteString(q.dialect.UpsertSQL(q.table, q.conflict, nil))
		} else {
			update := q.update
			if len(update) == 0 {
				update = filterKeys(q.columns, q.conflict)
			}
			if len(update) == 0 {
				update = nil
			}
			sb.WriteString(q.dialect.UpsertSQL(q.table, q.conflict, update))
		}
	}

	if q.returning != "" {
		sb.WriteString(q.dialect.Returning(q.returning))
	}

	return sb.String(), params, nil
}

// String renders the statement, ignoring errors.
func (q *InsertQuery) String() string {
	sql, _, _ := q.ToSQL()
	return sql
}

// filterKeys returns keys that are not in exclude.
func filterKeys(keys, exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !skip[k] {
			out = append(out, k)
		}
	}
	return out
}
