package core

import (
	"context"
	"database/sql"

	"github.com/coregx/sqlcond/internal/dialects"
)

// session holds the statement factories and fetch helpers shared by DB
// and Tx. tx is nil outside a transaction.
type session struct {
	db *DB
	tx *sql.Tx
}

// Dialect returns the dialect statements are rendered with.
func (s *session) Dialect() dialects.Dialect { return s.db.dialect }

// Select starts a SELECT statement. No columns means "*".
func (s *session) Select(columns ...string) *SelectQuery {
	return NewSelectQuery(s.db.dialect).Columns(columns...)
}

// Update starts an UPDATE statement on tables.
func (s *session) Update(tables ...string) *UpdateQuery {
	return NewUpdateQuery(s.db.dialect, tables...)
}

// DeleteFrom starts a DELETE statement on tables.
func (s *session) DeleteFrom(tables ...string) *DeleteQuery {
	return NewDeleteQuery(s.db.dialect, tables...)
}

// InsertInto starts an INSERT statement on table.
func (s *session) InsertInto(table string) *InsertQuery {
	return NewInsertQuery(s.db.dialect, table)
}

// Where returns an empty WHERE clause using the session dialect.
func (s *session) Where() *WhereClause { return NewWhereClause(s.db.dialect) }

// Having returns an empty HAVING clause using the session dialect.
func (s *session) Having() *HavingClause { return NewHavingClause(s.db.dialect) }

// Conditions returns an empty condition group using the session dialect.
func (s *session) Conditions() *Conditions { return NewConditions(s.db.dialect) }

// Prepare renders stmt into a Query. A render error is returned by the
// Query's execution methods.
func (s *session) Prepare(stmt Statement) *Query {
	query, params, err := stmt.ToSQL()
	return &Query{exec: s, sql: query, params: params, err: err}
}

// NewQuery wraps raw SQL using `?` placeholders.
func (s *session) NewQuery(query string, params ...any) *Query {
	return &Query{exec: s, sql: query, params: params}
}

// Exec executes raw SQL and returns the driver result.
func (s *session) Exec(ctx context.Context, query string, params ...any) (sql.Result, error) {
	return s.NewQuery(query, params...).WithContext(ctx).Exec()
}

// Execute runs a statement and returns the number of affected rows.
func (s *session) Execute(ctx context.Context, stmt Statement) (int64, error) {
	res, err := s.Prepare(stmt).WithContext(ctx).Exec()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Fetch returns the first row of stmt or ErrNoRows.
func (s *session) Fetch(ctx context.Context, stmt Statement) (Record, error) {
	return s.Prepare(stmt).WithContext(ctx).One()
}

// FetchAll returns every row of stmt.
func (s *session) FetchAll(ctx context.Context, stmt Statement) ([]Record, error) {
	return s.Prepare(stmt).WithContext(ctx).All()
}

// FetchColumn returns the first column of the first row of stmt.
func (s *session) FetchColumn(ctx context.Context, stmt Statement) (any, error) {
	return s.Prepare(stmt).WithContext(ctx).Column()
}

// FetchColumnAll returns the first column of every row of stmt.
func (s *session) FetchColumnAll(ctx context.Context, stmt Statement) ([]any, error) {
	return s.Prepare(stmt).WithContext(ctx).ColumnAll()
}

// FetchPairs maps the first column of every row of stmt to the second.
func (s *session) FetchPairs(ctx context.Context, stmt Statement) (map[string]any, error) {
	return s.Prepare(stmt).WithContext(ctx).Pairs()
}

// FetchInto decodes the first row of stmt into dest.
func (s *session) FetchInto(ctx context.Context, stmt Statement, dest any) error {
	return s.Prepare(stmt).WithContext(ctx).OneInto(dest)
}

// FetchAllInto decodes every row of stmt into dest.
func (s *session) FetchAllInto(ctx context.Context, stmt Statement, dest any) error {
	return s.Prepare(stmt).WithContext(ctx).AllInto(dest)
}

// Truncate empties table. SQLite has no TRUNCATE and gets an unfiltered
// DELETE instead.
func (s *session) Truncate(ctx context.Context, table string) error {
	_, err := s.NewQuery(s.db.dialect.TruncateSQL(table)).WithContext(ctx).Exec()
	return err
}

// conn returns the transaction when there is one, else the pool.
func (s *session) conn() conn {
	if s.tx != nil {
		return s.tx
	}
	return s.db.sqlDB
}

// runner returns a cached prepared statement for query, or a direct runner
// inside a transaction or when caching is disabled.
func (s *session) runner(ctx context.Context, query string) (runner, error) {
	cache := s.db.stmtCache
	if s.tx != nil || cache == nil {
		return direct{conn: s.conn(), query: query}, nil
	}

	if stmt, ok := cache.Get(query); ok {
		return stmt, nil
	}
	stmt, err := s.db.sqlDB.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	actual, loaded := cache.GetOrSet(query, stmt)
	if loaded {
		_ = stmt.Close()
	}
	return actual, nil
}
