package core

import (
	"context"
	"errors"
	"slices"
)

// SoftDeleteMode selects which rows a soft-delete table returns.
type SoftDeleteMode int

const (
	// SoftDeleteExclude hides deleted rows.
	SoftDeleteExclude SoftDeleteMode = iota
	// SoftDeleteOnly returns deleted rows only.
	SoftDeleteOnly
	// SoftDeleteInclude returns every row.
	SoftDeleteInclude
)

// Table binds statements to one table of a DB or Tx. Appliers registered
// on the table are merged into every SELECT, UPDATE and DELETE it renders.
//
// A Table is immutable after construction except for its appliers; the
// soft-delete helpers return copies.
type Table struct {
	exec     *session
	name     string
	alias    string
	casts    map[string]string
	fillable []string
	guarded  []string
	schema   *Schema
	appliers Appliers

	softDelete string
	softMode   SoftDeleteMode
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithAlias renders the table as "name AS alias".
func WithAlias(alias string) TableOption {
	return func(t *Table) { t.alias = alias }
}

// WithCasts sets per-column casts, see the Cast constants.
func WithCasts(casts map[string]string) TableOption {
	return func(t *Table) {
		for k, v := range casts {
			t.casts[k] = v
		}
	}
}

// WithFillable limits Rows.Set to columns. Without it every column is
// fillable.
func WithFillable(columns ...string) TableOption {
	return func(t *Table) { t.fillable = append(t.fillable, columns...) }
}

// WithGuarded forbids Rows.Set on columns; "*" guards every column.
func WithGuarded(columns ...string) TableOption {
	return func(t *Table) { t.guarded = append(t.guarded, columns...) }
}

// WithSoftDelete marks rows as deleted by setting column instead of
// removing them. Deleted rows are hidden unless WithDeleted or OnlyDeleted
// is used.
func WithSoftDelete(column string) TableOption {
	return func(t *Table) { t.softDelete = column }
}

// WithSchema uses schema instead of describing the table.
func WithSchema(schema *Schema) TableOption {
	return func(t *Table) { t.schema = schema }
}

// Table returns a table bound to the session.
func (s *session) Table(name string, opts ...TableOption) *Table {
	t := &Table{exec: s, name: name, casts: map[string]string{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Alias returns the table alias, or "".
func (t *Table) Alias() string { return t.alias }

// Cast returns the cast configured for column, or "".
func (t *Table) Cast(column string) string { return t.casts[column] }

// SoftDeleteColumn returns the soft-delete column, or "".
func (t *Table) SoftDeleteColumn() string { return t.softDelete }

// Schema returns the table schema, describing the table on first use.
func (t *Table) Schema(ctx context.Context) (*Schema, error) {
	if t.schema != nil {
		return t.schema, nil
	}
	return t.exec.Describe(ctx, t.name)
}

// WhereApplier registers fn to run on the WHERE clause of every rendered
// statement.
func (t *Table) WhereApplier(fn func(*WhereClause)) *Table {
	t.appliers.Where = append(t.appliers.Where, fn)
	return t
}

// HavingApplier registers fn to run on the HAVING clause of every SELECT.
func (t *Table) HavingApplier(fn func(*HavingClause)) *Table {
	t.appliers.Having = append(t.appliers.Having, fn)
	return t
}

// JoinApplier registers fn to run on the JOIN clause of every rendered
// statement.
func (t *Table) JoinApplier(fn func(*JoinClause)) *Table {
	t.appliers.Join = append(t.appliers.Join, fn)
	return t
}

// OrderByApplier registers fn to run on the ORDER BY clause of every
// rendered statement.
func (t *Table) OrderByApplier(fn func(*OrderByClause)) *Table {
	t.appliers.OrderBy = append(t.appliers.OrderBy, fn)
	return t
}

// ClearAppliers removes every registered applier.
func (t *Table) ClearAppliers() *Table {
	t.appliers = Appliers{}
	return t
}

func (t *Table) withMode(mode SoftDeleteMode) *Table {
	out := *t
	out.appliers = *t.appliers.clone()
	out.softMode = mode
	return &out
}

// WithDeleted returns a copy of t that includes soft-deleted rows.
func (t *Table) WithDeleted() *Table { return t.withMode(SoftDeleteInclude) }

// OnlyDeleted returns a copy of t that returns soft-deleted rows only.
func (t *Table) OnlyDeleted() *Table { return t.withMode(SoftDeleteOnly) }

// WithoutDeleted returns a copy of t that hides soft-deleted rows.
func (t *Table) WithoutDeleted() *Table { return t.withMode(SoftDeleteExclude) }

// column qualifies a column with the alias, or the table name.
func (t *Table) column(name string) string {
	if t.alias != "" {
		return t.alias + "." + name
	}
	return t.name + "." + name
}

func (t *Table) ref() string {
	if t.alias != "" {
		return t.name + " AS " + t.alias
	}
	return t.name
}

// allAppliers returns the registered appliers followed by the soft-delete
// filter. The filter clears its own clause before adding its predicate.
func (t *Table) allAppliers() *Appliers {
	a := t.appliers.clone()
	if t.softDelete == "" {
		return a
	}
	column, mode := t.column(t.softDelete), t.softMode
	a.Where = append(a.Where, func(w *WhereClause) {
		w.ClearWhere()
		switch mode {
		case SoftDeleteExclude:
			w.WhereIsNull(column)
		case SoftDeleteOnly:
			w.WhereIsNotNull(column)
		}
	})
	return a
}

// Select starts a SELECT from the table.
func (t *Table) Select(columns ...string) *SelectQuery {
	return NewSelectQuery(t.exec.db.dialect).Columns(columns...).From(t.ref())
}

// Update starts an UPDATE of the table.
func (t *Table) Update() *UpdateQuery {
	return NewUpdateQuery(t.exec.db.dialect, t.ref())
}

// Delete starts a DELETE from the table.
func (t *Table) Delete() *DeleteQuery {
	return NewDeleteQuery(t.exec.db.dialect, t.ref())
}

// Insert starts an INSERT into the table.
func (t *Table) Insert() *InsertQuery {
	return NewInsertQuery(t.exec.db.dialect, t.name)
}

// Apply returns a copy of stmt with the table appliers merged in. stmt is
// left unchanged; statements without WHERE clauses are returned as is.
func (t *Table) Apply(stmt Statement) Statement {
	a := t.allAppliers()
	switch q := stmt.(type) {
	case *SelectQuery:
		return q.withAppliers(a)
	case *UpdateQuery:
		return q.withAppliers(a)
	case *DeleteQuery:
		return q.withAppliers(a)
	}
	return stmt
}

// Render renders stmt with the table appliers merged in.
func (t *Table) Render(stmt Statement) (string, []any, error) {
	return t.Apply(stmt).ToSQL()
}

// Execute runs stmt with the appliers merged in and returns the number of
// affected rows.
func (t *Table) Execute(ctx context.Context, stmt Statement) (int64, error) {
	return t.exec.Execute(ctx, t.Apply(stmt))
}

// Fetch returns the first row of q, or nil when there is none.
func (t *Table) Fetch(ctx context.Context, q *SelectQuery) (Record, error) {
	rec, err := t.FetchOrFail(ctx, q)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// FetchOrFail returns the first row of q or ErrNoRows.
func (t *Table) FetchOrFail(ctx context.Context, q *SelectQuery) (Record, error) {
	return t.exec.Fetch(ctx, t.Apply(q))
}

// FetchAll returns every row of q.
func (t *Table) FetchAll(ctx context.Context, q *SelectQuery) ([]Record, error) {
	return t.exec.FetchAll(ctx, t.Apply(q))
}

// FetchColumn returns the first column of the first row of q.
func (t *Table) FetchColumn(ctx context.Context, q *SelectQuery) (any, error) {
	return t.exec.FetchColumn(ctx, t.Apply(q))
}

// FetchColumnAll returns the first column of every row of q.
func (t *Table) FetchColumnAll(ctx context.Context, q *SelectQuery) ([]any, error) {
	return t.exec.FetchColumnAll(ctx, t.Apply(q))
}

// FetchPairs maps the first column of every row of q to the second.
func (t *Table) FetchPairs(ctx context.Context, q *SelectQuery) (map[string]any, error) {
	return t.exec.FetchPairs(ctx, t.Apply(q))
}

// aggregate replaces the columns of a copy of q with one aggregate and
// drops ORDER BY, LIMIT and OFFSET.
func (t *Table) aggregate(ctx context.Context, q *SelectQuery, set func(*SelectQuery)) (any, error) {
	agg := q.Clone().ClearColumns()
	agg.Clauses().ClearClause(ClauseOrderBy).ClearClause(ClauseLimit).ClearClause(ClauseOffset)
	set(agg)
	return t.FetchColumn(ctx, agg)
}

// FetchCount returns COUNT(column) over q; an empty column counts rows.
func (t *Table) FetchCount(ctx context.Context, q *SelectQuery, column string) (int64, error) {
	if column == "" {
		column = "*"
	}
	v, err := t.aggregate(ctx, q, func(s *SelectQuery) { s.Count(column, "") })
	if err != nil {
		return 0, err
	}
	return Record{"n": v}.Int64("n")
}

// FetchMax returns MAX(column) over q.
func (t *Table) FetchMax(ctx context.Context, q *SelectQuery, column string) (any, error) {
	return t.aggregate(ctx, q, func(s *SelectQuery) { s.Max(column, "") })
}

// FetchMin returns MIN(column) over q.
func (t *Table) FetchMin(ctx context.Context, q *SelectQuery, column string) (any, error) {
	return t.aggregate(ctx, q, func(s *SelectQuery) { s.Min(column, "") })
}

// FetchAvg returns AVG(column) over q.
func (t *Table) FetchAvg(ctx context.Context, q *SelectQuery, column string) (any, error) {
	return t.aggregate(ctx, q, func(s *SelectQuery) { s.Avg(column, "") })
}

// FetchSum returns SUM(column) over q.
func (t *Table) FetchSum(ctx context.Context, q *SelectQuery, column string) (any, error) {
	return t.aggregate(ctx, q, func(s *SelectQuery) { s.Sum(column, "") })
}

// Exists reports whether q returns at least one row.
func (t *Table) Exists(ctx context.Context, q *SelectQuery) (bool, error) {
	probe := q.Clone().ClearColumns().ColumnRaw("1").Limit(1)
	_, err := t.FetchColumn(ctx, probe)
	if errors.Is(err, ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Chunk reads q in pages of size rows and calls fn for each non-empty page
// until fn returns an error or a page comes back short.
func (t *Table) Chunk(ctx context.Context, q *SelectQuery, size int, fn func([]Record) error) error {
	if size <= 0 {
		return newQueryError("chunk size must be positive, got %d", size)
	}
	for offset := 0; ; offset += size {
		page, err := t.FetchAll(ctx, q.Clone().Limit(size).Offset(offset))
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
		if len(page) < size {
			return nil
		}
	}
}

// Page is one page of rows returned by Paginate.
type Page struct {
	Records []Record
	Total   int64
	Page    int
	PerPage int
}

// LastPage returns the number of the last page, at least 1.
func (p *Page) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Paginate returns page number page, starting at 1, of perPage rows.
func (t *Table) Paginate(ctx context.Context, q *SelectQuery, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		return nil, newQueryError("rows per page must be positive, got %d", perPage)
	}

	total, err := t.FetchCount(ctx, q, "")
	if err != nil {
		return nil, err
	}
	records, err := t.FetchAll(ctx, q.Clone().Limit(perPage).Offset((page-1)*perPage))
	if err != nil {
		return nil, err
	}
	return &Page{Records: records, Total: total, Page: page, PerPage: perPage}, nil
}

// Truncate removes every row of the table.
func (t *Table) Truncate(ctx context.Context) error {
	return t.exec.Truncate(ctx, t.name)
}

// Erase deletes the row identified by key, given in FirstUnique order.
func (t *Table) Erase(ctx context.Context, key ...any) (int64, error) {
	schema, err := t.Schema(ctx)
	if err != nil {
		return 0, err
	}
	cols, err := schema.FirstUnique()
	if err != nil {
		return 0, err
	}
	if len(cols) != len(key) {
		return 0, newQueryError("unique key has %d columns, got %d values", len(cols), len(key))
	}
	q := t.Delete()
	for i, c := range cols {
		q.Where(c, key[i])
	}
	return t.exec.Execute(ctx, q)
}

// isFillable reports whether Rows.Set may change column.
func (t *Table) isFillable(column string) bool {
	if slices.Contains(t.guarded, "*") || slices.Contains(t.guarded, column) {
		return false
	}
	return len(t.fillable) == 0 || slices.Contains(t.fillable, column)
}
