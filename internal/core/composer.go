package core

import (
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// ClauseName names a clause held by Clauses.
type ClauseName string

// Clause names accepted by Clauses.Clause.
const (
	ClauseFrom    ClauseName = "FROM"
	ClauseJoin    ClauseName = "JOIN"
	ClauseWhere   ClauseName = "WHERE"
	ClauseGroupBy ClauseName = "GROUP BY"
	ClauseHaving  ClauseName = "HAVING"
	ClauseOrderBy ClauseName = "ORDER BY"
	ClauseLimit   ClauseName = "LIMIT"
	ClauseOffset  ClauseName = "OFFSET"
)

// Clauses is the clause set shared by statements. It renders, in order,
// FROM, JOIN, WHERE, GROUP BY, HAVING and ORDER BY followed by the dialect
// LIMIT and OFFSET, skipping empty clauses.
//
// Clause objects are created on first access, so a Clauses value can also
// be used on its own to build the tail of a statement.
type Clauses struct {
	dialect dialects.Dialect
	from    *FromClause
	join    *JoinClause
	where   *WhereClause
	groupBy *GroupByClause
	having  *HavingClause
	orderBy *OrderByClause
	limit   *int
	offset  *int
}

// NewClauses creates an empty clause set. A nil dialect means MySQL.
func NewClauses(d dialects.Dialect) *Clauses {
	if d == nil {
		d = defaultDialect()
	}
	return &Clauses{dialect: d}
}

// Dialect returns the dialect used for rendering.
func (c *Clauses) Dialect() dialects.Dialect { return c.dialect }

// From returns the FROM clause, creating it if needed.
func (c *Clauses) From() *FromClause {
	if c.from == nil {
		c.from = NewFromClause(c.dialect)
	}
	return c.from
}

// Join returns the JOIN clause, creating it if needed.
func (c *Clauses) Join() *JoinClause {
	if c.join == nil {
		c.join = NewJoinClause(c.dialect)
	}
	return c.join
}

// Where returns the WHERE clause, creating it if needed.
func (c *Clauses) Where() *WhereClause {
	if c.where == nil {
		c.where = NewWhereClause(c.dialect)
	}
	return c.where
}

// GroupBy returns the GROUP BY clause, creating it if needed.
func (c *Clauses) GroupBy() *GroupByClause {
	if c.groupBy == nil {
		c.groupBy = NewGroupByClause(c.dialect)
	}
	return c.groupBy
}

// Having returns the HAVING clause, creating it if needed.
func (c *Clauses) Having() *HavingClause {
	if c.having == nil {
		c.having = NewHavingClause(c.dialect)
	}
	return c.having
}

// OrderBy returns the ORDER BY clause, creating it if needed.
func (c *Clauses) OrderBy() *OrderByClause {
	if c.orderBy == nil {
		c.orderBy = NewOrderByClause(c.dialect)
	}
	return c.orderBy
}

// SetLimit sets LIMIT; a negative value removes it.
func (c *Clauses) SetLimit(n int) *Clauses {
	c.limit = intPtr(n)
	return c
}

// SetOffset sets OFFSET; a negative value removes it.
func (c *Clauses) SetOffset(n int) *Clauses {
	c.offset = intPtr(n)
	return c
}

func intPtr(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}

// Limit returns the limit and whether it is set.
func (c *Clauses) Limit() (int, bool) {
	if c.limit == nil {
		return 0, false
	}
	return *c.limit, true
}

// Offset returns the offset and whether it is set.
func (c *Clauses) Offset() (int, bool) {
	if c.offset == nil {
		return 0, false
	}
	return *c.offset, true
}

// HasClause reports whether the named clause was defined.
func (c *Clauses) HasClause(name ClauseName) bool {
	switch name {
	case ClauseFrom:
		return c.from != nil
	case ClauseJoin:
		return c.join != nil
	case ClauseWhere:
		return c.where != nil
	case ClauseGroupBy:
		return c.groupBy != nil
	case ClauseHaving:
		return c.having != nil
	case ClauseOrderBy:
		return c.orderBy != nil
	case ClauseLimit:
		return c.limit != nil
	case ClauseOffset:
		return c.offset != nil
	}
	return false
}

// Clause returns the named clause object (*FromClause, *JoinClause, ...,
// or the int value of LIMIT/OFFSET). It fails with a *QueryError when the
// clause was never defined.
func (c *Clauses) Clause(name ClauseName) (any, error) {
	if !c.HasClause(name) {
		return nil, newQueryError("clause %s is not defined", name)
	}
	switch name {
	case ClauseFrom:
		return c.from, nil
	case ClauseJoin:
		return c.join, nil
	case ClauseWhere:
		return c.where, nil
	case ClauseGroupBy:
		return c.groupBy, nil
	case ClauseHaving:
		return c.having, nil
	case ClauseOrderBy:
		return c.orderBy, nil
	case ClauseLimit:
		return *c.limit, nil
	default:
		return *c.offset, nil
	}
}

// ClearClause drops the named clause.
func (c *Clauses) ClearClause(name ClauseName) *Clauses {
	switch name {
	case ClauseFrom:
		c.from = nil
	case ClauseJoin:
		c.join = nil
	case ClauseWhere:
		c.where = nil
	case ClauseGroupBy:
		c.groupBy = nil
	case ClauseHaving:
		c.having = nil
	case ClauseOrderBy:
		c.orderBy = nil
	case ClauseLimit:
		c.limit = nil
	case ClauseOffset:
		c.offset = nil
	}
	return c
}

// Clone copies every clause so that the copy can be changed freely.
func (c *Clauses) Clone() *Clauses {
	out := &Clauses{dialect: c.dialect}
	if c.from != nil {
		out.from = c.from.Clone()
	}
	if c.join != nil {
		out.join = c.join.Clone()
	}
	if c.where != nil {
		out.where = c.where.Clone()
	}
	if c.groupBy != nil {
		out.groupBy = c.groupBy.Clone()
	}
	if c.having != nil {
		out.having = c.having.Clone()
	}
	if c.orderBy != nil {
		out.orderBy = c.orderBy.Clone()
	}
	if c.limit != nil {
		out.limit = intPtr(*c.limit)
	}
	if c.offset != nil {
		out.offset = intPtr(*c.offset)
	}
	return out
}

// sqlBuilder joins non-empty fragments with spaces and collects params.
type sqlBuilder struct {
	parts  []string
	params []any
}

func (b *sqlBuilder) add(sql string, params []any) {
	if sql == "" {
		return
	}
	b.parts = append(b.parts, sql)
	b.params = append(b.params, params...)
}

func (b *sqlBuilder) String() string { return strings.Join(b.parts, " ") }

func (b *sqlBuilder) result() (string, []any) {
	if b.params == nil {
		b.params = []any{}
	}
	return b.String(), b.params
}

// render writes the clauses after FROM (JOIN through ORDER BY) into b.
func (c *Clauses) renderTail(b *sqlBuilder, withFrom bool) error {
	if c.orderBy != nil && c.orderBy.Err() != nil {
		return c.orderBy.Err()
	}
	if withFrom && c.from != nil {
		b.add(c.from.ToSQL(c.join, true))
	}
	if c.join != nil {
		b.add(c.join.ToSQL(""))
	}
	if c.where != nil {
		b.add(c.where.ToSQL(true))
	}
	if c.groupBy != nil {
		b.add(c.groupBy.ToSQL(true))
	}
	if c.having != nil {
		b.add(c.having.ToSQL(true))
	}
	if c.orderBy != nil {
		b.add(c.orderBy.ToSQL(true))
	}
	return nil
}

// limitSQL applies the dialect LIMIT and OFFSET to sql.
func (c *Clauses) limitSQL(sql string) string {
	if c.limit != nil {
		sql = c.dialect.AddLimit(sql, *c.limit)
	}
	if c.offset != nil && *c.offset > 0 {
		sql = c.dialect.AddOffset(sql, *c.offset, c.limit != nil)
	}
	return sql
}

// ToSQL renders the clause set.
func (c *Clauses) ToSQL() (string, []any, error) {
	var b sqlBuilder
	if err := c.renderTail(&b, true); err != nil {
		return "", nil, err
	}
	sql, params := b.result()
	return strings.TrimSpace(c.limitSQL(sql)), params, nil
}

// String renders the clause set, ignoring errors.
func (c *Clauses) String() string {
	sql, _, _ := c.ToSQL()
	return sql
}

// Appliers are callables registered once and run against clause clones at
// render time, for default filters such as soft delete or tenant scoping.
type Appliers struct {
	Where   []func(*WhereClause)
	Having  []func(*HavingClause)
	Join    []func(*JoinClause)
	OrderBy []func(*OrderByClause)
}

func (a *Appliers) empty() bool {
	return a == nil || len(a.Where)+len(a.Having)+len(a.Join)+len(a.OrderBy) == 0
}

// clone returns an independent copy of the applier lists.
func (a *Appliers) clone() *Appliers {
	if a == nil {
		return &Appliers{}
	}
	return &Appliers{
		Where:   append([]func(*WhereClause){}, a.Where...),
		Having:  append([]func(*HavingClause){}, a.Having...),
		Join:    append([]func(*JoinClause){}, a.Join...),
		OrderBy: append([]func(*OrderByClause){}, a.OrderBy...),
	}
}

// apply returns a clone of c with the appliers merged in. Each WHERE and
// HAVING applier fills a fresh clause that is attached as a group, then the
// explicit conditions and the EXISTS slot are attached as one more group. JOIN and ORDER BY
// appliers run before the explicit items. c is left unchanged.
func (c *Clauses) apply(a *Appliers) *Clauses {
	out := c.Clone()
	if a.empty() {
		return out
	}

	if len(a.Where) > 0 {
		w := out.Where()
		items := w.GetWhere()
		exists := w.GetExists()
		w.ClearWhere().ClearExists()
		for _, fn := range a.Where {
			applied := NewWhereClause(c.dialect)
			fn(applied)
			w.WhereConditions(applied)
		}
		if len(items) > 0 || exists != nil {
			explicit := NewWhereClause(c.dialect)
			for _, it := range items {
				explicit.AddWhere(it.Logic, it.SQL, it.Params...)
			}
			explicit.exists = exists
			w.WhereConditions(explicit)
		}
	}

	if len(a.Having) > 0 {
		h := out.Having()
		items := h.GetHaving()
		h.ClearHaving()
		for _, fn := range a.Having {
			applied := NewHavingClause(c.dialect)
			fn(applied)
			h.HavingConditions(applied)
		}
		if len(items) > 0 {
			explicit := NewHavingClause(c.dialect)
			for _, it := range items {
				explicit.AddHaving(it.Logic, it.SQL, it.Params...)
			}
			h.HavingConditions(explicit)
		}
	}

	if len(a.Join) > 0 {
		j := out.Join()
		items := j.items
		j.items = nil
		for _, fn := range a.Join {
			fn(j)
		}
		j.items = append(j.items, items...)
	}

	if len(a.OrderBy) > 0 {
		o := out.OrderBy()
		items := o.items
		o.items = nil
		for _, fn := range a.OrderBy {
			fn(o)
		}
		o.items = append(o.items, items...)
	}

	return out
}
