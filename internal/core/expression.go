// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// Expression is a reusable predicate value that can be nested into any
// condition list with Expr, WhereExpr or HavingExpr.
//
// Example:
//
//	q.WhereClause().WhereExpr(core.And(
//	    core.HashExp{"status": 1},
//	    core.GreaterThan("age", 18),
//	))
type Expression interface {
	// Build renders the expression for the dialect using "?" placeholders.
	Build(dialect dialects.Dialect) (string, []any)
}

// RawExp is raw SQL with bindings. Shorthand references (!Table.Column,
// {{table}}, [[column]]) are expanded at build time.
type RawExp struct {
	SQL  string
	Args []any
}

// NewExp creates a raw SQL expression.
func NewExp(sql string, args ...any) Expression {
	return &RawExp{SQL: sql, Args: args}
}

// Build expands shorthand references and returns the args unchanged.
func (e *RawExp) Build(dialect dialects.Dialect) (string, []any) {
	return dialect.QuoteSQL(e.SQL), e.Args
}

// HashExp is a map of column to value combined with AND, keys sorted.
// Values follow Column semantics: nil is IS NULL, a slice is IN.
//
//	core.HashExp{"status": 1, "age": []int{18, 19}, "deleted_at": nil}
//	// `age` IN (?, ?) AND `deleted_at` IS NULL AND `status` = ?
//
// An empty HashExp renders as an empty string.
type HashExp map[string]any

// Build renders the map through a Conditions list.
func (e HashExp) Build(dialect dialects.Dialect) (string, []any) {
	c := NewConditions(dialect)
	for _, k := range sortedKeys(e) {
		if exp, ok := e[k].(Expression); ok {
			c.Expr(exp)
			continue
		}
		c.Column(k, e[k])
	}
	return c.ToSQL()
}

// CompareExp compares a column against a value with an explicit operator.
type CompareExp struct {
	Col   string
	Op    string
	Value any
}

// Eq generates "column = ?", or "column IS NULL" for a nil value.
func Eq(col string, value any) Expression { return &CompareExp{col, "=", value} }

// NotEq generates "column <> ?", or "column IS NOT NULL" for a nil value.
func NotEq(col string, value any) Expression { return &CompareExp{col, "<>", value} }

// GreaterThan generates "column > ?".
func GreaterThan(col string, value any) Expression { return &CompareExp{col, ">", value} }

// LessThan generates "column < ?".
func LessThan(col string, value any) Expression { return &CompareExp{col, "<", value} }

// GreaterOrEqual generates "column >= ?".
func GreaterOrEqual(col string, value any) Expression { return &CompareExp{col, ">=", value} }

// LessOrEqual generates "column <= ?".
func LessOrEqual(col string, value any) Expression { return &CompareExp{col, "<=", value} }

// Build renders the comparison.
func (e *CompareExp) Build(dialect dialects.Dialect) (string, []any) {
	return NewConditions(dialect).ColumnOp(e.Col, e.Op, e.Value).ToSQL()
}

// InExp is an IN or NOT IN expression over values.
type InExp struct {
	Col    string
	Values []any
	Not    bool
}

// In generates "column IN (?, ...)". No values renders an always false
// predicate, a single value renders "column = ?".
func In(col string, values ...any) Expression { return &InExp{Col: col, Values: values} }

// NotIn generates "column NOT IN (?, ...)".
func NotIn(col string, values ...any) Expression { return &InExp{Col: col, Values: values, Not: true} }

// Build renders the expression.
func (e *InExp) Build(dialect dialects.Dialect) (string, []any) {
	op := "IN"
	if e.Not {
		op = "NOT IN"
	}
	values := e.Values
	if values == nil {
		values = []any{}
	}
	return NewConditions(dialect).ColumnOp(e.Col, op, values).ToSQL()
}

// BetweenExp is a BETWEEN or NOT BETWEEN expression.
type BetweenExp struct {
	Col      string
	From, To any
	Not      bool
}

// Between generates "column BETWEEN ? AND ?".
func Between(col string, from, to any) Expression { return &BetweenExp{Col: col, From: from, To: to} }

// NotBetween generates "column NOT BETWEEN ? AND ?".
func NotBetween(col string, from, to any) Expression {
	return &BetweenExp{Col: col, From: from, To: to, Not: true}
}

// Build renders the expression.
func (e *BetweenExp) Build(dialect dialects.Dialect) (string, []any) {
	c := NewConditions(dialect)
	if e.Not {
		return c.NotBetween(e.Col, e.From, e.To).ToSQL()
	}
	return c.Between(e.Col, e.From, e.To).ToSQL()
}

// DefaultLikeEscape specifies the default special character escaping for LIKE expressions.
// The strings at 2i positions are the special characters to be escaped while those at 2i+1
// positions are the corresponding escaped versions.
var DefaultLikeEscape = []string{"\\", "\\\\", "%", "\\%", "_", "\\_"}

// LikeExp is a LIKE or NOT LIKE expression with wildcard escaping.
type LikeExp struct {
	Col         string
	Values      []string
	Like        string
	Or          bool
	Left, Right bool
	Escape      []string
}

// Like generates "column LIKE ?" per value joined with AND; values are
// escaped and wrapped in % on both sides.
//
//	core.Like("name", "john")        // `name` LIKE ? ["%john%"]
//	core.Like("name", "key", "word") // `name` LIKE ? AND `name` LIKE ?
func Like(col string, values ...string) *LikeExp {
	return &LikeExp{Col: col, Values: values, Like: "LIKE", Left: true, Right: true, Escape: DefaultLikeEscape}
}

// NotLike generates a NOT LIKE expression.
func NotLike(col string, values ...string) *LikeExp {
	e := Like(col, values...)
	e.Like = "NOT LIKE"
	return e
}

// OrLike is Like with values joined by OR.
func OrLike(col string, values ...string) *LikeExp {
	e := Like(col, values...)
	e.Or = true
	return e
}

// Match sets wildcard matching on the left and/or right of the values.
func (e *LikeExp) Match(left, right bool) *LikeExp {
	e.Left, e.Right = left, right
	return e
}

// EscapeChars sets custom escape pairs [special1, escaped1, special2, escaped2, ...].
func (e *LikeExp) EscapeChars(chars ...string) *LikeExp {
	if len(chars)%2 != 0 {
		panic("LikeExp.EscapeChars requires even number of strings")
	}
	e.Escape = chars
	return e
}

// Build renders the expression.
func (e *LikeExp) Build(dialect dialects.Dialect) (string, []any) {
	c := NewConditions(dialect)
	for _, val := range e.Values {
		for j := 0; j+1 < len(e.Escape); j += 2 {
			val = strings.ReplaceAll(val, e.Escape[j], e.Escape[j+1])
		}
		if e.Left {
			val = "%" + val
		}
		if e.Right {
			val += "%"
		}
		if e.Or {
			c.OrColumnOp(e.Col, e.Like, val)
		} else {
			c.ColumnOp(e.Col, e.Like, val)
		}
	}
	return c.ToSQL()
}

// AndOrExp joins expressions with AND or OR; each non-empty part is parenthesized.
type AndOrExp struct {
	Exps []Expression
	Op   Logic
}

// And joins expressions with AND. Nil and empty expressions are skipped.
func And(exps ...Expression) Expression { return &AndOrExp{Exps: exps, Op: LogicAnd} }

// Or joins expressions with OR. Nil and empty expressions are skipped.
func Or(exps ...Expression) Expression { return &AndOrExp{Exps: exps, Op: LogicOr} }

// Build renders the expression.
func (e *AndOrExp) Build(dialect dialects.Dialect) (string, []any) {
	c := NewConditions(dialect)
	for _, exp := range e.Exps {
		if exp == nil {
			continue
		}
		if e.Op == LogicOr {
			c.OrExpr(exp)
		} else {
			c.Expr(exp)
		}
	}
	items := c.Get()
	if len(items) == 1 {
		sql := items[0].SQL
		return sql[1 : len(sql)-1], items[0].Params
	}
	return c.ToSQL()
}

// NotExp negates an expression.
type NotExp struct {
	Exp Expression
}

// Not generates "NOT (expression)".
func Not(exp Expression) Expression { return &NotExp{Exp: exp} }

// Build renders the expression; an empty inner expression renders empty.
func (e *NotExp) Build(dialect dialects.Dialect) (string, []any) {
	if e.Exp == nil {
		return "", nil
	}
	sql, args := e.Exp.Build(dialect)
	if sql == "" {
		return "", nil
	}
	return "NOT (" + sql + ")", args
}
