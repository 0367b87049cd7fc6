package core

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlcond/internal/dialects"
)

// Value expressions render SQL functions for select columns, SET values and
// comparisons. Operands follow one rule: a string is a column reference, a
// string starting with a quote is a literal copied verbatim, an Expression
// is nested, and anything else is bound as a param.

func operand(v any, d dialects.Dialect) (string, []any) {
	switch x := v.(type) {
	case string:
		if strings.HasPrefix(x, "'") || strings.HasPrefix(x, `"`) {
			return x, nil
		}
		return d.QuoteName(x), nil
	case Expression:
		return x.Build(d)
	default:
		return "?", []any{v}
	}
}

func operands(values []any, d dialects.Dialect) ([]string, []any) {
	parts := make([]string, 0, len(values))
	var args []any
	for _, v := range values {
		sql, a := operand(v, d)
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return parts, args
}

func withAlias(sql, alias string, d dialects.Dialect) string {
	if alias == "" {
		return sql
	}
	return sql + " AS " + d.QuoteIdentifier(alias)
}

// FuncExp is a function call over operands.
type FuncExp struct {
	name   string
	values []any
	alias  string
}

// Coalesce renders COALESCE(values...).
func Coalesce(values ...any) *FuncExp { return &FuncExp{name: "COALESCE", values: values} }

// NullIf renders NULLIF(a, b).
func NullIf(a, b any) *FuncExp { return &FuncExp{name: "NULLIF", values: []any{a, b}} }

// Greatest renders GREATEST(values...), or the scalar MAX on SQLite.
func Greatest(values ...any) *FuncExp { return &FuncExp{name: "GREATEST", values: values} }

// Least renders LEAST(values...), or the scalar MIN on SQLite.
func Least(values ...any) *FuncExp { return &FuncExp{name: "LEAST", values: values} }

// Concat renders CONCAT(values...) on MySQL and a || chain elsewhere.
func Concat(values ...any) *FuncExp { return &FuncExp{name: "CONCAT", values: values} }

// As sets the column alias.
func (f *FuncExp) As(alias string) *FuncExp {
	f.alias = alias
	return f
}

// Build implements Expression.
func (f *FuncExp) Build(d dialects.Dialect) (string, []any) {
	if len(f.values) == 0 {
		return "", nil
	}
	parts, args := operands(f.values, d)

	name := f.name
	switch {
	case name == "CONCAT" && d.Name() != "mysql":
		return withAlias("("+strings.Join(parts, " || ")+")", f.alias, d), args
	case name == "GREATEST" && d.Name() == "sqlite":
		name = "MAX"
	case name == "LEAST" && d.Name() == "sqlite":
		name = "MIN"
	}
	return withAlias(name+"("+strings.Join(parts, ", ")+")", f.alias, d), args
}

// CaseExp is a CASE expression. With a column it compares the column to
// each WHEN value; without one each WHEN is a predicate.
type CaseExp struct {
	column    string
	whens     [][2]any
	elseValue any
	hasElse   bool
	alias     string
}

// Case starts a simple CASE on column.
//
//	core.Case("status").When("active", 1).When("inactive", 0).Else(-1).As("code")
//	// CASE `status` WHEN ? THEN ? WHEN ? THEN ? ELSE ? END AS `code`
func Case(column string) *CaseExp { return &CaseExp{column: column} }

// CaseWhen starts a searched CASE. Conditions are Expressions or raw SQL.
func CaseWhen() *CaseExp { return &CaseExp{} }

// When adds a branch. Results are bound as params unless they are
// Expressions.
func (c *CaseExp) When(condition, result any) *CaseExp {
	c.whens = append(c.whens, [2]any{condition, result})
	return c
}

// Else sets the ELSE result.
func (c *CaseExp) Else(value any) *CaseExp {
	c.elseValue, c.hasElse = value, true
	return c
}

// As sets the column alias.
func (c *CaseExp) As(alias string) *CaseExp {
	c.alias = alias
	return c
}

func bound(v any, d dialects.Dialect) (string, []any) {
	if e, ok := v.(Expression); ok {
		return e.Build(d)
	}
	return "?", []any{v}
}

// Build implements Expression.
func (c *CaseExp) Build(d dialects.Dialect) (string, []any) {
	if len(c.whens) == 0 {
		return "", nil
	}

	var b strings.Builder
	var args []any
	b.WriteString("CASE")
	if c.column != "" {
		b.WriteString(" " + d.QuoteName(c.column))
	}

	for _, w := range c.whens {
		var cond string
		var condArgs []any
		switch {
		case c.column != "":
			cond, condArgs = bound(w[0], d)
		default:
			if e, ok := w[0].(Expression); ok {
				cond, condArgs = e.Build(d)
			} else {
				cond = d.QuoteSQL(fmt.Sprint(w[0]))
			}
		}
		result, resultArgs := bound(w[1], d)
		b.WriteString(" WHEN " + cond + " THEN " + result)
		args = append(args, condArgs...)
		args = append(args, resultArgs...)
	}

	if c.hasElse {
		sql, a := bound(c.elseValue, d)
		b.WriteString(" ELSE " + sql)
		args = append(args, a...)
	}
	b.WriteString(" END")
	return withAlias(b.String(), c.alias, d), args
}
