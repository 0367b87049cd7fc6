package core

import (
	"sort"

	"github.com/coregx/sqlcond/internal/dialects"
)

func defaultDialect() dialects.Dialect {
	return dialects.GetDialect("mysql")
}

// Conditions is a standalone list of conditions. It is used for nested
// groups, join ON conditions and anywhere a boolean expression is built
// outside of a WHERE or HAVING clause.
//
// Every method has an Or twin joining the new condition with OR instead of
// AND. Shape errors (an array value for a scalar operator, wrong row arity)
// panic with a *SQLError at the offending call.
//
//	c := core.NewConditions(dialect).
//	    Column("Status", "active").
//	    Group(func(g *core.Conditions) {
//	        g.Column("Role", []string{"admin", "owner"}).OrIsNull("Role")
//	    })
//	// `Status` = ? AND (`Role` IN (?, ?) OR `Role` IS NULL)
type Conditions struct {
	list conditionList
}

// NewConditions creates an empty condition list. A nil dialect means MySQL.
func NewConditions(d dialects.Dialect) *Conditions {
	return &Conditions{list: newConditionList(d)}
}

// Dialect returns the dialect used for quoting.
func (c *Conditions) Dialect() dialects.Dialect { return c.list.dialect }

// Column adds "column = ?" for a scalar or "column IN (?, ...)" for a slice.
func (c *Conditions) Column(column string, value any) *Conditions {
	c.list.addColumn(LogicAnd, newColumnRef(column), "", value, valueTransform{})
	return c
}

// OrColumn is the OR form of Column.
func (c *Conditions) OrColumn(column string, value any) *Conditions {
	c.list.addColumn(LogicOr, newColumnRef(column), "", value, valueTransform{})
	return c
}

// ColumnOp adds "column op ?". Only IN and NOT IN accept slice values.
func (c *Conditions) ColumnOp(column, op string, value any) *Conditions {
	c.list.addColumn(LogicAnd, newColumnRef(column), op, value, valueTransform{})
	return c
}

// OrColumnOp is the OR form of ColumnOp.
func (c *Conditions) OrColumnOp(column, op string, value any) *Conditions {
	c.list.addColumn(LogicOr, newColumnRef(column), op, value, valueTransform{})
	return c
}

// Row adds a row-value comparison: "(a, b) = (?, ?)" for a row of values or
// "(a, b) IN ((?, ?), ...)" for a slice of rows.
func (c *Conditions) Row(columns []string, value any) *Conditions {
	c.list.addColumn(LogicAnd, newColumnRef(columns...), "", value, valueTransform{})
	return c
}

// OrRow is the OR form of Row.
func (c *Conditions) OrRow(columns []string, value any) *Conditions {
	c.list.addColumn(LogicOr, newColumnRef(columns...), "", value, valueTransform{})
	return c
}

// RowOp is Row with an explicit operator.
func (c *Conditions) RowOp(columns []string, op string, value any) *Conditions {
	c.list.addColumn(LogicAnd, newColumnRef(columns...), op, value, valueTransform{})
	return c
}

// OrRowOp is the OR form of RowOp.
func (c *Conditions) OrRowOp(columns []string, op string, value any) *Conditions {
	c.list.addColumn(LogicOr, newColumnRef(columns...), op, value, valueTransform{})
	return c
}

// Columns adds one Column condition per key, in key order.
func (c *Conditions) Columns(columns map[string]any) *Conditions {
	for _, k := range sortedKeys(columns) {
		c.Column(k, columns[k])
	}
	return c
}

// OrColumns is the OR form of Columns.
func (c *Conditions) OrColumns(columns map[string]any) *Conditions {
	for _, k := range sortedKeys(columns) {
		c.OrColumn(k, columns[k])
	}
	return c
}

// Date compares the date part of column.
func (c *Conditions) Date(column string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartDate, column, "", value)
}

// OrDate is the OR form of Date.
func (c *Conditions) OrDate(column string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartDate, column, "", value)
}

// DateOp is Date with an explicit operator.
func (c *Conditions) DateOp(column, op string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartDate, column, op, value)
}

// OrDateOp is the OR form of DateOp.
func (c *Conditions) OrDateOp(column, op string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartDate, column, op, value)
}

// Time compares the time part of column.
func (c *Conditions) Time(column string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartTime, column, "", value)
}

// OrTime is the OR form of Time.
func (c *Conditions) OrTime(column string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartTime, column, "", value)
}

// TimeOp is Time with an explicit operator.
func (c *Conditions) TimeOp(column, op string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartTime, column, op, value)
}

// OrTimeOp is the OR form of TimeOp.
func (c *Conditions) OrTimeOp(column, op string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartTime, column, op, value)
}

// Year compares the year of column.
func (c *Conditions) Year(column string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartYear, column, "", value)
}

// OrYear is the OR form of Year.
func (c *Conditions) OrYear(column string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartYear, column, "", value)
}

// YearOp is Year with an explicit operator.
func (c *Conditions) YearOp(column, op string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartYear, column, op, value)
}

// OrYearOp is the OR form of YearOp.
func (c *Conditions) OrYearOp(column, op string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartYear, column, op, value)
}

// Month compares the month of column.
func (c *Conditions) Month(column string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartMonth, column, "", value)
}

// OrMonth is the OR form of Month.
func (c *Conditions) OrMonth(column string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartMonth, column, "", value)
}

// MonthOp is Month with an explicit operator.
func (c *Conditions) MonthOp(column, op string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartMonth, column, op, value)
}

// OrMonthOp is the OR form of MonthOp.
func (c *Conditions) OrMonthOp(column, op string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartMonth, column, op, value)
}

// Day compares the day of month of column.
func (c *Conditions) Day(column string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartDay, column, "", value)
}

// OrDay is the OR form of Day.
func (c *Conditions) OrDay(column string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartDay, column, "", value)
}

// DayOp is Day with an explicit operator.
func (c *Conditions) DayOp(column, op string, value any) *Conditions {
	return c.part(LogicAnd, dialects.PartDay, column, op, value)
}

// OrDayOp is the OR form of DayOp.
func (c *Conditions) OrDayOp(column, op string, value any) *Conditions {
	return c.part(LogicOr, dialects.PartDay, column, op, value)
}

func (c *Conditions) part(logic Logic, part dialects.Part, column, op string, value any) *Conditions {
	c.list.addColumn(logic, newColumnRef(column), op, value, partTransform(c.list.dialect, part))
	return c
}

// Relation compares two columns. column2 is a column name, or a slice of
// names for "column1 IN (c1, c2)".
func (c *Conditions) Relation(column1 string, column2 any) *Conditions {
	c.list.addRelation(LogicAnd, newColumnRef(column1), "", column2)
	return c
}

// OrRelation is the OR form of Relation.
func (c *Conditions) OrRelation(column1 string, column2 any) *Conditions {
	c.list.addRelation(LogicOr, newColumnRef(column1), "", column2)
	return c
}

// RelationOp is Relation with an explicit operator.
func (c *Conditions) RelationOp(column1, op string, column2 any) *Conditions {
	c.list.addRelation(LogicAnd, newColumnRef(column1), op, column2)
	return c
}

// OrRelationOp is the OR form of RelationOp.
func (c *Conditions) OrRelationOp(column1, op string, column2 any) *Conditions {
	c.list.addRelation(LogicOr, newColumnRef(column1), op, column2)
	return c
}

// RowRelation compares a tuple of columns with a tuple of columns ([]string)
// or a list of tuples ([][]string) for IN.
func (c *Conditions) RowRelation(columns1 []string, columns2 any) *Conditions {
	c.list.addRelation(LogicAnd, newColumnRef(columns1...), "", columns2)
	return c
}

// OrRowRelation is the OR form of RowRelation.
func (c *Conditions) OrRowRelation(columns1 []string, columns2 any) *Conditions {
	c.list.addRelation(LogicOr, newColumnRef(columns1...), "", columns2)
	return c
}

// RowRelationOp is RowRelation with an explicit operator.
func (c *Conditions) RowRelationOp(columns1 []string, op string, columns2 any) *Conditions {
	c.list.addRelation(LogicAnd, newColumnRef(columns1...), op, columns2)
	return c
}

// OrRowRelationOp is the OR form of RowRelationOp.
func (c *Conditions) OrRowRelationOp(columns1 []string, op string, columns2 any) *Conditions {
	c.list.addRelation(LogicOr, newColumnRef(columns1...), op, columns2)
	return c
}

// Relations adds one Relation per key, in key order.
func (c *Conditions) Relations(relations map[string]string) *Conditions {
	for _, k := range sortedKeys(relations) {
		c.Relation(k, relations[k])
	}
	return c
}

// OrRelations is the OR form of Relations.
func (c *Conditions) OrRelations(relations map[string]string) *Conditions {
	for _, k := range sortedKeys(relations) {
		c.OrRelation(k, relations[k])
	}
	return c
}

// Is adds "column = 1".
func (c *Conditions) Is(column string) *Conditions {
	c.list.addFixed(LogicAnd, column, " = 1")
	return c
}

// OrIs is the OR form of Is.
func (c *Conditions) OrIs(column string) *Conditions {
	c.list.addFixed(LogicOr, column, " = 1")
	return c
}

// IsNot adds "column = 0".
func (c *Conditions) IsNot(column string) *Conditions {
	c.list.addFixed(LogicAnd, column, " = 0")
	return c
}

// OrIsNot is the OR form of IsNot.
func (c *Conditions) OrIsNot(column string) *Conditions {
	c.list.addFixed(LogicOr, column, " = 0")
	return c
}

// IsNull adds "column IS NULL".
func (c *Conditions) IsNull(column string) *Conditions {
	c.list.addFixed(LogicAnd, column, " IS NULL")
	return c
}

// OrIsNull is the OR form of IsNull.
func (c *Conditions) OrIsNull(column string) *Conditions {
	c.list.addFixed(LogicOr, column, " IS NULL")
	return c
}

// IsNotNull adds "column IS NOT NULL".
func (c *Conditions) IsNotNull(column string) *Conditions {
	c.list.addFixed(LogicAnd, column, " IS NOT NULL")
	return c
}

// OrIsNotNull is the OR form of IsNotNull.
func (c *Conditions) OrIsNotNull(column string) *Conditions {
	c.list.addFixed(LogicOr, column, " IS NOT NULL")
	return c
}

// Between adds "column BETWEEN ? AND ?" binding from then to.
func (c *Conditions) Between(column string, from, to any) *Conditions {
	c.list.addBetween(LogicAnd, column, false, from, to)
	return c
}

// OrBetween is the OR form of Between.
func (c *Conditions) OrBetween(column string, from, to any) *Conditions {
	c.list.addBetween(LogicOr, column, false, from, to)
	return c
}

// NotBetween adds "column NOT BETWEEN ? AND ?".
func (c *Conditions) NotBetween(column string, from, to any) *Conditions {
	c.list.addBetween(LogicAnd, column, true, from, to)
	return c
}

// OrNotBetween is the OR form of NotBetween.
func (c *Conditions) OrNotBetween(column string, from, to any) *Conditions {
	c.list.addBetween(LogicOr, column, true, from, to)
	return c
}

// Conditions adds a parenthesized group. src is a func(*Conditions),
// func(*WhereClause), func(*HavingClause), a ConditionSource or an
// Expression; any other type panics with ErrUnknownConditionsFormat.
// The group is rendered now: later changes to src are not seen.
func (c *Conditions) Conditions(src any) *Conditions {
	c.list.addGroup(LogicAnd, src)
	return c
}

// OrConditions is the OR form of Conditions.
func (c *Conditions) OrConditions(src any) *Conditions {
	c.list.addGroup(LogicOr, src)
	return c
}

// Group adds a parenthesized group built by fn.
func (c *Conditions) Group(fn func(*Conditions)) *Conditions {
	c.list.addGroup(LogicAnd, fn)
	return c
}

// OrGroup is the OR form of Group.
func (c *Conditions) OrGroup(fn func(*Conditions)) *Conditions {
	c.list.addGroup(LogicOr, fn)
	return c
}

// Expr adds a rendered Expression as a parenthesized group.
func (c *Conditions) Expr(e Expression) *Conditions {
	c.list.addGroup(LogicAnd, e)
	return c
}

// OrExpr is the OR form of Expr.
func (c *Conditions) OrExpr(e Expression) *Conditions {
	c.list.addGroup(LogicOr, e)
	return c
}

// Raw adds "(sql)" after expanding shorthand references such as !Table.Column.
// The number of "?" in sql must match len(params).
func (c *Conditions) Raw(sql string, params ...any) *Conditions {
	c.list.addRaw(LogicAnd, sql, params)
	return c
}

// OrRaw is the OR form of Raw.
func (c *Conditions) OrRaw(sql string, params ...any) *Conditions {
	c.list.addRaw(LogicOr, sql, params)
	return c
}

// Add appends a pre-rendered condition as is.
func (c *Conditions) Add(logic Logic, sql string, params ...any) *Conditions {
	c.list.add(logic, sql, append([]any{}, params...))
	return c
}

// Has reports whether any condition was added.
func (c *Conditions) Has() bool { return c.list.has() }

// Get returns a copy of the conditions.
func (c *Conditions) Get() []Condition { return c.list.get() }

// Clear removes all conditions.
func (c *Conditions) Clear() *Conditions {
	c.list.clear()
	return c
}

// Clone returns an independent copy.
func (c *Conditions) Clone() *Conditions {
	return &Conditions{list: c.list.clone()}
}

// ToSQL renders the conditions and their params.
func (c *Conditions) ToSQL() (string, []any) { return c.list.toSQL() }

// ConditionSQL implements ConditionSource.
func (c *Conditions) ConditionSQL() (string, []any) { return c.list.toSQL() }

// String returns the rendered SQL.
func (c *Conditions) String() string {
	sql, _ := c.list.toSQL()
	return sql
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
