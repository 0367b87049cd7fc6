package core

import (
	"github.com/coregx/sqlcond/internal/dialects"
)

// WhereClause accumulates the predicates of a WHERE clause. It has the
// Conditions API under Where/OrWhere names plus an EXISTS slot.
//
//	w := core.NewWhereClause(dialect).
//	    Where("Id", 5).
//	    OrWhere("Name", "x")
//	sql, params := w.ToSQL(true)
//	// WHERE `Id` = ? OR `Name` = ?   [5 x]
type WhereClause struct {
	conds  conditionList
	exists *Condition
}

// NewWhereClause creates an empty WHERE clause. A nil dialect means MySQL.
func NewWhereClause(d dialects.Dialect) *WhereClause {
	return &WhereClause{conds: newConditionList(d)}
}

// Dialect returns the dialect used for quoting.
func (w *WhereClause) Dialect() dialects.Dialect { return w.conds.dialect }

// Where adds "column = ?", or "column IN (?, ...)" for a slice value.
func (w *WhereClause) Where(column string, value any) *WhereClause {
	w.conds.addColumn(LogicAnd, newColumnRef(column), "", value, valueTransform{})
	return w
}

// OrWhere is the OR form of Where.
func (w *WhereClause) OrWhere(column string, value any) *WhereClause {
	w.conds.addColumn(LogicOr, newColumnRef(column), "", value, valueTransform{})
	return w
}

// WhereOp adds "column op ?".
func (w *WhereClause) WhereOp(column, op string, value any) *WhereClause {
	w.conds.addColumn(LogicAnd, newColumnRef(column), op, value, valueTransform{})
	return w
}

// OrWhereOp is the OR form of WhereOp.
func (w *WhereClause) OrWhereOp(column, op string, value any) *WhereClause {
	w.conds.addColumn(LogicOr, newColumnRef(column), op, value, valueTransform{})
	return w
}

// WhereRow adds a row-value comparison for a tuple of columns.
func (w *WhereClause) WhereRow(columns []string, value any) *WhereClause {
	w.conds.addColumn(LogicAnd, newColumnRef(columns...), "", value, valueTransform{})
	return w
}

// OrWhereRow is the OR form of WhereRow.
func (w *WhereClause) OrWhereRow(columns []string, value any) *WhereClause {
	w.conds.addColumn(LogicOr, newColumnRef(columns...), "", value, valueTransform{})
	return w
}

// WhereRowOp is WhereRow with an explicit operator.
func (w *WhereClause) WhereRowOp(columns []string, op string, value any) *WhereClause {
	w.conds.addColumn(LogicAnd, newColumnRef(columns...), op, value, valueTransform{})
	return w
}

// OrWhereRowOp is the OR form of WhereRowOp.
func (w *WhereClause) OrWhereRowOp(columns []string, op string, value any) *WhereClause {
	w.conds.addColumn(LogicOr, newColumnRef(columns...), op, value, valueTransform{})
	return w
}

// WhereMultiple adds one Where per key, in key order.
func (w *WhereClause) WhereMultiple(columns map[string]any) *WhereClause {
	for _, k := range sortedKeys(columns) {
		w.Where(k, columns[k])
	}
	return w
}

// OrWhereMultiple is the OR form of WhereMultiple.
func (w *WhereClause) OrWhereMultiple(columns map[string]any) *WhereClause {
	for _, k := range sortedKeys(columns) {
		w.OrWhere(k, columns[k])
	}
	return w
}

func (w *WhereClause) part(logic Logic, part dialects.Part, column, op string, value any) *WhereClause {
	w.conds.addColumn(logic, newColumnRef(column), op, value, partTransform(w.conds.dialect, part))
	return w
}

// WhereDate compares the date part of column.
func (w *WhereClause) WhereDate(column string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartDate, column, "", value)
}

// OrWhereDate is the OR form of WhereDate.
func (w *WhereClause) OrWhereDate(column string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartDate, column, "", value)
}

// WhereDateOp is WhereDate with an explicit operator.
func (w *WhereClause) WhereDateOp(column, op string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartDate, column, op, value)
}

// OrWhereDateOp is the OR form of WhereDateOp.
func (w *WhereClause) OrWhereDateOp(column, op string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartDate, column, op, value)
}

// WhereTime compares the time part of column.
func (w *WhereClause) WhereTime(column string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartTime, column, "", value)
}

// OrWhereTime is the OR form of WhereTime.
func (w *WhereClause) OrWhereTime(column string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartTime, column, "", value)
}

// WhereTimeOp is WhereTime with an explicit operator.
func (w *WhereClause) WhereTimeOp(column, op string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartTime, column, op, value)
}

// OrWhereTimeOp is the OR form of WhereTimeOp.
func (w *WhereClause) OrWhereTimeOp(column, op string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartTime, column, op, value)
}

// WhereYear compares the year of column.
func (w *WhereClause) WhereYear(column string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartYear, column, "", value)
}

// OrWhereYear is the OR form of WhereYear.
func (w *WhereClause) OrWhereYear(column string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartYear, column, "", value)
}

// WhereYearOp is WhereYear with an explicit operator.
func (w *WhereClause) WhereYearOp(column, op string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartYear, column, op, value)
}

// OrWhereYearOp is the OR form of WhereYearOp.
func (w *WhereClause) OrWhereYearOp(column, op string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartYear, column, op, value)
}

// WhereMonth compares the month of column.
func (w *WhereClause) WhereMonth(column string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartMonth, column, "", value)
}

// OrWhereMonth is the OR form of WhereMonth.
func (w *WhereClause) OrWhereMonth(column string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartMonth, column, "", value)
}

// WhereMonthOp is WhereMonth with an explicit operator.
func (w *WhereClause) WhereMonthOp(column, op string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartMonth, column, op, value)
}

// OrWhereMonthOp is the OR form of WhereMonthOp.
func (w *WhereClause) OrWhereMonthOp(column, op string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartMonth, column, op, value)
}

// WhereDay compares the day of month of column.
func (w *WhereClause) WhereDay(column string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartDay, column, "", value)
}

// OrWhereDay is the OR form of WhereDay.
func (w *WhereClause) OrWhereDay(column string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartDay, column, "", value)
}

// WhereDayOp is WhereDay with an explicit operator.
func (w *WhereClause) WhereDayOp(column, op string, value any) *WhereClause {
	return w.part(LogicAnd, dialects.PartDay, column, op, value)
}

// OrWhereDayOp is the OR form of WhereDayOp.
func (w *WhereClause) OrWhereDayOp(column, op string, value any) *WhereClause {
	return w.part(LogicOr, dialects.PartDay, column, op, value)
}

// WhereRelation compares column1 with a column or, for a slice, a list of columns.
func (w *WhereClause) WhereRelation(column1 string, column2 any) *WhereClause {
	w.conds.addRelation(LogicAnd, newColumnRef(column1), "", column2)
	return w
}

// OrWhereRelation is the OR form of WhereRelation.
func (w *WhereClause) OrWhereRelation(column1 string, column2 any) *WhereClause {
	w.conds.addRelation(LogicOr, newColumnRef(column1), "", column2)
	return w
}

// WhereRelationOp is WhereRelation with an explicit operator.
func (w *WhereClause) WhereRelationOp(column1, op string, column2 any) *WhereClause {
	w.conds.addRelation(LogicAnd, newColumnRef(column1), op, column2)
	return w
}

// OrWhereRelationOp is the OR form of WhereRelationOp.
func (w *WhereClause) OrWhereRelationOp(column1, op string, column2 any) *WhereClause {
	w.conds.addRelation(LogicOr, newColumnRef(column1), op, column2)
	return w
}

// WhereRowRelation compares a tuple of columns with columns2.
func (w *WhereClause) WhereRowRelation(columns1 []string, columns2 any) *WhereClause {
	w.conds.addRelation(LogicAnd, newColumnRef(columns1...), "", columns2)
	return w
}

// OrWhereRowRelation is the OR form of WhereRowRelation.
func (w *WhereClause) OrWhereRowRelation(columns1 []string, columns2 any) *WhereClause {
	w.conds.addRelation(LogicOr, newColumnRef(columns1...), "", columns2)
	return w
}

// WhereRelations adds one WhereRelation per key, in key order.
func (w *WhereClause) WhereRelations(relations map[string]string) *WhereClause {
	for _, k := range sortedKeys(relations) {
		w.WhereRelation(k, relations[k])
	}
	return w
}

// OrWhereRelations is the OR form of WhereRelations.
func (w *WhereClause) OrWhereRelations(relations map[string]string) *WhereClause {
	for _, k := range sortedKeys(relations) {
		w.OrWhereRelation(k, relations[k])
	}
	return w
}

// WhereIs adds "column = 1".
func (w *WhereClause) WhereIs(column string) *WhereClause {
	w.conds.addFixed(LogicAnd, column, " = 1")
	return w
}

// OrWhereIs is the OR form of WhereIs.
func (w *WhereClause) OrWhereIs(column string) *WhereClause {
	w.conds.addFixed(LogicOr, column, " = 1")
	return w
}

// WhereIsNot adds "column = 0".
func (w *WhereClause) WhereIsNot(column string) *WhereClause {
	w.conds.addFixed(LogicAnd, column, " = 0")
	return w
}

// OrWhereIsNot is the OR form of WhereIsNot.
func (w *WhereClause) OrWhereIsNot(column string) *WhereClause {
	w.conds.addFixed(LogicOr, column, " = 0")
	return w
}

// WhereIsNull adds "column IS NULL".
func (w *WhereClause) WhereIsNull(column string) *WhereClause {
	w.conds.addFixed(LogicAnd, column, " IS NULL")
	return w
}

// OrWhereIsNull is the OR form of WhereIsNull.
func (w *WhereClause) OrWhereIsNull(column string) *WhereClause {
	w.conds.addFixed(LogicOr, column, " IS NULL")
	return w
}

// WhereIsNotNull adds "column IS NOT NULL".
func (w *WhereClause) WhereIsNotNull(column string) *WhereClause {
	w.conds.addFixed(LogicAnd, column, " IS NOT NULL")
	return w
}

// OrWhereIsNotNull is the OR form of WhereIsNotNull.
func (w *WhereClause) OrWhereIsNotNull(column string) *WhereClause {
	w.conds.addFixed(LogicOr, column, " IS NOT NULL")
	return w
}

// WhereBetween adds "column BETWEEN ? AND ?".
func (w *WhereClause) WhereBetween(column string, from, to any) *WhereClause {
	w.conds.addBetween(LogicAnd, column, false, from, to)
	return w
}

// OrWhereBetween is the OR form of WhereBetween.
func (w *WhereClause) OrWhereBetween(column string, from, to any) *WhereClause {
	w.conds.addBetween(LogicOr, column, false, from, to)
	return w
}

// WhereNotBetween adds "column NOT BETWEEN ? AND ?".
func (w *WhereClause) WhereNotBetween(column string, from, to any) *WhereClause {
	w.conds.addBetween(LogicAnd, column, true, from, to)
	return w
}

// OrWhereNotBetween is the OR form of WhereNotBetween.
func (w *WhereClause) OrWhereNotBetween(column string, from, to any) *WhereClause {
	w.conds.addBetween(LogicOr, column, true, from, to)
	return w
}

// WhereConditions adds a parenthesized group; see Conditions.Conditions for
// the accepted sources.
func (w *WhereClause) WhereConditions(src any) *WhereClause {
	w.conds.addGroup(LogicAnd, src)
	return w
}

// OrWhereConditions is the OR form of WhereConditions.
func (w *WhereClause) OrWhereConditions(src any) *WhereClause {
	w.conds.addGroup(LogicOr, src)
	return w
}

// WhereGroup adds a parenthesized group built by fn on a fresh WhereClause.
func (w *WhereClause) WhereGroup(fn func(*WhereClause)) *WhereClause {
	w.conds.addGroup(LogicAnd, fn)
	return w
}

// OrWhereGroup is the OR form of WhereGroup.
func (w *WhereClause) OrWhereGroup(fn func(*WhereClause)) *WhereClause {
	w.conds.addGroup(LogicOr, fn)
	return w
}

// WhereExpr adds a rendered Expression as a group.
func (w *WhereClause) WhereExpr(e Expression) *WhereClause {
	w.conds.addGroup(LogicAnd, e)
	return w
}

// OrWhereExpr is the OR form of WhereExpr.
func (w *WhereClause) OrWhereExpr(e Expression) *WhereClause {
	w.conds.addGroup(LogicOr, e)
	return w
}

// WhereRaw adds "(sql)" with shorthand references expanded.
func (w *WhereClause) WhereRaw(sql string, params ...any) *WhereClause {
	w.conds.addRaw(LogicAnd, sql, params)
	return w
}

// OrWhereRaw is the OR form of WhereRaw.
func (w *WhereClause) OrWhereRaw(sql string, params ...any) *WhereClause {
	w.conds.addRaw(LogicOr, sql, params)
	return w
}

// AddWhere appends a pre-rendered condition as is.
func (w *WhereClause) AddWhere(logic Logic, sql string, params ...any) *WhereClause {
	w.conds.add(logic, sql, append([]any{}, params...))
	return w
}

// HasWhere reports whether any condition was added. The EXISTS slot is not counted.
func (w *WhereClause) HasWhere() bool { return w.conds.has() }

// GetWhere returns a copy of the conditions.
func (w *WhereClause) GetWhere() []Condition { return w.conds.get() }

// ClearWhere removes all conditions, keeping the EXISTS slot.
func (w *WhereClause) ClearWhere() *WhereClause {
	w.conds.clear()
	return w
}

// WhereExists sets the EXISTS slot to "EXISTS (subquery)". The subquery is
// rendered now; a render error panics.
func (w *WhereClause) WhereExists(q *SelectQuery) *WhereClause {
	return w.setExists(LogicAnd, "EXISTS", q)
}

// OrWhereExists is WhereExists joined by OR.
func (w *WhereClause) OrWhereExists(q *SelectQuery) *WhereClause {
	return w.setExists(LogicOr, "EXISTS", q)
}

// WhereNotExists sets the EXISTS slot to "NOT EXISTS (subquery)".
func (w *WhereClause) WhereNotExists(q *SelectQuery) *WhereClause {
	return w.setExists(LogicAnd, "NOT EXISTS", q)
}

// OrWhereNotExists is WhereNotExists joined by OR.
func (w *WhereClause) OrWhereNotExists(q *SelectQuery) *WhereClause {
	return w.setExists(LogicOr, "NOT EXISTS", q)
}

// WhereExistsRaw sets the EXISTS slot from raw SQL.
func (w *WhereClause) WhereExistsRaw(sql string, params ...any) *WhereClause {
	return w.setExistsRaw(LogicAnd, "EXISTS", sql, params)
}

// OrWhereExistsRaw is WhereExistsRaw joined by OR.
func (w *WhereClause) OrWhereExistsRaw(sql string, params ...any) *WhereClause {
	return w.setExistsRaw(LogicOr, "EXISTS", sql, params)
}

// WhereNotExistsRaw sets the EXISTS slot to NOT EXISTS from raw SQL.
func (w *WhereClause) WhereNotExistsRaw(sql string, params ...any) *WhereClause {
	return w.setExistsRaw(LogicAnd, "NOT EXISTS", sql, params)
}

// OrWhereNotExistsRaw is WhereNotExistsRaw joined by OR.
func (w *WhereClause) OrWhereNotExistsRaw(sql string, params ...any) *WhereClause {
	return w.setExistsRaw(LogicOr, "NOT EXISTS", sql, params)
}

func (w *WhereClause) setExists(logic Logic, keyword string, q *SelectQuery) *WhereClause {
	sql, params, err := q.ToSQL()
	if err != nil {
		panic(err)
	}
	w.exists = &Condition{Logic: logic, SQL: keyword + " (" + sql + ")", Params: params}
	return w
}

func (w *WhereClause) setExistsRaw(logic Logic, keyword, sql string, params []any) *WhereClause {
	raw := rawFragment(w.conds.dialect, sql, params)
	w.exists = &Condition{Logic: logic, SQL: keyword + " (" + raw.sql + ")", Params: raw.params}
	return w
}

// HasExists reports whether the EXISTS slot is set.
func (w *WhereClause) HasExists() bool { return w.exists != nil }

// GetExists returns the EXISTS slot, or nil.
func (w *WhereClause) GetExists() *Condition {
	if w.exists == nil {
		return nil
	}
	c := *w.exists
	c.Params = append([]any{}, c.Params...)
	return &c
}

// ClearExists empties the EXISTS slot.
func (w *WhereClause) ClearExists() *WhereClause {
	w.exists = nil
	return w
}

// Clone returns an independent copy.
func (w *WhereClause) Clone() *WhereClause {
	return &WhereClause{conds: w.conds.clone(), exists: w.GetExists()}
}

// ToSQL renders the conditions followed by the EXISTS slot. With useClause
// the result is prefixed by "WHERE " unless it is empty.
func (w *WhereClause) ToSQL(useClause bool) (string, []any) {
	sql, params := w.conds.toSQL()
	if w.exists != nil {
		if sql != "" {
			sql += " " + string(w.exists.Logic) + " "
		}
		sql += w.exists.SQL
		params = append(params, w.exists.Params...)
	}
	if useClause && sql != "" {
		sql = "WHERE " + sql
	}
	return sql, params
}

// ConditionSQL implements ConditionSource.
func (w *WhereClause) ConditionSQL() (string, []any) { return w.ToSQL(false) }

// String returns the rendered clause.
func (w *WhereClause) String() string {
	sql, _ := w.ToSQL(true)
	return sql
}
