package core

import (
	"github.com/coregx/sqlcond/internal/dialects"
)

// HavingClause accumulates the predicates of a HAVING clause under
// Having/OrHaving names.
//
//	h := core.NewHavingClause(dialect).HavingOp("COUNT(!Id)", ">", 3)
//	// HAVING COUNT(`Id`) > ?
type HavingClause struct {
	conds conditionList
}

// NewHavingClause creates an empty HAVING clause. A nil dialect means MySQL.
func NewHavingClause(d dialects.Dialect) *HavingClause {
	return &HavingClause{conds: newConditionList(d)}
}

// Dialect returns the dialect used for quoting.
func (h *HavingClause) Dialect() dialects.Dialect { return h.conds.dialect }

// Having adds "column = ?", or "column IN (?, ...)" for a slice value.
func (h *HavingClause) Having(column string, value any) *HavingClause {
	h.conds.addColumn(LogicAnd, newColumnRef(column), "", value, valueTransform{})
	return h
}

// OrHaving is the OR form of Having.
func (h *HavingClause) OrHaving(column string, value any) *HavingClause {
	h.conds.addColumn(LogicOr, newColumnRef(column), "", value, valueTransform{})
	return h
}

// HavingOp adds "column op ?".
func (h *HavingClause) HavingOp(column, op string, value any) *HavingClause {
	h.conds.addColumn(LogicAnd, newColumnRef(column), op, value, valueTransform{})
	return h
}

// OrHavingOp is the OR form of HavingOp.
func (h *HavingClause) OrHavingOp(column, op string, value any) *HavingClause {
	h.conds.addColumn(LogicOr, newColumnRef(column), op, value, valueTransform{})
	return h
}

// HavingRow adds a row-value comparison for a tuple of columns.
func (h *HavingClause) HavingRow(columns []string, value any) *HavingClause {
	h.conds.addColumn(LogicAnd, newColumnRef(columns...), "", value, valueTransform{})
	return h
}

// OrHavingRow is the OR form of HavingRow.
func (h *HavingClause) OrHavingRow(columns []string, value any) *HavingClause {
	h.conds.addColumn(LogicOr, newColumnRef(columns...), "", value, valueTransform{})
	return h
}

// HavingRowOp is HavingRow with an explicit operator.
func (h *HavingClause) HavingRowOp(columns []string, op string, value any) *HavingClause {
	h.conds.addColumn(LogicAnd, newColumnRef(columns...), op, value, valueTransform{})
	return h
}

// OrHavingRowOp is the OR form of HavingRowOp.
func (h *HavingClause) OrHavingRowOp(columns []string, op string, value any) *HavingClause {
	h.conds.addColumn(LogicOr, newColumnRef(columns...), op, value, valueTransform{})
	return h
}

// HavingMultiple adds one Having per key, in key order.
func (h *HavingClause) HavingMultiple(columns map[string]any) *HavingClause {
	for _, k := range sortedKeys(columns) {
		h.Having(k, columns[k])
	}
	return h
}

// OrHavingMultiple is the OR form of HavingMultiple.
func (h *HavingClause) OrHavingMultiple(columns map[string]any) *HavingClause {
	for _, k := range sortedKeys(columns) {
		h.OrHaving(k, columns[k])
	}
	return h
}

func (h *HavingClause) part(logic Logic, part dialects.Part, column, op string, value any) *HavingClause {
	h.conds.addColumn(logic, newColumnRef(column), op, value, partTransform(h.conds.dialect, part))
	return h
}

// HavingDate compares the date part of column.
func (h *HavingClause) HavingDate(column string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartDate, column, "", value)
}

// OrHavingDate is the OR form of HavingDate.
func (h *HavingClause) OrHavingDate(column string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartDate, column, "", value)
}

// HavingDateOp is HavingDate with an explicit operator.
func (h *HavingClause) HavingDateOp(column, op string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartDate, column, op, value)
}

// OrHavingDateOp is the OR form of HavingDateOp.
func (h *HavingClause) OrHavingDateOp(column, op string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartDate, column, op, value)
}

// HavingTime compares the time part of column.
func (h *HavingClause) HavingTime(column string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartTime, column, "", value)
}

// OrHavingTime is the OR form of HavingTime.
func (h *HavingClause) OrHavingTime(column string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartTime, column, "", value)
}

// HavingTimeOp is HavingTime with an explicit operator.
func (h *HavingClause) HavingTimeOp(column, op string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartTime, column, op, value)
}

// OrHavingTimeOp is the OR form of HavingTimeOp.
func (h *HavingClause) OrHavingTimeOp(column, op string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartTime, column, op, value)
}

// HavingYear compares the year of column.
func (h *HavingClause) HavingYear(column string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartYear, column, "", value)
}

// OrHavingYear is the OR form of HavingYear.
func (h *HavingClause) OrHavingYear(column string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartYear, column, "", value)
}

// HavingYearOp is HavingYear with an explicit operator.
func (h *HavingClause) HavingYearOp(column, op string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartYear, column, op, value)
}

// OrHavingYearOp is the OR form of HavingYearOp.
func (h *HavingClause) OrHavingYearOp(column, op string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartYear, column, op, value)
}

// HavingMonth compares the month of column.
func (h *HavingClause) HavingMonth(column string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartMonth, column, "", value)
}

// OrHavingMonth is the OR form of HavingMonth.
func (h *HavingClause) OrHavingMonth(column string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartMonth, column, "", value)
}

// HavingMonthOp is HavingMonth with an explicit operator.
func (h *HavingClause) HavingMonthOp(column, op string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartMonth, column, op, value)
}

// OrHavingMonthOp is the OR form of HavingMonthOp.
func (h *HavingClause) OrHavingMonthOp(column, op string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartMonth, column, op, value)
}

// HavingDay compares the day of month of column.
func (h *HavingClause) HavingDay(column string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartDay, column, "", value)
}

// OrHavingDay is the OR form of HavingDay.
func (h *HavingClause) OrHavingDay(column string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartDay, column, "", value)
}

// HavingDayOp is HavingDay with an explicit operator.
func (h *HavingClause) HavingDayOp(column, op string, value any) *HavingClause {
	return h.part(LogicAnd, dialects.PartDay, column, op, value)
}

// OrHavingDayOp is the OR form of HavingDayOp.
func (h *HavingClause) OrHavingDayOp(column, op string, value any) *HavingClause {
	return h.part(LogicOr, dialects.PartDay, column, op, value)
}

// HavingRelation compares column1 with a column or, for a slice, a list of columns.
func (h *HavingClause) HavingRelation(column1 string, column2 any) *HavingClause {
	h.conds.addRelation(LogicAnd, newColumnRef(column1), "", column2)
	return h
}

// OrHavingRelation is the OR form of HavingRelation.
func (h *HavingClause) OrHavingRelation(column1 string, column2 any) *HavingClause {
	h.conds.addRelation(LogicOr, newColumnRef(column1), "", column2)
	return h
}

// HavingRelationOp is HavingRelation with an explicit operator.
func (h *HavingClause) HavingRelationOp(column1, op string, column2 any) *HavingClause {
	h.conds.addRelation(LogicAnd, newColumnRef(column1), op, column2)
	return h
}

// OrHavingRelationOp is the OR form of HavingRelationOp.
func (h *HavingClause) OrHavingRelationOp(column1, op string, column2 any) *HavingClause {
	h.conds.addRelation(LogicOr, newColumnRef(column1), op, column2)
	return h
}

// HavingRowRelation compares a tuple of columns with columns2.
func (h *HavingClause) HavingRowRelation(columns1 []string, columns2 any) *HavingClause {
	h.conds.addRelation(LogicAnd, newColumnRef(columns1...), "", columns2)
	return h
}

// OrHavingRowRelation is the OR form of HavingRowRelation.
func (h *HavingClause) OrHavingRowRelation(columns1 []string, columns2 any) *HavingClause {
	h.conds.addRelation(LogicOr, newColumnRef(columns1...), "", columns2)
	return h
}

// HavingRelations adds one HavingRelation per key, in key order.
func (h *HavingClause) HavingRelations(relations map[string]string) *HavingClause {
	for _, k := range sortedKeys(relations) {
		h.HavingRelation(k, relations[k])
	}
	return h
}

// OrHavingRelations is the OR form of HavingRelations.
func (h *HavingClause) OrHavingRelations(relations map[string]string) *HavingClause {
	for _, k := range sortedKeys(relations) {
		h.OrHavingRelation(k, relations[k])
	}
	return h
}

// HavingIs adds "column = 1".
func (h *HavingClause) HavingIs(column string) *HavingClause {
	h.conds.addFixed(LogicAnd, column, " = 1")
	return h
}

// OrHavingIs is the OR form of HavingIs.
func (h *HavingClause) OrHavingIs(column string) *HavingClause {
	h.conds.addFixed(LogicOr, column, " = 1")
	return h
}

// HavingIsNot adds "column = 0".
func (h *HavingClause) HavingIsNot(column string) *HavingClause {
	h.conds.addFixed(LogicAnd, column, " = 0")
	return h
}

// OrHavingIsNot is the OR form of HavingIsNot.
func (h *HavingClause) OrHavingIsNot(column string) *HavingClause {
	h.conds.addFixed(LogicOr, column, " = 0")
	return h
}

// HavingIsNull adds "column IS NULL".
func (h *HavingClause) HavingIsNull(column string) *HavingClause {
	h.conds.addFixed(LogicAnd, column, " IS NULL")
	return h
}

// OrHavingIsNull is the OR form of HavingIsNull.
func (h *HavingClause) OrHavingIsNull(column string) *HavingClause {
	h.conds.addFixed(LogicOr, column, " IS NULL")
	return h
}

// HavingIsNotNull adds "column IS NOT NULL".
func (h *HavingClause) HavingIsNotNull(column string) *HavingClause {
	h.conds.addFixed(LogicAnd, column, " IS NOT NULL")
	return h
}

// OrHavingIsNotNull is the OR form of HavingIsNotNull.
func (h *HavingClause) OrHavingIsNotNull(column string) *HavingClause {
	h.conds.addFixed(LogicOr, column, " IS NOT NULL")
	return h
}

// HavingBetween adds "column BETWEEN ? AND ?".
func (h *HavingClause) HavingBetween(column string, from, to any) *HavingClause {
	h.conds.addBetween(LogicAnd, column, false, from, to)
	return h
}

// OrHavingBetween is the OR form of HavingBetween.
func (h *HavingClause) OrHavingBetween(column string, from, to any) *HavingClause {
	h.conds.addBetween(LogicOr, column, false, from, to)
	return h
}

// HavingNotBetween adds "column NOT BETWEEN ? AND ?".
func (h *HavingClause) HavingNotBetween(column string, from, to any) *HavingClause {
	h.conds.addBetween(LogicAnd, column, true, from, to)
	return h
}

// OrHavingNotBetween is the OR form of HavingNotBetween.
func (h *HavingClause) OrHavingNotBetween(column string, from, to any) *HavingClause {
	h.conds.addBetween(LogicOr, column, true, from, to)
	return h
}

// HavingConditions adds a parenthesized group; see Conditions.Conditions for
// the accepted sources.
func (h *HavingClause) HavingConditions(src any) *HavingClause {
	h.conds.addGroup(LogicAnd, src)
	return h
}

// OrHavingConditions is the OR form of HavingConditions.
func (h *HavingClause) OrHavingConditions(src any) *HavingClause {
	h.conds.addGroup(LogicOr, src)
	return h
}

// HavingGroup adds a parenthesized group built by fn on a fresh HavingClause.
func (h *HavingClause) HavingGroup(fn func(*HavingClause)) *HavingClause {
	h.conds.addGroup(LogicAnd, fn)
	return h
}

// OrHavingGroup is the OR form of HavingGroup.
func (h *HavingClause) OrHavingGroup(fn func(*HavingClause)) *HavingClause {
	h.conds.addGroup(LogicOr, fn)
	return h
}

// HavingExpr adds a rendered Expression as a group.
func (h *HavingClause) HavingExpr(e Expression) *HavingClause {
	h.conds.addGroup(LogicAnd, e)
	return h
}

// OrHavingExpr is the OR form of HavingExpr.
func (h *HavingClause) OrHavingExpr(e Expression) *HavingClause {
	h.conds.addGroup(LogicOr, e)
	return h
}

// HavingRaw adds "(sql)" with shorthand references expanded.
func (h *HavingClause) HavingRaw(sql string, params ...any) *HavingClause {
	h.conds.addRaw(LogicAnd, sql, params)
	return h
}

// OrHavingRaw is the OR form of HavingRaw.
func (h *HavingClause) OrHavingRaw(sql string, params ...any) *HavingClause {
	h.conds.addRaw(LogicOr, sql, params)
	return h
}

// AddHaving appends a pre-rendered condition as is.
func (h *HavingClause) AddHaving(logic Logic, sql string, params ...any) *HavingClause {
	h.conds.add(logic, sql, append([]any{}, params...))
	return h
}

// HasHaving reports whether any condition was added.
func (h *HavingClause) HasHaving() bool { return h.conds.has() }

// GetHaving returns a copy of the conditions.
func (h *HavingClause) GetHaving() []Condition { return h.conds.get() }

// ClearHaving removes all conditions.
func (h *HavingClause) ClearHaving() *HavingClause {
	h.conds.clear()
	return h
}

// Clone returns an independent copy.
func (h *HavingClause) Clone() *HavingClause {
	return &HavingClause{conds: h.conds.clone()}
}

// ToSQL renders the conditions. With useClause the result is prefixed by
// "HAVING " unless it is empty.
func (h *HavingClause) ToSQL(useClause bool) (string, []any) {
	sql, params := h.conds.toSQL()
	if useClause && sql != "" {
		sql = "HAVING " + sql
	}
	return sql, params
}

// ConditionSQL implements ConditionSource.
func (h *HavingClause) ConditionSQL() (string, []any) { return h.ToSQL(false) }

// String returns the rendered clause.
func (h *HavingClause) String() string {
	sql, _ := h.ToSQL(true)
	return sql
}
