package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlcond/internal/dialects"
)

var (
	mysqlDialect    = dialects.GetDialect("mysql")
	postgresDialect = dialects.GetDialect("postgres")
	sqliteDialect   = dialects.GetDialect("sqlite")
)

// recoverError runs fn and returns the error it panicked with.
func recoverError(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	fn()
	return nil
}

func TestConditions_Column(t *testing.T) {
	tests := []struct {
		name   string
		build  func(c *Conditions)
		sql    string
		params []any
	}{
		{"scalar", func(c *Conditions) { c.Column("Status", "active") }, "`Status` = ?", []any{"active"}},
		{"slice", func(c *Conditions) { c.Column("Id", []int{1, 2}) }, "`Id` IN (?, ?)", []any{1, 2}},
		{"single element", func(c *Conditions) { c.Column("Id", []int{7}) }, "`Id` = ?", []any{7}},
		{"empty in", func(c *Conditions) { c.Column("Id", []int{}) }, "1 = 0", []any{}},
		{"empty not in", func(c *Conditions) { c.ColumnOp("Id", "not in", []int{}) }, "1 = 1", []any{}},
		{"nil", func(c *Conditions) { c.Column("DeletedAt", nil) }, "`DeletedAt` IS NULL", []any{}},
		{"nil not equal", func(c *Conditions) { c.ColumnOp("DeletedAt", "<>", nil) }, "`DeletedAt` IS NOT NULL", []any{}},
		{"in with scalar", func(c *Conditions) { c.ColumnOp("Id", "IN", 5) }, "`Id` = ?", []any{5}},
		{"not in with scalar", func(c *Conditions) { c.ColumnOp("Id", " not   in ", 5) }, "`Id` <> ?", []any{5}},
		{"operator", func(c *Conditions) { c.ColumnOp("Age", ">=", 18) }, "`Age` >= ?", []any{18}},
		{"qualified", func(c *Conditions) { c.Column("Users.Id", 1) }, "`Users`.`Id` = ?", []any{1}},
		{"bytes are scalar", func(c *Conditions) { c.Column("Hash", []byte("ab")) }, "`Hash` = ?", []any{[]byte("ab")}},
		{
			"or chain",
			func(c *Conditions) { c.OrColumn("A", 1).OrColumn("B", 2).Column("C", 3) },
			"`A` = ? OR `B` = ? AND `C` = ?",
			[]any{1, 2, 3},
		},
		{
			"columns map in key order",
			func(c *Conditions) { c.Columns(map[string]any{"b": 2, "a": 1, "c": nil}) },
			"`a` = ? AND `b` = ? AND `c` IS NULL",
			[]any{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConditions(mysqlDialect)
			tt.build(c)
			sql, params := c.ToSQL()
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestConditions_ColumnShapeErrors(t *testing.T) {
	err := recoverError(t, func() { NewConditions(mysqlDialect).ColumnOp("Age", ">", []int{1, 2}) })
	assert.ErrorIs(t, err, ErrSQL)
	assert.Contains(t, err.Error(), "operator `>`")

	err = recoverError(t, func() { NewConditions(mysqlDialect).Column("Id", []any{[]int{1, 2}, 3}) })
	assert.ErrorIs(t, err, ErrSQL)
	assert.Contains(t, err.Error(), "key #0")

	err = recoverError(t, func() { NewConditions(mysqlDialect).Row(nil, 1) })
	assert.ErrorIs(t, err, ErrSQL)
}

func TestConditions_Row(t *testing.T) {
	ab := []string{"A", "B"}
	tests := []struct {
		name   string
		build  func(c *Conditions)
		sql    string
		params []any
	}{
		{"tuple", func(c *Conditions) { c.Row(ab, []any{1, 2}) }, "(`A`, `B`) = (?, ?)", []any{1, 2}},
		{
			"set of tuples",
			func(c *Conditions) { c.Row(ab, [][]any{{1, 2}, {3, 4}}) },
			"(`A`, `B`) IN ((?, ?), (?, ?))",
			[]any{1, 2, 3, 4},
		},
		{"one tuple in set", func(c *Conditions) { c.Row(ab, [][]any{{1, 2}}) }, "(`A`, `B`) IN ((?, ?))", []any{1, 2}},
		{"explicit in empty", func(c *Conditions) { c.RowOp(ab, "IN", []any{}) }, "1 = 0", []any{}},
		{"explicit not in empty", func(c *Conditions) { c.RowOp(ab, "NOT IN", [][]any{}) }, "1 = 1", []any{}},
		{"operator", func(c *Conditions) { c.RowOp(ab, ">", []any{1, 2}) }, "(`A`, `B`) > (?, ?)", []any{1, 2}},
		{"single column collapses", func(c *Conditions) { c.Row([]string{"A"}, 1) }, "`A` = ?", []any{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConditions(mysqlDialect)
			tt.build(c)
			sql, params := c.ToSQL()
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestConditions_RowShapeErrors(t *testing.T) {
	ab := []string{"A", "B"}

	err := recoverError(t, func() { NewConditions(mysqlDialect).Row(ab, []any{1}) })
	assert.ErrorIs(t, err, ErrSQL)
	assert.Contains(t, err.Error(), "expected 2, got 1")

	err = recoverError(t, func() { NewConditions(mysqlDialect).Row(ab, [][]any{{1, 2, 3}}) })
	assert.Contains(t, err.Error(), "key #0: expected 2, got 3")

	err = recoverError(t, func() { NewConditions(mysqlDialect).Row(ab, []any{[]any{1, 2}, 3}) })
	assert.Contains(t, err.Error(), "key #1")

	err = recoverError(t, func() { NewConditions(mysqlDialect).RowOp(ab, "<", [][]any{{1, 2}}) })
	assert.Contains(t, err.Error(), "operator `<`")

	err = recoverError(t, func() { NewConditions(mysqlDialect).RowOp(ab, "IN", [][]any{{1, 2}, {3, 4, 5}}) })
	assert.ErrorIs(t, err, ErrSQL)
	assert.Contains(t, err.Error(), "key #1: expected 2, got 3")
}

func TestConditions_RowRelationEmptyIn(t *testing.T) {
	ab := []string{"A", "B"}

	sql, params := NewConditions(mysqlDialect).RowRelationOp(ab, "IN", [][]string{}).ToSQL()
	assert.Equal(t, "1 = 0", sql)
	assert.Empty(t, params)

	sql, _ = NewConditions(mysqlDialect).Column("X", 1).RowRelationOp(ab, "NOT IN", [][]string{}).ToSQL()
	assert.Equal(t, "`X` = ? AND 1 = 1", sql)
}

func TestConditions_Relation(t *testing.T) {
	tests := []struct {
		name  string
		build func(c *Conditions)
		sql   string
	}{
		{"columns", func(c *Conditions) { c.Relation("Users.Id", "Posts.UserId") }, "`Users`.`Id` = `Posts`.`UserId`"},
		{"in", func(c *Conditions) { c.Relation("A", []string{"B", "C"}) }, "`A` IN (`B`, `C`)"},
		{"single item list", func(c *Conditions) { c.Relation("A", []string{"B"}) }, "`A` = `B`"},
		{"operator", func(c *Conditions) { c.RelationOp("A", ">", "B") }, "`A` > `B`"},
		{"rows", func(c *Conditions) { c.RowRelation([]string{"A", "B"}, []string{"C", "D"}) }, "(`A`, `B`) = (`C`, `D`)"},
		{
			"row in",
			func(c *Conditions) { c.RowRelation([]string{"A", "B"}, [][]string{{"C", "D"}, {"E", "F"}}) },
			"(`A`, `B`) IN ((`C`, `D`), (`E`, `F`))",
		},
		{
			"relations map",
			func(c *Conditions) { c.Relations(map[string]string{"b": "y", "a": "x"}) },
			"`a` = `x` AND `b` = `y`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConditions(mysqlDialect)
			tt.build(c)
			sql, params := c.ToSQL()
			assert.Equal(t, tt.sql, sql)
			assert.Empty(t, params)
		})
	}
}

func TestConditions_RelationErrors(t *testing.T) {
	err := recoverError(t, func() { NewConditions(mysqlDialect).Relation("A", []string{}) })
	assert.ErrorIs(t, err, ErrSQL)

	err = recoverError(t, func() { NewConditions(mysqlDialect).RelationOp("A", "<", []string{"B", "C"}) })
	assert.Contains(t, err.Error(), "operator `<`")

	err = recoverError(t, func() { NewConditions(mysqlDialect).Relation("A", 5) })
	assert.Contains(t, err.Error(), "wrong column in relation")

	err = recoverError(t, func() { NewConditions(mysqlDialect).RowRelation([]string{"A", "B"}, []string{"C"}) })
	assert.Contains(t, err.Error(), "expected 2, got 1")
}

func TestConditions_Fixed(t *testing.T) {
	c := NewConditions(mysqlDialect).
		Is("Active").
		OrIsNot("Banned").
		IsNull("DeletedAt").
		IsNotNull("Email").
		Between("Age", 18, 30).
		NotBetween("Score", 1, 2)

	sql, params := c.ToSQL()
	assert.Equal(t, "`Active` = 1 OR `Banned` = 0 AND `DeletedAt` IS NULL AND `Email` IS NOT NULL"+
		" AND `Age` BETWEEN ? AND ? AND `Score` NOT BETWEEN ? AND ?", sql)
	assert.Equal(t, []any{18, 30, 1, 2}, params)
}

func TestConditions_DateParts(t *testing.T) {
	day := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dialect dialects.Dialect
		build   func(c *Conditions)
		sql     string
		params  []any
	}{
		{"date", mysqlDialect, func(c *Conditions) { c.Date("CreatedAt", day) }, "DATE(`CreatedAt`) = ?", []any{"2024-01-15"}},
		{"time", mysqlDialect, func(c *Conditions) { c.TimeOp("CreatedAt", ">", day) }, "TIME(`CreatedAt`) > ?", []any{"10:30:00"}},
		{"year string", mysqlDialect, func(c *Conditions) { c.Year("CreatedAt", "2024") }, "YEAR(`CreatedAt`) = ?", []any{int64(2024)}},
		{"month zero padded", mysqlDialect, func(c *Conditions) { c.Month("CreatedAt", "08") }, "MONTH(`CreatedAt`) = ?", []any{int64(8)}},
		{"month of time", mysqlDialect, func(c *Conditions) { c.Month("CreatedAt", day) }, "MONTH(`CreatedAt`) = ?", []any{int64(1)}},
		{
			"day list",
			mysqlDialect,
			func(c *Conditions) { c.Day("CreatedAt", []any{1, "2"}) },
			"DAY(`CreatedAt`) IN (?, ?)",
			[]any{int64(1), int64(2)},
		},
		{
			"sqlite year",
			sqliteDialect,
			func(c *Conditions) { c.Year("CreatedAt", 2024) },
			`CAST(strftime('%Y', "CreatedAt") AS INTEGER) = ?`,
			[]any{int64(2024)},
		},
		{"sqlite date", sqliteDialect, func(c *Conditions) { c.Date("CreatedAt", "2024-01-15 08:00:00") }, `date("CreatedAt") = ?`, []any{"2024-01-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConditions(tt.dialect)
			tt.build(c)
			sql, params := c.ToSQL()
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}

	err := recoverError(t, func() { NewConditions(mysqlDialect).Year("CreatedAt", "soon") })
	assert.ErrorIs(t, err, ErrSQL)
}

func TestConditions_Groups(t *testing.T) {
	c := NewConditions(mysqlDialect).
		Column("Status", "active").
		Group(func(g *Conditions) {
			g.Column("Role", []string{"admin", "owner"}).OrIsNull("Role")
		})

	sql, params := c.ToSQL()
	assert.Equal(t, "`Status` = ? AND (`Role` IN (?, ?) OR `Role` IS NULL)", sql)
	assert.Equal(t, []any{"active", "admin", "owner"}, params)

	nested := NewConditions(mysqlDialect).Column("A", 1)
	c = NewConditions(mysqlDialect).
		Conditions(nested).
		OrConditions(func(w *WhereClause) { w.Where("B", 2) }).
		OrConditions(func(h *HavingClause) { h.Having("C", 3) }).
		Conditions(Eq("D", 4))

	sql, params = c.ToSQL()
	assert.Equal(t, "(`A` = ?) OR (`B` = ?) OR (`C` = ?) AND (`D` = ?)", sql)
	assert.Equal(t, []any{1, 2, 3, 4}, params)

	nested.Column("Late", 5)
	sql, _ = c.ToSQL()
	assert.NotContains(t, sql, "Late")
}

func TestConditions_EmptyGroup(t *testing.T) {
	c := NewConditions(mysqlDialect).Group(func(*Conditions) {}).Expr(HashExp{})
	assert.False(t, c.Has())
	assert.Equal(t, "", c.String())
}

func TestConditions_UnknownFormat(t *testing.T) {
	err := recoverError(t, func() { NewConditions(mysqlDialect).Conditions(42) })
	assert.True(t, errors.Is(err, ErrUnknownConditionsFormat))
	assert.Contains(t, err.Error(), "int")
}

func TestConditions_Raw(t *testing.T) {
	c := NewConditions(mysqlDialect).Raw("!Users.Id > ? AND [[Name]] <> '?'", 5)
	sql, params := c.ToSQL()
	assert.Equal(t, "(`Users`.`Id` > ? AND `Name` <> '?')", sql)
	assert.Equal(t, []any{5}, params)

	err := recoverError(t, func() { NewConditions(mysqlDialect).Raw("a = ? AND b = ?", 1) })
	assert.ErrorIs(t, err, ErrSQL)
	assert.Contains(t, err.Error(), "expected 2, got 1")
}

func TestConditions_Add(t *testing.T) {
	c := NewConditions(mysqlDialect).Add(LogicAnd, "x = ?", 1).Add(LogicOr, "y = 2")
	assert.Equal(t, []Condition{
		{Logic: LogicAnd, SQL: "x = ?", Params: []any{1}},
		{Logic: LogicOr, SQL: "y = 2", Params: []any{}},
	}, c.Get())
}

func TestConditions_CloneAndClear(t *testing.T) {
	c := NewConditions(mysqlDialect).Column("A", 1)
	clone := c.Clone()
	clone.Column("B", 2)

	assert.Equal(t, "`A` = ?", c.String())
	assert.Equal(t, "`A` = ? AND `B` = ?", clone.String())

	got := c.Get()
	got[0].Params[0] = 99
	_, params := c.ToSQL()
	assert.Equal(t, []any{1}, params)

	assert.False(t, c.Clear().Has())
}

func TestConditions_Dialects(t *testing.T) {
	c := NewConditions(postgresDialect).Column("Users.Id", []int{1, 2})
	assert.Equal(t, `"Users"."Id" IN (?, ?)`, c.String())

	c = NewConditions(nil).Column("Id", 1)
	assert.Equal(t, "mysql", c.Dialect().Name())
	assert.Equal(t, "`Id` = ?", c.String())
}
