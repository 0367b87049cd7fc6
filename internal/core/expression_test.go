package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coregx/sqlcond/internal/dialects"
)

func TestExpressions_Build(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialects.Dialect
		exp     Expression
		sql     string
		args    []any
	}{
		{"raw", mysqlDialect, NewExp("!Users.Age > ? AND [[Status]] = 'on'", 18), "`Users`.`Age` > ? AND `Status` = 'on'", []any{18}},
		{"raw without args", postgresDialect, NewExp("1 = 1"), "1 = 1", nil},
		{
			"hash",
			mysqlDialect,
			HashExp{"status": 1, "age": []int{18, 19}, "deleted_at": nil},
			"`age` IN (?, ?) AND `deleted_at` IS NULL AND `status` = ?",
			[]any{18, 19, 1},
		},
		{"hash nested", mysqlDialect, HashExp{"a": 1, "b": Or(Eq("x", 1), Eq("y", 2))}, "`a` = ? AND ((`x` = ?) OR (`y` = ?))", []any{1, 1, 2}},
		{"hash empty", mysqlDialect, HashExp{}, "", []any{}},
		{"eq", postgresDialect, Eq("id", 5), `"id" = ?`, []any{5}},
		{"eq nil", mysqlDialect, Eq("deleted_at", nil), "`deleted_at` IS NULL", []any{}},
		{"not eq nil", mysqlDialect, NotEq("deleted_at", nil), "`deleted_at` IS NOT NULL", []any{}},
		{"greater", mysqlDialect, GreaterThan("age", 18), "`age` > ?", []any{18}},
		{"less or equal", sqliteDialect, LessOrEqual("age", 65), `"age" <= ?`, []any{65}},
		{"in", mysqlDialect, In("id", 1, 2, 3), "`id` IN (?, ?, ?)", []any{1, 2, 3}},
		{"in single", mysqlDialect, In("id", 1), "`id` = ?", []any{1}},
		{"in empty", mysqlDialect, In("id"), "1 = 0", []any{}},
		{"not in empty", mysqlDialect, NotIn("id"), "1 = 1", []any{}},
		{"between", mysqlDialect, Between("age", 18, 65), "`age` BETWEEN ? AND ?", []any{18, 65}},
		{"not between", mysqlDialect, NotBetween("age", 18, 65), "`age` NOT BETWEEN ? AND ?", []any{18, 65}},
		{"like", mysqlDialect, Like("name", "jo%hn"), "`name` LIKE ?", []any{`%jo\%hn%`}},
		{"like many", mysqlDialect, Like("name", "key", "word"), "`name` LIKE ? AND `name` LIKE ?", []any{"%key%", "%word%"}},
		{"or like", mysqlDialect, OrLike("name", "a", "b"), "`name` LIKE ? OR `name` LIKE ?", []any{"%a%", "%b%"}},
		{"not like prefix", mysqlDialect, NotLike("name", "adm").Match(false, true), "`name` NOT LIKE ?", []any{"adm%"}},
		{"like custom escape", mysqlDialect, Like("code", "a_b").EscapeChars("_", "!_"), "`code` LIKE ?", []any{"%a!_b%"}},
		{"and", mysqlDialect, And(Eq("a", 1), nil, Eq("b", 2)), "(`a` = ?) AND (`b` = ?)", []any{1, 2}},
		{"and single", mysqlDialect, And(Eq("a", 1)), "`a` = ?", []any{1}},
		{"and empty", mysqlDialect, And(), "", []any{}},
		{"or nested", mysqlDialect, Or(And(Eq("a", 1), Eq("b", 2)), Eq("c", 3)), "((`a` = ?) AND (`b` = ?)) OR (`c` = ?)", []any{1, 2, 3}},
		{"not", mysqlDialect, Not(In("id", 1, 2)), "NOT (`id` IN (?, ?))", []any{1, 2}},
		{"not empty", mysqlDialect, Not(HashExp{}), "", nil},
		{"not nil", mysqlDialect, Not(nil), "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.exp.Build(tt.dialect)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestLikeExp_EscapeCharsPanics(t *testing.T) {
	assert.Panics(t, func() { Like("a", "b").EscapeChars("_") })
}

func TestExpressions_InClauses(t *testing.T) {
	q := NewSelectQuery(postgresDialect).
		From("users").
		Filter(func(w *WhereClause) {
			w.WhereExpr(And(HashExp{"status": "active"}, GreaterOrEqual("age", 18))).
				OrWhereExpr(Like("email", "@example.com").Match(true, false))
		})

	sql, params, err := q.ToSQL()
	assert.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE (("status" = ?) AND ("age" >= ?)) OR ("email" LIKE ?)`, sql)
	assert.Equal(t, []any{"active", 18, "%@example.com"}, params)
}
