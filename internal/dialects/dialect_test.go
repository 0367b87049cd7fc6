package dialects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDialect(t *testing.T) {
	for _, name := range []string{"mysql", "postgres", "postgresql", "pgx", "sqlite", "sqlite3"} {
		d, ok := LookupDialect(name)
		require.True(t, ok, name)
		assert.Equal(t, d, GetDialect(name))
	}

	_, ok := LookupDialect("oracle")
	assert.False(t, ok)
	assert.PanicsWithValue(t, "unsupported dialect: oracle", func() { GetDialect("oracle") })
}

func TestQuoteName(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		input    string
		expected string
	}{
		{&MySQLDialect{}, "Column", "`Column`"},
		{&MySQLDialect{}, "Table.Column", "`Table`.`Column`"},
		{&MySQLDialect{}, "Table.*", "`Table`.*"},
		{&MySQLDialect{}, "*", "*"},
		{&MySQLDialect{}, "Table.Id AS tid", "`Table`.`Id` AS `tid`"},
		{&MySQLDialect{}, " Column ", "`Column`"},
		{&MySQLDialect{}, "COUNT(!Foo.Id)", "COUNT(`Foo`.`Id`)"},
		{&PostgresDialect{}, "public.users", `"public"."users"`},
		{&SQLiteDialect{}, "users.id", `"users"."id"`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name()+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.QuoteName(tt.input))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`we``ird`", (&MySQLDialect{}).QuoteIdentifier("we`ird"))
	assert.Equal(t, `"bad""name"`, (&PostgresDialect{}).QuoteIdentifier(`bad"name`))
	assert.Equal(t, `"x"`, (&SQLiteDialect{}).QuoteIdentifier("x"))
}

func TestQuoteSQL(t *testing.T) {
	d := &MySQLDialect{}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bang reference", "!Foo.Id = !Bar.Id", "`Foo`.`Id` = `Bar`.`Id`"},
		{"single name", "!Id > ?", "`Id` > ?"},
		{"not equal operator untouched", "a != b", "a != b"},
		{"literal untouched", "Name = '!Foo' AND !Bar = 1", "Name = '!Foo' AND `Bar` = 1"},
		{"escaped quote in literal", "x = 'it''s !Foo'", "x = 'it''s !Foo'"},
		{"braces", "SELECT [[name]] FROM {{public.users}}", "SELECT `name` FROM `public`.`users`"},
		{"trailing dot", "!Foo.", "`Foo`."},
		{"unclosed braces", "{{users", "{{users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.QuoteSQL(tt.input))
		})
	}
}

func TestDatePart(t *testing.T) {
	assert.Equal(t, "DATE(`c`)", (&MySQLDialect{}).DatePart(PartDate, "`c`"))
	assert.Equal(t, "YEAR(`c`)", (&MySQLDialect{}).DatePart(PartYear, "`c`"))
	assert.Equal(t, `CAST("c" AS DATE)`, (&PostgresDialect{}).DatePart(PartDate, `"c"`))
	assert.Equal(t, `CAST(EXTRACT(MONTH FROM "c") AS INTEGER)`, (&PostgresDialect{}).DatePart(PartMonth, `"c"`))
	assert.Equal(t, `time("c")`, (&SQLiteDialect{}).DatePart(PartTime, `"c"`))
	assert.Equal(t, `CAST(strftime('%d', "c") AS INTEGER)`, (&SQLiteDialect{}).DatePart(PartDay, `"c"`))
}

func TestDateTimeString(t *testing.T) {
	d := &MySQLDialect{}
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	s, err := d.DateString(ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", s)

	s, err = d.DateString("2024-03-09 14:05:07")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", s)

	s, err = d.TimeString(ts)
	require.NoError(t, err)
	assert.Equal(t, "14:05:07", s)

	s, err = d.TimeString("14:05")
	require.NoError(t, err)
	assert.Equal(t, "14:05:00", s)

	_, err = d.DateString("not a date")
	assert.Error(t, err)

	_, err = d.DateString(3.5)
	assert.Error(t, err)
}

func TestLimitOffset(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		limit    int
		offset   int
		expected string
	}{
		{&MySQLDialect{}, 10, 0, "SELECT 1 LIMIT 10"},
		{&MySQLDialect{}, 10, 5, "SELECT 1 LIMIT 10 OFFSET 5"},
		{&MySQLDialect{}, -1, 5, "SELECT 1 LIMIT 18446744073709551615 OFFSET 5"},
		{&SQLiteDialect{}, -1, 5, "SELECT 1 LIMIT -1 OFFSET 5"},
		{&PostgresDialect{}, -1, 5, "SELECT 1 OFFSET 5"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			sql := "SELECT 1"
			if tt.limit >= 0 {
				sql = tt.dialect.AddLimit(sql, tt.limit)
			}
			if tt.offset > 0 {
				sql = tt.dialect.AddOffset(sql, tt.offset, tt.limit >= 0)
			}
			assert.Equal(t, tt.expected, sql)
		})
	}
}

func TestUpsertSQL(t *testing.T) {
	assert.Equal(t, " ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)",
		(&MySQLDialect{}).UpsertSQL("users", []string{"id"}, []string{"name"}))
	assert.Equal(t, " ON DUPLICATE KEY UPDATE `id` = `id`",
		(&MySQLDialect{}).UpsertSQL("users", []string{"id"}, nil))
	assert.Equal(t, ` ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name"`,
		(&PostgresDialect{}).UpsertSQL("users", []string{"id"}, []string{"name"}))
	assert.Equal(t, ` ON CONFLICT DO NOTHING`,
		(&SQLiteDialect{}).UpsertSQL("users", nil, nil))
}

func TestRebind(t *testing.T) {
	pg := &PostgresDialect{}
	assert.Equal(t, `SELECT * FROM "t" WHERE a = $1 AND b IN ($2, $3) AND c = '?'`,
		Rebind(pg, `SELECT * FROM "t" WHERE a = ? AND b IN (?, ?) AND c = '?'`))
	assert.Equal(t, "a = ?", Rebind(&MySQLDialect{}, "a = ?"))

	assert.Equal(t, 3, CountPlaceholders("a = ? AND b = '?' AND c IN (?, ?)"))
	assert.Equal(t, " RETURNING \"id\"", pg.Returning("id"))
	assert.Empty(t, (&MySQLDialect{}).Returning("id"))
}

func TestTruncateSQL(t *testing.T) {
	assert.Equal(t, "TRUNCATE TABLE `Users`", (&MySQLDialect{}).TruncateSQL("Users"))
	assert.Equal(t, `TRUNCATE TABLE "Users"`, (&PostgresDialect{}).TruncateSQL("Users"))
	assert.Equal(t, `DELETE FROM "Users"`, (&SQLiteDialect{}).TruncateSQL("Users"))
}
