package logger

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_MaskParams(t *testing.T) {
	const m = maskValue
	tests := []struct {
		name   string
		sql    string
		params []any
		want   []any
	}{
		{
			name:   "update masks only the password",
			sql:    "UPDATE `Users` SET `Password` = ? WHERE `Id` = ?",
			params: []any{"secret123", 1},
			want:   []any{m, 1},
		},
		{
			name:   "insert maps values to the column list",
			sql:    `INSERT INTO "Sessions" ("UserId", "Token") VALUES (?, ?), (?, ?)`,
			params: []any{1, "t1", 2, "t2"},
			want:   []any{1, m, 2, m},
		},
		{
			name:   "dotted and postgres placeholders",
			sql:    `SELECT * FROM "Integrations" AS i WHERE "i"."ApiKey" = $1 AND "i"."Name" = $2`,
			params: []any{"sk_test", "stripe"},
			want:   []any{m, "stripe"},
		},
		{
			name:   "set operators keep the column",
			sql:    "SELECT * FROM Users WHERE Id IN (?, ?) AND Password IS NOT NULL",
			params: []any{1, 2},
			want:   []any{1, 2},
		},
		{
			name:   "nothing sensitive",
			sql:    "SELECT * FROM users WHERE id = ? AND name = ?",
			params: []any{1, "Alice"},
			want:   []any{1, "Alice"},
		},
		{
			name:   "unattributed params are masked",
			sql:    "SELECT check_password(?)",
			params: []any{"x"},
			want:   []any{m},
		},
		{
			name:   "literals are ignored",
			sql:    "SELECT * FROM Users WHERE Note = 'password = ?' AND Name = ?",
			params: []any{"Bob"},
			want:   []any{"Bob"},
		},
		{
			name:   "case insensitive",
			sql:    "UPDATE users SET PASSWORD = ? WHERE id = ?",
			params: []any{"secret", 1},
			want:   []any{m, 1},
		},
		{
			name:   "empty params",
			sql:    "SELECT COUNT(*) FROM users",
			params: []any{},
			want:   []any{},
		},
	}

	s := NewSanitizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.MaskParams(tt.sql, tt.params))
		})
	}
}

func TestSanitizer_DoesNotModifyInput(t *testing.T) {
	s := NewSanitizer(nil)
	params := []any{"secret"}
	_ = s.MaskParams("UPDATE u SET password = ?", params)
	assert.Equal(t, "secret", params[0])
}

func TestSanitizer_CustomFields(t *testing.T) {
	s := NewSanitizer([]string{"Email"})

	assert.True(t, s.IsSensitive("user_email"))
	assert.False(t, s.IsSensitive("password"))
	assert.Equal(t,
		[]any{maskValue, 7},
		s.MaskParams("UPDATE users SET email = ? WHERE id = ?", []any{"a@b.c", 7}))
}

func TestSanitizer_FormatParams(t *testing.T) {
	s := NewSanitizer(nil)
	tests := []struct {
		name   string
		params []any
		want   string
	}{
		{"empty", nil, "[]"},
		{"mixed", []any{1, "a", nil, true}, "[1, a, NULL, true]"},
		{"bytes", []any{[]byte("raw")}, "[raw]"},
		{"truncated", []any{strings.Repeat("x", 120)}, "[" + strings.Repeat("x", 100) + "...]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.FormatParams(tt.params))
		})
	}
}

func TestSanitizer_Concurrent(t *testing.T) {
	s := NewSanitizer(nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.MaskParams("UPDATE users SET password = ? WHERE id = ?", []any{"p", j})
			}
		}()
	}
	wg.Wait()
}

func BenchmarkSanitizer_MaskParams(b *testing.B) {
	s := NewSanitizer(nil)
	params := []any{"secret", 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.MaskParams("UPDATE users SET password = ? WHERE id = ?", params)
	}
}
