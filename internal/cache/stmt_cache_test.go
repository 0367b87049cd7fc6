package cache

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewStmtCacheWithCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{"positive", 10, 10},
		{"zero means default", 0, DefaultStmtCacheCapacity},
		{"negative means default", -5, DefaultStmtCacheCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStmtCacheWithCapacity(tt.capacity)
			assert.Equal(t, tt.expected, c.Stats().Capacity)
		})
	}
}

func TestStmtCache_ClosesEvictedStatements(t *testing.T) {
	db := openSQLite(t)
	c := NewStmtCacheWithCapacity(1)

	first, err := db.Prepare("SELECT 1")
	require.NoError(t, err)
	second, err := db.Prepare("SELECT 2")
	require.NoError(t, err)

	c.Set("SELECT 1", first)
	c.Set("SELECT 2", second)

	_, ok := c.Get("SELECT 1")
	assert.False(t, ok)

	// A closed statement refuses to run.
	var n int
	assert.Error(t, first.QueryRow().Scan(&n))

	stmt, ok := c.Get("SELECT 2")
	require.True(t, ok)
	require.NoError(t, stmt.QueryRow().Scan(&n))
	assert.Equal(t, 2, n)
}

func TestStmtCache_Clear(t *testing.T) {
	db := openSQLite(t)
	c := NewStmtCache()

	stmt, err := db.Prepare("SELECT 1")
	require.NoError(t, err)
	c.Set("SELECT 1", stmt)

	c.Clear()
	assert.Equal(t, 0, c.Len())

	var n int
	assert.Error(t, stmt.QueryRow().Scan(&n))
}
