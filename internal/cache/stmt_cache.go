package cache

import "database/sql"

// DefaultStmtCacheCapacity is the default number of cached prepared statements.
const DefaultStmtCacheCapacity = 1000

// StmtCache keeps prepared statements keyed by their SQL text. Statements
// are closed when evicted, replaced or cleared.
type StmtCache struct {
	*LRU[*sql.Stmt]
}

// NewStmtCache creates a statement cache with the default capacity.
func NewStmtCache() *StmtCache {
	return NewStmtCacheWithCapacity(DefaultStmtCacheCapacity)
}

// NewStmtCacheWithCapacity creates a statement cache holding capacity
// statements; a non-positive capacity means the default.
func NewStmtCacheWithCapacity(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultStmtCacheCapacity
	}
	return &StmtCache{LRU: NewLRU(capacity, func(_ string, stmt *sql.Stmt) {
		if stmt != nil {
			_ = stmt.Close()
		}
	})}
}
