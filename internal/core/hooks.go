package core

import (
	"context"
	"time"
)

// QueryEvent describes one executed statement.
type QueryEvent struct {
	// SQL is the statement as sent to the driver, placeholders rebound
	SQL string
	// Args are the bound params, unmasked
	Args []any
	// Duration covers every attempt
	Duration time.Duration
	// RowsAffected is set for Exec statements
	RowsAffected int64
	// Attempts is 2 when the statement was retried after a lost connection
	Attempts int
	// Error is nil on success
	Error error
	// Operation is SELECT, INSERT, UPDATE, DELETE, ... or UNKNOWN
	Operation string
}

// QueryHook is a callback invoked after each statement execution.
//
// Example:
//
//	db, _ := sqlcond.Open("sqlite", ":memory:",
//	    sqlcond.WithQueryHook(func(ctx context.Context, e sqlcond.QueryEvent) {
//	        slog.Info("query", "sql", e.SQL, "duration", e.Duration, "err", e.Error)
//	    }))
type QueryHook func(ctx context.Context, event QueryEvent)

func (db *DB) invokeHooks(ctx context.Context, event QueryEvent) {
	for _, h := range db.hooks {
		h(ctx, event)
	}
}
