package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coregx/sqlcond/internal/dialects"
	"github.com/coregx/sqlcond/internal/security"
	"github.com/coregx/sqlcond/internal/tracer"
)

// Query is a rendered statement bound to a DB or Tx. The SQL uses `?`
// placeholders and is rebound to the dialect when executed.
type Query struct {
	exec    *session
	sql     string
	params  []any
	err     error
	ctx     context.Context
	trusted bool
}

// WithContext returns the query with ctx used for execution.
func (q *Query) WithContext(ctx context.Context) *Query {
	q.ctx = ctx
	return q
}

// SQL returns the statement as it is sent to the driver.
func (q *Query) SQL() string {
	return dialects.Rebind(q.exec.db.dialect, q.sql)
}

// Params returns the bound params.
func (q *Query) Params() []any { return q.params }

// Err returns the error recorded while rendering the statement.
func (q *Query) Err() error { return q.err }

// runner is the part of *sql.Stmt used to execute a statement. Unprepared
// statements are adapted through direct.
type runner interface {
	ExecContext(ctx context.Context, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, args ...any) (*sql.Rows, error)
}

type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type direct struct {
	conn  conn
	query string
}

func (d direct) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	return d.conn.ExecContext(ctx, d.query, args...)
}

func (d direct) QueryContext(ctx context.Context, args ...any) (*sql.Rows, error) {
	return d.conn.QueryContext(ctx, d.query, args...)
}

// Exec executes the statement and returns the driver result.
func (q *Query) Exec() (sql.Result, error) {
	var result sql.Result
	err := q.run("exec", func(ctx context.Context, r runner) (int64, error) {
		res, err := r.ExecContext(ctx, q.params...)
		if err != nil {
			return 0, err
		}
		result = res
		n, _ := res.RowsAffected()
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rows executes the statement and hands the open rows to fn. fn may be
// called twice when the first attempt loses its connection, so it must
// reset any state it accumulates.
func (q *Query) rows(fn func(*sql.Rows) error) error {
	return q.run("query", func(ctx context.Context, r runner) (int64, error) {
		rows, err := r.QueryContext(ctx, q.params...)
		if err != nil {
			return 0, err
		}
		defer func() { _ = rows.Close() }()

		if err := fn(rows); err != nil {
			return 0, err
		}
		return 0, rows.Err()
	})
}

// All returns every row.
func (q *Query) All() ([]Record, error) {
	var records []Record
	err := q.rows(func(rows *sql.Rows) error {
		var err error
		records, err = scanRecords(rows, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// One returns the first row or ErrNoRows.
func (q *Query) One() (Record, error) {
	var records []Record
	err := q.rows(func(rows *sql.Rows) error {
		var err error
		records, err = scanRecords(rows, 1)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records[0], nil
}

// Column returns the first column of the first row or ErrNoRows.
func (q *Query) Column() (any, error) {
	values, err := q.column(1)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoRows
	}
	return values[0], nil
}

// ColumnAll returns the first column of every row.
func (q *Query) ColumnAll() ([]any, error) {
	return q.column(0)
}

func (q *Query) column(limit int) ([]any, error) {
	var values []any
	err := q.rows(func(rows *sql.Rows) error {
		values = values[:0]
		return eachRow(rows, limit, func(_ []string, row []any) {
			values = append(values, row[0])
		})
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Pairs maps the first column of every row to the second. Keys are the
// first column formatted with fmt.Sprint; later rows overwrite earlier ones.
func (q *Query) Pairs() (map[string]any, error) {
	var pairs map[string]any
	err := q.rows(func(rows *sql.Rows) error {
		pairs = make(map[string]any)
		return eachRow(rows, 0, func(cols []string, row []any) {
			var value any
			if len(cols) > 1 {
				value = row[1]
			}
			pairs[fmt.Sprint(row[0])] = value
		})
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// OneInto decodes the first row into dest, a pointer to a struct.
func (q *Query) OneInto(dest any) error {
	rec, err := q.One()
	if err != nil {
		return err
	}
	return decodeRecord(rec, dest)
}

// AllInto decodes every row into dest, a pointer to a slice of structs or
// of struct pointers.
func (q *Query) AllInto(dest any) error {
	records, err := q.All()
	if err != nil {
		return err
	}
	return decodeRecords(records, dest)
}

// run executes fn once, or twice when the first attempt fails with a lost
// connection outside a transaction and retryable allows it. Validation,
// tracing, logging, auditing and hooks wrap the attempts.
func (q *Query) run(kind string, fn func(context.Context, runner) (int64, error)) error {
	if q.err != nil {
		return q.err
	}

	db := q.exec.db
	ctx := q.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	query := q.SQL()

	if db.validator != nil && !q.trusted {
		if err := db.validator.Validate(query, q.params); err != nil {
			err = fmt.Errorf("%w: %w", ErrRejected, err)
			db.logger.Warn("statement rejected", "sql", query, "error", err)
			if db.auditor != nil {
				db.auditor.Rejected(ctx, query, err)
			}
			return err
		}
	}

	ctx, span := db.tracer.StartSpan(ctx, "sqlcond."+kind)
	defer span.End()

	op := tracer.DetectOperation(query)
	start := time.Now()
	var (
		affected int64
		attempts int
		err      error
	)
	for {
		attempts++
		sent := false
		var r runner
		r, err = q.exec.runner(ctx, query)
		if err == nil {
			sent = true
			affected, err = fn(ctx, r)
		}
		if err == nil || attempts > 1 || q.exec.tx != nil || !retryable(err, op, sent) {
			break
		}
		db.logger.Warn("connection lost, retrying statement", "sql", query, "error", err)
		db.forgetStmt(query)
	}

	q.finish(ctx, span, query, affected, attempts, time.Since(start), err)
	return err
}

func (q *Query) finish(ctx context.Context, span tracer.Span, query string, affected int64, attempts int, elapsed time.Duration, err error) {
	db := q.exec.db
	op := tracer.DetectOperation(query)

	params := db.sanitizer.FormatParams(db.sanitizer.MaskParams(query, q.params))
	if err != nil {
		db.logger.Error("statement failed",
			"sql", query,
			"params", params,
			"duration_ms", elapsed.Milliseconds(),
			"database", db.driverName,
			"attempts", attempts,
			"error", err,
		)
	} else {
		db.logger.Debug("statement executed",
			"sql", query,
			"params", params,
			"duration_ms", elapsed.Milliseconds(),
			"rows_affected", affected,
			"database", db.driverName,
		)
	}

	tracer.Finish(span, tracer.Statement{
		System:       db.dialect.Name(),
		SQL:          query,
		Operation:    op,
		Table:        security.TableName(query),
		Duration:     elapsed,
		RowsAffected: affected,
		Attempts:     attempts,
		Err:          err,
	})

	if db.auditor != nil {
		db.auditor.Record(ctx, security.Entry{
			Operation:    op,
			SQL:          query,
			Params:       q.params,
			RowsAffected: affected,
			Duration:     elapsed,
			Err:          err,
		})
	}

	db.invokeHooks(ctx, QueryEvent{
		SQL:          query,
		Args:         q.params,
		Duration:     elapsed,
		RowsAffected: affected,
		Attempts:     attempts,
		Error:        err,
		Operation:    op,
	})
}

func (db *DB) forgetStmt(query string) {
	if db.stmtCache != nil {
		db.stmtCache.Remove(query)
	}
}
