package core

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/coregx/sqlcond/internal/logger"
	"github.com/coregx/sqlcond/internal/security"
	"github.com/coregx/sqlcond/internal/tracer"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

// memLogger keeps every log call for inspection.
type memLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *memLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *memLogger) Debug(msg string, args ...any) { l.log("debug", msg, args) }
func (l *memLogger) Info(msg string, args ...any)  { l.log("info", msg, args) }
func (l *memLogger) Warn(msg string, args ...any)  { l.log("warn", msg, args) }
func (l *memLogger) Error(msg string, args ...any) { l.log("error", msg, args) }

func (l *memLogger) find(msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func (e logEntry) value(key string) any {
	for i := 0; i+1 < len(e.args); i += 2 {
		if e.args[i] == key {
			return e.args[i+1]
		}
	}
	return nil
}

// newMockDB returns a DB over sqlmock with exact SQL matching and the
// statement cache disabled.
func newMockDB(t *testing.T, driver string, opts ...Option) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	db, err := NewDB(sqlDB, driver, append([]Option{WithStmtCacheCapacity(0)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewDB_UnknownDialect(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = NewDB(sqlDB, "oracle")
	assert.ErrorIs(t, err, ErrUnsupportedDialect)

	_, err = Open("oracle", "")
	assert.ErrorIs(t, err, ErrUnsupportedDialect)
}

func TestDB_Fetch(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	ctx := context.Background()

	mock.ExpectQuery("SELECT `id`, `name` FROM `users` WHERE `id` = ? LIMIT 1").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), []byte("Alice")))

	rec, err := db.Fetch(ctx, db.Select("id", "name").From("users").Where("id", 1).Limit(1))
	require.NoError(t, err)
	assert.Equal(t, Record{"id": int64(1), "name": "Alice"}, rec)

	mock.ExpectQuery("SELECT * FROM `users` WHERE `id` = ?").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = db.Fetch(ctx, db.Select().From("users").Where("id", 2))
	assert.ErrorIs(t, err, ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_FetchHelpers(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	ctx := context.Background()
	q := db.Select("id", "name").From("users").OrderAsc("id")
	const query = "SELECT `id`, `name` FROM `users` ORDER BY `id` ASC"
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "Alice").
			AddRow(int64(2), nil)
	}

	mock.ExpectQuery(query).WillReturnRows(rows())
	all, err := db.FetchAll(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"id": int64(1), "name": "Alice"}, {"id": int64(2), "name": nil}}, all)

	mock.ExpectQuery(query).WillReturnRows(rows())
	first, err := db.FetchColumn(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	mock.ExpectQuery(query).WillReturnRows(rows())
	ids, err := db.FetchColumnAll(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, ids)

	mock.ExpectQuery(query).WillReturnRows(rows())
	pairs, err := db.FetchPairs(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "Alice", "2": nil}, pairs)

	type user struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}

	mock.ExpectQuery(query).WillReturnRows(rows())
	var users []user
	require.NoError(t, db.FetchAllInto(ctx, q, &users))
	assert.Equal(t, []user{{ID: 1, Name: "Alice"}, {ID: 2}}, users)

	mock.ExpectQuery(query).WillReturnRows(rows())
	var u user
	require.NoError(t, db.FetchInto(ctx, q, &u))
	assert.Equal(t, user{ID: 1, Name: "Alice"}, u)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_PostgresRebind(t *testing.T) {
	db, mock := newMockDB(t, "postgres")

	q := db.Select().From("users").Where("id", []int{1, 2}).WhereRaw(`"name" <> '?'`)
	const query = `SELECT * FROM "users" WHERE "id" IN ($1, $2) AND ("name" <> '?')`
	assert.Equal(t, query, db.Prepare(q).SQL())

	mock.ExpectQuery(query).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	ids, err := db.FetchColumnAll(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Execute(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	ctx := context.Background()

	mock.ExpectExec("UPDATE `users` SET `name` = ? WHERE `id` = ?").
		WithArgs("Bob", 1).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := db.Execute(ctx, db.Update("users").Set("name", "Bob").Where("id", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec("DELETE FROM `sessions`").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = db.Exec(ctx, "DELETE FROM `sessions`")
	require.NoError(t, err)

	mock.ExpectExec("TRUNCATE TABLE `logs`").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, db.Truncate(ctx, "logs"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RenderErrorIsNotSent(t *testing.T) {
	db, mock := newMockDB(t, "mysql")

	_, err := db.Execute(context.Background(), db.Update("users"))
	assert.ErrorIs(t, err, ErrQuery)

	q := db.Prepare(db.Select().From("t").OrderBy("a", "nope"))
	assert.ErrorIs(t, q.Err(), ErrQuery)
	_, err = q.All()
	assert.ErrorIs(t, err, ErrQuery)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RetryLostConnection(t *testing.T) {
	var events []QueryEvent
	log := &memLogger{}
	db, mock := newMockDB(t, "mysql",
		WithLogger(log),
		WithQueryHook(func(_ context.Context, e QueryEvent) { events = append(events, e) }),
	)

	mock.ExpectQuery("SELECT * FROM `t`").WillReturnError(mysql.ErrInvalidConn)
	mock.ExpectQuery("SELECT * FROM `t`").WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1).AddRow(2))

	all, err := db.FetchAll(context.Background(), db.Select().From("t"))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Attempts)

	_, ok := log.find("connection lost, retrying statement")
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_NoRetry(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	ctx := context.Background()
	boom := errors.New("boom")

	mock.ExpectExec("UPDATE `t` SET `a` = ?").WithArgs(1).WillReturnError(boom)
	_, err := db.Execute(ctx, db.Update("t").Set("a", 1))
	assert.ErrorIs(t, err, boom)

	// the server may have run the write before the connection dropped
	mock.ExpectExec("INSERT INTO `t` (`a`) VALUES (?)").WithArgs(1).WillReturnError(mysql.ErrInvalidConn)
	_, err = db.Execute(ctx, db.InsertInto("t").Columns("a").Values(1))
	assert.ErrorIs(t, err, mysql.ErrInvalidConn)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `t` SET `a` = ?").WithArgs(1).WillReturnError(mysql.ErrInvalidConn)
	mock.ExpectRollback()

	err = db.Transaction(ctx, func(tx *Tx) error {
		_, err := tx.Execute(ctx, tx.Update("t").Set("a", 1))
		return err
	})
	assert.ErrorIs(t, err, mysql.ErrInvalidConn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   string
		sent bool
		want bool
	}{
		{"read lost", mysql.ErrInvalidConn, "SELECT", true, true},
		{"write before send", mysql.ErrInvalidConn, "INSERT", false, true},
		{"write after send", mysql.ErrInvalidConn, "INSERT", true, false},
		{"write gone away", &mysql.MySQLError{Number: 2006}, "UPDATE", true, false},
		{"write bad conn", driver.ErrBadConn, "DELETE", true, true},
		{"other error", errors.New("boom"), "SELECT", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err, tt.op, tt.sent))
		})
	}
}

func TestIsLostConnection(t *testing.T) {
	assert.True(t, isLostConnection(mysql.ErrInvalidConn))
	assert.True(t, isLostConnection(&mysql.MySQLError{Number: 2006}))
	assert.True(t, isLostConnection(&mysql.MySQLError{Number: 2013}))
	assert.False(t, isLostConnection(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isLostConnection(sql.ErrNoRows))
	assert.False(t, isLostConnection(nil))
}

func TestDB_Hooks(t *testing.T) {
	var order []string
	var got QueryEvent
	db, mock := newMockDB(t, "mysql",
		WithQueryHook(func(_ context.Context, e QueryEvent) { order = append(order, "first"); got = e }),
		WithQueryHook(func(context.Context, QueryEvent) { order = append(order, "second") }),
		WithQueryHook(nil),
	)

	mock.ExpectExec("DELETE FROM `t` WHERE `id` = ?").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := db.Execute(context.Background(), db.DeleteFrom("t").Where("id", 4))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, "DELETE FROM `t` WHERE `id` = ?", got.SQL)
	assert.Equal(t, []any{4}, got.Args)
	assert.Equal(t, "DELETE", got.Operation)
	assert.Equal(t, 1, got.Attempts)
	assert.NoError(t, got.Error)
}

func TestDB_Logging(t *testing.T) {
	log := &memLogger{}
	db, mock := newMockDB(t, "mysql", WithLogger(log))
	ctx := context.Background()

	mock.ExpectExec("UPDATE `users` SET `password` = ? WHERE `id` = ?").
		WithArgs("hunter2", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := db.Execute(ctx, db.Update("users").Set("password", "hunter2").Where("id", 1))
	require.NoError(t, err)

	e, ok := log.find("statement executed")
	require.True(t, ok)
	assert.Equal(t, "debug", e.level)
	assert.NotContains(t, e.value("params"), "hunter2")
	assert.Contains(t, e.value("params"), "1")

	mock.ExpectExec("DELETE FROM `t`").WillReturnError(errors.New("locked"))
	_, err = db.Exec(ctx, "DELETE FROM `t`")
	require.Error(t, err)

	e, ok = log.find("statement failed")
	require.True(t, ok)
	assert.Equal(t, "error", e.level)
	assert.Equal(t, 1, e.value("attempts"))
}

func TestDB_Validator(t *testing.T) {
	log := &memLogger{}
	hooked := false
	db, mock := newMockDB(t, "mysql",
		WithLogger(log),
		WithValidator(security.NewValidator()),
		WithAuditor(security.NewAuditor(log, security.AuditWrites)),
		WithQueryHook(func(context.Context, QueryEvent) { hooked = true }),
	)

	_, err := db.NewQuery("SELECT * FROM users WHERE id = 1 UNION SELECT password FROM admins").All()
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, security.ErrDangerousSQL)
	assert.False(t, hooked)

	_, ok := log.find("statement rejected")
	assert.True(t, ok)

	_, err = db.Fetch(context.Background(), db.Select().From("users").Where("name", "x' OR '1'='1"))
	assert.ErrorIs(t, err, security.ErrSuspiciousParam)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Auditor(t *testing.T) {
	log := &memLogger{}
	db, mock := newMockDB(t, "mysql", WithAuditor(security.NewAuditor(log, security.AuditWrites)))
	ctx := security.WithUser(context.Background(), "alice")

	mock.ExpectQuery("SELECT * FROM `t`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := db.FetchAll(ctx, db.Select().From("t"))
	require.NoError(t, err)
	_, ok := log.find("audit")
	assert.False(t, ok)

	mock.ExpectExec("INSERT INTO `t` (`id`) VALUES (?)").WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	_, err = db.Execute(ctx, db.InsertInto("t").Columns("id").Values(1))
	require.NoError(t, err)

	e, ok := log.find("audit")
	require.True(t, ok)
	assert.Equal(t, "INSERT", e.value("operation"))
	assert.Equal(t, "t", e.value("table"))
	assert.Equal(t, "alice", e.value("user"))
}

func TestDB_Tracer(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	db, mock := newMockDB(t, "mysql", WithTracer(tracer.NewOtelTracer(tp.Tracer("test"))))

	mock.ExpectQuery("SELECT * FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	_, err := db.FetchAll(context.Background(), db.Select().From("users"))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sqlcond.query", spans[0].Name)

	attrs := map[string]string{}
	for _, a := range spans[0].Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "mysql", attrs["db.system"])
	assert.Equal(t, "SELECT", attrs["db.operation"])
	assert.Equal(t, "users", attrs["db.sql.table"])
}

func TestDB_Transaction(t *testing.T) {
	db, mock := newMockDB(t, "mysql")
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `a` SET `n` = `n` + ?").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.Transaction(ctx, func(tx *Tx) error {
		_, err := tx.Execute(ctx, tx.Update("a").Increment("n", 1))
		return err
	})
	require.NoError(t, err)

	failed := errors.New("stop")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = db.Transaction(ctx, func(*Tx) error { return failed })
	assert.ErrorIs(t, err, failed)

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.PanicsWithValue(t, "bad", func() {
		_ = db.Transaction(ctx, func(*Tx) error { panic("bad") })
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_Done(t *testing.T) {
	db, mock := newMockDB(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectCommit()
	tx, err := db.BeginTx(context.Background(), &TxOptions{Isolation: sql.LevelDefault})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.ErrorIs(t, tx.Rollback(), ErrTxDone)
	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
}

func TestDB_StmtCache(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db, err := NewDB(sqlDB, "mysql", WithStmtCacheCapacity(10))
	require.NoError(t, err)
	ctx := context.Background()

	prep := mock.ExpectPrepare("SELECT * FROM `t` WHERE `id` = ?")
	prep.ExpectQuery().WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	prep.ExpectQuery().WithArgs(2).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	for _, id := range []int{1, 2} {
		rec, err := db.Fetch(ctx, db.Select().From("t").Where("id", id))
		require.NoError(t, err)
		assert.Equal(t, int64(id), rec["id"])
	}

	stats := db.StmtCacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(1), stats.Hits)

	prep.WillBeClosed()
	mock.ExpectClose()
	require.NoError(t, db.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Accessors(t *testing.T) {
	db, mock := newMockDB(t, "sqlite3", WithLogger(nil), WithTracer(nil), WithSanitizer(logger.NewSanitizer([]string{"pin"})))

	assert.Equal(t, "sqlite3", db.DriverName())
	assert.Equal(t, "sqlite", db.Dialect().Name())
	assert.NotNil(t, db.DB())
	assert.True(t, db.IsHealthy())
	assert.Equal(t, 0, db.StmtCacheStats().Size)

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))
}
