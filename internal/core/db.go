// Package core provides the condition engine, clause composer, statements,
// driver layer and table/row model of sqlcond.
package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/coregx/sqlcond/internal/cache"
	"github.com/coregx/sqlcond/internal/dialects"
	"github.com/coregx/sqlcond/internal/logger"
	"github.com/coregx/sqlcond/internal/security"
	"github.com/coregx/sqlcond/internal/tracer"
)

// defaultSchemaCacheCapacity bounds the number of described tables kept.
const defaultSchemaCacheCapacity = 256

// DB is a database handle bound to one dialect. It is safe for concurrent use.
type DB struct {
	session

	sqlDB      *sql.DB
	driverName string
	dialect    dialects.Dialect
	stmtCache  *cache.StmtCache
	schemas    *cache.LRU[*Schema]
	describing singleflight.Group

	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	hooks     []QueryHook
	validator *security.Validator
	auditor   *security.Auditor
	health    *healthChecker
}

// TxOptions represents transaction options including isolation level.
type TxOptions struct {
	// Isolation level for the transaction (e.g., sql.LevelReadCommitted)
	Isolation sql.IsolationLevel
	// ReadOnly indicates whether the transaction is read-only
	ReadOnly bool
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxIdleConns(n)
	}
}

// WithConnMaxLifetime sets the maximum amount of time a connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *DB) {
		db.sqlDB.SetConnMaxLifetime(d)
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
// A capacity of zero or less disables statement caching.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		if db.stmtCache != nil {
			db.stmtCache.Clear()
		}
		if capacity <= 0 {
			db.stmtCache = nil
			return
		}
		db.stmtCache = cache.NewStmtCacheWithCapacity(capacity)
	}
}

// WithLogger sets the logger for statement logging.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		if l == nil {
			l = logger.NoopLogger{}
		}
		db.logger = l
	}
}

// WithSanitizer replaces the sanitizer that masks logged params.
func WithSanitizer(s *logger.Sanitizer) Option {
	return func(db *DB) {
		if s != nil {
			db.sanitizer = s
		}
	}
}

// WithTracer sets the tracer creating a span per statement.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		if t == nil {
			t = tracer.NoopTracer{}
		}
		db.tracer = t
	}
}

// WithQueryHook registers a callback invoked after every statement.
// Hooks run in registration order.
func WithQueryHook(h QueryHook) Option {
	return func(db *DB) {
		if h != nil {
			db.hooks = append(db.hooks, h)
		}
	}
}

// WithValidator screens every statement before it is sent. Rejected
// statements fail with an error wrapping ErrRejected.
func WithValidator(v *security.Validator) Option {
	return func(db *DB) {
		db.validator = v
	}
}

// WithAuditor records executed statements through a.
func WithAuditor(a *security.Auditor) Option {
	return func(db *DB) {
		db.auditor = a
	}
}

// WithHealthCheck pings the database every interval in the background.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		if interval > 0 {
			db.health = newHealthChecker(db.sqlDB, interval)
		}
	}
}

// Open opens a database for a registered driver name and wraps it.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	if _, ok := dialects.LookupDialect(driverName); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, driverName)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	db, err := NewDB(sqlDB, driverName, opts...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// NewDB wraps an existing *sql.DB. driverName selects the dialect.
func NewDB(sqlDB *sql.DB, driverName string, opts ...Option) (*DB, error) {
	dialect, ok := dialects.LookupDialect(driverName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, driverName)
	}

	db := &DB{
		sqlDB:      sqlDB,
		driverName: driverName,
		dialect:    dialect,
		stmtCache:  cache.NewStmtCache(),
		schemas:    cache.NewLRU[*Schema](defaultSchemaCacheCapacity, nil),
		logger:     logger.NoopLogger{},
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     tracer.NoopTracer{},
	}
	db.session = session{db: db}

	for _, opt := range opts {
		opt(db)
	}

	if db.health != nil {
		db.health.logger = db.logger
		db.health.start()
	}
	return db, nil
}

// Close releases all database resources.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	if db.stmtCache != nil {
		db.stmtCache.Clear()
	}
	db.schemas.Clear()
	return db.sqlDB.Close()
}

// DB returns the underlying *sql.DB.
func (db *DB) DB() *sql.DB { return db.sqlDB }

// DriverName returns the driver name the handle was opened with.
func (db *DB) DriverName() string { return db.driverName }

// Ping verifies the connection to the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// IsHealthy reports the result of the last background health check.
// Without WithHealthCheck it always returns true.
func (db *DB) IsHealthy() bool {
	return db.health == nil || db.health.isHealthy()
}

// StmtCacheStats returns prepared statement cache statistics.
func (db *DB) StmtCacheStats() cache.Stats {
	if db.stmtCache == nil {
		return cache.Stats{}
	}
	return db.stmtCache.Stats()
}

// Begin starts a transaction with default options.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	return db.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with specified options.
func (db *DB) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	var sqlOpts *sql.TxOptions
	if opts != nil {
		sqlOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.sqlDB.BeginTx(ctx, sqlOpts)
	if err != nil {
		return nil, err
	}
	return &Tx{session: session{db: db, tx: tx}}, nil
}

// Transaction runs fn inside a transaction. The transaction is committed
// when fn returns nil and rolled back when fn returns an error or panics.
func (db *DB) Transaction(ctx context.Context, fn func(*Tx) error) error {
	return db.TransactionTx(ctx, nil, fn)
}

// TransactionTx is Transaction with explicit options.
func (db *DB) TransactionTx(ctx context.Context, opts *TxOptions, fn func(*Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

// Tx represents a database transaction. Statements run on the transaction
// connection and bypass the statement cache.
type Tx struct {
	session
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	return txError(tx.tx.Commit())
}

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error {
	return txError(tx.tx.Rollback())
}

func txError(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return ErrTxDone
	}
	return err
}
