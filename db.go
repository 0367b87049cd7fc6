// Package sqlcond is a SQL query builder for MySQL, PostgreSQL and SQLite
// built around a condition engine: WHERE and HAVING predicates are given as
// column/value pairs, rows, relations, nested groups or raw fragments and
// rendered to dialect SQL with positional params. A thin driver layer over
// database/sql adds a prepared statement cache, logging, tracing, audit and
// a table/rows layer with schema introspection and change tracking.
package sqlcond

import (
	"github.com/coregx/sqlcond/internal/core"
	"github.com/coregx/sqlcond/internal/logger"
	"github.com/coregx/sqlcond/internal/security"
	"github.com/coregx/sqlcond/internal/tracer"
)

type (
	// DB is a database handle with statement caching and tracing.
	DB = core.DB
	// Tx is a database transaction.
	Tx = core.Tx
	// TxOptions represents transaction options including isolation level.
	TxOptions = core.TxOptions
	// Option is a functional option for configuring DB.
	Option = core.Option
	// Config is the YAML form of the DB options.
	Config = core.Config
	// Query is a rendered statement bound to a DB or Tx.
	Query = core.Query
	// QueryEvent describes one executed statement.
	QueryEvent = core.QueryEvent
	// QueryHook is called after every statement.
	QueryHook = core.QueryHook
	// Record is one fetched row keyed by column name.
	Record = core.Record
	// Statement is anything that renders to SQL and params.
	Statement = core.Statement

	// Conditions is a standalone condition list.
	Conditions = core.Conditions
	// Condition is one rendered predicate.
	Condition = core.Condition
	// Logic joins a predicate to the previous one.
	Logic = core.Logic
	// WhereClause is the WHERE clause of a statement.
	WhereClause = core.WhereClause
	// HavingClause is the HAVING clause of a SELECT.
	HavingClause = core.HavingClause
	// JoinClause holds the JOINs of a statement.
	JoinClause = core.JoinClause
	// OrderByClause holds the ORDER BY items of a statement.
	OrderByClause = core.OrderByClause
	// GroupByClause holds the GROUP BY items of a SELECT.
	GroupByClause = core.GroupByClause
	// Clauses is the clause set shared by statements.
	Clauses = core.Clauses
	// Appliers are callbacks merged into the clauses of rendered statements.
	Appliers = core.Appliers

	// SelectQuery is a SELECT statement.
	SelectQuery = core.SelectQuery
	// InsertQuery is an INSERT statement.
	InsertQuery = core.InsertQuery
	// UpdateQuery is an UPDATE statement.
	UpdateQuery = core.UpdateQuery
	// DeleteQuery is a DELETE statement.
	DeleteQuery = core.DeleteQuery

	// Expression renders itself for a dialect.
	Expression = core.Expression
	// HashExp is a column => value map rendered as AND-ed equalities.
	HashExp = core.HashExp
	// LikeExp is a LIKE expression with automatic escaping.
	LikeExp = core.LikeExp
	// FuncExp is a SQL function call such as COALESCE.
	FuncExp = core.FuncExp
	// CaseExp is a CASE expression.
	CaseExp = core.CaseExp

	// Table binds statements to one table.
	Table = core.Table
	// TableOption configures a Table.
	TableOption = core.TableOption
	// Rows is a change-tracked set of records of one table.
	Rows = core.Rows
	// Page is one page of rows returned by Table.Paginate.
	Page = core.Page
	// Schema describes a table.
	Schema = core.Schema
	// Column describes a table column.
	Column = core.Column

	// SQLError is a shape error raised while building conditions.
	SQLError = core.SQLError
	// QueryError is a structural error raised while composing statements.
	QueryError = core.QueryError

	// Logger is the structured logger interface.
	Logger = logger.Logger
	// Tracer starts a span per statement.
	Tracer = tracer.Tracer
	// Validator rejects statements that look like injections.
	Validator = security.Validator
	// Auditor writes audit records of executed statements.
	Auditor = security.Auditor
)

// Combination logic of Conditions.Add and WhereClause.AddWhere.
const (
	LogicAnd = core.LogicAnd
	LogicOr  = core.LogicOr
)

// Casts accepted by WithCasts.
const (
	CastDatetime   = core.CastDatetime
	CastTimestamp  = core.CastTimestamp
	CastDate       = core.CastDate
	CastTime       = core.CastTime
	CastBoolean    = core.CastBoolean
	CastJSON       = core.CastJSON
	CastArray      = core.CastArray
	CastSystemName = core.CastSystemName
)

// Audit levels.
const (
	AuditNone   = security.AuditNone
	AuditWrites = security.AuditWrites
	AuditAll    = security.AuditAll
)

// Errors.
var (
	ErrNoRows                  = core.ErrNoRows
	ErrTxDone                  = core.ErrTxDone
	ErrUnsupportedDialect      = core.ErrUnsupportedDialect
	ErrUnknownConditionsFormat = core.ErrUnknownConditionsFormat
	ErrSQL                     = core.ErrSQL
	ErrQuery                   = core.ErrQuery
	ErrRejected                = core.ErrRejected
	ErrDangerousSQL            = security.ErrDangerousSQL
	ErrSuspiciousParam         = security.ErrSuspiciousParam
)

// Re-export core functions.
var (
	Open       = core.Open
	NewDB      = core.NewDB
	OpenConfig = core.OpenConfig
	LoadConfig = core.LoadConfig

	WithMaxOpenConns      = core.WithMaxOpenConns
	WithMaxIdleConns      = core.WithMaxIdleConns
	WithConnMaxLifetime   = core.WithConnMaxLifetime
	WithStmtCacheCapacity = core.WithStmtCacheCapacity
	WithLogger            = core.WithLogger
	WithSanitizer         = core.WithSanitizer
	WithTracer            = core.WithTracer
	WithQueryHook         = core.WithQueryHook
	WithValidator         = core.WithValidator
	WithAuditor           = core.WithAuditor
	WithHealthCheck       = core.WithHealthCheck

	WithAlias      = core.WithAlias
	WithCasts      = core.WithCasts
	WithFillable   = core.WithFillable
	WithGuarded    = core.WithGuarded
	WithSoftDelete = core.WithSoftDelete
	WithSchema     = core.WithSchema

	// Expression builders
	NewExp         = core.NewExp
	Eq             = core.Eq
	NotEq          = core.NotEq
	GreaterThan    = core.GreaterThan
	LessThan       = core.LessThan
	GreaterOrEqual = core.GreaterOrEqual
	LessOrEqual    = core.LessOrEqual
	In             = core.In
	NotIn          = core.NotIn
	Between        = core.Between
	NotBetween     = core.NotBetween
	Like           = core.Like
	NotLike        = core.NotLike
	OrLike         = core.OrLike
	And            = core.And
	Or             = core.Or
	Not            = core.Not

	// Functions
	Coalesce = core.Coalesce
	NullIf   = core.NullIf
	Greatest = core.Greatest
	Least    = core.Least
	Concat   = core.Concat
	Case     = core.Case
	CaseWhen = core.CaseWhen

	// Logging, tracing and security
	NewSlogAdapter = logger.NewSlogAdapter
	NewSanitizer   = logger.NewSanitizer
	NewOtelTracer  = tracer.NewOtelTracer
	NewValidator   = security.NewValidator
	WithStrict     = security.WithStrict
	NewAuditor     = security.NewAuditor
	WithUser       = security.WithUser
	WithClientIP   = security.WithClientIP
	WithRequestID  = security.WithRequestID
)
