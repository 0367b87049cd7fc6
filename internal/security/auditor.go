package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/coregx/sqlcond/internal/logger"
)

// AuditLevel selects which statements are audited.
type AuditLevel int

const (
	// AuditNone disables auditing.
	AuditNone AuditLevel = iota
	// AuditWrites audits INSERT, UPDATE, DELETE and TRUNCATE.
	AuditWrites
	// AuditAll audits every statement.
	AuditAll
)

// Entry is one executed statement.
type Entry struct {
	Operation    string
	SQL          string
	Params       []any
	RowsAffected int64
	Duration     time.Duration
	Err          error
}

// Auditor writes audit records to a logger. Param values are never
// logged, only their SHA-256 digest.
type Auditor struct {
	logger logger.Logger
	level  AuditLevel
	now    func() time.Time
}

// NewAuditor creates an auditor writing to l.
func NewAuditor(l logger.Logger, level AuditLevel) *Auditor {
	if l == nil {
		l = logger.NoopLogger{}
	}
	return &Auditor{logger: l, level: level, now: time.Now}
}

// Audits reports whether statements of operation are audited.
func (a *Auditor) Audits(operation string) bool {
	switch a.level {
	case AuditAll:
		return true
	case AuditWrites:
		switch operation {
		case "INSERT", "UPDATE", "DELETE", "REPLACE", "TRUNCATE":
			return true
		}
	}
	return false
}

// Record writes e when its operation is audited. User, client IP and
// request ID are taken from ctx.
func (a *Auditor) Record(ctx context.Context, e Entry) {
	if !a.Audits(e.Operation) {
		return
	}

	args := []any{
		"timestamp", a.now().UTC(),
		"operation", e.Operation,
		"table", TableName(e.SQL),
		"sql", e.SQL,
		"params_hash", hashParams(e.Params),
		"rows_affected", e.RowsAffected,
		"duration_ms", e.Duration.Milliseconds(),
		"success", e.Err == nil,
	}
	if v := User(ctx); v != "" {
		args = append(args, "user", v)
	}
	if v := ClientIP(ctx); v != "" {
		args = append(args, "client_ip", v)
	}
	if v := RequestID(ctx); v != "" {
		args = append(args, "request_id", v)
	}

	if e.Err != nil {
		a.logger.Warn("audit", append(args, "error", e.Err.Error())...)
		return
	}
	a.logger.Info("audit", args...)
}

// Rejected records a statement refused by the validator.
func (a *Auditor) Rejected(ctx context.Context, sql string, err error) {
	if a.level == AuditNone {
		return
	}
	a.logger.Warn("statement rejected",
		"sql", sql,
		"error", err.Error(),
		"user", User(ctx),
		"request_id", RequestID(ctx),
	)
}

func hashParams(params []any) string {
	if len(params) == 0 {
		return ""
	}
	h := sha256.New()
	for _, p := range params {
		_, _ = fmt.Fprintf(h, "%T:%v;", p, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

var tablePattern = regexp.MustCompile("(?i)^\\s*(?:INSERT\\s+INTO|UPDATE|DELETE(?:\\s+.+?)?\\s+FROM|TRUNCATE(?:\\s+TABLE)?|SELECT\\s+.+?\\s+FROM)\\s+[`\"\\[]?([\\w$.]+)")

// TableName returns the first table named by a statement, or "".
func TableName(sql string) string {
	if m := tablePattern.FindStringSubmatch(sql); m != nil {
		return m[1]
	}
	return ""
}

type contextKey string

const (
	userKey      contextKey = "sqlcond:user"
	clientIPKey  contextKey = "sqlcond:client_ip"
	requestIDKey contextKey = "sqlcond:request_id"
)

// WithUser stores the acting user for audit records.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithClientIP stores the client address for audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// WithRequestID stores the request ID for audit records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// User returns the user stored by WithUser.
func User(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}

// ClientIP returns the address stored by WithClientIP.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// RequestID returns the ID stored by WithRequestID.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
