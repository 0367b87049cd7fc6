// Package tracer provides the span interface used to trace executed
// statements, with a no-op default and an OpenTelemetry adapter.
package tracer

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer obtained from the global provider.
const InstrumentationName = "github.com/coregx/sqlcond"

// Tracer starts spans.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is an active span.
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code codes.Code, description string)
	End()
}

// NoopTracer starts spans that record nothing.
type NoopTracer struct{}

// StartSpan returns ctx and a no-op span.
func (NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, NoopSpan{}
}

// NoopSpan records nothing.
type NoopSpan struct{}

func (NoopSpan) SetAttributes(...attribute.KeyValue) {}
func (NoopSpan) RecordError(error)                   {}
func (NoopSpan) SetStatus(codes.Code, string)        {}
func (NoopSpan) End()                                {}

// OtelTracer adapts an OpenTelemetry tracer.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer wraps t; a nil t uses the global tracer provider.
func NewOtelTracer(t trace.Tracer) *OtelTracer {
	if t == nil {
		t = otel.Tracer(InstrumentationName)
	}
	return &OtelTracer{tracer: t}
}

// StartSpan starts a client span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	return ctx, otelSpan{span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }
func (s otelSpan) RecordError(err error)                     { s.span.RecordError(err) }
func (s otelSpan) SetStatus(c codes.Code, d string)          { s.span.SetStatus(c, d) }
func (s otelSpan) End()                                      { s.span.End() }

// Statement describes an executed statement using the database semantic
// conventions (https://opentelemetry.io/docs/specs/semconv/database/).
type Statement struct {
	System       string // mysql, postgres, sqlite
	SQL          string
	Operation    string
	Table        string
	Duration     time.Duration
	RowsAffected int64
	Attempts     int
	Err          error
}

// Finish records the statement on span and sets its status. It does not
// end the span.
func Finish(span Span, st Statement) {
	op := st.Operation
	if op == "" {
		op = DetectOperation(st.SQL)
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system", st.System),
		attribute.String("db.statement", st.SQL),
		attribute.String("db.operation", op),
		attribute.Float64("db.duration_ms", float64(st.Duration.Microseconds())/1000.0),
	}
	if st.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", st.Table))
	}
	if st.RowsAffected > 0 {
		attrs = append(attrs, attribute.Int64("db.rows_affected", st.RowsAffected))
	}
	if st.Attempts > 1 {
		attrs = append(attrs, attribute.Int("db.attempts", st.Attempts))
	}
	span.SetAttributes(attrs...)

	if st.Err != nil {
		span.RecordError(st.Err)
		span.SetStatus(codes.Error, st.Err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

var operations = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "REPLACE",
	"TRUNCATE", "PRAGMA", "SHOW", "CREATE", "DROP", "ALTER",
}

// DetectOperation returns the leading SQL keyword of a statement, mapping
// WITH to SELECT, or UNKNOWN.
func DetectOperation(sql string) string {
	sql = strings.TrimLeft(sql, " \t\r\n(")
	word := sql
	if i := strings.IndexAny(sql, " \t\r\n("); i >= 0 {
		word = sql[:i]
	}
	word = strings.ToUpper(word)
	if word == "WITH" {
		return "SELECT"
	}
	for _, op := range operations {
		if word == op {
			return op
		}
	}
	return "UNKNOWN"
}
