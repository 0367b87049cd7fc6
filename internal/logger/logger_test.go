package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}

	l.Debug("test", "key", "value")
	l.Info("test")
	l.Warn("test", "key", 1)
	l.Error("test", "err", nil)
}

func TestSlogAdapter_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(Logger)
		level string
	}{
		{"debug", func(l Logger) { l.Debug("statement", "sql", "SELECT 1") }, "DEBUG"},
		{"info", func(l Logger) { l.Info("statement", "sql", "SELECT 1") }, "INFO"},
		{"warn", func(l Logger) { l.Warn("statement", "sql", "SELECT 1") }, "WARN"},
		{"error", func(l Logger) { l.Error("statement", "sql", "SELECT 1") }, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			tt.log(NewSlogAdapter(slog.New(h)))

			out := buf.String()
			assert.Contains(t, out, "level="+tt.level)
			assert.Contains(t, out, "msg=statement")
			assert.Contains(t, out, `sql="SELECT 1"`)
		})
	}
}

func TestSlogAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil))).With("driver", "sqlite")

	l.Info("statement executed", "rows_affected", 3)

	out := buf.String()
	assert.Contains(t, out, `"driver":"sqlite"`)
	assert.Contains(t, out, `"rows_affected":3`)
}

func TestNewSlogAdapter_NilUsesDefault(t *testing.T) {
	a := NewSlogAdapter(nil)
	assert.NotNil(t, a.logger)
}
