package dialects

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
	RegisterDialect("pgx", &PostgresDialect{})
}

// Name returns "postgres".
func (d *PostgresDialect) Name() string { return "postgres" }

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

// QuoteName quotes a dotted PostgreSQL name.
func (d *PostgresDialect) QuoteName(s string) string {
	return quoteName(d.QuoteIdentifier, s)
}

// QuoteSQL expands shorthand references in raw SQL.
func (d *PostgresDialect) QuoteSQL(s string) string {
	return quoteSQL(d.QuoteIdentifier, s)
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// DateString formats v as YYYY-MM-DD.
func (d *PostgresDialect) DateString(v any) (string, error) { return formatDate(v) }

// TimeString formats v as HH:MM:SS.
func (d *PostgresDialect) TimeString(v any) (string, error) { return formatTime(v) }

// DatePart uses CAST for date and time, EXTRACT for the numeric parts.
func (d *PostgresDialect) DatePart(part Part, column string) string {
	switch part {
	case PartDate, PartTime:
		return "CAST(" + column + " AS " + part.String() + ")"
	default:
		return "CAST(EXTRACT(" + part.String() + " FROM " + column + ") AS INTEGER)"
	}
}

// AddLimit appends LIMIT n.
func (d *PostgresDialect) AddLimit(sql string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", sql, limit)
}

// AddOffset appends OFFSET n.
func (d *PostgresDialect) AddOffset(sql string, offset int, _ bool) string {
	return fmt.Sprintf("%s OFFSET %d", sql, offset)
}

// UpsertSQL generates PostgreSQL UPSERT syntax using ON CONFLICT.
func (d *PostgresDialect) UpsertSQL(_ string, conflictCols, updateCols []string) string {
	conflict := d.quoteList(conflictCols)
	if updateCols == nil {
		if len(conflictCols) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", conflict)
		}
		return " ON CONFLICT DO NOTHING"
	}

	parts := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := d.QuoteIdentifier(col)
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", q, q)
	}
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", conflict, strings.Join(parts, ", "))
}

// Returning returns RETURNING "column": lib/pq does not support LastInsertId.
func (d *PostgresDialect) Returning(column string) string {
	return " RETURNING " + d.QuoteIdentifier(column)
}

func (d *PostgresDialect) quoteList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = d.QuoteIdentifier(col)
	}
	return strings.Join(quoted, ", ")
}

// TruncateSQL returns TRUNCATE TABLE.
func (d *PostgresDialect) TruncateSQL(table string) string {
	return "TRUNCATE TABLE " + d.QuoteName(table)
}
