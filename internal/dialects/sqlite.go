package dialects

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// Name returns "sqlite".
func (d *SQLiteDialect) Name() string { return "sqlite" }

// QuoteIdentifier quotes a SQLite identifier using double quotes.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QuoteName quotes a dotted SQLite name.
func (d *SQLiteDialect) QuoteName(s string) string {
	return quoteName(d.QuoteIdentifier, s)
}

// QuoteSQL expands shorthand references in raw SQL.
func (d *SQLiteDialect) QuoteSQL(s string) string {
	return quoteSQL(d.QuoteIdentifier, s)
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}

// DateString formats v as YYYY-MM-DD.
func (d *SQLiteDialect) DateString(v any) (string, error) { return formatDate(v) }

// TimeString formats v as HH:MM:SS.
func (d *SQLiteDialect) TimeString(v any) (string, error) { return formatTime(v) }

// DatePart uses date(), time() and strftime().
func (d *SQLiteDialect) DatePart(part Part, column string) string {
	switch part {
	case PartDate:
		return "date(" + column + ")"
	case PartTime:
		return "time(" + column + ")"
	case PartYear:
		return "CAST(strftime('%Y', " + column + ") AS INTEGER)"
	case PartMonth:
		return "CAST(strftime('%m', " + column + ") AS INTEGER)"
	default:
		return "CAST(strftime('%d', " + column + ") AS INTEGER)"
	}
}

// AddLimit appends LIMIT n.
func (d *SQLiteDialect) AddLimit(sql string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", sql, limit)
}

// AddOffset appends OFFSET n; SQLite requires LIMIT before OFFSET.
func (d *SQLiteDialect) AddOffset(sql string, offset int, hasLimit bool) string {
	if !hasLimit {
		sql += " LIMIT -1"
	}
	return fmt.Sprintf("%s OFFSET %d", sql, offset)
}

// UpsertSQL generates SQLite UPSERT syntax using ON CONFLICT.
func (d *SQLiteDialect) UpsertSQL(_ string, conflictCols, updateCols []string) string {
	quoted := make([]string, len(conflictCols))
	for i, col := range conflictCols {
		quoted[i] = d.QuoteIdentifier(col)
	}
	conflict := strings.Join(quoted, ", ")

	if updateCols == nil {
		if len(conflictCols) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", conflict)
		}
		return " ON CONFLICT DO NOTHING"
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := d.QuoteIdentifier(col)
		updates[i] = fmt.Sprintf("%s = excluded.%s", q, q)
	}

	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", conflict, strings.Join(updates, ", "))
}

// Returning is unused: the SQLite driver reports LastInsertId.
func (d *SQLiteDialect) Returning(_ string) string { return "" }

// TruncateSQL returns a DELETE: SQLite has no TRUNCATE.
func (d *SQLiteDialect) TruncateSQL(table string) string {
	return "DELETE FROM " + d.QuoteName(table)
}
