package dialects

import (
	"fmt"
	"strings"
)

// mysqlMaxLimit is the documented way to express "no limit" before OFFSET.
const mysqlMaxLimit = "18446744073709551615"

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

// Name returns "mysql".
func (d *MySQLDialect) Name() string { return "mysql" }

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// QuoteName quotes a dotted MySQL name.
func (d *MySQLDialect) QuoteName(s string) string {
	return quoteName(d.QuoteIdentifier, s)
}

// QuoteSQL expands shorthand references in raw SQL.
func (d *MySQLDialect) QuoteSQL(s string) string {
	return quoteSQL(d.QuoteIdentifier, s)
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// DateString formats v as YYYY-MM-DD.
func (d *MySQLDialect) DateString(v any) (string, error) { return formatDate(v) }

// TimeString formats v as HH:MM:SS.
func (d *MySQLDialect) TimeString(v any) (string, error) { return formatTime(v) }

// DatePart uses the MySQL DATE/TIME/YEAR/MONTH/DAY functions.
func (d *MySQLDialect) DatePart(part Part, column string) string {
	return part.String() + "(" + column + ")"
}

// AddLimit appends LIMIT n.
func (d *MySQLDialect) AddLimit(sql string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", sql, limit)
}

// AddOffset appends OFFSET n, adding the maximal LIMIT when none was set.
func (d *MySQLDialect) AddOffset(sql string, offset int, hasLimit bool) string {
	if !hasLimit {
		sql += " LIMIT " + mysqlMaxLimit
	}
	return fmt.Sprintf("%s OFFSET %d", sql, offset)
}

// UpsertSQL generates MySQL UPSERT syntax using ON DUPLICATE KEY UPDATE.
// MySQL has no DO NOTHING; a self-assignment of the first conflict column
// is used instead.
func (d *MySQLDialect) UpsertSQL(_ string, conflictCols, updateCols []string) string {
	if updateCols == nil {
		if len(conflictCols) == 0 {
			return ""
		}
		col := d.QuoteIdentifier(conflictCols[0])
		return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s = %s", col, col)
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := d.QuoteIdentifier(col)
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", q, q)
	}

	return " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
}

// Returning is unused: the MySQL driver reports LastInsertId.
func (d *MySQLDialect) Returning(_ string) string { return "" }

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}

// TruncateSQL returns TRUNCATE TABLE.
func (d *MySQLDialect) TruncateSQL(table string) string {
	return "TRUNCATE TABLE " + d.QuoteName(table)
}
