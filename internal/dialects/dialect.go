// Package dialects provides database-specific SQL dialect implementations for
// PostgreSQL, MySQL, and SQLite: identifier quoting, shorthand reference
// expansion in raw SQL, date/time formatting, placeholders, LIMIT/OFFSET and
// UPSERT syntax.
package dialects

// Part names a date/time component extracted from a column.
type Part int

// Extraction parts understood by Dialect.DatePart.
const (
	PartDate Part = iota
	PartTime
	PartYear
	PartMonth
	PartDay
)

// String returns the SQL name of the part.
func (p Part) String() string {
	switch p {
	case PartDate:
		return "DATE"
	case PartTime:
		return "TIME"
	case PartYear:
		return "YEAR"
	case PartMonth:
		return "MONTH"
	case PartDay:
		return "DAY"
	}
	return "UNKNOWN"
}

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Name returns the canonical dialect name ("mysql", "postgres", "sqlite").
	Name() string

	// QuoteIdentifier quotes a single identifier.
	QuoteIdentifier(string) string

	// QuoteName quotes a possibly dotted name ("table.column", "table.*"),
	// keeping an "AS alias" suffix. Anything that is not a plain name is
	// treated as raw SQL and passed through QuoteSQL.
	QuoteName(string) string

	// QuoteSQL expands shorthand references inside raw SQL:
	// !Name and !Table.Column, {{table}} and [[column]].
	QuoteSQL(string) string

	// Placeholder returns the positional placeholder for the 1-based index.
	Placeholder(int) string

	// DateString normalizes a value to the dialect's date literal format.
	DateString(any) (string, error)

	// TimeString normalizes a value to the dialect's time literal format.
	TimeString(any) (string, error)

	// DatePart wraps an already quoted column in the extraction function for part.
	DatePart(part Part, column string) string

	// AddLimit appends a LIMIT clause.
	AddLimit(sql string, limit int) string

	// AddOffset appends an OFFSET clause. hasLimit reports whether a LIMIT was
	// already added, since some databases reject OFFSET without LIMIT.
	AddOffset(sql string, offset int, hasLimit bool) string

	// UpsertSQL returns the conflict clause appended to an INSERT. A nil
	// updateCols means "do nothing" on conflict.
	UpsertSQL(table string, conflictCols, updateCols []string) string

	// Returning returns a RETURNING clause for column when the driver cannot
	// report the last insert id, or "" otherwise.
	Returning(column string) string

	// TruncateSQL returns the statement emptying table.
	TruncateSQL(table string) string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	dialects[name] = d
}

// LookupDialect retrieves a registered dialect by driver name.
func LookupDialect(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}

// GetDialect retrieves a registered dialect by driver name, panics if not found.
func GetDialect(name string) Dialect {
	if d, ok := dialects[name]; ok {
		return d
	}
	panic("unsupported dialect: " + name)
}
