package core

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/coregx/sqlcond/internal/dialects"
)

// Record is one fetched row keyed by column name. Text and blob columns
// are returned as string; NULL is nil.
//
// Example:
//
//	rec, _ := db.Fetch(ctx, db.Select().From("users").Where("id", 1))
//	name := rec.String("name") // "" when NULL or missing
//	if !rec.IsNull("email") {
//	    email := rec.String("email")
//	}
type Record map[string]any

// Has reports whether the record has column key, NULL or not.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// IsNull reports whether column key is NULL or missing.
func (r Record) IsNull(key string) bool {
	return r[key] == nil
}

// Keys returns the column names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns column key formatted as a string, or "" when NULL.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns column key as an integer. NULL is 0.
func (r Record) Int64(key string) (int64, error) {
	v := r[key]
	if v == nil {
		return 0, nil
	}
	return toInt64(v)
}

// Float64 returns column key as a float. NULL is 0.
func (r Record) Float64(key string) (float64, error) {
	v := r[key]
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	return cast.ToFloat64E(v)
}

// Bool returns column key as a boolean. Numbers and numeric strings are
// true when non-zero.
func (r Record) Bool(key string) (bool, error) {
	v := r[key]
	if s, ok := v.(string); ok {
		if n, err := toInt64(s); err == nil {
			return n != 0, nil
		}
	}
	return cast.ToBoolE(v)
}

// Time returns column key as a time.
func (r Record) Time(key string) (time.Time, error) {
	if r[key] == nil {
		return time.Time{}, nil
	}
	return dialects.ParseTime(r[key])
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// eachRow scans rows into generic values and passes each to fn. A positive
// limit stops after that many rows.
func eachRow(rows *sql.Rows, limit int, fn func(columns []string, row []any)) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("scanner: failed to get columns: %w", err)
	}

	n := 0
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return fmt.Errorf("scanner: scan failed: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		fn(columns, values)

		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return nil
}

// scanRecords reads rows into records. A positive limit stops after that
// many rows.
func scanRecords(rows *sql.Rows, limit int) ([]Record, error) {
	var records []Record
	err := eachRow(rows, limit, func(columns []string, row []any) {
		rec := make(Record, len(columns))
		for i, col := range columns {
			rec[col] = row[i]
		}
		records = append(records, rec)
	})
	return records, err
}
