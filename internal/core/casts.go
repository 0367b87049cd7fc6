package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/coregx/sqlcond/internal/dialects"
)

// toInt64 casts numbers, bools and numeric strings to int64. Fractions are
// truncated, an empty string is 0 and decimal strings keep base 10 despite
// leading zeros.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case []byte:
		v = string(n)
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("cannot convert %d to int64: out of range", n)
		}
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("cannot convert %d to int64: out of range", n)
		}
	}
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			return 0, nil
		}
		v = trimLeadingZeros(s)
	}
	return cast.ToInt64E(v)
}

// trimLeadingZeros turns "08" into "8" so it is not read as octal.
func trimLeadingZeros(s string) string {
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" || trimmed[0] == '.' {
		trimmed = "0" + trimmed
	}
	return sign + trimmed
}

// Cast names accepted by WithCasts.
const (
	CastDatetime   = "datetime"
	CastTimestamp  = "timestamp"
	CastDate       = "date"
	CastTime       = "time"
	CastBoolean    = "boolean"
	CastJSON       = "json"
	CastArray      = "array"
	CastSystemName = "systemName"
)

const (
	datetimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
)

func isIntType(typ string) bool {
	return strings.Contains(typ, "int") || typ == "serial" || typ == "bigserial"
}

func isFloatType(typ string) bool {
	for _, t := range []string{"real", "float", "double", "decimal", "numeric"} {
		if strings.Contains(typ, t) {
			return true
		}
	}
	return false
}

// castValue normalises a value for column. When toDB is false the value is
// converted the way it is kept in a record; when true it is converted for
// binding into a statement.
func castValue(col Column, castName string, value any, toDB bool) (any, error) {
	if s, ok := value.(string); ok && s == "" && col.Nullable {
		value = nil
	}
	if value == nil {
		return nil, nil
	}

	var err error
	switch {
	case isIntType(col.Type):
		if value, err = toInt64(value); err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
	case isFloatType(col.Type):
		if value, err = cast.ToFloat64E(value); err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
	}

	switch castName {
	case CastDatetime, CastTimestamp:
		return formatTimeValue(value, datetimeLayout)
	case CastDate:
		return formatTimeValue(value, dateLayout)
	case CastTime:
		return formatTimeValue(value, timeLayout)
	case CastBoolean:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		return b, nil
	case CastSystemName:
		if !toDB {
			return value, nil
		}
		return systemName(cast.ToString(value)), nil
	case CastJSON, CastArray:
		return castJSON(col, value, toDB)
	}
	return value, nil
}

func formatTimeValue(value any, layout string) (any, error) {
	if s, ok := value.(string); ok && strings.EqualFold(s, "CURRENT_TIMESTAMP") {
		return time.Now().Format(layout), nil
	}
	t, err := dialects.ParseTime(value)
	if err != nil {
		return nil, err
	}
	return t.Format(layout), nil
}

func castJSON(col Column, value any, toDB bool) (any, error) {
	if toDB {
		if s, ok := value.(string); ok {
			return s, nil
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		return string(b), nil
	}

	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("column %s: %w", col.Name, err)
	}
	return out, nil
}

// systemName turns a label into a lower-case ASCII slug: accents are
// removed and every run of other characters becomes one "-".
//
//	"Crème Brûlée!" -> "creme-brulee"
func systemName(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
