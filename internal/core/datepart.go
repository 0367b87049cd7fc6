package core

import (
	"time"

	"github.com/coregx/sqlcond/internal/dialects"
)

// partTransform wraps the column in the dialect extraction function and
// normalizes values: date and time strings, or integers for year/month/day.
func partTransform(d dialects.Dialect, part dialects.Part) valueTransform {
	t := valueTransform{
		column: func(column string) string { return d.DatePart(part, column) },
	}

	switch part {
	case dialects.PartDate:
		t.value = func(v any) (any, error) { return d.DateString(v) }
	case dialects.PartTime:
		t.value = func(v any) (any, error) { return d.TimeString(v) }
	default:
		t.value = func(v any) (any, error) { return partInt(part, v) }
	}
	return t
}

// partInt converts v to the integer compared against a YEAR/MONTH/DAY extraction.
func partInt(part dialects.Part, v any) (any, error) {
	if tm, ok := v.(time.Time); ok {
		switch part {
		case dialects.PartYear:
			return int64(tm.Year()), nil
		case dialects.PartMonth:
			return int64(tm.Month()), nil
		default:
			return int64(tm.Day()), nil
		}
	}
	return toInt64(v)
}
