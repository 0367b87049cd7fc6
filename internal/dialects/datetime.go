package dialects

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	dateLayout,
	timeLayout,
	"15:04",
}

// ParseTime converts a time.Time, a date/time string or a unix timestamp to a time.Time.
func ParseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("dialects: cannot convert %v (%T) to time", v, v)
}

func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("dialects: cannot parse %q as time", s)
}

func formatDate(v any) (string, error) {
	t, err := ParseTime(v)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

func formatTime(v any) (string, error) {
	t, err := ParseTime(v)
	if err != nil {
		return "", err
	}
	return t.Format(timeLayout), nil
}
