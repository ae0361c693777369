// Package fields converts nullable legacy column values into typed values.
//
// The legacy schema stores many columns as CHAR or VARCHAR that are either
// NULL or padded with blanks when unset. Both forms are treated as absent.
package fields

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the textual date format used by the legacy schema.
const DateLayout = "2006-01-02"

// Two-digit year pivot: 80-99 are 19xx, 0-79 are 20xx.
const yearPivot = 80

// TrimmedString returns the trimmed text of a column value. NULL, empty and
// all-whitespace values are reported as absent.
func TrimmedString(src any) (string, bool) {
	var raw string
	switch v := src.(type) {
	case nil:
		return "", false
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case fmt.Stringer:
		raw = v.String()
	default:
		raw = fmt.Sprint(v)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// ParseInt converts an integer column value. Blank text is absent; any other
// non-numeric text is an error.
func ParseInt(src any) (int64, bool, error) {
	switch v := src.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return v, true, nil
	case int32:
		return int64(v), true, nil
	case int:
		return int64(v), true, nil
	case int16:
		return int64(v), true, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, false, fmt.Errorf("fields: non-integral value %v", v)
		}
		return int64(v), true, nil
	case string, []byte:
		text, ok := TrimmedString(v)
		if !ok {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("fields: parse integer %q: %w", text, err)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("fields: unsupported integer type %T", src)
	}
}

// ParseDate converts a date column value, discarding any time-of-day part.
func ParseDate(src any) (time.Time, bool, error) {
	switch v := src.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false, nil
		}
		return DateOf(v), true, nil
	case string, []byte:
		text, ok := TrimmedString(v)
		if !ok {
			return time.Time{}, false, nil
		}
		if len(text) > len(DateLayout) {
			text = text[:len(DateLayout)]
		}
		t, err := time.Parse(DateLayout, text)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("fields: parse date %q: %w", text, err)
		}
		return t, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("fields: unsupported date type %T", src)
	}
}

// ExpandYear maps a two-digit year onto a four-digit one using the fixed
// pivot: 80-99 map to 1980-1999 and 0-79 map to 2000-2079.
func ExpandYear(twoDigit int) (int, error) {
	if twoDigit < 0 || twoDigit > 99 {
		return 0, fmt.Errorf("fields: %d is not a two-digit year", twoDigit)
	}
	if twoDigit >= yearPivot {
		return 1900 + twoDigit, nil
	}
	return 2000 + twoDigit, nil
}

// CollapseYear is the inverse of ExpandYear.
func CollapseYear(year int) (int, error) {
	if year < 1900+yearPivot || year > 2000+yearPivot-1 {
		return 0, fmt.Errorf("fields: year %d outside two-digit window", year)
	}
	return year % 100, nil
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
