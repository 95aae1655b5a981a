package utils

import "time"

// MySQL DATETIME layout. Drivers hand DATETIME columns back as []byte when
// parseTime is off (sqlmock does this too), so repositories parse through here.
const mysqlDateTime = "2006-01-02 15:04:05"

// ParseDBTime parses a raw DATETIME column value. Accepts the MySQL layout
// and RFC3339 as a fallback. Returns the zero time when empty or unparseable.
func ParseDBTime(raw []byte) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	if t, err := time.Parse(mysqlDateTime, string(raw)); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, string(raw)); err == nil {
		return t
	}
	return time.Time{}
}

// ParseDBTimePtr is ParseDBTime for nullable columns; returns nil for
// empty or unparseable values.
func ParseDBTimePtr(raw []byte) *time.Time {
	t := ParseDBTime(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}

// ParseDBDate parses a DATE column (no time component).
func ParseDBDate(raw []byte) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", string(raw)); err == nil {
		return t
	}
	return ParseDBTime(raw)
}

// ParseDBDatePtr is ParseDBDate for nullable columns.
func ParseDBDatePtr(raw []byte) *time.Time {
	t := ParseDBDate(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}
