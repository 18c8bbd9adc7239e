package utils

import "time"

const (
	TimestampLayout = "02/01/2006 15:04"
	DateLayout      = "02/01/2006"
)

// FormatTimestamp renders t in UTC for display. Zero times render as "-".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(TimestampLayout)
}

func FormatTimestampPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatTimestamp(*t)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(DateLayout)
}
