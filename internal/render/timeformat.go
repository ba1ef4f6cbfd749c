package render

import "time"

// Named X-tick formats. Anything else is treated as an explicit Go time
// layout.
const (
	FormatAuto     = "auto"
	FormatSeconds  = "seconds"
	FormatTime     = "time"
	FormatDateTime = "datetime"
	FormatDate     = "date"
)

// Span buckets for auto format selection.
const (
	spanSeconds  = 2 * time.Minute
	spanTime     = 2 * time.Hour
	spanDateTime = 48 * time.Hour
)

// autoTimeFormat picks a named format for the visible span: under two
// minutes readings are seconds apart, under two hours minutes matter,
// under two days the date disambiguates, beyond that only dates fit.
func autoTimeFormat(span time.Duration) string {
	switch {
	case span < spanSeconds:
		return FormatSeconds
	case span < spanTime:
		return FormatTime
	case span < spanDateTime:
		return FormatDateTime
	default:
		return FormatDate
	}
}

// formatTime renders a tick timestamp with a named or explicit layout.
func formatTime(t time.Time, format string) string {
	switch format {
	case FormatSeconds:
		return t.Format("15:04:05")
	case FormatTime:
		return t.Format("15:04")
	case FormatDateTime:
		return t.Format("01/02 15:04")
	case FormatDate:
		return t.Format("01/02")
	default:
		return t.Format(format)
	}
}
