package rendering

import (
	"strings"
	"time"
)

// PresentLabel replaces the end date of an ongoing position.
const PresentLabel = "Present"

// dateLayouts are the input formats produced by the editor (month inputs first).
var dateLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006/01",
	"01/2006",
}

// FormatDate renders a stored date as "{short month} {full year}", e.g. "Jan 2020".
// Empty or unparsable input renders as the empty string.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return ""
}

// FormatRange renders a start/end pair. When current is true the end is always
// PresentLabel, whatever end holds.
func FormatRange(start, end string, current bool) string {
	from := FormatDate(start)
	to := FormatDate(end)
	if current {
		to = PresentLabel
	}

	switch {
	case from == "" && to == "":
		return ""
	case from == "":
		return to
	case to == "":
		return from
	default:
		return from + " - " + to
	}
}
