package call

import (
	"fmt"
	"strings"
	"time"
)

// SummaryLine renders one human-readable log line for a finished call, e.g.
//
//	[2025-03-04T10:20:30Z] INBOUND 42s answered rec=Y +15551234567 → 2000 (ext:101) id=abc123
//
// Lines are appended newline-delimited to the CRM call-log field, so the
// format must stay single-line.
func SummaryLine(r Record, at time.Time) string {
	ts := at.UTC().Truncate(time.Second).Format(time.RFC3339)
	dir := strings.ToUpper(string(r.Direction))
	if dir == "" {
		dir = "UNKNOWN"
	}
	disp := ""
	if r.Disposition != "" {
		disp = " " + r.Disposition
	}
	rec := ""
	if r.IsRecorded {
		rec = " rec=Y"
	}
	return fmt.Sprintf("[%s] %s %ds%s%s %s → %s (ext:%s) id=%s",
		ts, dir, r.DurationSeconds, disp, rec,
		orFallback(r.From, "?"), orFallback(r.To, "?"),
		orFallback(r.Internal, "-"), r.CallID)
}

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
