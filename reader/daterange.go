package reader

import (
	"net/url"
	"strconv"
	"time"

	"leaderflow/config"
)

// Window is the wagering period sent to a source.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the current UTC calendar month, from the first instant
// of day one to the last second of the final day.
func MonthWindow(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return Window{Start: start, End: end}
}

// windowFromConfig resolves the configured date range. The second return is
// false when the source sends no window at all.
func windowFromConfig(cfg config.DateRangeConfig, now time.Time) (Window, bool) {
	switch cfg.Mode {
	case "month":
		return MonthWindow(now), true
	case "fixed":
		start, err := time.ParseInLocation("2006-01-02", cfg.Start, time.UTC)
		if err != nil {
			return Window{}, false
		}
		end, err := time.ParseInLocation("2006-01-02", cfg.End, time.UTC)
		if err != nil {
			return Window{}, false
		}
		return Window{Start: start, End: end.AddDate(0, 0, 1).Add(-time.Second)}, true
	default:
		return Window{}, false
	}
}

// applyQueryWindow writes the window under every parameter naming convention
// observed across the affiliate APIs. Servers ignore the names they do not
// know, so sending all of them maximizes compatibility with an undocumented
// backend.
func applyQueryWindow(q url.Values, w Window, monthly bool) {
	startISO := w.Start.Format("2006-01-02")
	endISO := w.End.Format("2006-01-02")

	for _, key := range []string{"start", "from", "date_from", "startDate", "start_at"} {
		q.Set(key, startISO)
	}
	for _, key := range []string{"end", "to", "date_to", "endDate", "end_at"} {
		q.Set(key, endISO)
	}
	q.Set("from_ts", strconv.FormatInt(w.Start.Unix(), 10))
	q.Set("to_ts", strconv.FormatInt(w.End.Unix(), 10))
	if monthly {
		q.Set("period", "month")
	}
}

// bodyWindow is the JSON POST body variant: epoch-millisecond bounds, again
// under multiple naming conventions.
func bodyWindow(w Window) map[string]interface{} {
	startMs := w.Start.UnixMilli()
	endMs := w.End.UnixMilli()
	return map[string]interface{}{
		"start":     startMs,
		"end":       endMs,
		"from":      startMs,
		"to":        endMs,
		"startDate": startMs,
		"endDate":   endMs,
	}
}
