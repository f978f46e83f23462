package reader

import (
	"net/url"
	"testing"
	"time"

	"leaderflow/config"
)

func TestMonthWindow(t *testing.T) {
	now := time.Date(2025, time.February, 14, 9, 30, 0, 0, time.UTC)
	w := MonthWindow(now)

	if got := w.Start.Format(time.RFC3339); got != "2025-02-01T00:00:00Z" {
		t.Fatalf("start = %s", got)
	}
	if got := w.End.Format(time.RFC3339); got != "2025-02-28T23:59:59Z" {
		t.Fatalf("end = %s", got)
	}
}

func TestMonthWindowDecemberRollover(t *testing.T) {
	now := time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)
	w := MonthWindow(now)

	if w.Start.Month() != time.December || w.End.Month() != time.December {
		t.Fatalf("window left December: %v - %v", w.Start, w.End)
	}
	if got := w.End.Format(time.RFC3339); got != "2024-12-31T23:59:59Z" {
		t.Fatalf("end = %s", got)
	}
}

func TestWindowFromConfig(t *testing.T) {
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		cfg   config.DateRangeConfig
		want  bool
		start string
		end   string
	}{
		{
			name:  "month",
			cfg:   config.DateRangeConfig{Mode: "month"},
			want:  true,
			start: "2025-06-01",
			end:   "2025-06-30",
		},
		{
			name:  "fixed",
			cfg:   config.DateRangeConfig{Mode: "fixed", Start: "2025-03-05", End: "2025-04-04"},
			want:  true,
			start: "2025-03-05",
			end:   "2025-04-04",
		},
		{
			name: "none",
			cfg:  config.DateRangeConfig{},
			want: false,
		},
		{
			name: "fixed with bad dates",
			cfg:  config.DateRangeConfig{Mode: "fixed", Start: "yesterday", End: "today"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := windowFromConfig(tt.cfg, now)
			if ok != tt.want {
				t.Fatalf("ok = %v, want %v", ok, tt.want)
			}
			if !ok {
				return
			}
			if got := w.Start.Format("2006-01-02"); got != tt.start {
				t.Fatalf("start = %s, want %s", got, tt.start)
			}
			if got := w.End.Format("2006-01-02"); got != tt.end {
				t.Fatalf("end = %s, want %s", got, tt.end)
			}
		})
	}
}

func TestApplyQueryWindowConventions(t *testing.T) {
	w := Window{
		Start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
	}

	q := url.Values{}
	applyQueryWindow(q, w, true)

	for _, key := range []string{"start", "from", "date_from", "startDate", "start_at"} {
		if got := q.Get(key); got != "2025-06-01" {
			t.Fatalf("%s = %q", key, got)
		}
	}
	for _, key := range []string{"end", "to", "date_to", "endDate", "end_at"} {
		if got := q.Get(key); got != "2025-06-30" {
			t.Fatalf("%s = %q", key, got)
		}
	}
	if q.Get("from_ts") != "1748736000" {
		t.Fatalf("from_ts = %q", q.Get("from_ts"))
	}
	if q.Get("period") != "month" {
		t.Fatalf("period = %q", q.Get("period"))
	}

	q = url.Values{}
	applyQueryWindow(q, w, false)
	if q.Has("period") {
		t.Fatalf("period set on non-monthly window")
	}
}

func TestBodyWindowEpochMillis(t *testing.T) {
	w := Window{
		Start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
	}

	body := bodyWindow(w)
	startMs := w.Start.UnixMilli()
	endMs := w.End.UnixMilli()

	for _, key := range []string{"start", "from", "startDate"} {
		if body[key] != startMs {
			t.Fatalf("%s = %v, want %d", key, body[key], startMs)
		}
	}
	for _, key := range []string{"end", "to", "endDate"} {
		if body[key] != endMs {
			t.Fatalf("%s = %v, want %d", key, body[key], endMs)
		}
	}
}
