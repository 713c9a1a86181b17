package actionlog

import (
	"testing"
	"time"
)

func TestDaysToYMD(t *testing.T) {
	cases := []struct {
		days             int64
		year, month, day int
	}{
		{0, 1970, 1, 1},
		{365, 1971, 1, 1},
		{11016, 2000, 2, 29},
		{20513, 2026, 3, 1},
	}
	for _, c := range cases {
		y, m, d := daysToYMD(c.days)
		if y != c.year || m != c.month || d != c.day {
			t.Errorf("daysToYMD(%d) = %04d-%02d-%02d, want %04d-%02d-%02d",
				c.days, y, m, d, c.year, c.month, c.day)
		}
	}
}

func TestDaysSinceEpoch(t *testing.T) {
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := daysSinceEpoch(epoch); got != 0 {
		t.Errorf("daysSinceEpoch(epoch) = %d, want 0", got)
	}
	leap := time.Date(2000, 2, 29, 12, 0, 0, 0, time.UTC)
	if got := daysSinceEpoch(leap); got != 11016 {
		t.Errorf("daysSinceEpoch(2000-02-29) = %d, want 11016", got)
	}
}

func TestLogFilteredOrderAndClear(t *testing.T) {
	l := New(t.TempDir())
	l.Record("p1", "navigate", time.Millisecond, true, "")
	l.Record("p2", "click", time.Millisecond, true, "")
	l.Record("p1", "screenshot", time.Millisecond, false, "boom")

	all := l.Filtered("", 10)
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Tool != "screenshot" {
		t.Errorf("all[0].Tool = %q, want newest-first (screenshot)", all[0].Tool)
	}

	p1 := l.Filtered("p1", 10)
	if len(p1) != 2 {
		t.Fatalf("len(p1) = %d, want 2", len(p1))
	}

	l.Clear("p1")
	afterClear := l.Filtered("", 10)
	if len(afterClear) != 1 || afterClear[0].ProfileID != "p2" {
		t.Errorf("Clear(p1) left %v, want only p2's entry", afterClear)
	}
}

func TestLogRingEviction(t *testing.T) {
	l := New(t.TempDir())
	for i := 0; i < MaxEntries+10; i++ {
		l.Record("p", "navigate", 0, true, "")
	}
	if got := len(l.Filtered("", 0)); got != MaxEntries {
		t.Errorf("ring holds %d entries, want capped at %d", got, MaxEntries)
	}
}
