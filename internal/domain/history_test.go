package domain

import (
	"testing"
	"time"
)

func TestWithinRestoreWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sixDaysAgo := now.Add(-6 * 24 * time.Hour)
	sevenDaysAgo := now.Add(-RestoreWindow)
	eightDaysAgo := now.Add(-8 * 24 * time.Hour)

	cases := []struct {
		name      string
		deletedAt *time.Time
		want      bool
	}{
		{"never deleted", nil, false},
		{"inside window", &sixDaysAgo, true},
		{"on the boundary", &sevenDaysAgo, true},
		{"window expired", &eightDaysAgo, false},
	}

	for _, c := range cases {
		if got := WithinRestoreWindow(c.deletedAt, now); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
