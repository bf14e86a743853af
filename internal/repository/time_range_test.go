package repository

import (
	"testing"
	"time"
)

func TestDayRange(t *testing.T) {
	start, end, err := DayRange("2024-12-18", time.UTC)
	if err != nil {
		t.Fatalf("DayRange error: %v", err)
	}
	if !start.Equal(time.Date(2024, 12, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start=%v", start)
	}
	if !end.Equal(time.Date(2024, 12, 18, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("end=%v", end)
	}
}

func TestDayRangeRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "2024/12/18", "18-12-2024", "2024-13-01"} {
		if _, _, err := DayRange(bad, time.UTC); err == nil {
			t.Fatalf("date %q should fail", bad)
		}
	}
}
