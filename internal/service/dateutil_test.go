package service

import (
	"testing"
	"time"
)

func TestWeekMonday(t *testing.T) {
	loc := time.UTC

	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday stays", time.Date(2024, 12, 16, 10, 30, 0, 0, loc), "2024-12-16"},
		{"wednesday back to monday", time.Date(2024, 12, 18, 23, 59, 0, 0, loc), "2024-12-16"},
		{"sunday belongs to previous monday", time.Date(2024, 12, 22, 0, 0, 1, 0, loc), "2024-12-16"},
		{"across month boundary", time.Date(2024, 12, 1, 12, 0, 0, 0, loc), "2024-11-25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DateKey(WeekMonday(tc.in, loc), loc)
			if got != tc.want {
				t.Fatalf("WeekMonday(%v)=%s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestDateKeyRespectsLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// UTC 的 12/16 23:00 在东京已经是 12/17
	utc := time.Date(2024, 12, 16, 23, 0, 0, 0, time.UTC)
	if got := DateKey(utc, time.UTC); got != "2024-12-16" {
		t.Fatalf("utc key=%s, want 2024-12-16", got)
	}
	if got := DateKey(utc, tokyo); got != "2024-12-17" {
		t.Fatalf("tokyo key=%s, want 2024-12-17", got)
	}
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	loc := time.UTC
	day, err := ParseDateKey("2024-02-29", loc)
	if err != nil {
		t.Fatalf("ParseDateKey error: %v", err)
	}
	if DateKey(day, loc) != "2024-02-29" {
		t.Fatalf("round trip mismatch: %v", day)
	}

	if _, err := ParseDateKey("2024/02/29", loc); err == nil {
		t.Fatal("malformed key should fail")
	}
}

func TestDayOfWeekNames(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2024, 12, 16, 0, 0, 0, 0, loc)

	if got := DayOfWeekEn(monday); got != "Mon" {
		t.Fatalf("en=%s, want Mon", got)
	}
	if got := DayOfWeekJa(monday); got != "月" {
		t.Fatalf("ja=%s, want 月", got)
	}
	if got := DayOfWeekJaFull(monday); got != "月曜日" {
		t.Fatalf("ja full=%s, want 月曜日", got)
	}

	sunday := monday.AddDate(0, 0, 6)
	if got := DayOfWeekJa(sunday); got != "日" {
		t.Fatalf("ja=%s, want 日", got)
	}
}

func TestWeekLabel(t *testing.T) {
	start := time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	if got := WeekLabel(start, end); got != "12月16日〜12月22日" {
		t.Fatalf("label=%s", got)
	}

	// 跨月
	start = time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 0, 6)
	if got := WeekLabel(start, end); got != "11月25日〜12月1日" {
		t.Fatalf("label=%s", got)
	}
}
