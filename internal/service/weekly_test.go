package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/growthlog/internal/pkg/apperr"
	"github.com/yuqie6/growthlog/internal/schema"
)

func newWeeklyForTest(reports []schema.DailyReport) *WeeklyService {
	svc := NewWeeklyService(&fakeReportRepo{reports: reports}, time.UTC)
	svc.now = fixedNow
	return svc
}

func TestGetWeeklyStats(t *testing.T) {
	reports := []schema.DailyReport{
		{
			Date: "2024-12-16", Title: "warm up",
			CommitCount: 3, PRCount: 0, LinesChanged: 80, ChangeSize: schema.ChangeSizeS,
			TechTags: schema.TechTagList{{Name: "Go", IsNew: true}, {Name: "SQL"}},
		},
		{
			Date: "2024-12-17", Title: "big refactor",
			CommitCount: 8, PRCount: 1, LinesChanged: 600, ChangeSize: schema.ChangeSizeL,
			TechTags: schema.TechTagList{{Name: "Go"}, {Name: "React", IsNew: true}},
		},
	}

	svc := newWeeklyForTest(reports)
	stats, err := svc.GetWeeklyStats(context.Background(), "local", 0)
	if err != nil {
		t.Fatalf("GetWeeklyStats error: %v", err)
	}

	if stats.StartDate != "2024-12-16" || stats.EndDate != "2024-12-22" {
		t.Fatalf("range=%s..%s", stats.StartDate, stats.EndDate)
	}
	if stats.WeekLabel != "12月16日〜12月22日" {
		t.Fatalf("label=%s", stats.WeekLabel)
	}

	if stats.TotalCommits != 11 || stats.TotalPRs != 1 || stats.TotalLinesChanged != 680 {
		t.Fatalf("totals unexpected: %+v", stats)
	}
	if stats.DailyReportCount != 2 {
		t.Fatalf("reportCount=%d, want 2", stats.DailyReportCount)
	}

	// day1: (30+0+8)/6 = 6; day2: (80+50+60)*2/6 = 63; avg 34.5 → 35
	if stats.WeeklyMomentum != 35 {
		t.Fatalf("weeklyMomentum=%d, want 35", stats.WeeklyMomentum)
	}

	if stats.NewTechCount != 2 {
		t.Fatalf("newTechCount=%d, want 2", stats.NewTechCount)
	}
	if stats.NewTechTags[0] != "Go" || stats.NewTechTags[1] != "React" {
		t.Fatalf("newTechTags=%v", stats.NewTechTags)
	}
	// allTags 按名称去重，Go 首次出现时 is_new=true 取胜
	if len(stats.AllTechTags) != 3 {
		t.Fatalf("allTechTags=%v", stats.AllTechTags)
	}
	if stats.AllTechTags[0].Name != "Go" || !stats.AllTechTags[0].IsNew {
		t.Fatalf("first tag unexpected: %+v", stats.AllTechTags[0])
	}

	if len(stats.DailyBreakdown) != 7 {
		t.Fatalf("breakdown len=%d, want 7", len(stats.DailyBreakdown))
	}
	if stats.DailyBreakdown[0].DayOfWeek != "月" || stats.DailyBreakdown[6].DayOfWeek != "日" {
		t.Fatalf("breakdown days unexpected: %+v", stats.DailyBreakdown)
	}
	if stats.DailyBreakdown[1].Commits != 8 || stats.DailyBreakdown[1].Lines != 600 {
		t.Fatalf("tuesday entry unexpected: %+v", stats.DailyBreakdown[1])
	}
	// 无日报的日子补零
	if stats.DailyBreakdown[3].Commits != 0 {
		t.Fatalf("empty day should be zero: %+v", stats.DailyBreakdown[3])
	}

	if stats.MostProductiveDay.Date != "2024-12-17" || stats.MostProductiveDay.DayOfWeek != "火曜日" {
		t.Fatalf("mostProductiveDay=%+v", stats.MostProductiveDay)
	}
	if stats.BiggestChange == nil || stats.BiggestChange.Title != "big refactor" || stats.BiggestChange.Lines != 600 {
		t.Fatalf("biggestChange=%+v", stats.BiggestChange)
	}
}

func TestGetWeeklyStatsEmptyWeek(t *testing.T) {
	svc := newWeeklyForTest(nil)
	stats, err := svc.GetWeeklyStats(context.Background(), "local", 0)
	if err != nil {
		t.Fatalf("GetWeeklyStats error: %v", err)
	}

	if stats.DailyReportCount != 0 || stats.WeeklyMomentum != 0 {
		t.Fatalf("stats unexpected: %+v", stats)
	}
	if len(stats.DailyBreakdown) != 7 {
		t.Fatalf("breakdown len=%d, want 7", len(stats.DailyBreakdown))
	}
	if stats.BiggestChange != nil {
		t.Fatalf("biggestChange should be nil: %+v", stats.BiggestChange)
	}
	if len(stats.NewTechTags) != 0 || len(stats.AllTechTags) != 0 {
		t.Fatalf("tags should be empty: %+v", stats)
	}
}

func TestGetWeeklyStatsOffset(t *testing.T) {
	reports := []schema.DailyReport{
		{Date: "2024-12-11", CommitCount: 4, ChangeSize: schema.ChangeSizeS}, // 上周三
		{Date: "2024-12-18", CommitCount: 9, ChangeSize: schema.ChangeSizeS}, // 本周三
	}

	svc := newWeeklyForTest(reports)
	stats, err := svc.GetWeeklyStats(context.Background(), "local", -1)
	if err != nil {
		t.Fatalf("GetWeeklyStats error: %v", err)
	}
	if stats.StartDate != "2024-12-09" || stats.EndDate != "2024-12-15" {
		t.Fatalf("range=%s..%s", stats.StartDate, stats.EndDate)
	}
	if stats.TotalCommits != 4 {
		t.Fatalf("totalCommits=%d, want 4", stats.TotalCommits)
	}
}

func TestWeeklyMomentumCapped(t *testing.T) {
	reports := []schema.DailyReport{
		{CommitCount: 50, PRCount: 10, LinesChanged: 1000, ChangeSize: schema.ChangeSizeL},
	}
	if got := weeklyMomentum(reports); got != 100 {
		t.Fatalf("weeklyMomentum=%d, want 100", got)
	}
	if got := weeklyMomentum(nil); got != 0 {
		t.Fatalf("weeklyMomentum=%d, want 0", got)
	}
}

func TestMostProductiveDayTieKeepsFirst(t *testing.T) {
	breakdown := []DailyBreakdownEntry{
		{Date: "2024-12-16", DayOfWeek: "月", Commits: 5},
		{Date: "2024-12-17", DayOfWeek: "火", Commits: 5},
		{Date: "2024-12-18", DayOfWeek: "水", Commits: 2},
	}
	best := mostProductiveDay(breakdown, time.UTC)
	if best.Date != "2024-12-16" {
		t.Fatalf("tie should keep first: %+v", best)
	}
	if best.DayOfWeek != "月曜日" {
		t.Fatalf("dayOfWeek=%s, want 月曜日", best.DayOfWeek)
	}
}

func TestGetWeeklyStatsRepoError(t *testing.T) {
	svc := NewWeeklyService(&fakeReportRepo{err: errors.New("db down")}, time.UTC)
	svc.now = fixedNow

	_, err := svc.GetWeeklyStats(context.Background(), "local", 0)
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("kind=%v, want unavailable", apperr.KindOf(err))
	}
}
