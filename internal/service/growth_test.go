package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/yuqie6/growthlog/internal/pkg/apperr"
	"github.com/yuqie6/growthlog/internal/schema"
)

// fakeReportRepo 内存仓储，growth/weekly 测试共用
type fakeReportRepo struct {
	reports []schema.DailyReport
	err     error
}

func (f *fakeReportRepo) Create(ctx context.Context, report *schema.DailyReport) error {
	f.reports = append(f.reports, *report)
	return f.err
}

func (f *fakeReportRepo) GetByID(ctx context.Context, id string) (*schema.DailyReport, error) {
	for i := range f.reports {
		if f.reports[i].ID == id {
			return &f.reports[i], nil
		}
	}
	return nil, f.err
}

func (f *fakeReportRepo) ListByUserID(ctx context.Context, userID string) ([]schema.DailyReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := append([]schema.DailyReport(nil), f.reports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeReportRepo) GetByUserIDAndDate(ctx context.Context, userID, date string) (*schema.DailyReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.reports {
		if f.reports[i].Date == date {
			return &f.reports[i], nil
		}
	}
	return nil, nil
}

func (f *fakeReportRepo) ListByUserIDBetween(ctx context.Context, userID, startDate, endDate string) ([]schema.DailyReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]schema.DailyReport, 0)
	for _, r := range f.reports {
		if r.Date >= startDate && r.Date <= endDate {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeReportRepo) Update(ctx context.Context, id string, fields map[string]any) (*schema.DailyReport, error) {
	return nil, f.err
}

func (f *fakeReportRepo) Delete(ctx context.Context, id string) error { return f.err }

// 固定"现在"为 2024-12-18（周三）
func fixedNow() time.Time {
	return time.Date(2024, 12, 18, 12, 0, 0, 0, time.UTC)
}

func newGrowthForTest(reports []schema.DailyReport) *GrowthService {
	svc := NewGrowthService(&fakeReportRepo{reports: reports}, time.UTC)
	svc.now = fixedNow
	return svc
}

func TestMomentumScore(t *testing.T) {
	cases := []struct {
		name   string
		report *schema.DailyReport
		want   int
	}{
		{"nil report", nil, 0},
		{"zero activity", &schema.DailyReport{ChangeSize: schema.ChangeSizeS}, 0},
		// (8*10 + 2*50 + min(240/10,100)) * 1.5 / 6 = 306/6 = 51
		{"medium day", &schema.DailyReport{CommitCount: 8, PRCount: 2, LinesChanged: 240, ChangeSize: schema.ChangeSizeM}, 51},
		// (5*10 + 0 + 5) * 1.0 / 6 = 9.16 → 9
		{"small day", &schema.DailyReport{CommitCount: 5, LinesChanged: 50, ChangeSize: schema.ChangeSizeS}, 9},
		// lines score 封顶 100: (0 + 0 + 100) * 2.0 / 6 = 33
		{"lines capped", &schema.DailyReport{LinesChanged: 99999, ChangeSize: schema.ChangeSizeL}, 33},
		// 公式无总上限
		{"uncapped total", &schema.DailyReport{CommitCount: 50, PRCount: 10, LinesChanged: 1000, ChangeSize: schema.ChangeSizeL}, 366},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := momentumScore(tc.report); got != tc.want {
				t.Fatalf("momentum=%d, want %d", got, tc.want)
			}
		})
	}
}

func TestCalculateStreak(t *testing.T) {
	cases := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"three consecutive ending today", []string{"2024-12-18", "2024-12-17", "2024-12-16"}, 3},
		{"anchored on yesterday", []string{"2024-12-17", "2024-12-16"}, 2},
		{"gap breaks the chain", []string{"2024-12-18", "2024-12-17", "2024-12-15"}, 2},
		{"stale latest report", []string{"2024-12-15", "2024-12-14"}, 0},
		{"single today", []string{"2024-12-18"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := make([]schema.DailyReport, 0, len(tc.dates))
			for _, d := range tc.dates {
				reports = append(reports, schema.DailyReport{Date: d})
			}
			svc := newGrowthForTest(reports)
			if got := svc.calculateStreak(reports); got != tc.want {
				t.Fatalf("streak=%d, want %d", got, tc.want)
			}
		})
	}
}

func TestCalculateStreakAcrossMonthBoundary(t *testing.T) {
	svc := NewGrowthService(&fakeReportRepo{}, time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }

	reports := []schema.DailyReport{
		{Date: "2025-01-01"},
		{Date: "2024-12-31"},
		{Date: "2024-12-30"},
	}
	if got := svc.calculateStreak(reports); got != 3 {
		t.Fatalf("streak=%d, want 3", got)
	}
}

func TestGetGrowthData(t *testing.T) {
	ctx := context.Background()
	reports := []schema.DailyReport{
		{
			ID: "r1", Date: "2024-12-18",
			CommitCount: 5, LinesChanged: 50, ChangeSize: schema.ChangeSizeS,
			TechTags: schema.TechTagList{{Name: "Go"}, {Name: "TypeScript"}},
		},
	}

	svc := newGrowthForTest(reports)
	data, err := svc.GetGrowthData(ctx, "local")
	if err != nil {
		t.Fatalf("GetGrowthData error: %v", err)
	}

	if data.Streak != 1 {
		t.Fatalf("streak=%d, want 1", data.Streak)
	}
	if data.Momentum != 9 {
		t.Fatalf("momentum=%d, want 9", data.Momentum)
	}

	if len(data.WeeklyCommits) != 7 {
		t.Fatalf("weeklyCommits len=%d, want 7", len(data.WeeklyCommits))
	}
	if data.WeeklyCommits[0].DayOfWeek != "Mon" || data.WeeklyCommits[6].DayOfWeek != "Sun" {
		t.Fatalf("week order unexpected: %+v", data.WeeklyCommits)
	}
	// 周三有 5 commits，其余为 0
	for i, p := range data.WeeklyCommits {
		want := 0
		if p.DateKey == "2024-12-18" {
			want = 5
		}
		if p.Value != want {
			t.Fatalf("day %d value=%d, want %d", i, p.Value, want)
		}
	}

	if len(data.SkillMap) != 2 {
		t.Fatalf("skillMap len=%d, want 2", len(data.SkillMap))
	}
	sum := 0.0
	for _, s := range data.SkillMap {
		sum += s.Percentage
	}
	if sum != 100 {
		t.Fatalf("skillMap percentages sum=%v, want 100", sum)
	}
}

func TestGetGrowthDataEmpty(t *testing.T) {
	svc := newGrowthForTest(nil)
	data, err := svc.GetGrowthData(context.Background(), "local")
	if err != nil {
		t.Fatalf("GetGrowthData error: %v", err)
	}
	if data.Streak != 0 || data.Momentum != 0 {
		t.Fatalf("streak=%d momentum=%d, want 0/0", data.Streak, data.Momentum)
	}
	if len(data.WeeklyCommits) != 7 {
		t.Fatalf("weeklyCommits len=%d, want 7", len(data.WeeklyCommits))
	}
	if len(data.SkillMap) != 0 {
		t.Fatalf("skillMap should be empty: %+v", data.SkillMap)
	}
}

func TestGetGrowthDataRepoError(t *testing.T) {
	svc := NewGrowthService(&fakeReportRepo{err: errors.New("db down")}, time.UTC)
	svc.now = fixedNow

	_, err := svc.GetGrowthData(context.Background(), "local")
	if err == nil {
		t.Fatal("want error")
	}
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("kind=%v, want unavailable", apperr.KindOf(err))
	}
}

func TestCalculateSkillMapWindowAndOrder(t *testing.T) {
	reports := []schema.DailyReport{
		// 窗口内：周一与周三
		{Date: "2024-12-16", TechTags: schema.TechTagList{{Name: "Go"}, {Name: "SQL"}}},
		{Date: "2024-12-18", TechTags: schema.TechTagList{{Name: "Go"}, {Name: "React"}}},
		// 窗口外：上周与未来
		{Date: "2024-12-15", TechTags: schema.TechTagList{{Name: "Rust"}}},
		{Date: "2024-12-19", TechTags: schema.TechTagList{{Name: "Zig"}}},
	}
	svc := newGrowthForTest(reports)

	entries := svc.calculateSkillMap(reports)
	if len(entries) != 3 {
		t.Fatalf("entries len=%d, want 3: %+v", len(entries), entries)
	}
	// Go 2/4=50%，SQL 与 React 各 25%（平手按名称升序）
	if entries[0].Name != "Go" || entries[0].Percentage != 50 {
		t.Fatalf("top entry unexpected: %+v", entries[0])
	}
	if entries[1].Name != "React" || entries[2].Name != "SQL" {
		t.Fatalf("tie order unexpected: %+v", entries)
	}
}
