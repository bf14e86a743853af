package service

import (
	"context"
	"math"
	"time"

	"github.com/yuqie6/growthlog/internal/pkg/apperr"
	"github.com/yuqie6/growthlog/internal/schema"
)

// DailyBreakdownEntry 周内单日明细
type DailyBreakdownEntry struct {
	Date      string `json:"date"`        // YYYY-MM-DD
	DayOfWeek string `json:"day_of_week"` // 日文短曜日（月、火...）
	Commits   int    `json:"commits"`
	PRs       int    `json:"prs"`
	Lines     int    `json:"lines"`
}

// MostProductiveDay 一周中提交最多的一天
type MostProductiveDay struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"day_of_week"` // 日文完整曜日（月曜日...）
	Commits   int    `json:"commits"`
}

// BiggestChange 一周中变更行数最大的日报
type BiggestChange struct {
	Title string `json:"title"`
	Lines int    `json:"lines"`
	Date  string `json:"date"`
}

// WeeklyStats 周次统计
type WeeklyStats struct {
	WeekLabel string `json:"week_label"` // 例: "12月16日〜12月22日"
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD

	TotalCommits      int `json:"total_commits"`
	TotalLinesChanged int `json:"total_lines_changed"`
	TotalPRs          int `json:"total_prs"`
	DailyReportCount  int `json:"daily_report_count"`

	WeeklyMomentum int `json:"weekly_momentum"` // 周平均动量，封顶 100

	NewTechCount int              `json:"new_tech_count"`
	NewTechTags  []string         `json:"new_tech_tags"`
	AllTechTags  []schema.TechTag `json:"all_tech_tags"`

	DailyBreakdown []DailyBreakdownEntry `json:"daily_breakdown"`

	MostProductiveDay MostProductiveDay `json:"most_productive_day"`
	BiggestChange     *BiggestChange    `json:"biggest_change"`
}

// WeeklyService 周次聚合器
type WeeklyService struct {
	reports ReportRepository
	loc     *time.Location
	now     func() time.Time
}

// NewWeeklyService 创建周次聚合器
func NewWeeklyService(reports ReportRepository, loc *time.Location) *WeeklyService {
	return &WeeklyService{reports: reports, loc: loc, now: time.Now}
}

// GetWeeklyStats 计算目标周的统计数据
// weekOffset 以周为单位相对本周偏移：0=本周、-1=上周...
func (s *WeeklyService) GetWeeklyStats(ctx context.Context, userID string, weekOffset int) (*WeeklyStats, error) {
	monday := WeekMonday(s.now().AddDate(0, 0, weekOffset*7), s.loc)
	sunday := monday.AddDate(0, 0, 6)
	startKey := DateKey(monday, s.loc)
	endKey := DateKey(sunday, s.loc)

	reports, err := s.reports.ListByUserIDBetween(ctx, userID, startKey, endKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "读取周内日报失败", err)
	}

	stats := &WeeklyStats{
		WeekLabel:        WeekLabel(monday, sunday),
		StartDate:        startKey,
		EndDate:          endKey,
		DailyReportCount: len(reports),
	}

	for _, r := range reports {
		stats.TotalCommits += r.CommitCount
		stats.TotalLinesChanged += r.LinesChanged
		stats.TotalPRs += r.PRCount
	}

	stats.WeeklyMomentum = weeklyMomentum(reports)
	stats.NewTechTags, stats.AllTechTags = aggregateTechTags(reports)
	stats.NewTechCount = len(stats.NewTechTags)
	stats.DailyBreakdown = s.dailyBreakdown(reports, monday)
	stats.MostProductiveDay = mostProductiveDay(stats.DailyBreakdown, s.loc)
	stats.BiggestChange = biggestChange(reports)

	return stats, nil
}

// weeklyMomentum 周平均动量：逐日报算动量取平均，四舍五入后封顶 100
func weeklyMomentum(reports []schema.DailyReport) int {
	if len(reports) == 0 {
		return 0
	}

	sum := 0
	for i := range reports {
		sum += momentumScore(&reports[i])
	}

	avg := float64(sum) / float64(len(reports))
	if rounded := int(math.Round(avg)); rounded < 100 {
		return rounded
	}
	return 100
}

// aggregateTechTags 聚合周内技术标签
// newTags：is_new 标签名去重并保留首次出现顺序；
// allTags：全部标签按名称去重，同名冲突时首次出现的 is_new 取胜（不在此重算）
func aggregateTechTags(reports []schema.DailyReport) (newTags []string, allTags []schema.TechTag) {
	newSeen := make(map[string]struct{})
	allSeen := make(map[string]struct{})
	newTags = make([]string, 0)
	allTags = make([]schema.TechTag, 0)

	for _, r := range reports {
		for _, tag := range r.TechTags {
			if tag.IsNew {
				if _, ok := newSeen[tag.Name]; !ok {
					newSeen[tag.Name] = struct{}{}
					newTags = append(newTags, tag.Name)
				}
			}
			if _, ok := allSeen[tag.Name]; !ok {
				allSeen[tag.Name] = struct{}{}
				allTags = append(allTags, tag)
			}
		}
	}
	return newTags, allTags
}

// dailyBreakdown 生成周一〜周日 7 天明细，无日报的日子补零而非省略
func (s *WeeklyService) dailyBreakdown(reports []schema.DailyReport, monday time.Time) []DailyBreakdownEntry {
	byDate := make(map[string]*schema.DailyReport, len(reports))
	for i := range reports {
		byDate[reports[i].Date] = &reports[i]
	}

	breakdown := make([]DailyBreakdownEntry, 0, 7)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		key := DateKey(day, s.loc)

		entry := DailyBreakdownEntry{
			Date:      key,
			DayOfWeek: DayOfWeekJa(day),
		}
		if r, ok := byDate[key]; ok {
			entry.Commits = r.CommitCount
			entry.PRs = r.PRCount
			entry.Lines = r.LinesChanged
		}
		breakdown = append(breakdown, entry)
	}
	return breakdown
}

// mostProductiveDay 提交最多的一天，平手时周一起的先者优先
func mostProductiveDay(breakdown []DailyBreakdownEntry, loc *time.Location) MostProductiveDay {
	if len(breakdown) == 0 {
		return MostProductiveDay{}
	}

	best := breakdown[0]
	for _, entry := range breakdown[1:] {
		if entry.Commits > best.Commits {
			best = entry
		}
	}

	full := best.DayOfWeek
	if day, err := ParseDateKey(best.Date, loc); err == nil {
		full = DayOfWeekJaFull(day)
	}
	return MostProductiveDay{
		Date:      best.Date,
		DayOfWeek: full,
		Commits:   best.Commits,
	}
}

// biggestChange 变更行数最大的日报，周内无日报时为 nil
func biggestChange(reports []schema.DailyReport) *BiggestChange {
	if len(reports) == 0 {
		return nil
	}

	best := &reports[0]
	for i := range reports[1:] {
		if reports[i+1].LinesChanged > best.LinesChanged {
			best = &reports[i+1]
		}
	}
	return &BiggestChange{
		Title: best.Title,
		Lines: best.LinesChanged,
		Date:  best.Date,
	}
}
