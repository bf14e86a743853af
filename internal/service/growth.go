package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/yuqie6/growthlog/internal/pkg/apperr"
	"github.com/yuqie6/growthlog/internal/schema"
)

// WeeklyCommitPoint 周内单日提交数
type WeeklyCommitPoint struct {
	DayOfWeek string `json:"day_of_week"` // Mon..Sun
	Value     int    `json:"value"`
	DateKey   string `json:"date_key"` // YYYY-MM-DD
}

// SkillMapEntry 技能分布条目，同一次计算的全部 percentage 之和为 100
type SkillMapEntry struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// GrowthData 成长快照
type GrowthData struct {
	WeeklyCommits []WeeklyCommitPoint `json:"weekly_commits"`
	Streak        int                 `json:"streak"`
	Momentum      int                 `json:"momentum"`
	SkillMap      []SkillMapEntry     `json:"skill_map"`
}

// GrowthService 成长指标引擎
// 输入为用户全量日报（按日期降序、同日至多一条，由仓储保证），
// 全部计算为输入的确定性纯函数
type GrowthService struct {
	reports ReportRepository
	loc     *time.Location
	now     func() time.Time
}

// NewGrowthService 创建成长引擎
func NewGrowthService(reports ReportRepository, loc *time.Location) *GrowthService {
	return &GrowthService{reports: reports, loc: loc, now: time.Now}
}

// GetGrowthData 计算用户成长快照
func (s *GrowthService) GetGrowthData(ctx context.Context, userID string) (*GrowthData, error) {
	reports, err := s.reports.ListByUserID(ctx, userID)
	if err != nil {
		// 基础数据读不到就没有可计算的东西，直接向上传播
		return nil, apperr.Wrap(apperr.KindUnavailable, "读取日报列表失败", err)
	}

	var latest *schema.DailyReport
	if len(reports) > 0 {
		latest = &reports[0]
	}

	return &GrowthData{
		WeeklyCommits: s.calculateWeeklyCommits(reports),
		Streak:        s.calculateStreak(reports),
		Momentum:      momentumScore(latest),
		SkillMap:      s.calculateSkillMap(reports),
	}, nil
}

// calculateWeeklyCommits 计算本周（周一〜周日）每日提交数
// 未来的日子尚无日报，自然为 0
func (s *GrowthService) calculateWeeklyCommits(reports []schema.DailyReport) []WeeklyCommitPoint {
	byDate := make(map[string]*schema.DailyReport, len(reports))
	for i := range reports {
		byDate[reports[i].Date] = &reports[i]
	}

	monday := WeekMonday(s.now(), s.loc)
	points := make([]WeeklyCommitPoint, 0, 7)

	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		key := DateKey(day, s.loc)

		value := 0
		if report, ok := byDate[key]; ok {
			value = report.CommitCount
		}

		points = append(points, WeeklyCommitPoint{
			DayOfWeek: DayOfWeekEn(day),
			Value:     value,
			DateKey:   key,
		})
	}
	return points
}

// calculateStreak 计算截至当前的连续记录天数
// 最新日报既非今天也非昨天时视为中断，返回 0（不回溯历史最佳连击）
func (s *GrowthService) calculateStreak(reports []schema.DailyReport) int {
	if len(reports) == 0 {
		return 0
	}

	today := StartOfDay(s.now(), s.loc)
	todayKey := DateKey(today, s.loc)
	yesterdayKey := DateKey(today.AddDate(0, 0, -1), s.loc)

	latestKey := reports[0].Date
	if latestKey != todayKey && latestKey != yesterdayKey {
		return 0
	}

	latest, err := ParseDateKey(latestKey, s.loc)
	if err != nil {
		return 0
	}

	// 以最新日报日期为期待日期，逐条向前比对
	// AddDate 的日历运算天然处理跨月跨年
	streak := 0
	expected := latest
	for _, report := range reports {
		if report.Date != DateKey(expected, s.loc) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// momentumScore 单条日报的学习动量分
// 注意：除 linesScore 封顶外公式本身没有上限，极端高产日可能超过 100，
// 这是沿用的既有行为，不做静默修正
func momentumScore(report *schema.DailyReport) int {
	if report == nil {
		return 0
	}

	commitScore := float64(report.CommitCount) * 10
	prScore := float64(report.PRCount) * 50
	linesScore := math.Min(float64(report.LinesChanged)/10, 100)

	multiplier := 1.0
	switch report.ChangeSize {
	case schema.ChangeSizeM:
		multiplier = 1.5
	case schema.ChangeSizeL:
		multiplier = 2.0
	}

	return int(math.Floor((commitScore + prScore + linesScore) * multiplier / 6))
}

// calculateSkillMap 计算本周（周一〜今天）技能使用分布
// 同一标签出现在多天的日报中按次数累计；百分比保留两位小数
func (s *GrowthService) calculateSkillMap(reports []schema.DailyReport) []SkillMapEntry {
	now := s.now()
	mondayKey := DateKey(WeekMonday(now, s.loc), s.loc)
	todayKey := DateKey(now, s.loc)

	counts := make(map[string]int)
	order := make([]string, 0)
	total := 0

	for _, report := range reports {
		if report.Date < mondayKey || report.Date > todayKey {
			continue
		}
		for _, tag := range report.TechTags {
			if _, ok := counts[tag.Name]; !ok {
				order = append(order, tag.Name)
			}
			counts[tag.Name]++
			total++
		}
	}

	if total == 0 {
		return []SkillMapEntry{}
	}

	entries := make([]SkillMapEntry, 0, len(order))
	for _, name := range order {
		pct := float64(counts[name]) / float64(total) * 100
		entries = append(entries, SkillMapEntry{
			Name:       name,
			Percentage: math.Round(pct*100) / 100,
		})
	}

	// 展示用排序：百分比降序，相同时按名称升序保证稳定
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
