package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuqie6/growthlog/internal/eventbus"
	"github.com/yuqie6/growthlog/internal/github"
	"github.com/yuqie6/growthlog/internal/pkg/apperr"
	"github.com/yuqie6/growthlog/internal/repository"
	"github.com/yuqie6/growthlog/internal/schema"
)

const (
	maxTitleRunes         = 300
	maxTodayLearningRunes = 1000
	minTodayLearningRunes = 5
	maxPRSummaryRunes     = 1000
)

// DailyActivity 一天的 GitHub 活动分析结果（落库前的预览数据）
type DailyActivity struct {
	Date        string                   `json:"date"`
	CommitStats *github.CommitStats      `json:"commit_stats"`
	PRStats     *github.PullRequestStats `json:"pr_stats"`
	TechTags    schema.TechTagList       `json:"tech_tags"`
	ChangeSize  string                   `json:"change_size"`
	PRSummary   string                   `json:"pr_summary"`
}

// CreateReportInput 日报创建入参
type CreateReportInput struct {
	Title          string             `json:"title"`
	TodayLearning  string             `json:"today_learning"`
	Struggles      string             `json:"struggles"`
	Tomorrow       string             `json:"tomorrow"`
	GithubURL      string             `json:"github_url"`
	PRCount        int                `json:"pr_count"`
	CommitCount    int                `json:"commit_count"`
	LinesChanged   int                `json:"lines_changed"`
	ChangeSize     string             `json:"change_size"`
	PRSummary      string             `json:"pr_summary"`
	TechTags       schema.TechTagList `json:"tech_tags"`
	AICoachComment string             `json:"ai_coach_comment"`
}

// UpdateReportInput 日报更新入参（nil 字段不更新）
type UpdateReportInput struct {
	Title          *string `json:"title"`
	TodayLearning  *string `json:"today_learning"`
	Struggles      *string `json:"struggles"`
	Tomorrow       *string `json:"tomorrow"`
	GithubURL      *string `json:"github_url"`
	AICoachComment *string `json:"ai_coach_comment"`
	PRCount        *int    `json:"pr_count"`
	CommitCount    *int    `json:"commit_count"`
	LinesChanged   *int    `json:"lines_changed"`
}

// ReportService 日报用例层
type ReportService struct {
	reports  ReportRepository
	source   ActivitySource
	analyzer *TechStackAnalyzer
	coach    CoachCommenter // 可选
	memory   ReportMemory   // 可选
	hub      *eventbus.Hub
	loc      *time.Location
	now      func() time.Time
}

// NewReportService 创建日报服务
func NewReportService(
	reports ReportRepository,
	source ActivitySource,
	analyzer *TechStackAnalyzer,
	coach CoachCommenter,
	memory ReportMemory,
	hub *eventbus.Hub,
	loc *time.Location,
) *ReportService {
	return &ReportService{
		reports:  reports,
		source:   source,
		analyzer: analyzer,
		coach:    coach,
		memory:   memory,
		hub:      hub,
		loc:      loc,
		now:      time.Now,
	}
}

// ComposeDailyActivity 抓取并分析指定日期的 GitHub 活动（不落库）
// 提交/PR 整体抓取失败是致命的；技术栈分析失败只降级为空标签
func (s *ReportService) ComposeDailyActivity(ctx context.Context, userID, username, date string) (*DailyActivity, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.New(apperr.KindValidation, "username 不能为空")
	}

	start, end, err := repository.DayRange(date, s.loc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "date 必须为 YYYY-MM-DD", err)
	}

	commitStats, err := s.source.FetchCommits(ctx, username, start, end)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "获取提交信息失败", err)
	}

	prStats, err := s.source.FetchPullRequests(ctx, username, date)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "获取 PR 信息失败", err)
	}

	techTags := s.analyzer.Analyze(ctx, userID, commitStats.Commits)
	summary := truncateRunes(GeneratePRSummary(prStats.PullRequests, commitStats.Commits), maxPRSummaryRunes)

	return &DailyActivity{
		Date:        date,
		CommitStats: commitStats,
		PRStats:     prStats,
		TechTags:    techTags,
		ChangeSize:  schema.ClassifyChangeSize(commitStats.LinesChanged),
		PRSummary:   summary,
	}, nil
}

// CreateReport 创建当日日报
func (s *ReportService) CreateReport(ctx context.Context, userID string, input *CreateReportInput) (*schema.DailyReport, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	date := DateKey(s.now(), s.loc)

	// 同一自然日至多一条
	existing, err := s.reports.GetByUserIDAndDate(ctx, userID, date)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "查询当日日报失败", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindValidation, "当日日报已存在")
	}

	changeSize := input.ChangeSize
	if changeSize == "" {
		changeSize = schema.ClassifyChangeSize(input.LinesChanged)
	}

	report := &schema.DailyReport{
		ID:             uuid.NewString(),
		UserID:         userID,
		Date:           date,
		Title:          strings.TrimSpace(input.Title),
		TodayLearning:  strings.TrimSpace(input.TodayLearning),
		Struggles:      input.Struggles,
		Tomorrow:       input.Tomorrow,
		GithubURL:      strings.TrimSpace(input.GithubURL),
		PRCount:        input.PRCount,
		CommitCount:    input.CommitCount,
		LinesChanged:   input.LinesChanged,
		ChangeSize:     changeSize,
		PRSummary:      truncateRunes(input.PRSummary, maxPRSummaryRunes),
		TechTags:       input.TechTags,
		AICoachComment: input.AICoachComment,
	}
	if report.TechTags == nil {
		report.TechTags = schema.TechTagList{}
	}

	// AI 教练评语：可选能力，失败只记日志，不阻塞落库
	if report.AICoachComment == "" && s.coach != nil && s.coach.IsConfigured() {
		report.AICoachComment = s.generateCoachComment(ctx, report)
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "日报落库失败", err)
	}

	// 记忆索引失败同样不影响主流程
	if s.memory != nil {
		if err := s.memory.IndexReport(ctx, report); err != nil {
			slog.Warn("日报记忆索引失败", "id", report.ID, "error", err)
		}
	}

	s.hub.Publish(eventbus.Event{
		Type: eventbus.TypeReportCreated,
		Data: map[string]any{"id": report.ID, "date": report.Date},
	})
	slog.Info("日报已创建", "id", report.ID, "user_id", userID, "date", date)

	return report, nil
}

func (s *ReportService) generateCoachComment(ctx context.Context, report *schema.DailyReport) string {
	var similar []MemoryResult
	if s.memory != nil {
		results, err := s.memory.QuerySimilar(ctx, report.TodayLearning, 3)
		if err != nil {
			slog.Debug("相似日报检索失败", "error", err)
		} else {
			similar = results
		}
	}

	comment, err := s.coach.GenerateComment(ctx, report, similar)
	if err != nil {
		slog.Warn("生成教练评语失败", "error", err)
		return ""
	}
	return comment
}

// GetReport 按 ID 获取日报
func (s *ReportService) GetReport(ctx context.Context, id string) (*schema.DailyReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "读取日报失败", err)
	}
	if report == nil {
		return nil, apperr.New(apperr.KindNotFound, "日报不存在")
	}
	return report, nil
}

// ListReports 获取用户全部日报（日期降序）
func (s *ReportService) ListReports(ctx context.Context, userID string) ([]schema.DailyReport, error) {
	reports, err := s.reports.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "读取日报列表失败", err)
	}
	return reports, nil
}

// UpdateReport 部分更新日报（仅自由文本与统计字段）
func (s *ReportService) UpdateReport(ctx context.Context, id string, input *UpdateReportInput) (*schema.DailyReport, error) {
	fields, err := buildUpdateFields(input)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return s.GetReport(ctx, id)
	}

	report, err := s.reports.Update(ctx, id, fields)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "更新日报失败", err)
	}
	if report == nil {
		return nil, apperr.New(apperr.KindNotFound, "日报不存在")
	}

	s.hub.Publish(eventbus.Event{
		Type: eventbus.TypeReportUpdated,
		Data: map[string]any{"id": report.ID},
	})
	return report, nil
}

// DeleteReport 删除日报
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "读取日报失败", err)
	}
	if report == nil {
		return apperr.New(apperr.KindNotFound, "日报不存在")
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "删除日报失败", err)
	}

	s.hub.Publish(eventbus.Event{
		Type: eventbus.TypeReportDeleted,
		Data: map[string]any{"id": id},
	})
	return nil
}

func validateCreate(input *CreateReportInput) error {
	if input == nil {
		return apperr.New(apperr.KindValidation, "入参不能为空")
	}
	if strings.TrimSpace(input.Title) == "" {
		return apperr.New(apperr.KindValidation, "title 不能为空")
	}
	if len([]rune(strings.TrimSpace(input.TodayLearning))) < minTodayLearningRunes {
		return apperr.Newf(apperr.KindValidation, "todayLearning 不能少于 %d 个字符", minTodayLearningRunes)
	}
	if strings.TrimSpace(input.GithubURL) == "" {
		return apperr.New(apperr.KindValidation, "githubUrl 不能为空")
	}
	if input.PRCount < 0 || input.CommitCount < 0 || input.LinesChanged < 0 {
		return apperr.New(apperr.KindValidation, "统计字段不能为负数")
	}
	return nil
}

func buildUpdateFields(input *UpdateReportInput) (map[string]any, error) {
	if input == nil {
		return nil, apperr.New(apperr.KindValidation, "入参不能为空")
	}

	fields := make(map[string]any)

	if input.Title != nil {
		if len([]rune(*input.Title)) > maxTitleRunes {
			return nil, apperr.Newf(apperr.KindValidation, "title 不能超过 %d 个字符", maxTitleRunes)
		}
		fields["title"] = *input.Title
	}
	if input.TodayLearning != nil {
		if len([]rune(*input.TodayLearning)) > maxTodayLearningRunes {
			return nil, apperr.Newf(apperr.KindValidation, "todayLearning 不能超过 %d 个字符", maxTodayLearningRunes)
		}
		fields["today_learning"] = *input.TodayLearning
	}
	if input.Struggles != nil {
		fields["struggles"] = *input.Struggles
	}
	if input.Tomorrow != nil {
		fields["tomorrow"] = *input.Tomorrow
	}
	if input.GithubURL != nil {
		fields["github_url"] = *input.GithubURL
	}
	if input.AICoachComment != nil {
		fields["ai_coach_comment"] = *input.AICoachComment
	}
	if input.PRCount != nil {
		if *input.PRCount < 0 {
			return nil, apperr.New(apperr.KindValidation, "prCount 不能为负数")
		}
		fields["pr_count"] = *input.PRCount
	}
	if input.CommitCount != nil {
		if *input.CommitCount < 0 {
			return nil, apperr.New(apperr.KindValidation, "commitCount 不能为负数")
		}
		fields["commit_count"] = *input.CommitCount
	}
	if input.LinesChanged != nil {
		if *input.LinesChanged < 0 {
			return nil, apperr.New(apperr.KindValidation, "linesChanged 不能为负数")
		}
		fields["lines_changed"] = *input.LinesChanged
		// 变更行数调整时同步重算规模档位
		fields["change_size"] = schema.ClassifyChangeSize(*input.LinesChanged)
	}

	return fields, nil
}
