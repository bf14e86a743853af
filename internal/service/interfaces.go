package service

import (
	"context"
	"time"

	"github.com/yuqie6/growthlog/internal/github"
	"github.com/yuqie6/growthlog/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

// ReportRepository 日报仓储
type ReportRepository interface {
	Create(ctx context.Context, report *schema.DailyReport) error
	GetByID(ctx context.Context, id string) (*schema.DailyReport, error)
	ListByUserID(ctx context.Context, userID string) ([]schema.DailyReport, error)
	GetByUserIDAndDate(ctx context.Context, userID, date string) (*schema.DailyReport, error)
	ListByUserIDBetween(ctx context.Context, userID, startDate, endDate string) ([]schema.DailyReport, error)
	Update(ctx context.Context, id string, fields map[string]any) (*schema.DailyReport, error)
	Delete(ctx context.Context, id string) error
}

// TagHistory 历史技术标签查询
type TagHistory interface {
	ListTechTagNames(ctx context.Context, userID string) ([]string, error)
}

// ActivitySource GitHub 活动数据源
type ActivitySource interface {
	FetchCommits(ctx context.Context, username string, start, end time.Time) (*github.CommitStats, error)
	FetchPullRequests(ctx context.Context, username, date string) (*github.PullRequestStats, error)
}

// CommitFileSource 提交变更文件查询
type CommitFileSource interface {
	ListCommitFiles(ctx context.Context, repo, sha string) ([]string, error)
}

// CoachCommenter AI 教练评语生成
type CoachCommenter interface {
	GenerateComment(ctx context.Context, report *schema.DailyReport, similar []MemoryResult) (string, error)
	IsConfigured() bool
}

// ReportMemory 日报长期记忆（相似日报检索）
type ReportMemory interface {
	IndexReport(ctx context.Context, report *schema.DailyReport) error
	QuerySimilar(ctx context.Context, text string, topK int) ([]MemoryResult, error)
}
