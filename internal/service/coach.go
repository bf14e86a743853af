package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuqie6/growthlog/internal/ai"
	"github.com/yuqie6/growthlog/internal/schema"
)

const coachSystemPrompt = `你是一位资深的工程导师，正在点评一位开发者的每日日报。
基于日报中的活动数据和反思内容，写一段 2-3 句的鼓励性评语：
- 肯定具体的进展（引用数据或学到的内容）
- 如有历史相似日报，指出成长或反复出现的课题
- 语气温暖务实，不要空洞的套话
直接输出评语正文，不要任何前缀或标题。`

// CoachService AI 教练评语生成
type CoachService struct {
	client *ai.DeepSeekClient
}

// NewCoachService 创建教练服务
func NewCoachService(client *ai.DeepSeekClient) *CoachService {
	return &CoachService{client: client}
}

// IsConfigured 检查底层客户端是否已配置
func (s *CoachService) IsConfigured() bool {
	return s.client != nil && s.client.IsConfigured()
}

// GenerateComment 基于日报与相似历史日报生成评语
func (s *CoachService) GenerateComment(ctx context.Context, report *schema.DailyReport, similar []MemoryResult) (string, error) {
	if !s.IsConfigured() {
		return "", fmt.Errorf("DeepSeek 未配置")
	}

	prompt := buildCoachPrompt(report, similar)

	comment, err := s.client.ChatWithRetry(ctx, []ai.Message{
		{Role: "system", Content: coachSystemPrompt},
		{Role: "user", Content: prompt},
	}, 3)
	if err != nil {
		return "", fmt.Errorf("生成评语失败: %w", err)
	}

	comment = strings.TrimSpace(comment)
	slog.Debug("教练评语已生成", "date", report.Date, "chars", len([]rune(comment)))
	return comment, nil
}

func buildCoachPrompt(report *schema.DailyReport, similar []MemoryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## 今日日报（%s）\n", report.Date)
	fmt.Fprintf(&b, "标题: %s\n", report.Title)
	fmt.Fprintf(&b, "提交数: %d / PR 数: %d / 变更行数: %d（规模 %s）\n",
		report.CommitCount, report.PRCount, report.LinesChanged, report.ChangeSize)

	if len(report.TechTags) > 0 {
		fmt.Fprintf(&b, "使用技术: %s\n", strings.Join(report.TechTags.Names(), ", "))
	}

	fmt.Fprintf(&b, "\n今日学到: %s\n", report.TodayLearning)
	if report.Struggles != "" {
		fmt.Fprintf(&b, "遇到的课题: %s\n", report.Struggles)
	}
	if report.Tomorrow != "" {
		fmt.Fprintf(&b, "明日计划: %s\n", report.Tomorrow)
	}

	if len(similar) > 0 {
		b.WriteString("\n## 相似的历史日报\n")
		for _, m := range similar {
			fmt.Fprintf(&b, "- [%s] %s\n", m.Date, m.Content)
		}
	}

	return b.String()
}
