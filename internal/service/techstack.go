package service

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/yuqie6/growthlog/internal/github"
	"github.com/yuqie6/growthlog/internal/schema"
)

// extensionToTech 扩展名到技术名的固定映射表，未收录的扩展名直接丢弃
var extensionToTech = map[string]string{
	// 前端
	".tsx":    "React (TypeScript)",
	".ts":     "TypeScript",
	".jsx":    "React",
	".js":     "JavaScript",
	".vue":    "Vue.js",
	".svelte": "Svelte",

	// 样式
	".css":  "CSS",
	".scss": "SCSS",
	".sass": "Sass",
	".less": "Less",

	// 后端
	".py":   "Python",
	".go":   "Go",
	".rs":   "Rust",
	".java": "Java",
	".kt":   "Kotlin",
	".rb":   "Ruby",
	".php":  "PHP",
	".cs":   "C#",

	// 移动端
	".swift": "Swift",
	".dart":  "Dart (Flutter)",

	// 数据库
	".sql":    "SQL",
	".prisma": "Prisma",

	// 配置
	".json": "JSON",
	".yaml": "YAML",
	".yml":  "YAML",
	".toml": "TOML",
	".md":   "Markdown",
}

// TechStackAnalyzer 技术栈分析器
// 从提交触及的文件扩展名推导当日使用的技术，并相对历史判定是否新技术
type TechStackAnalyzer struct {
	source  CommitFileSource
	history TagHistory
}

// NewTechStackAnalyzer 创建分析器
func NewTechStackAnalyzer(source CommitFileSource, history TagHistory) *TechStackAnalyzer {
	return &TechStackAnalyzer{source: source, history: history}
}

// Analyze 分析提交列表，返回去重后的技术标签（首次出现顺序）
// 失败策略：单个提交的文件列表获取失败只跳过该提交；
// 历史标签查询失败按空历史继续。分析失败永远不阻塞日报落库，
// 因此完全失败时返回空列表而非错误（与"未检出技术"不可区分，属已知取舍）。
func (a *TechStackAnalyzer) Analyze(ctx context.Context, userID string, commits []github.CommitInfo) schema.TechTagList {
	past, err := a.history.ListTechTagNames(ctx, userID)
	if err != nil {
		slog.Warn("查询历史技术标签失败，按空历史处理", "user_id", userID, "error", err)
		past = nil
	}
	known := make(map[string]struct{}, len(past))
	for _, name := range past {
		known[name] = struct{}{}
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)

	for _, commit := range commits {
		files, err := a.source.ListCommitFiles(ctx, commit.Repo, commit.SHA)
		if err != nil {
			slog.Warn("获取提交文件列表失败，跳过该提交", "repo", commit.Repo, "sha", commit.SHA, "error", err)
			continue
		}

		for _, file := range files {
			tech, ok := extensionToTech[filepath.Ext(file)]
			if !ok {
				continue
			}
			if _, dup := seen[tech]; dup {
				continue
			}
			seen[tech] = struct{}{}
			names = append(names, tech)
		}
	}

	tags := make(schema.TechTagList, 0, len(names))
	for _, name := range names {
		_, existed := known[name]
		tags = append(tags, schema.TechTag{Name: name, IsNew: !existed})
	}

	newCount := 0
	for _, t := range tags {
		if t.IsNew {
			newCount++
		}
	}
	slog.Info("技术栈分析完成", "commits", len(commits), "tags", len(tags), "new", newCount)

	return tags
}
