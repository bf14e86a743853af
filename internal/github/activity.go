package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// CommitInfo 单条提交信息
type CommitInfo struct {
	Repo      string `json:"repo"` // owner/name
	Message   string `json:"message"`
	SHA       string `json:"sha"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	URL       string `json:"url"`
	Date      string `json:"date"`
}

// CommitStats 当日提交统计
type CommitStats struct {
	CommitCount  int          `json:"commit_count"`
	LinesAdded   int          `json:"lines_added"`
	LinesDeleted int          `json:"lines_deleted"`
	LinesChanged int          `json:"lines_changed"`
	Repositories []string     `json:"repositories"`
	Commits      []CommitInfo `json:"commits"`
}

// PullRequestInfo 单条 PR 信息
type PullRequestInfo struct {
	Repo         string `json:"repo"`
	Title        string `json:"title"`
	Number       int    `json:"number"`
	State        string `json:"state"`
	Merged       bool   `json:"merged"`
	Body         string `json:"body"`
	URL          string `json:"url"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changed_files"`
	CreatedAt    string `json:"created_at"`
	MergedAt     string `json:"merged_at"`
}

// PullRequestStats 当日 PR 统计
type PullRequestStats struct {
	PRCount      int               `json:"pr_count"`
	MergedCount  int               `json:"merged_count"`
	ReviewCount  int               `json:"review_count"`
	PullRequests []PullRequestInfo `json:"pull_requests"`
}

// FetchCommits 获取用户指定日期（统计时区）的全部提交
// 单个仓库失败只告警跳过，整体失败才返回错误
func (c *Client) FetchCommits(ctx context.Context, username string, start, end time.Time) (*CommitStats, error) {
	api := c.client()

	repos, _, err := api.Repositories.ListByAuthenticatedUser(ctx, &gh.RepositoryListByAuthenticatedUserOptions{
		Visibility:  "all",
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("获取仓库列表失败: %w", err)
	}

	stats := &CommitStats{
		Repositories: make([]string, 0),
		Commits:      make([]CommitInfo, 0),
	}
	seen := make(map[string]struct{})

	for _, repo := range repos {
		owner := repo.GetOwner().GetLogin()
		name := repo.GetName()

		commits, _, err := api.Repositories.ListCommits(ctx, owner, name, &gh.CommitsListOptions{
			Author:      username,
			Since:       start,
			Until:       end,
			ListOptions: gh.ListOptions{PerPage: 100},
		})
		if err != nil {
			// 单仓库失败不影响整体（空仓库等场景 API 会报错）
			slog.Warn("获取仓库提交失败，跳过", "repo", repo.GetFullName(), "error", err)
			continue
		}
		if len(commits) == 0 {
			continue
		}

		for _, commit := range commits {
			// 排除 merge commit（父提交数 >= 2）
			if len(commit.Parents) > 1 {
				slog.Debug("跳过 merge commit", "sha", commit.GetSHA())
				continue
			}

			detail, _, err := api.Repositories.GetCommit(ctx, owner, name, commit.GetSHA(), nil)
			if err != nil {
				slog.Warn("获取提交详情失败，跳过", "sha", commit.GetSHA(), "error", err)
				continue
			}

			additions := detail.GetStats().GetAdditions()
			deletions := detail.GetStats().GetDeletions()

			stats.CommitCount++
			stats.LinesAdded += additions
			stats.LinesDeleted += deletions

			if _, ok := seen[repo.GetFullName()]; !ok {
				seen[repo.GetFullName()] = struct{}{}
				stats.Repositories = append(stats.Repositories, repo.GetFullName())
			}

			stats.Commits = append(stats.Commits, CommitInfo{
				Repo:      repo.GetFullName(),
				Message:   firstLine(commit.GetCommit().GetMessage()),
				SHA:       commit.GetSHA(),
				Additions: additions,
				Deletions: deletions,
				URL:       commit.GetHTMLURL(),
				Date:      commit.GetCommit().GetAuthor().GetDate().Format(time.RFC3339),
			})
		}
	}

	stats.LinesChanged = stats.LinesAdded + stats.LinesDeleted
	slog.Info("提交抓取完成", "count", stats.CommitCount, "repos", len(stats.Repositories))
	return stats, nil
}

// FetchPullRequests 获取用户指定日期创建的全部 PR（Search API）
// 单个 PR 详情失败只告警跳过
func (c *Client) FetchPullRequests(ctx context.Context, username, date string) (*PullRequestStats, error) {
	api := c.client()

	query := fmt.Sprintf("author:%s type:pr created:%s", username, date)
	result, _, err := api.Search.Issues(ctx, query, &gh.SearchOptions{
		Sort:        "created",
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("检索 PR 失败: %w", err)
	}

	stats := &PullRequestStats{
		PRCount:      result.GetTotal(),
		PullRequests: make([]PullRequestInfo, 0, len(result.Issues)),
	}

	for _, issue := range result.Issues {
		owner, repo, ok := splitRepositoryURL(issue.GetRepositoryURL())
		if !ok {
			continue
		}

		pr, _, err := api.PullRequests.Get(ctx, owner, repo, issue.GetNumber())
		if err != nil {
			slog.Warn("获取 PR 详情失败，跳过", "number", issue.GetNumber(), "error", err)
			continue
		}

		if pr.GetMerged() {
			stats.MergedCount++
		}

		reviews, _, err := api.PullRequests.ListReviews(ctx, owner, repo, issue.GetNumber(), nil)
		if err == nil {
			stats.ReviewCount += len(reviews)
		}

		mergedAt := ""
		if pr.MergedAt != nil {
			mergedAt = pr.GetMergedAt().Format(time.RFC3339)
		}

		stats.PullRequests = append(stats.PullRequests, PullRequestInfo{
			Repo:         owner + "/" + repo,
			Title:        pr.GetTitle(),
			Number:       pr.GetNumber(),
			State:        pr.GetState(),
			Merged:       pr.GetMerged(),
			Body:         pr.GetBody(),
			URL:          pr.GetHTMLURL(),
			Additions:    pr.GetAdditions(),
			Deletions:    pr.GetDeletions(),
			ChangedFiles: pr.GetChangedFiles(),
			CreatedAt:    pr.GetCreatedAt().Format(time.RFC3339),
			MergedAt:     mergedAt,
		})
	}

	slog.Info("PR 抓取完成", "count", stats.PRCount, "merged", stats.MergedCount)
	return stats, nil
}

// ListCommitFiles 返回提交变更的文件路径列表（技术栈分析用）
func (c *Client) ListCommitFiles(ctx context.Context, repo, sha string) ([]string, error) {
	owner, name, ok := splitFullName(repo)
	if !ok {
		return nil, fmt.Errorf("仓库名格式不合法: %s", repo)
	}

	detail, _, err := c.client().Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("获取提交文件列表失败: %w", err)
	}

	files := make([]string, 0, len(detail.Files))
	for _, f := range detail.Files {
		files = append(files, f.GetFilename())
	}
	return files, nil
}

// firstLine 取提交信息首行
func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}

// splitFullName 拆分 owner/name
func splitFullName(full string) (owner, name string, ok bool) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// splitRepositoryURL 从 API URL 末两段解析 owner/name
func splitRepositoryURL(url string) (owner, name string, ok bool) {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[len(parts)-2], parts[len(parts)-1], true
}
