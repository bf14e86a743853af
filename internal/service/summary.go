package service

import (
	"strconv"
	"strings"

	"github.com/yuqie6/growthlog/internal/github"
)

// 活动摘要生成：纯函数，不做截断（截断由调用方按 1000 字符上限处理）

// noActivitySummary 无任何提交与 PR 时的固定文案
const noActivitySummary = "本日の活動なし"

// GeneratePRSummary 生成当日活动摘要
//   - 无 PR 无提交：固定文案
//   - 无 PR 有提交：去重后的提交信息（唯一一条则原样返回，多条取前 3 条列表）
//   - 有 PR：首个 PR 为主，标题 + 有效正文，其余 PR 追加标题列表
func GeneratePRSummary(pullRequests []github.PullRequestInfo, commits []github.CommitInfo) string {
	if len(pullRequests) == 0 {
		if len(commits) == 0 {
			return noActivitySummary
		}

		// 去重提交信息，保留首次出现顺序
		seen := make(map[string]struct{})
		unique := make([]string, 0, len(commits))
		for _, c := range commits {
			if _, ok := seen[c.Message]; ok {
				continue
			}
			seen[c.Message] = struct{}{}
			unique = append(unique, c.Message)
		}

		if len(unique) == 1 {
			return unique[0]
		}

		var b strings.Builder
		b.WriteString("本日のコミット:")
		for i, msg := range unique {
			if i >= 3 {
				break
			}
			b.WriteString("\n- ")
			b.WriteString(msg)
		}
		return b.String()
	}

	main := pullRequests[0]
	var b strings.Builder
	b.WriteString(main.Title)

	// 正文有意义时才附加（非空、超过 10 字符、与标题不同）
	if main.Body != "" && len([]rune(main.Body)) > 10 && main.Body != main.Title {
		b.WriteString("\n\n")
		b.WriteString(main.Body)
	}

	if len(pullRequests) > 1 {
		b.WriteString("\n\n他のPR:\n")
		for i, pr := range pullRequests[1:] {
			if i >= 2 {
				break
			}
			b.WriteString("- ")
			b.WriteString(pr.Title)
			b.WriteString("\n")
		}
		if len(pullRequests) > 3 {
			b.WriteString("... 他 ")
			b.WriteString(strconv.Itoa(len(pullRequests) - 3))
			b.WriteString("件")
		}
	}

	return b.String()
}
