package service

import (
	"strings"
	"testing"

	"github.com/yuqie6/growthlog/internal/github"
)

func TestGeneratePRSummaryNoActivity(t *testing.T) {
	if got := GeneratePRSummary(nil, nil); got != "本日の活動なし" {
		t.Fatalf("summary=%q", got)
	}
}

func TestGeneratePRSummaryCommitsOnly(t *testing.T) {
	// 唯一一条提交信息原样返回
	commits := []github.CommitInfo{
		{Message: "fix: resolve login bug"},
		{Message: "fix: resolve login bug"},
	}
	if got := GeneratePRSummary(nil, commits); got != "fix: resolve login bug" {
		t.Fatalf("summary=%q", got)
	}

	// 多条去重后取前 3 条
	commits = []github.CommitInfo{
		{Message: "feat: a"},
		{Message: "feat: b"},
		{Message: "feat: a"},
		{Message: "feat: c"},
		{Message: "feat: d"},
	}
	got := GeneratePRSummary(nil, commits)
	if !strings.HasPrefix(got, "本日のコミット:") {
		t.Fatalf("summary=%q", got)
	}
	if strings.Count(got, "\n- ") != 3 {
		t.Fatalf("want 3 bullets, got %q", got)
	}
	if strings.Contains(got, "feat: d") {
		t.Fatalf("4th message should be dropped: %q", got)
	}
}

func TestGeneratePRSummarySinglePR(t *testing.T) {
	prs := []github.PullRequestInfo{
		{Title: "Add search endpoint", Body: "Implements full-text search over reports"},
	}
	got := GeneratePRSummary(prs, nil)
	want := "Add search endpoint\n\nImplements full-text search over reports"
	if got != want {
		t.Fatalf("summary=%q, want %q", got, want)
	}
}

func TestGeneratePRSummaryBodySkipped(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"short body", "wip"},
		{"body equals title", "Add search endpoint"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prs := []github.PullRequestInfo{{Title: "Add search endpoint", Body: tc.body}}
			if got := GeneratePRSummary(prs, nil); got != "Add search endpoint" {
				t.Fatalf("summary=%q", got)
			}
		})
	}
}

func TestGeneratePRSummaryMultiplePRs(t *testing.T) {
	prs := []github.PullRequestInfo{
		{Title: "main pr"},
		{Title: "second"},
		{Title: "third"},
	}
	got := GeneratePRSummary(prs, nil)
	if !strings.Contains(got, "他のPR:\n") {
		t.Fatalf("summary=%q", got)
	}
	if !strings.Contains(got, "- second\n") || !strings.Contains(got, "- third\n") {
		t.Fatalf("summary=%q", got)
	}
	if strings.Contains(got, "... 他") {
		t.Fatalf("3 PRs should not have overflow suffix: %q", got)
	}
}

func TestGeneratePRSummaryOverflow(t *testing.T) {
	prs := []github.PullRequestInfo{
		{Title: "main"},
		{Title: "a"},
		{Title: "b"},
		{Title: "c"},
		{Title: "d"},
	}
	got := GeneratePRSummary(prs, nil)
	if !strings.Contains(got, "... 他 2件") {
		t.Fatalf("summary=%q", got)
	}
	// 追加列表只含前 2 个
	if strings.Contains(got, "- c\n") {
		t.Fatalf("3rd extra PR should be folded: %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("こんにちは", 3); got != "こんに" {
		t.Fatalf("got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
