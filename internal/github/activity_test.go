package github

import "testing"

func TestFirstLine(t *testing.T) {
	if got := firstLine("feat: add search\n\nlong body here"); got != "feat: add search" {
		t.Fatalf("got %q", got)
	}
	if got := firstLine("single line"); got != "single line" {
		t.Fatalf("got %q", got)
	}
	if got := firstLine(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitFullName(t *testing.T) {
	owner, name, ok := splitFullName("me/app")
	if !ok || owner != "me" || name != "app" {
		t.Fatalf("got %s/%s ok=%v", owner, name, ok)
	}

	for _, bad := range []string{"", "noslash", "/app", "me/"} {
		if _, _, ok := splitFullName(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
	}

	// 仓库名自身可以含斜杠以外的任意字符
	owner, name, ok = splitFullName("org/repo.name-v2")
	if !ok || owner != "org" || name != "repo.name-v2" {
		t.Fatalf("got %s/%s ok=%v", owner, name, ok)
	}
}

func TestSplitRepositoryURL(t *testing.T) {
	owner, name, ok := splitRepositoryURL("https://api.github.com/repos/me/app")
	if !ok || owner != "me" || name != "app" {
		t.Fatalf("got %s/%s ok=%v", owner, name, ok)
	}

	owner, name, ok = splitRepositoryURL("https://api.github.com/repos/me/app/")
	if !ok || owner != "me" || name != "app" {
		t.Fatalf("trailing slash: got %s/%s ok=%v", owner, name, ok)
	}
}

func TestClientIsConfigured(t *testing.T) {
	if NewClient("").IsConfigured() {
		t.Fatal("empty token should not be configured")
	}

	c := NewClient("ghp_token")
	if !c.IsConfigured() {
		t.Fatal("token should be configured")
	}

	c.Reset("")
	if c.IsConfigured() {
		t.Fatal("reset with empty token should clear configuration")
	}
}
