package session

import (
	"errors"
	"strings"
	"testing"
)

func TestRepoNameFromRemoteURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/demo-repo.git", "demo-repo"},
		{"https://github.com/acme/demo-repo", "demo-repo"},
		{"https://github.com/acme/demo-repo/", "demo-repo"},
		{"git@github.com:acme/demo-repo.git", "demo-repo"},
		{"ssh://git@github.com/acme/demo-repo.git", "demo-repo"},
		{"https://gitlab.com/group/subgroup/tool.git", "tool"},
		// Only one trailing .git is stripped.
		{"https://github.com/acme/weird.git.git", "weird.git"},
		{"", ""},
	}
	for _, tc := range cases {
		got := repoNameFromRemoteURL(tc.url)
		if got != tc.want {
			t.Errorf("repoNameFromRemoteURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
		// Idempotent under re-application (except names that themselves
		// end in .git, where the single-strip rule applies again).
		if !strings.HasSuffix(got, ".git") {
			if again := repoNameFromRemoteURL(got); again != got {
				t.Errorf("repoNameFromRemoteURL(%q) not idempotent: %q", got, again)
			}
		}
	}
}

func TestChooseRemote(t *testing.T) {
	cases := []struct {
		remotes []string
		want    string
	}{
		{[]string{"originx", "upstream", "origin", "origina", "beta"}, "origin"},
		{[]string{"originb", "upstream", "origina"}, "origina"},
		{[]string{"zeta", "alpha"}, "alpha"},
		{[]string{"upstream"}, "upstream"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := chooseRemote(tc.remotes); got != tc.want {
			t.Errorf("chooseRemote(%v) = %q, want %q", tc.remotes, got, tc.want)
		}
	}
}

// fakeRepo implements RepoInfo with canned values.
type fakeRepo struct {
	remotes    []string
	remotesErr error
	urls       map[string]string
	urlErr     error
	toplevel   string
	topErr     error
}

func (f *fakeRepo) RemoteNames() ([]string, error) { return f.remotes, f.remotesErr }
func (f *fakeRepo) RemoteURL(name string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.urls[name], nil
}
func (f *fakeRepo) Toplevel() (string, error) { return f.toplevel, f.topErr }

func TestRepoNameSources(t *testing.T) {
	t.Run("remote url wins", func(t *testing.T) {
		repo := &fakeRepo{
			remotes:  []string{"origin"},
			urls:     map[string]string{"origin": "git@github.com:acme/demo-repo.git"},
			toplevel: "/home/dev/other-name",
		}
		if got := RepoName(repo); got != "demo-repo" {
			t.Errorf("RepoName = %q", got)
		}
	})

	t.Run("url failure falls back to toplevel", func(t *testing.T) {
		repo := &fakeRepo{
			remotes:  []string{"origin"},
			urlErr:   errors.New("remote has no url"),
			toplevel: "/home/dev/store_sales",
		}
		if got := RepoName(repo); got != "store_sales" {
			t.Errorf("RepoName = %q", got)
		}
	})

	t.Run("nothing available", func(t *testing.T) {
		repo := &fakeRepo{
			remotesErr: errors.New("not a repository"),
			topErr:     errors.New("not a repository"),
		}
		if got := RepoName(repo); got != "" {
			t.Errorf("RepoName = %q, want empty", got)
		}
	})

	t.Run("nil repo", func(t *testing.T) {
		if got := RepoName(nil); got != "" {
			t.Errorf("RepoName(nil) = %q", got)
		}
	})
}

func existsIn(taken ...string) func(string) (bool, error) {
	set := map[string]bool{}
	for _, n := range taken {
		set[n] = true
	}
	return func(name string) (bool, error) { return set[name], nil }
}

func TestResolveNewSessionName(t *testing.T) {
	repo := &fakeRepo{
		remotes: []string{"origin"},
		urls:    map[string]string{"origin": "https://github.com/acme/demo-repo.git"},
	}

	t.Run("requested verbatim no uniqueness check", func(t *testing.T) {
		checked := false
		name, auto, err := ResolveNewSessionName("my-team", repo, func(string) (bool, error) {
			checked = true
			return true, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if name != "my-team" || auto {
			t.Errorf("got %q auto=%v", name, auto)
		}
		if checked {
			t.Error("requested name triggered an existence check")
		}
	})

	t.Run("first free", func(t *testing.T) {
		name, auto, err := ResolveNewSessionName("", repo, existsIn())
		if err != nil {
			t.Fatal(err)
		}
		if name != "demo-repo" || !auto {
			t.Errorf("got %q auto=%v", name, auto)
		}
	})

	t.Run("suffix sequence", func(t *testing.T) {
		name, _, err := ResolveNewSessionName("", repo, existsIn("demo-repo", "demo-repo-2"))
		if err != nil {
			t.Fatal(err)
		}
		if name != "demo-repo-3" {
			t.Errorf("got %q, want demo-repo-3", name)
		}
	})

	t.Run("fallback base", func(t *testing.T) {
		name, auto, err := ResolveNewSessionName("", nil, existsIn("ai-team"))
		if err != nil {
			t.Fatal(err)
		}
		if name != "ai-team-2" || !auto {
			t.Errorf("got %q auto=%v", name, auto)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		_, _, err := ResolveNewSessionName("", nil, func(string) (bool, error) { return true, nil })
		if !errors.Is(err, ErrNameSpaceExhausted) {
			t.Errorf("got %v, want ErrNameSpaceExhausted", err)
		}
	})

	t.Run("check error propagates", func(t *testing.T) {
		boom := errors.New("server down")
		_, _, err := ResolveNewSessionName("", nil, func(string) (bool, error) { return false, boom })
		if !errors.Is(err, boom) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("derived name sanitized", func(t *testing.T) {
		dotted := &fakeRepo{
			remotes: []string{"origin"},
			urls:    map[string]string{"origin": "https://github.com/acme/weird.git.git"},
		}
		name, _, err := ResolveNewSessionName("", dotted, existsIn())
		if err != nil {
			t.Fatal(err)
		}
		if name != "weird-git" {
			t.Errorf("got %q, want weird-git", name)
		}
	})
}
