// Package session derives tmux session names from the surrounding
// repository: remote URL first, repository toplevel second, a fixed
// fallback last, suffixed with a counter until the name is free.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/tmuxai/aiteam/internal/logging"
)

var log = logging.ForComponent(logging.CompSession)

// FallbackBase is used when no repository information is available.
const FallbackBase = "ai-team"

// maxNameAttempts bounds the -2, -3, ... collision suffix search.
const maxNameAttempts = 1000

// ErrNameSpaceExhausted is returned when every candidate up to the attempt
// bound is taken.
var ErrNameSpaceExhausted = errors.New("session name space exhausted")

// RepoInfo is the slice of repository metadata naming needs.
// *git.Repo satisfies it.
type RepoInfo interface {
	RemoteNames() ([]string, error)
	RemoteURL(name string) (string, error)
	Toplevel() (string, error)
}

// invalidNameChars matches everything a tmux session name cannot carry.
var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// sanitize rewrites a derived base into a valid session name.
func sanitize(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	return name
}

// chooseRemote picks the remote whose URL names the repository:
// exact "origin" first, then the lexicographically first remote with an
// "origin" prefix, then the lexicographically first remote overall.
func chooseRemote(remotes []string) string {
	if len(remotes) == 0 {
		return ""
	}
	var originPrefixed []string
	for _, r := range remotes {
		if r == "origin" {
			return r
		}
		if strings.HasPrefix(r, "origin") {
			originPrefixed = append(originPrefixed, r)
		}
	}
	if len(originPrefixed) > 0 {
		sort.Strings(originPrefixed)
		return originPrefixed[0]
	}
	sorted := append([]string(nil), remotes...)
	sort.Strings(sorted)
	return sorted[0]
}

// repoNameFromRemoteURL extracts the repository name from a remote URL.
// Handles URL form (https://host/owner/name.git) and SCP form
// (git@host:owner/name.git). Exactly one trailing ".git" is stripped.
func repoNameFromRemoteURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	// SCP form has a colon after the host with no scheme slashes before it.
	if at := strings.Index(url, "@"); at >= 0 && !strings.Contains(url[:at], "//") {
		if colon := strings.Index(url[at:], ":"); colon >= 0 {
			url = url[at+colon+1:]
		}
	}
	return path.Base(url)
}

// RepoName derives a session base name from the repository. It returns ""
// when no usable information exists; errors from the collaborator degrade
// to the next source rather than propagating.
func RepoName(repo RepoInfo) string {
	if repo == nil {
		return ""
	}
	remotes, err := repo.RemoteNames()
	if err == nil {
		if remote := chooseRemote(remotes); remote != "" {
			url, err := repo.RemoteURL(remote)
			if err == nil {
				if name := repoNameFromRemoteURL(url); name != "" {
					return name
				}
			} else {
				log.Debug("remote_url_unavailable", slog.String("remote", remote), slog.Any("error", err))
			}
		}
	}
	top, err := repo.Toplevel()
	if err != nil || top == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(top, "\\", "/"))
}

// ResolveNewSessionName resolves the name for a new session.
//
// A requested name is honored verbatim with auto=false; collisions are left
// to the multiplexer's own duplicate-session rejection. Otherwise the base
// comes from the repository (fallback FallbackBase) and the first free
// candidate among base, base-2, base-3, ... is returned with auto=true.
func ResolveNewSessionName(requested string, repo RepoInfo, exists func(string) (bool, error)) (name string, auto bool, err error) {
	if requested != "" {
		return requested, false, nil
	}

	base := sanitize(RepoName(repo))
	if base == "" {
		base = FallbackBase
	}

	candidate := base
	for i := 1; i <= maxNameAttempts; i++ {
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", false, fmt.Errorf("checking session name %q: %w", candidate, err)
		}
		if !taken {
			log.Debug("session_name_resolved", slog.String("name", candidate), slog.Bool("auto", true))
			return candidate, true, nil
		}
	}
	return "", false, fmt.Errorf("%w: base %q", ErrNameSpaceExhausted, base)
}
