// Package git shells out to git for the repository facts session naming
// needs. A missing binary or a non-repo directory is reported as an error
// and callers treat it as "no repository", never as fatal.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const commandTimeout = 5 * time.Second

// Repo reads repository metadata for one working directory.
type Repo struct {
	dir string
}

// Open returns a Repo rooted at dir. No validation happens here; the first
// query reports whether dir is actually inside a repository.
func Open(dir string) *Repo {
	return &Repo{dir: dir}
}

func (r *Repo) git(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	full := append([]string{"-C", r.dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RemoteNames lists the configured remote names, in git's output order.
func (r *Repo) RemoteNames() ([]string, error) {
	out, err := r.git("remote")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repo) RemoteURL(name string) (string, error) {
	return r.git("remote", "get-url", name)
}

// Toplevel returns the absolute path of the repository root.
func (r *Repo) Toplevel() (string, error) {
	return r.git("rev-parse", "--show-toplevel")
}
