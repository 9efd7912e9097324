// Package gittest builds small Git repositories for tests with the git
// binary.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Repo is a scratch repository in a test temp dir.
type Repo struct {
	t   testing.TB
	Dir string
}

// New initialises an empty repository on branch main. It skips the test
// when git is not installed.
func New(t testing.TB) *Repo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	r := &Repo{t: t, Dir: t.TempDir()}
	r.Git(time.Time{}, "init", "--quiet", "--initial-branch=main")

	return r
}

// Git runs git in the repository with author and committer dates set to at
// when at is not zero.
func (r *Repo) Git(at time.Time, args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_GLOBAL=/dev/null",
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_COMMITTER_NAME=Committer",
		"GIT_COMMITTER_EMAIL=committer@example.com",
	)

	if !at.IsZero() {
		stamp := at.Format(time.RFC3339)
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}

	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, string(out))

	return string(out)
}

// Write creates or replaces a file in the work tree.
func (r *Repo) Write(name, content string) {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.Dir, name), []byte(content), 0o644))
}

// Commit stages everything and commits it as author at the given time.
func (r *Repo) Commit(author string, at time.Time, message string) {
	r.t.Helper()
	r.Git(at, "add", "--all")
	r.Git(at, "commit", "--quiet", "--allow-empty", "-m", message, "--author="+author)
}

// History builds a three-commit repository and returns its path:
//
//	2024-01-01 10:00 Alice  a.txt +2
//	2024-02-10 14:00 Bob    a.txt +1 -1, b.txt +1
//	2024-03-05 09:00 alice  c.txt +3
//
// Alice and alice share an email and fold into one author.
func History(t testing.TB) string {
	t.Helper()

	r := New(t)

	r.Write("a.txt", "one\ntwo\n")
	r.Commit("Alice <alice@example.com>", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "Add a")

	r.Write("a.txt", "one\nthree\n")
	r.Write("b.txt", "b\n")
	r.Commit("Bob <bob@example.com>", time.Date(2024, 2, 10, 14, 0, 0, 0, time.UTC), "Edit a, add b")

	r.Write("c.txt", "c\nc\nc\n")
	r.Commit("alice <alice@example.com>", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), "Add c")

	return r.Dir
}
