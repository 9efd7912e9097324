// Package gitcli extracts commit data by running the git binary.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Errors returned by the git subprocess backend.
var (
	ErrGitCommand      = errors.New("git command failed")
	ErrMalformedOutput = errors.New("malformed git output")
	ErrMissingField    = errors.New("missing field in git output")
	ErrNotRepository   = errors.New("not a git repository")
)

// DefaultGitBinary is the git executable looked up on PATH.
const DefaultGitBinary = "git"

// Repository runs git commands inside a working tree.
// It holds no mutable state and is safe for concurrent use.
type Repository struct {
	path   string
	git    string
	logger *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithGitBinary overrides the git executable.
func WithGitBinary(bin string) Option {
	return func(r *Repository) {
		r.git = bin
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Open checks that path is inside a git repository and returns a handle on it.
func Open(ctx context.Context, path string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotRepository, abs)
	}

	repo := &Repository{path: abs, git: DefaultGitBinary, logger: slog.Default()}
	for _, opt := range opts {
		opt(repo)
	}

	_, err = repo.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotRepository, abs, err)
	}

	return repo, nil
}

// Path returns the absolute path of the working tree.
func (r *Repository) Path() string {
	return r.path
}

// Fetch runs git fetch on the default remote.
func (r *Repository) Fetch(ctx context.Context) error {
	_, err := r.run(ctx, "fetch")
	if err != nil {
		return fmt.Errorf("fetch remote: %w", err)
	}

	return nil
}

// FetchAll runs git fetch --all.
func (r *Repository) FetchAll(ctx context.Context) error {
	_, err := r.run(ctx, "fetch", "--all")
	if err != nil {
		return fmt.Errorf("fetch remotes: %w", err)
	}

	return nil
}

// run executes git with args in the working tree and returns its stdout.
func (r *Repository) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.git, args...)
	cmd.Dir = r.path
	// Shortstat lines are translated by git; pin the C locale so they parse.
	cmd.Env = append(os.Environ(), "LC_ALL=C", "LANG=C")

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.DebugContext(ctx, "git", "dir", r.path, "args", args)

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("git %s: %w", args[0], ctxErr)
		}

		return nil, fmt.Errorf("%w: git %s: %w: %s",
			ErrGitCommand, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
