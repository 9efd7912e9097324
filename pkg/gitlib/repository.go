package gitlib

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	git2go "github.com/libgit2/git2go/v34"
)

// Errors returned by the libgit2 backend.
var (
	ErrCommitNotFound = errors.New("commit not found")
	ErrBranchNotFound = errors.New("branch not found")
	ErrClosed         = errors.New("repository is closed")
)

// Repository wraps a libgit2 repository.
//
// libgit2 objects are not shared between goroutines, so every operation holds
// the repository lock. Repository is safe for concurrent use, but
// CommitDetail calls on one Repository run one at a time, so collecting with
// more workers does not speed up this backend.
type Repository struct {
	mu     sync.Mutex
	repo   *git2go.Repository
	path   string
	logger *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string, opts ...Option) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	r := &Repository{repo: repo, path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources. It is safe to call more than once.
func (r *Repository) Free() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Close implements io.Closer.
func (r *Repository) Close() error {
	r.Free()

	return nil
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return Hash{}, ErrClosed
	}

	return r.head()
}

func (r *Repository) head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

func (r *Repository) lookupCommit(hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, hash)
		}

		return nil, fmt.Errorf("lookup commit: %w", err)
	}

	return &Commit{commit: commit}, nil
}

// resolveBranch peels a branch name, or any revision git understands, to its
// commit.
func (r *Repository) resolveBranch(name string) (Hash, error) {
	obj, err := r.repo.RevparseSingle(name)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %s: %w", ErrBranchNotFound, name, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %s is not a commit: %w", ErrBranchNotFound, name, err)
	}
	defer peeled.Free()

	return HashFromOid(peeled.Id()), nil
}

// objectsSize sums the sizes of the files under the objects directory. It is
// close to size plus size-pack from git count-objects, with the pack indexes
// counted too.
func (r *Repository) objectsSize() (uint64, error) {
	root := filepath.Join(r.repo.Path(), "objects")

	var total uint64

	err := filepath.WalkDir(root, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		total += uint64(info.Size())

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("object database size: %w", err)
	}

	return total, nil
}
