package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// RevWalk wraps a libgit2 revision walker.
type RevWalk struct {
	walk *git2go.RevWalk
	repo *Repository
}

func (r *Repository) walk() (*RevWalk, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	return &RevWalk{walk: walk, repo: r}, nil
}

// Push adds a commit to start walking from.
func (w *RevWalk) Push(hash Hash) error {
	err := w.walk.Push(hash.ToOid())
	if err != nil {
		return fmt.Errorf("push to revwalk: %w", err)
	}

	return nil
}

// PushAll starts the walk from every ref and HEAD, like git log --all.
// An unborn HEAD is skipped.
func (w *RevWalk) PushAll() error {
	err := w.walk.PushGlob("*")
	if err != nil {
		return fmt.Errorf("push refs to revwalk: %w", err)
	}

	head, err := w.repo.head()
	if err != nil {
		return nil //nolint:nilerr // no HEAD commit yet.
	}

	return w.Push(head)
}

// Sorting sets the sorting mode for the walker.
func (w *RevWalk) Sorting(mode git2go.SortType) {
	w.walk.Sorting(mode)
}

// Iterate calls cb for each commit in the walk until cb returns false or an
// error. The commit is freed after cb returns.
func (w *RevWalk) Iterate(ctx context.Context, cb func(*Commit) (bool, error)) error {
	oid := new(git2go.Oid)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := w.walk.Next(oid)
		if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("revwalk next: %w", err)
		}

		commit, err := w.repo.lookupCommit(HashFromOid(oid))
		if err != nil {
			return err
		}

		more, err := cb(commit)
		commit.Free()

		if err != nil || !more {
			return err
		}
	}
}

// Free releases the walker resources.
func (w *RevWalk) Free() {
	if w.walk != nil {
		w.walk.Free()
		w.walk = nil
	}
}
