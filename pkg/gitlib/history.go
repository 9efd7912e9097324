package gitlib

import (
	"context"
	"fmt"
	"regexp"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
)

// matcher applies the author and merge parts of a filter in Go. The date
// window is checked with Filter.Contains.
type matcher struct {
	filter  commits.Filter
	author  *regexp.Regexp
	exclude *regexp.Regexp
}

func newMatcher(filter commits.Filter) (*matcher, error) {
	m := &matcher{filter: filter}

	if filter.Author != nil {
		// git treats --author as a pattern; names that do not compile match
		// literally.
		re, err := regexp.Compile(filter.Author.Name)
		if err != nil {
			re = regexp.MustCompile(regexp.QuoteMeta(filter.Author.Name))
		}

		m.author = re
	}

	if filter.ExcludeAuthor != "" {
		// Same selection as --perl-regexp --author=^((?!pat).*)$ without
		// lookahead: drop identities that start with a match of pat.
		re, err := regexp.Compile("^(?:" + filter.ExcludeAuthor + ")")
		if err != nil {
			return nil, fmt.Errorf("exclude author pattern: %w", err)
		}

		m.exclude = re
	}

	return m, nil
}

func (m *matcher) match(c *Commit) bool {
	if m.filter.ExcludeMerges && c.NumParents() > 1 {
		return false
	}

	// git log compares --since/--until with the committer date.
	if !m.filter.Contains(c.Committer().When) {
		return false
	}

	ident := c.Author().Author().String()

	if m.author != nil && !m.author.MatchString(ident) {
		return false
	}

	if m.exclude != nil && m.exclude.MatchString(ident) {
		return false
	}

	return true
}

// ListCommits returns the hashes selected by filter, oldest first.
func (r *Repository) ListCommits(ctx context.Context, filter commits.Filter) ([]commits.CommitHash, error) {
	err := filter.Validate()
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	m, err := newMatcher(filter)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrClosed
	}

	var hashes []commits.CommitHash

	err = r.each(ctx, filter.TargetBranch, func(c *Commit) {
		if m.match(c) {
			hashes = append(hashes, c.Hash().CommitHash())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	r.logger.DebugContext(ctx, "listed commits", "backend", "libgit2", "commits", len(hashes))

	return hashes, nil
}

// each walks the history of branch, or of every ref when branch is empty,
// oldest first.
func (r *Repository) each(ctx context.Context, branch string, cb func(*Commit)) error {
	walk, err := r.walk()
	if err != nil {
		return err
	}
	defer walk.Free()

	if branch != "" {
		start, resolveErr := r.resolveBranch(branch)
		if resolveErr != nil {
			return resolveErr
		}

		err = walk.Push(start)
	} else {
		err = walk.PushAll()
	}

	if err != nil {
		return err
	}

	walk.Sorting(git2go.SortTime | git2go.SortTopological | git2go.SortReverse)

	return walk.Iterate(ctx, func(c *Commit) (bool, error) {
		cb(c)

		return true, nil
	})
}

// CommitDetail extracts the author, time, subject and change stats of hash.
// The diff runs under the repository lock.
func (r *Repository) CommitDetail(ctx context.Context, hash commits.CommitHash) (commits.CommitDetail, error) {
	err := ctx.Err()
	if err != nil {
		return commits.CommitDetail{}, err
	}

	h, err := ParseHash(string(hash))
	if err != nil {
		return commits.CommitDetail{}, fmt.Errorf("commit %s: %w", hash, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return commits.CommitDetail{}, ErrClosed
	}

	commit, err := r.lookupCommit(h)
	if err != nil {
		return commits.CommitDetail{}, fmt.Errorf("commit %s: %w", hash, err)
	}
	defer commit.Free()

	stats, err := r.commitStats(commit)
	if err != nil {
		return commits.CommitDetail{}, fmt.Errorf("commit %s: %w", hash, err)
	}

	return commit.detail(stats), nil
}

// Detail summarises the commits selected by filter and the size of the
// object database.
func (r *Repository) Detail(ctx context.Context, filter commits.Filter) (commits.Detail, error) {
	err := filter.Validate()
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	m, err := newMatcher(filter)
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return commits.Detail{}, ErrClosed
	}

	var detail commits.Detail

	err = r.each(ctx, filter.TargetBranch, func(c *Commit) {
		if !m.match(c) {
			return
		}

		ts := c.Author().When.Unix()
		if detail.FirstCommit == nil {
			first := ts
			detail.FirstCommit = &first
		}

		last := ts
		detail.LastCommit = &last
		detail.CommitsCount++
	})
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	detail.Size, err = r.objectsSize()
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	return detail, nil
}
