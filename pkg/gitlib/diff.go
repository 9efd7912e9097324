package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/safeconv"
)

// Diff wraps a libgit2 diff.
type Diff struct {
	diff *git2go.Diff
}

// diffTreeToTree computes the diff between two trees. A nil tree stands for
// the empty tree.
func (r *Repository) diffTreeToTree(oldTree, newTree *git2go.Tree) (*Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree, newTree, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	return &Diff{diff: diff}, nil
}

// FindSimilar folds delete/add pairs into renames, as git show does by
// default.
func (d *Diff) FindSimilar() error {
	opts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return fmt.Errorf("get find options: %w", err)
	}

	err = d.diff.FindSimilar(&opts)
	if err != nil {
		return fmt.Errorf("find similar: %w", err)
	}

	return nil
}

// Stats returns the shortstat summary of the diff.
func (d *Diff) Stats() (commits.CommitStats, error) {
	stats, err := d.diff.Stats()
	if err != nil {
		return commits.CommitStats{}, fmt.Errorf("get diff stats: %w", err)
	}

	defer func() {
		// Free() errors are non-actionable in cleanup.
		_ = stats.Free()
	}()

	return commits.CommitStats{
		FilesChanged: safeconv.ClampIntToUint32(stats.FilesChanged()),
		LinesAdded:   safeconv.ClampIntToUint32(stats.Insertions()),
		LinesDeleted: safeconv.ClampIntToUint32(stats.Deletions()),
	}, nil
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}

	// Consume error - Free() errors are non-actionable in cleanup.
	_ = d.diff.Free()
	d.diff = nil
}

// commitStats diffs a commit against its parent. Root commits are diffed
// against the empty tree. Merge commits get zero stats, matching
// git show --shortstat on a merge.
func (r *Repository) commitStats(c *Commit) (commits.CommitStats, error) {
	if c.NumParents() > 1 {
		return commits.CommitStats{}, nil
	}

	tree, err := c.Tree()
	if err != nil {
		return commits.CommitStats{}, err
	}
	defer tree.Free()

	var parentTree *git2go.Tree

	if c.NumParents() == 1 {
		parent, parentErr := c.Parent(0)
		if parentErr != nil {
			return commits.CommitStats{}, parentErr
		}
		defer parent.Free()

		parentTree, err = parent.Tree()
		if err != nil {
			return commits.CommitStats{}, err
		}
		defer parentTree.Free()
	}

	diff, err := r.diffTreeToTree(parentTree, tree)
	if err != nil {
		return commits.CommitStats{}, err
	}
	defer diff.Free()

	err = diff.FindSimilar()
	if err != nil {
		return commits.CommitStats{}, err
	}

	return diff.Stats()
}
