package gitlib

import (
	"errors"
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
	"github.com/Sumatoshi-tech/gitstats/pkg/safeconv"
)

// ErrParentNotFound is returned when the requested parent commit is not found.
var ErrParentNotFound = errors.New("parent commit not found")

// Signature represents a git signature (author/committer).
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Author converts the signature to an identity. An empty email stays absent.
func (s Signature) Author() identity.Author {
	return identity.NewWithEmail(s.Name, s.Email)
}

func signatureOf(sig *git2go.Signature) Signature {
	if sig == nil {
		return Signature{}
	}

	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
}

// Hash returns the commit hash.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Author returns the commit author.
func (c *Commit) Author() Signature {
	return signatureOf(c.commit.Author())
}

// Committer returns the commit committer.
func (c *Commit) Committer() Signature {
	return signatureOf(c.commit.Committer())
}

// Subject returns the first paragraph of the message joined on one line, as
// git log %s prints it.
func (c *Commit) Subject() string {
	return c.commit.Summary()
}

// NumParents returns the number of parent commits.
func (c *Commit) NumParents() int {
	return safeconv.MustUintToInt(c.commit.ParentCount())
}

// Parent returns the nth parent commit.
func (c *Commit) Parent(n int) (*Commit, error) {
	parent := c.commit.Parent(safeconv.MustIntToUint(n))
	if parent == nil {
		return nil, ErrParentNotFound
	}

	return &Commit{commit: parent}, nil
}

// Tree returns the tree associated with this commit.
func (c *Commit) Tree() (*git2go.Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return tree, nil
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}

// detail assembles the commit record from the commit and its stats.
func (c *Commit) detail(stats commits.CommitStats) commits.CommitDetail {
	author := c.Author()

	return commits.CommitDetail{
		Hash:            c.Hash().CommitHash(),
		Author:          author.Author(),
		Subject:         c.Subject(),
		AuthorTimestamp: author.When.Unix(),
		Stats:           stats,
	}
}
