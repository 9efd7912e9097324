package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
)

// showFormat prints hash, author name, author email, author time and subject
// on one line each, followed by the shortstat summary.
const showFormat = "--pretty=format:%H%n%aN%n%aE%n%at%n%s"

const headerLines = 5

var shortStatPattern = regexp.MustCompile(
	`(?P<files>\d+) files? changed(, (?P<insertions>\d+) insertions?\(\+\))?(, (?P<deletions>\d+) deletions?\(-\))?$`)

// ListCommits returns the hashes selected by filter, oldest first.
func (r *Repository) ListCommits(ctx context.Context, filter commits.Filter) ([]commits.CommitHash, error) {
	err := filter.Validate()
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	args := append([]string{"log"}, filter.Args()...)
	args = append(args, "--reverse")

	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	return parseHashes(out), nil
}

// CommitDetail extracts the author, time, subject and change stats of hash.
func (r *Repository) CommitDetail(ctx context.Context, hash commits.CommitHash) (commits.CommitDetail, error) {
	out, err := r.run(ctx, "show", "--shortstat", showFormat, string(hash))
	if err != nil {
		return commits.CommitDetail{}, fmt.Errorf("commit %s: %w", hash, err)
	}

	detail, err := parseShow(out)
	if err != nil {
		return commits.CommitDetail{}, fmt.Errorf("commit %s: %w", hash, err)
	}

	return detail, nil
}

func parseHashes(out []byte) []commits.CommitHash {
	var hashes []commits.CommitHash

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			hashes = append(hashes, commits.CommitHash(line))
		}
	}

	return hashes
}

// parseShow reads the output of git show with showFormat and --shortstat.
// Commits that change nothing (empty or merge commits) have no shortstat line
// and get zero stats.
func parseShow(out []byte) (commits.CommitDetail, error) {
	// No trailing trim: an empty subject is still a line.
	lines := strings.Split(string(out), "\n")

	if len(lines) < headerLines {
		return commits.CommitDetail{}, fmt.Errorf("%w: %s", ErrMissingField, missingField(len(lines)))
	}

	hash := strings.TrimSpace(lines[0])
	if hash == "" {
		return commits.CommitDetail{}, fmt.Errorf("%w: commit hash", ErrMissingField)
	}

	name := lines[1]
	if name == "" {
		return commits.CommitDetail{}, fmt.Errorf("%w: author name", ErrMissingField)
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(lines[3]), 10, 64)
	if err != nil {
		return commits.CommitDetail{}, fmt.Errorf("%w: author time %q", ErrMalformedOutput, lines[3])
	}

	stats, err := parseShortStat(lines[headerLines:])
	if err != nil {
		return commits.CommitDetail{}, err
	}

	return commits.CommitDetail{
		Hash:            commits.CommitHash(hash),
		Author:          identity.NewWithEmail(name, lines[2]),
		Subject:         lines[4],
		AuthorTimestamp: timestamp,
		Stats:           stats,
	}, nil
}

func missingField(got int) string {
	fields := [headerLines]string{"commit hash", "author name", "author email", "author time", "subject"}

	return fields[got]
}

// parseShortStat finds the summary line among the trailing lines.
func parseShortStat(lines []string) (commits.CommitStats, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		match := shortStatPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		files, err := groupUint32(match, "files")
		if err != nil {
			return commits.CommitStats{}, err
		}

		insertions, err := groupUint32(match, "insertions")
		if err != nil {
			return commits.CommitStats{}, err
		}

		deletions, err := groupUint32(match, "deletions")
		if err != nil {
			return commits.CommitStats{}, err
		}

		return commits.CommitStats{FilesChanged: files, LinesAdded: insertions, LinesDeleted: deletions}, nil
	}

	return commits.CommitStats{}, nil
}

func groupUint32(match []string, name string) (uint32, error) {
	value := match[shortStatPattern.SubexpIndex(name)]
	if value == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(value, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxUint32, nil
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedOutput, name, value)
	}

	return uint32(n), nil
}
