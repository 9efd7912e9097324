package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
)

const kibibyte = 1024

// Detail summarises the commits selected by filter and the size of the
// object database.
func (r *Repository) Detail(ctx context.Context, filter commits.Filter) (commits.Detail, error) {
	err := filter.Validate()
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	args := append([]string{"log"}, filter.Args()...)
	// A later --pretty overrides the one in the filter arguments.
	args = append(args, "--reverse", "--pretty=format:%at")

	out, err := r.run(ctx, args...)
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	detail, err := parseTimestamps(out)
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	out, err = r.run(ctx, "count-objects", "-v")
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	detail.Size, err = parseObjectSize(out)
	if err != nil {
		return commits.Detail{}, fmt.Errorf("detail: %w", err)
	}

	return detail, nil
}

func parseTimestamps(out []byte) (commits.Detail, error) {
	var detail commits.Detail

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ts, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return commits.Detail{}, fmt.Errorf("%w: author time %q", ErrMalformedOutput, line)
		}

		if detail.FirstCommit == nil {
			first := ts
			detail.FirstCommit = &first
		}

		last := ts
		detail.LastCommit = &last
		detail.CommitsCount++
	}

	return detail, nil
}

// parseObjectSize sums the loose and packed sizes reported by
// git count-objects -v, which are in KiB.
func parseObjectSize(out []byte) (uint64, error) {
	var total uint64

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key != "size" && key != "size-pack" {
			continue
		}

		kib, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrMalformedOutput, key, value)
		}

		total += kib * kibibyte
	}

	return total, nil
}
