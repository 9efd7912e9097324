package collect_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/gitstats/pkg/collect"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
	"github.com/Sumatoshi-tech/gitstats/pkg/identity"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
)

var errBroken = errors.New("broken commit")

// fakeSource serves details from memory. Earlier hashes take longer so that
// completion order is the reverse of input order.
type fakeSource struct {
	hashes  []commits.CommitHash
	broken  commits.CommitHash
	listErr error

	calls    atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
}

func newFakeSource(n int) *fakeSource {
	src := &fakeSource{}
	for i := range n {
		src.hashes = append(src.hashes, commits.CommitHash(fmt.Sprintf("h%02d", i)))
	}

	return src
}

func (f *fakeSource) ListCommits(_ context.Context, _ commits.Filter) ([]commits.CommitHash, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.hashes, nil
}

func (f *fakeSource) CommitDetail(ctx context.Context, hash commits.CommitHash) (commits.CommitDetail, error) {
	f.calls.Add(1)

	current := f.inflight.Add(1)
	defer f.inflight.Add(-1)

	for {
		peak := f.peak.Load()
		if current <= peak || f.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	if hash == f.broken {
		return commits.CommitDetail{}, fmt.Errorf("commit %s: %w", hash, errBroken)
	}

	index := f.indexOf(hash)

	select {
	case <-time.After(time.Duration(len(f.hashes)-index) * time.Millisecond):
	case <-ctx.Done():
		return commits.CommitDetail{}, ctx.Err()
	}

	return commits.CommitDetail{
		Hash:            hash,
		Author:          identity.New("dev"),
		AuthorTimestamp: int64(index),
	}, nil
}

func (f *fakeSource) indexOf(hash commits.CommitHash) int {
	for i, h := range f.hashes {
		if h == hash {
			return i
		}
	}

	return -1
}

func TestDetails_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	src := newFakeSource(20)

	details, err := collect.Details(context.Background(), src, src.hashes, collect.Options{Workers: 8})
	require.NoError(t, err)
	require.Len(t, details, len(src.hashes))

	for i, d := range details {
		assert.Equal(t, src.hashes[i], d.Hash)
	}
}

func TestDetails_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	src := newFakeSource(30)

	_, err := collect.Details(context.Background(), src, src.hashes, collect.Options{Workers: 3})
	require.NoError(t, err)

	assert.LessOrEqual(t, src.peak.Load(), int64(3))
	assert.Equal(t, int64(30), src.calls.Load())
}

func TestDetails_FirstErrorWins(t *testing.T) {
	t.Parallel()

	src := newFakeSource(50)
	src.broken = src.hashes[2]

	details, err := collect.Details(context.Background(), src, src.hashes, collect.Options{Workers: 2})
	require.ErrorIs(t, err, errBroken)
	assert.Nil(t, details, "no partial result")
	assert.Less(t, src.calls.Load(), int64(50), "remaining work is skipped")
}

func TestDetails_Empty(t *testing.T) {
	t.Parallel()

	details, err := collect.Details(context.Background(), newFakeSource(0), nil, collect.Options{})
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestDetails_Canceled(t *testing.T) {
	t.Parallel()

	src := newFakeSource(10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect.Details(ctx, src, src.hashes, collect.Options{Workers: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDetails_Progress(t *testing.T) {
	t.Parallel()

	src := newFakeSource(12)

	var (
		mu    sync.Mutex
		seen  []int
		total int
	)

	opts := collect.Options{
		Workers: 4,
		OnProgress: func(done, n int) {
			mu.Lock()
			defer mu.Unlock()

			seen = append(seen, done)
			total = n
		},
	}

	_, err := collect.Details(context.Background(), src, src.hashes, opts)
	require.NoError(t, err)

	assert.Len(t, seen, 12)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, seen)
	assert.Equal(t, 12, total)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	src := newFakeSource(5)

	details, err := collect.History(context.Background(), src, commits.Filter{}, collect.Options{Tracer: tracer})
	require.NoError(t, err)
	assert.Len(t, details, 5)

	names := make(map[string]int)
	for _, span := range recorder.Ended() {
		names[span.Name()]++
	}

	assert.Equal(t, 1, names[collect.SpanListCommits])
	assert.Equal(t, 1, names[collect.SpanCollect])
	assert.Equal(t, 5, names[collect.SpanCommitDetail])
}

func TestHistory_ListError(t *testing.T) {
	t.Parallel()

	src := newFakeSource(3)
	src.listErr = errBroken

	_, err := collect.History(context.Background(), src, commits.Filter{}, collect.Options{})
	require.ErrorIs(t, err, errBroken)
	assert.Zero(t, src.calls.Load())
}

func TestSpanCommitDetail_MatchesTracerFilter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, observability.SpanCommitDetail, collect.SpanCommitDetail)
}
