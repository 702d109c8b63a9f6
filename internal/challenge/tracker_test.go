package challenge

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/shopguard/internal/errs"
	"github.com/and161185/shopguard/internal/metrics"
	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/repository"
)

type memRepo struct {
	mu     sync.Mutex
	flags  map[string]bool
	getErr error
}

var _ repository.ChallengeRepository = (*memRepo)(nil)

func (r *memRepo) Get(_ context.Context, key string) (*model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.flags[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &model.Challenge{Key: key, Solved: s}, nil
}

func (r *memRepo) List(_ context.Context) ([]model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Challenge, 0, len(r.flags))
	for k, s := range r.flags {
		out = append(out, model.Challenge{Key: k, Solved: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *memRepo) MarkSolved(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.flags[key]
	if !ok {
		return false, errs.ErrNotFound
	}
	r.flags[key] = true
	return !s, nil
}

func newRepo() *memRepo {
	return &memRepo{flags: map[string]bool{NFTUnlock: false, NFTMint: false, WalletDrain: false}}
}

func TestTracker_SolveIsIdempotent(t *testing.T) {
	t.Parallel()

	m := metrics.New(nil)
	tr := NewTracker(newRepo(), m, zaptest.NewLogger(t))
	ctx := context.Background()

	solved, err := tr.IsSolved(ctx, NFTUnlock)
	require.NoError(t, err)
	require.False(t, solved)

	newly, err := tr.Solve(ctx, NFTUnlock)
	require.NoError(t, err)
	require.True(t, newly)

	newly, err = tr.Solve(ctx, NFTUnlock)
	require.NoError(t, err)
	require.False(t, newly)

	solved, err = tr.IsSolved(ctx, NFTUnlock)
	require.NoError(t, err)
	require.True(t, solved)
	require.Equal(t, 1.0, testutil.ToFloat64(m.ChallengesSolved.WithLabelValues(NFTUnlock)))
}

func TestTracker_ConcurrentSolvesFlipOnce(t *testing.T) {
	t.Parallel()

	tr := NewTracker(newRepo(), nil, zaptest.NewLogger(t))
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		flips int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newly, err := tr.Solve(ctx, NFTMint)
			assert.NoError(t, err)
			if newly {
				mu.Lock()
				flips++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, flips)

	solved, err := tr.IsSolved(ctx, NFTMint)
	require.NoError(t, err)
	require.True(t, solved)
}

func TestTracker_Errors(t *testing.T) {
	t.Parallel()

	repo := newRepo()
	tr := NewTracker(repo, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := tr.Solve(ctx, "unknown")
	require.ErrorIs(t, err, errs.ErrNotFound)

	repo.getErr = errors.New("db down")
	_, err = tr.IsSolved(ctx, NFTUnlock)
	require.Error(t, err)
}

func TestTracker_List(t *testing.T) {
	t.Parallel()

	tr := NewTracker(newRepo(), nil, zaptest.NewLogger(t))
	cs, err := tr.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 3)
	require.Equal(t, NFTMint, cs[0].Key)
}
