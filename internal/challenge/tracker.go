// Package challenge tracks which security exercises have been solved.
package challenge

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/shopguard/internal/metrics"
	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/repository"
)

// Challenge keys.
const (
	NFTUnlock   = "nftUnlockChallenge"
	NFTMint     = "nftMintChallenge"
	WalletDrain = "web3WalletChallenge"
)

// Tracker reads and sets challenge flags. Flags only ever move to solved.
type Tracker struct {
	repo repository.ChallengeRepository
	m    *metrics.Metrics
	log  *zap.Logger
}

// NewTracker constructs a Tracker. m may be nil.
func NewTracker(repo repository.ChallengeRepository, m *metrics.Metrics, log *zap.Logger) *Tracker {
	return &Tracker{repo: repo, m: m, log: log}
}

// IsSolved reports the flag state of key.
func (t *Tracker) IsSolved(ctx context.Context, key string) (bool, error) {
	c, err := t.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return c.Solved, nil
}

// Solve marks key solved. It is safe to call repeatedly and concurrently;
// newly is true only for the call that flipped the flag.
func (t *Tracker) Solve(ctx context.Context, key string) (newly bool, err error) {
	newly, err = t.repo.MarkSolved(ctx, key)
	if err != nil {
		return false, err
	}
	if newly {
		t.m.ObserveSolved(key)
		t.log.Info("challenge solved", zap.String("challenge", key))
	}
	return newly, nil
}

// List returns every challenge with its state.
func (t *Tracker) List(ctx context.Context) ([]model.Challenge, error) {
	return t.repo.List(ctx)
}
