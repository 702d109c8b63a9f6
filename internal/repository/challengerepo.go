package repository

import (
	"context"

	"github.com/and161185/shopguard/internal/model"
)

// ChallengeRepository persists challenge flags.
type ChallengeRepository interface {
	// Get loads a challenge by key.
	Get(ctx context.Context, key string) (*model.Challenge, error)
	// List returns all challenges ordered by key.
	List(ctx context.Context) ([]model.Challenge, error)
	// MarkSolved sets the flag; it reports true only for the call that flipped it.
	MarkSolved(ctx context.Context, key string) (bool, error)
}

// MintRepository persists wallets observed minting the challenge NFT.
type MintRepository interface {
	// RecordMint stores a mint; repeated mints of one address are ignored.
	RecordMint(ctx context.Context, m model.Mint) error
	// HasMinted reports whether address minted.
	HasMinted(ctx context.Context, address string) (bool, error)
}
