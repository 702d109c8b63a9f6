package postgres

import (
	"context"
	"strings"

	"github.com/and161185/shopguard/internal/model"
)

// MintRepo implements MintRepository using PostgreSQL. Addresses are stored lowercased.
type MintRepo struct{ db *DB }

// NewMintRepo constructs a mint repository.
func NewMintRepo(db *DB) *MintRepo { return &MintRepo{db: db} }

// RecordMint inserts a mint row, ignoring duplicates.
func (r *MintRepo) RecordMint(ctx context.Context, m model.Mint) error {
	const q = `
INSERT INTO nft_mints (address, tx_hash, minted_at)
VALUES ($1, $2, $3)
ON CONFLICT (address) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, strings.ToLower(m.Address), m.TxHash, m.MintedAt)
	return err
}

// HasMinted reports whether a mint row exists for address.
func (r *MintRepo) HasMinted(ctx context.Context, address string) (bool, error) {
	if address == "" {
		return false, nil
	}
	const q = `SELECT EXISTS (SELECT 1 FROM nft_mints WHERE address=$1)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, strings.ToLower(address)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
