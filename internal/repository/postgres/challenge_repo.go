package postgres

import (
	"context"

	"github.com/and161185/shopguard/internal/errs"
	"github.com/and161185/shopguard/internal/model"
)

// ChallengeRepo implements ChallengeRepository using PostgreSQL.
type ChallengeRepo struct{ db *DB }

// NewChallengeRepo constructs a challenge repository.
func NewChallengeRepo(db *DB) *ChallengeRepo { return &ChallengeRepo{db: db} }

// Get selects a challenge by key.
func (r *ChallengeRepo) Get(ctx context.Context, key string) (*model.Challenge, error) {
	const q = `SELECT key, name, solved, solved_at FROM challenges WHERE key=$1`
	var c model.Challenge
	if err := r.db.Pool.QueryRow(ctx, q, key).Scan(&c.Key, &c.Name, &c.Solved, &c.SolvedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

// List selects every challenge.
func (r *ChallengeRepo) List(ctx context.Context) ([]model.Challenge, error) {
	const q = `SELECT key, name, solved, solved_at FROM challenges ORDER BY key`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Challenge, 0)
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.Key, &c.Name, &c.Solved, &c.SolvedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkSolved flips solved to true once. A second call finds no unsolved row
// and falls back to an existence check.
func (r *ChallengeRepo) MarkSolved(ctx context.Context, key string) (bool, error) {
	const upd = `UPDATE challenges SET solved=true, solved_at=now() WHERE key=$1 AND NOT solved`
	tag, err := r.db.Pool.Exec(ctx, upd, key)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	const q = `SELECT solved FROM challenges WHERE key=$1`
	var solved bool
	if err := r.db.Pool.QueryRow(ctx, q, key).Scan(&solved); err != nil {
		return false, mapNoRows(err)
	}
	if !solved {
		return false, errs.ErrNotFound
	}
	return false, nil
}
