package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/shopguard/internal/errs"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestChallengeRepo_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewChallengeRepo(db)
	ctx := context.Background()
	at := time.Now()

	mock.ExpectQuery(`SELECT key, name, solved, solved_at FROM challenges WHERE key=\$1`).
		WithArgs("nftUnlockChallenge").
		WillReturnRows(pgxmock.NewRows([]string{"key", "name", "solved", "solved_at"}).
			AddRow("nftUnlockChallenge", "Unlock NFT", true, &at))
	c, err := r.Get(ctx, "nftUnlockChallenge")
	require.NoError(t, err)
	require.True(t, c.Solved)
	require.NotNil(t, c.SolvedAt)

	mock.ExpectQuery(`SELECT key, name, solved, solved_at FROM challenges WHERE key=\$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(ctx, "nope")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestChallengeRepo_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewChallengeRepo(db)

	mock.ExpectQuery(`SELECT key, name, solved, solved_at FROM challenges ORDER BY key`).
		WillReturnRows(pgxmock.NewRows([]string{"key", "name", "solved", "solved_at"}).
			AddRow("nftMintChallenge", "Mint the Honey Pot", false, nil).
			AddRow("nftUnlockChallenge", "Unlock NFT", false, nil))
	cs, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 2)
	require.Equal(t, "nftMintChallenge", cs[0].Key)
}

func TestChallengeRepo_MarkSolved_FirstThenIdempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewChallengeRepo(db)
	ctx := context.Background()

	const upd = `UPDATE challenges SET solved=true, solved_at=now\(\) WHERE key=\$1 AND NOT solved`

	mock.ExpectExec(upd).WithArgs("nftUnlockChallenge").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	newly, err := r.MarkSolved(ctx, "nftUnlockChallenge")
	require.NoError(t, err)
	require.True(t, newly)

	mock.ExpectExec(upd).WithArgs("nftUnlockChallenge").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT solved FROM challenges WHERE key=\$1`).WithArgs("nftUnlockChallenge").
		WillReturnRows(pgxmock.NewRows([]string{"solved"}).AddRow(true))
	newly, err = r.MarkSolved(ctx, "nftUnlockChallenge")
	require.NoError(t, err)
	require.False(t, newly)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeRepo_MarkSolved_UnknownKey(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewChallengeRepo(db)

	mock.ExpectExec(`UPDATE challenges SET solved=true`).WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT solved FROM challenges WHERE key=\$1`).WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)
	_, err := r.MarkSolved(context.Background(), "nope")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
