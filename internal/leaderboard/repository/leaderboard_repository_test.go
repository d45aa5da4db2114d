package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"scoremint/domain"
	"scoremint/internal/service/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) (domain.LeaderboardRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return NewLeaderboardRepository(gormDB), mock
}

var mintedColumns = []string{"score", "tx_hash", "image_url", "owner_id", "owner_name"}

func TestTopMintedScores(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	ctx := context.Background()

	t.Run("Ordered With Names", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT m.score, m.tx_hash, m.image_url, m.user_id AS owner_id, COALESCE(NULLIF(u.display_name, ''), u.username, '') AS owner_name FROM minted_scores AS m JOIN users AS u ON u.uuid = m.user_id ORDER BY m.score DESC LIMIT $1`)).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(mintedColumns).
				AddRow(9000, "0xaaa", "https://cdn/9000.png", "user-1", "Ada").
				AddRow(42, "0xbbb", "https://cdn/42.png", "user-2", "bob"))

		entries, err := repo.TopMintedScores(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.MintedScoreEntry{Score: 9000, TxHash: "0xaaa", ImageURL: "https://cdn/9000.png", OwnerID: "user-1", OwnerName: "Ada"}, entries[0])
		assert.Equal(t, "bob", entries[1].OwnerName)
	})

	t.Run("Empty", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`FROM minted_scores AS m`).WillReturnRows(sqlmock.NewRows(mintedColumns))

		entries, err := repo.TopMintedScores(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Store Failure", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`FROM minted_scores AS m`).WillReturnError(errors.New("connection reset"))

		_, err := repo.TopMintedScores(ctx, 10)
		assert.Error(t, err)
	})
}

func TestUserMintedScores(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`FROM minted_scores AS m JOIN users AS u ON u.uuid = m.user_id WHERE m.user_id = \$1 ORDER BY m.score DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(mintedColumns).AddRow(500, "0xccc", "https://cdn/500.png", "user-1", "Ada"))

	entries, err := repo.UserMintedScores(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(500), entries[0].Score)
}

func TestTopRuns(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT r.id AS run_id, r.score, r.user_id AS owner_id, u.fid AS owner_fid, .* FROM runs AS r JOIN users AS u ON u.uuid = r.user_id ORDER BY r.score DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "score", "owner_id", "owner_fid", "owner_name"}).
			AddRow(7, 321, "user-1", 42, "Ada"))

	entries, err := repo.TopRuns(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RunEntry{RunID: 7, Score: 321, OwnerID: "user-1", OwnerName: "Ada", OwnerFid: 42}, entries[0])
}
