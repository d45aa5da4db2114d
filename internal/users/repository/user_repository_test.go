package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"scoremint/domain"
	"scoremint/internal/service/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testUserID = "2b7e1516-28ae-4d2a-a6d2-abf7158809cf"

var userColumns = []string{"uuid", "fid", "username", "wallet_address", "curr_coins", "ltime_coins", "value_upgrades", "crit_upgrades"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestGetByID(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE uuid = $1 ORDER BY "users"."uuid" LIMIT $2`)

	t.Run("Found", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)
		mock.ExpectQuery(query).
			WithArgs(testUserID, 1).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, 42, "ada", nil, 200, 900, 1, 3))

		user, err := repo.GetByID(ctx, testUserID)
		require.NoError(t, err)
		assert.Equal(t, int64(200), user.CurrCoins)
		assert.Equal(t, 3, user.CritUpgrades)
		assert.Nil(t, user.WalletAddress)
	})

	t.Run("Missing", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)
		mock.ExpectQuery(query).WithArgs(testUserID, 1).WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.GetByID(ctx, testUserID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Store Failure", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)
		mock.ExpectQuery(query).WithArgs(testUserID, 1).WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByID(ctx, testUserID)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestGetByWallet(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE LOWER(wallet_address) = $1 ORDER BY created_at,"users"."uuid" LIMIT $2`)

	t.Run("Case Insensitive", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)
		mock.ExpectQuery(query).
			WithArgs("0xabcdef0123456789abcdef0123456789abcdef01", 1).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(testUserID, 42, "ada", "0xabcdef0123456789abcdef0123456789abcdef01", 0, 0, 1, 1))

		user, err := repo.GetByWallet(ctx, "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01")
		require.NoError(t, err)
		assert.Equal(t, testUserID, user.UUID)
	})

	t.Run("Unmapped", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.GetByWallet(ctx, "0x1111111111111111111111111111111111111111")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestSpendOnUpgrade(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	ctx := context.Background()
	update := `UPDATE "users" SET .*"curr_coins"=curr_coins - \$1.*"value_upgrades"=value_upgrades \+ 1 ` +
		`WHERE uuid = \$2 AND value_upgrades = \$3 AND curr_coins >= \$4 RETURNING`

	t.Run("Success", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(update).
			WithArgs(int64(50), testUserID, 1, int64(50)).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, 42, "ada", nil, 150, 200, 2, 1))
		mock.ExpectCommit()

		user, err := repo.SpendOnUpgrade(ctx, testUserID, domain.UpgradeValue, 1, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(150), user.CurrCoins)
		assert.Equal(t, 2, user.ValueUpgrades)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Crit Column", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE "users" SET "crit_upgrades"=crit_upgrades \+ 1,"curr_coins"=curr_coins - \$1 WHERE uuid = \$2 AND crit_upgrades = \$3`).
			WithArgs(int64(150), testUserID, 1, int64(150)).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(testUserID, 42, "ada", nil, 50, 200, 1, 2))
		mock.ExpectCommit()

		user, err := repo.SpendOnUpgrade(ctx, testUserID, domain.UpgradeCrit, 1, 150)
		require.NoError(t, err)
		assert.Equal(t, 2, user.CritUpgrades)
	})

	t.Run("Guard Not Matched", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectQuery(update).WillReturnRows(sqlmock.NewRows(userColumns))
		mock.ExpectCommit()

		_, err := repo.SpendOnUpgrade(ctx, testUserID, domain.UpgradeValue, 1, 50)
		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	})
}

func TestLinkWallet(t *testing.T) {
	logger.DBLogger = zap.NewNop()
	ctx := context.Background()
	update := `UPDATE "users" SET "wallet_address"=\$1,"updated_at"=\$2 WHERE uuid = \$3`

	t.Run("Stores Lowercase", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(update).
			WithArgs("0xabcdef0123456789abcdef0123456789abcdef01", sqlmock.AnyArg(), testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.LinkWallet(ctx, testUserID, "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown User", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.LinkWallet(ctx, testUserID, "0xabcdef0123456789abcdef0123456789abcdef01")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Wallet Held By Another User", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := NewUserRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_wallet_address"})
		mock.ExpectRollback()

		err := repo.LinkWallet(ctx, testUserID, "0xabcdef0123456789abcdef0123456789abcdef01")
		assert.ErrorIs(t, err, domain.ErrWalletTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
