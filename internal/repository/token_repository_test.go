package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenterphai/storefront-api/internal/utils"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var tokenCols = []string{"id", "user_id", "token_hash", "expires_at", "is_revoked", "creationtime", "updatetime"}

func TestTokenCreateStoresDigest(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(qTokenUpsert)).
		WithArgs(utils.HashToken("raw-token"), uint64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), "raw-token", 7, time.Now().Add(time.Hour)))
}

func TestTokenFindByValue(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	t.Run("active", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(qTokenByHash)).
			WithArgs(utils.HashToken("tok")).
			WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(1, 7, utils.HashToken("tok"), now.Add(time.Hour), false, now, now))

		tok, err := NewTokenRepo(db).FindByValue(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), tok.UserID)
		require.NotNil(t, tok.ExpiresAt)
	})

	t.Run("revoked", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(qTokenByHash)).
			WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(1, 7, "h", now.Add(time.Hour), true, now, now))
		_, err := NewTokenRepo(db).FindByValue(ctx, "tok")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(qTokenByHash)).
			WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(1, 7, "h", now.Add(-time.Minute), false, now, now))
		_, err := NewTokenRepo(db).FindByValue(ctx, "tok")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("absent", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(qTokenByHash)).WillReturnError(sql.ErrNoRows)
		_, err := NewTokenRepo(db).FindByValue(ctx, "tok")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTokenRotationIsConditional(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	mock.ExpectExec(regexp.QuoteMeta(qTokenRotate)).
		WithArgs(utils.HashToken("new"), sqlmock.AnyArg(), sqlmock.AnyArg(), utils.HashToken("old")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(qTokenRotate)).
		WithArgs(utils.HashToken("newer"), sqlmock.AnyArg(), sqlmock.AnyArg(), utils.HashToken("old")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateByValue(ctx, "old", "new", exp))
	// The second rotation of the same old value matches nothing.
	assert.ErrorIs(t, repo.UpdateByValue(ctx, "old", "newer", exp), ErrNotFound)
}

func TestTokenDeleteByValue(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(qTokenDelete)).
		WithArgs(utils.HashToken("tok")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, NewTokenRepo(db).DeleteByValue(context.Background(), "tok"))
}
