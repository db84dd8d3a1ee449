package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenterphai/storefront-api/internal/model"
)

var userCols = []string{"id", "username", "email", "password", "nickname", "avatar", "role", "gender", "date_of_birth", "creationtime", "updatetime"}

func TestUserCreate(t *testing.T) {
	db, mock := newMock(t)
	u := &model.User{Username: "alice", Email: "alice@example.com", Password: "hash",
		Nickname: "alice", Avatar: "avatar-example", Role: model.RoleUser, Gender: model.GenderOther}

	mock.ExpectExec(regexp.QuoteMeta(qUserInsert)).
		WithArgs("alice", "alice@example.com", "hash", "alice", "avatar-example", "user", "other",
			nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	assert.Equal(t, uint64(11), u.ID)
	assert.False(t, u.CreationTime.IsZero())
}

func TestUserCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(qUserInsert)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserGetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(qUserByMail)).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(3, "alice", "alice@example.com", "hash", "Al", "a.png", "admin", "female", dob, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(qUserByMail)).
		WithArgs("bob@example.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	u, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, model.GenderFemale, u.Gender)
	require.NotNil(t, u.DateOfBirth)
	assert.True(t, dob.Equal(*u.DateOfBirth))

	_, err = repo.GetByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserList(t *testing.T) {
	now := time.Now()
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(qUserList)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "alice", "a@example.com", "h", "a", "x", "admin", "other", nil, now, now).
			AddRow(2, "bob", "b@example.com", "h", "b", "x", "user", "male", nil, now, now))

	users, err := NewUserRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
	assert.Nil(t, users[1].DateOfBirth)
}

func TestUserUpdate(t *testing.T) {
	db, mock := newMock(t)
	u := &model.User{ID: 4, Username: "carol", Email: "c@example.com", Nickname: "C", Avatar: "x",
		Role: model.RoleUser, Gender: model.GenderOther}
	mock.ExpectExec(regexp.QuoteMeta(qUserUpdate)).
		WithArgs("carol", "c@example.com", "C", "x", "user", "other", nil, sqlmock.AnyArg(), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewUserRepo(db).Update(context.Background(), u))
}

func TestUserDelete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(qUserDelete)).WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(qUserDelete)).WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrNotFound)
}
