package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chenterphai/storefront-api/internal/model"
)

const userColumns = "id, username, email, password, nickname, avatar, role, gender, date_of_birth, creationtime, updatetime"

const (
	qUserInsert = "INSERT INTO users (username, email, password, nickname, avatar, role, gender, date_of_birth, creationtime, updatetime) VALUES (?,?,?,?,?,?,?,?,?,?)"
	qUserByID   = "SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1"
	qUserByMail = "SELECT " + userColumns + " FROM users WHERE email=? LIMIT 1"
	qUserByName = "SELECT " + userColumns + " FROM users WHERE username=? LIMIT 1"
	qUserList   = "SELECT " + userColumns + " FROM users ORDER BY id"
	qUserUpdate = "UPDATE users SET username=?, email=?, nickname=?, avatar=?, role=?, gender=?, date_of_birth=?, updatetime=? WHERE id=?"
	qUserDelete = "DELETE FROM users WHERE id=?"
)

// UserRepo reads and writes the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u   model.User
		dob sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Nickname, &u.Avatar,
		&u.Role, &u.Gender, &dob, &u.CreationTime, &u.UpdateTime)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		t := dob.Time
		u.DateOfBirth = &t
	}
	return &u, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts u and populates its ID and timestamps.  A UNIQUE violation
// on username or email returns ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, qUserInsert,
		u.Username, u.Email, u.Password, u.Nickname, u.Avatar, string(u.Role), string(u.Gender),
		nullableTime(u.DateOfBirth), now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreationTime, u.UpdateTime = now, now
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, qUserByID, id)
}

// GetByEmail fetches a user by (already normalized) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, qUserByMail, email)
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, qUserByName, username)
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx, qUserList)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the mutable profile columns of u.  MySQL reports zero
// affected rows when nothing changed, so absence is not detected here;
// callers load the user first.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, qUserUpdate,
		u.Username, u.Email, u.Nickname, u.Avatar, string(u.Role), string(u.Gender),
		nullableTime(u.DateOfBirth), now, u.ID)
	if err != nil {
		return translate(err)
	}
	u.UpdateTime = now
	return nil
}

// Delete removes the user with the given id.  Tokens and orders go with it
// through ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, qUserDelete, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
