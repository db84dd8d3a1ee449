package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/utils"
)

const (
	// The UNIQUE user_id column turns the insert into a replace of the user's
	// previous token, so a user never holds more than one record.
	qTokenUpsert = `INSERT INTO tokens (token_hash, user_id, expires_at, is_revoked, creationtime, updatetime)
VALUES (?,?,?,FALSE,?,?)
ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at), is_revoked=FALSE, updatetime=VALUES(updatetime)`
	qTokenByHash = "SELECT id, user_id, token_hash, expires_at, is_revoked, creationtime, updatetime FROM tokens WHERE token_hash=? LIMIT 1"
	qTokenRotate = "UPDATE tokens SET token_hash=?, expires_at=?, updatetime=? WHERE token_hash=? AND is_revoked=FALSE"
	qTokenDelete = "DELETE FROM tokens WHERE token_hash=?"
)

// TokenRepo persists refresh tokens (single 'token_hash' column).  Callers
// pass raw token values; only their SHA-256 digests reach the database.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create stores token as the current refresh token of userID, replacing
// any previous one.
func (r *TokenRepo) Create(ctx context.Context, token string, userID uint64, expiresAt time.Time) error {
	now := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, qTokenUpsert, utils.HashToken(token), userID, expiresAt, now, now)
	return translate(err)
}

// FindByValue returns the active record for token.  Unknown, revoked and
// expired tokens all yield ErrNotFound.
func (r *TokenRepo) FindByValue(ctx context.Context, token string) (*model.Token, error) {
	var (
		t   model.Token
		exp sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, qTokenByHash, utils.HashToken(token)).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &exp, &t.IsRevoked, &t.CreationTime, &t.UpdateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.IsRevoked {
		return nil, ErrNotFound
	}
	if exp.Valid {
		if time.Now().After(exp.Time) {
			return nil, ErrNotFound
		}
		e := exp.Time
		t.ExpiresAt = &e
	}
	return &t, nil
}

// UpdateByValue rotates oldToken to newToken in place.  The update is
// conditional on the old digest, so of two concurrent rotations of the same
// token exactly one succeeds; the other gets ErrNotFound.
func (r *TokenRepo) UpdateByValue(ctx context.Context, oldToken, newToken string, expiresAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, qTokenRotate,
		utils.HashToken(newToken), expiresAt, time.Now().UTC(), utils.HashToken(oldToken))
	if err != nil {
		return translate(err)
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

// DeleteByValue revokes a token by removing its record.  Deleting an
// unknown token is not an error.
func (r *TokenRepo) DeleteByValue(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, qTokenDelete, utils.HashToken(token))
	return err
}
