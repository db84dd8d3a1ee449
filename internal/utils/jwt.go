package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// Subject claims distinguishing the two token kinds.
const (
	AccessSubject  = "AccessApi"
	RefreshSubject = "RefreshToken"
)

// ErrInvalidToken covers bad signatures, wrong subjects, unexpected signing
// methods and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID   uint64 `json:"userID"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 tokens.  Access and refresh tokens use
// distinct keys so that one can never be accepted in place of the other.
type TokenCodec struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(accessKey, refreshKey string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess builds a short-lived access token for a user.
func (c *TokenCodec) IssueAccess(userID uint64, username string) (string, error) {
	return c.issue(c.accessKey, AccessSubject, c.accessTTL, userID, username)
}

// IssueRefresh builds a long-lived refresh token.  Every token carries a
// random jti so two tokens issued within the same second never collide.
func (c *TokenCodec) IssueRefresh(userID uint64, username string) (string, error) {
	return c.issue(c.refreshKey, RefreshSubject, c.refreshTTL, userID, username)
}

// VerifyAccess validates an access token and returns its claims.
func (c *TokenCodec) VerifyAccess(token string) (*Claims, error) {
	return c.verify(token, c.accessKey, AccessSubject)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (c *TokenCodec) VerifyRefresh(token string) (*Claims, error) {
	return c.verify(token, c.refreshKey, RefreshSubject)
}

func (c *TokenCodec) issue(key []byte, subject string, ttl time.Duration, userID uint64, username string) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func (c *TokenCodec) verify(raw string, key []byte, subject string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a raw token.  Only the digest
// is persisted so that a leaked table cannot be replayed.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
