package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chenterphai/storefront-api/internal/metrics"
	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/repository"
	"github.com/chenterphai/storefront-api/internal/utils"
)

const (
	maxUsernameLength = 20
	defaultAvatar     = "avatar-example"
)

// SessionConfig carries the settings the session flows need.
type SessionConfig struct {
	BcryptCost    int
	RefreshExpiry string // duration string such as "7d"
}

// TokenPair is what a successful flow hands back to the transport: the
// access token for the response body and the refresh token for the cookie.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Session is the result of signup and signin.
type Session struct {
	User *model.User
	TokenPair
}

// SignupInput holds the signup fields.  Empty optional fields take the
// account defaults.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Nickname string
	Avatar   string
	Role     model.Role
	Gender   model.Gender

	// CreatedBy is the authenticated caller creating the account, or zero
	// for self-registration.  Only an admin caller may assign a role other
	// than user.
	CreatedBy uint64
}

// SessionService implements signup, signin, refresh and logout on top of
// the user and token stores.
type SessionService struct {
	users  UserStore
	tokens TokenStore
	codec  *utils.TokenCodec
	cfg    SessionConfig
}

func NewSessionService(users UserStore, tokens TokenStore, codec *utils.TokenCodec, cfg SessionConfig) *SessionService {
	return &SessionService{users: users, tokens: tokens, codec: codec, cfg: cfg}
}

// Signup validates the input, creates the account and opens a session for
// it.  The refresh token record is always linked to the new user.
func (s *SessionService) Signup(ctx context.Context, in SignupInput) (sess *Session, err error) {
	defer func() { observe("signup", err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = utils.NormalizeEmail(in.Email)
	if !utils.IsValidEmail(in.Email) {
		return nil, InvalidInput("email", "Invalid email format.")
	}
	if in.Username == "" || len(in.Username) > maxUsernameLength {
		return nil, InvalidInput("username", "Username must be 1 to 20 characters.")
	}
	if len(in.Password) < utils.MinPasswordLength {
		return nil, InvalidInput("password", "Password must be at least 6 characters.")
	}
	if len(in.Password) > utils.MaxPasswordLength {
		return nil, InvalidInput("password", "Password must be at most 72 bytes.")
	}
	if err := checkUnique(ctx, "username", in.Username, s.users.GetByUsername); err != nil {
		return nil, err
	}
	if err := checkUnique(ctx, "email", in.Email, s.users.GetByEmail); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !in.Role.Valid() {
		return nil, InvalidInput("role", "Role is invalid!")
	}
	if in.Role != model.RoleUser {
		if err := s.requireAdmin(ctx, in.CreatedBy); err != nil {
			log.Warn().Uint64("created_by", in.CreatedBy).Str("role", string(in.Role)).Msg("signup role rejected")
			return nil, err
		}
	}
	if in.Gender == "" {
		in.Gender = model.GenderOther
	}
	if !in.Gender.Valid() {
		return nil, InvalidInput("gender", "Gender is invalid!")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, Internal("Error while signing up.", err)
	}
	u := &model.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Nickname: firstNonEmpty(in.Nickname, in.Username),
		Avatar:   firstNonEmpty(in.Avatar, defaultAvatar),
		Role:     in.Role,
		Gender:   in.Gender,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent signup for the same name or email.
			return nil, Conflict("", "Username or Email already in use.")
		}
		return nil, Internal("Error while signing up.", err)
	}

	pair, err := s.openSession(ctx, u)
	if err != nil {
		// Undo the insert; a failed signup leaves no account behind.
		if derr := s.users.Delete(context.WithoutCancel(ctx), u.ID); derr != nil {
			log.Error().Err(derr).Uint64("user_id", u.ID).Msg("signup rollback failed")
		}
		return nil, err
	}
	log.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return &Session{User: u, TokenPair: pair}, nil
}

// Signin verifies credentials and replaces the user's refresh token.
func (s *SessionService) Signin(ctx context.Context, email, password string) (sess *Session, err error) {
	defer func() { observe("signin", err) }()

	u, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, Internal("Error while signin.", err)
	}
	ok, err := utils.VerifyPassword(u.Password, password)
	if err != nil {
		return nil, Internal("Error while signin.", err)
	}
	if !ok {
		log.Warn().Uint64("user_id", u.ID).Msg("signin rejected: incorrect password")
		return nil, Unauthorized("Incorrect password")
	}

	pair, err := s.openSession(ctx, u)
	if err != nil {
		return nil, err
	}
	log.Info().Uint64("user_id", u.ID).Msg("user signed in")
	return &Session{User: u, TokenPair: pair}, nil
}

// Refresh exchanges a stored refresh token for a new access token and
// rotates the refresh token.  Any failure before the rotation leaves the
// store untouched.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer func() { observe("refresh", err) }()

	if refreshToken == "" {
		return nil, Unauthorized("Unauthorized: refresh token missing.")
	}
	rec, err := s.tokens.FindByValue(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorized("Unauthorized")
		}
		return nil, Internal("Error while refreshing token.", err)
	}
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, &Error{Kind: KindUnauthorized, Msg: "Unauthorized: invalid or expired refresh token.", Err: err}
	}
	if claims.UserID != rec.UserID {
		return nil, Unauthorized("Unauthorized")
	}
	// The username claim is taken from the store so a rename shows up in
	// the next access token.
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorized("Unauthorized")
		}
		return nil, Internal("Error while refreshing token.", err)
	}

	next, err := s.issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.UpdateByValue(ctx, refreshToken, next.RefreshToken, next.RefreshExpiresAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A concurrent refresh rotated this token first.
			return nil, Unauthorized("Unauthorized: refresh token already used.")
		}
		return nil, Internal("Error while refreshing token.", err)
	}
	log.Info().Uint64("user_id", claims.UserID).Msg("refresh token rotated")
	return &next, nil
}

// Logout revokes the refresh token presented by an authenticated user.  An
// empty or unknown token is not an error; the transport clears the cookie
// either way.
func (s *SessionService) Logout(ctx context.Context, userID uint64, refreshToken string) (err error) {
	defer func() { observe("logout", err) }()

	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.DeleteByValue(ctx, refreshToken); err != nil {
		return Internal("Error while logging out.", err)
	}
	log.Info().Uint64("user_id", userID).Msg("user logged out")
	return nil
}

// openSession issues a token pair for u and stores the refresh token as the
// user's current one.
func (s *SessionService) openSession(ctx context.Context, u *model.User) (TokenPair, error) {
	pair, err := s.issue(u.ID, u.Username)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Create(ctx, pair.RefreshToken, u.ID, pair.RefreshExpiresAt); err != nil {
		return TokenPair{}, Internal("Error while saving refresh token.", err)
	}
	return pair, nil
}

func (s *SessionService) issue(userID uint64, username string) (TokenPair, error) {
	access, err := s.codec.IssueAccess(userID, username)
	if err != nil {
		return TokenPair{}, Internal("Error while issuing access token.", err)
	}
	refresh, err := s.codec.IssueRefresh(userID, username)
	if err != nil {
		return TokenPair{}, Internal("Error while issuing refresh token.", err)
	}
	exp, _, err := utils.ParseAndAddDuration(s.cfg.RefreshExpiry)
	if err != nil {
		return TokenPair{}, &Error{Kind: KindInvalidDuration, Msg: "Refresh token expiry is misconfigured.", Err: err}
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: exp}, nil
}

// requireAdmin fails unless actorID names a user whose stored role is admin.
func (s *SessionService) requireAdmin(ctx context.Context, actorID uint64) error {
	if actorID == 0 {
		return Forbidden("Forbidden: only admins may assign this role.")
	}
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Forbidden("Forbidden: only admins may assign this role.")
		}
		return Internal("Error while checking role.", err)
	}
	if u.Role != model.RoleAdmin {
		return Forbidden("Forbidden: only admins may assign this role.")
	}
	return nil
}

// checkUnique reports a Conflict naming field when lookup finds a row.
func checkUnique(ctx context.Context, field, value string, lookup func(context.Context, string) (*model.User, error)) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return Conflict(field, utils.FieldLabel(field)+" already taken.")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return Internal("Error while checking "+field+".", err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(KindOf(err)))
	}
	metrics.AuthEventsTotal.WithLabelValues(op, outcome).Inc()
}
