package middleware // middleware provides shared request guards for resolvers

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/repository"
	"github.com/chenterphai/storefront-api/internal/service"
)

// UserLookup is the part of the user store the authorizer needs.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// Authorizer enforces that the authenticated user holds one of a set of
// roles.  The role is read from the database on every call, never from the
// token, so role changes apply immediately.
type Authorizer struct {
	Users UserLookup
}

func NewAuthorizer(users UserLookup) *Authorizer {
	return &Authorizer{Users: users}
}

// Authorize requires an Identity in ctx (else Unauthorized), loads the
// user (absent: NotFound) and checks its role against roles (else
// Forbidden).
func (a *Authorizer) Authorize(ctx context.Context, roles ...model.Role) error {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return service.Unauthorized("Unauthorized")
	}
	u, err := a.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.NotFound("User not found")
		}
		return service.Internal("Error while checking role.", err)
	}
	if !HasRole(u.Role, roles...) {
		log.Warn().Uint64("user_id", id.UserID).Str("role", string(u.Role)).Msg("access forbidden")
		return service.Forbidden("Forbidden: you don't have permission to perform this action.")
	}
	return nil
}

// HasRole reports whether role is one of allowed.
func HasRole(role model.Role, allowed ...model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
