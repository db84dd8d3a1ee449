package middleware // declare the middleware package; contains request guards shared by resolvers

import (
	"context"
	"strings"

	"github.com/chenterphai/storefront-api/internal/service"
	"github.com/chenterphai/storefront-api/internal/utils"
)

// Authenticator validates the Bearer access token of the current request.
// It is called explicitly by every protected resolver rather than mounted
// as route middleware, because a single GraphQL endpoint serves both public
// and protected fields.
type Authenticator struct {
	Codec *utils.TokenCodec
}

func NewAuthenticator(codec *utils.TokenCodec) *Authenticator {
	return &Authenticator{Codec: codec}
}

// Authenticate reads the Authorization header from the echo request found
// in ctx.  A missing header, a non-Bearer scheme, an empty token and an
// invalid token all fail with Unauthorized.  On success the returned
// context carries the caller's Identity.
func (a *Authenticator) Authenticate(ctx context.Context) (context.Context, Identity, error) {
	c := EchoContextFrom(ctx)
	if c == nil {
		return ctx, Identity{}, service.Unauthorized("Unauthorized: missing request.")
	}

	// A valid header starts with "Bearer " followed by the JWT.
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ctx, Identity{}, service.Unauthorized("Unauthorized: missing bearer token.")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if raw == "" {
		return ctx, Identity{}, service.Unauthorized("Unauthorized: empty bearer token.")
	}

	claims, err := a.Codec.VerifyAccess(raw)
	if err != nil {
		return ctx, Identity{}, &service.Error{Kind: service.KindUnauthorized, Msg: "Unauthorized: invalid or expired access token.", Err: err}
	}

	id := Identity{UserID: claims.UserID, Username: claims.Username}
	// Keep the echo context's request in step so later reads of the
	// request context also see the identity.
	c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
	return WithIdentity(ctx, id), id, nil
}
