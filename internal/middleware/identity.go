package middleware

// identity.go carries request scoped values through context.Context.  The
// GraphQL resolvers only see a context, so the echo request and the
// authenticated identity both travel there.

import (
	"context"

	"github.com/labstack/echo/v4"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	echoKey
)

// Identity is the authenticated principal of a request.
type Identity struct {
	UserID   uint64
	Username string
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom reports the identity attached by Authenticate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != 0
}

// WithEchoContext returns ctx carrying the echo request context.
func WithEchoContext(ctx context.Context, c echo.Context) context.Context {
	return context.WithValue(ctx, echoKey, c)
}

// EchoContextFrom returns the echo request context stored in ctx, or nil.
func EchoContextFrom(ctx context.Context) echo.Context {
	c, _ := ctx.Value(echoKey).(echo.Context)
	return c
}

// BindEchoContext exposes the echo request (headers, cookies, response
// writer) to code that only receives a context.Context.
func BindEchoContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(WithEchoContext(req.Context(), c)))
			return next(c)
		}
	}
}
