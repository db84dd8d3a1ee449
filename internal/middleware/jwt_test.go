package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenterphai/storefront-api/internal/memstore"
	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/service"
	"github.com/chenterphai/storefront-api/internal/utils"
)

func requestContext(header string) (context.Context, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/graphql", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := echo.New().NewContext(req, httptest.NewRecorder())
	return WithEchoContext(context.Background(), c), c
}

func TestAuthenticate(t *testing.T) {
	codec := utils.NewTokenCodec("access", "refresh", time.Minute, time.Hour)
	auth := NewAuthenticator(codec)
	access, err := codec.IssueAccess(7, "alice")
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh(7, "alice")
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":       "",
		"basic scheme":  "Basic YWxpY2U6c2VjcmV0",
		"empty bearer":  "Bearer ",
		"garbage":       "Bearer not.a.jwt",
		"refresh token": "Bearer " + refresh,
	} {
		t.Run(name, func(t *testing.T) {
			ctx, _ := requestContext(header)
			_, _, err := auth.Authenticate(ctx)
			assert.Equal(t, service.KindUnauthorized, service.KindOf(err))
		})
	}

	_, _, err = auth.Authenticate(context.Background())
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	ctx, c := requestContext("Bearer " + access)
	ctx, id, err := auth.Authenticate(ctx)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 7, Username: "alice"}, id)
	got, ok := IdentityFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	got, ok = IdentityFrom(c.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestBindEchoContext(t *testing.T) {
	e := echo.New()
	var seen echo.Context
	h := BindEchoContext()(func(c echo.Context) error {
		seen = EchoContextFrom(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, h(c))
	assert.Same(t, c, seen)
	assert.Nil(t, EchoContextFrom(context.Background()))
}

func TestAuthorize(t *testing.T) {
	users := memstore.NewUsers()
	ctx := context.Background()
	admin := &model.User{Username: "root", Email: "root@example.com", Role: model.RoleAdmin}
	customer := &model.User{Username: "bob", Email: "bob@example.com", Role: model.RoleUser}
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, users.Create(ctx, customer))
	authz := NewAuthorizer(users)

	err := authz.Authorize(ctx, model.RoleAdmin)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	err = authz.Authorize(WithIdentity(ctx, Identity{UserID: 99}), model.RoleAdmin)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	err = authz.Authorize(WithIdentity(ctx, Identity{UserID: customer.ID}), model.RoleAdmin)
	assert.Equal(t, service.KindForbidden, service.KindOf(err))

	assert.NoError(t, authz.Authorize(WithIdentity(ctx, Identity{UserID: admin.ID}), model.RoleAdmin))
	assert.NoError(t, authz.Authorize(WithIdentity(ctx, Identity{UserID: customer.ID}), model.RoleAdmin, model.RoleUser))

	// The role is read from the store on each call.
	users.SetRole(customer.ID, model.RoleAdmin)
	assert.NoError(t, authz.Authorize(WithIdentity(ctx, Identity{UserID: customer.ID}), model.RoleAdmin))
}
