package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"github.com/chenterphai/storefront-api/internal/middleware"
	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/service"
)

// Resolver bundles the dependencies of the GraphQL field resolvers.
type Resolver struct {
	Sessions *service.SessionService
	Accounts *service.AccountService
	Catalog  *service.CatalogService
	Orders   *service.OrderService
	Authn    *middleware.Authenticator
	Authz    *middleware.Authorizer
	Cookies  CookieConfig
}

// resolve converts the errors of fn into GraphQL errors with extensions.
func resolve(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p)
		if err != nil {
			return nil, toGraphQLError(err)
		}
		return v, nil
	}
}

// authenticate is the guard every protected resolver calls first.
func (r *Resolver) authenticate(p graphql.ResolveParams) (context.Context, middleware.Identity, error) {
	return r.Authn.Authenticate(p.Context)
}

// authorize authenticates and then requires one of roles.
func (r *Resolver) authorize(p graphql.ResolveParams, roles ...model.Role) (context.Context, middleware.Identity, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return ctx, id, err
	}
	if err := r.Authz.Authorize(ctx, roles...); err != nil {
		return ctx, id, err
	}
	return ctx, id, nil
}

func echoContext(p graphql.ResolveParams) (echo.Context, error) {
	c := middleware.EchoContextFrom(p.Context)
	if c == nil {
		return nil, service.Internal("Internal server error.", errMissingEcho)
	}
	return c, nil
}

var errMissingEcho = errors.New("echo context not bound to request")

// ---- argument helpers ----

func parseID(field string, v interface{}) (uint64, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case int:
		if t > 0 {
			return uint64(t), nil
		}
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, service.InvalidInput(field, "Invalid id.")
	}
	return id, nil
}

func inputObject(p graphql.ResolveParams) map[string]interface{} {
	m, _ := p.Args["input"].(map[string]interface{})
	return m
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// optStr distinguishes an absent key (nil) from an explicit value.
func optStr(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func status(msg string) map[string]interface{} {
	return map[string]interface{}{"code": 0, "status": "OK", "msg": msg}
}
