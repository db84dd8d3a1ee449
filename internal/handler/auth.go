package handler

import (
	"github.com/graphql-go/graphql"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/service"
)

// ----- session resolvers -----
//
// The access token travels in the response body; the refresh token only
// ever travels in the HttpOnly cookie.

func (r *Resolver) signup(p graphql.ResolveParams) (interface{}, error) {
	c, err := echoContext(p)
	if err != nil {
		return nil, err
	}
	in := inputObject(p)
	su := service.SignupInput{
		Username: str(in, "username"),
		Email:    str(in, "email"),
		Password: str(in, "password"),
		Nickname: str(in, "nickname"),
		Avatar:   str(in, "avatar"),
		Role:     model.Role(str(in, "role")),
		Gender:   model.Gender(str(in, "gender")),
	}
	// A privileged role needs an authenticated admin behind the request.
	// The admin's own refresh cookie is then left alone.
	if su.Role != "" && su.Role != model.RoleUser {
		if _, id, err := r.authenticate(p); err == nil {
			su.CreatedBy = id.UserID
		}
	}
	sess, err := r.Sessions.Signup(p.Context, su)
	if err != nil {
		return nil, err
	}
	if su.CreatedBy == 0 {
		r.Cookies.setRefresh(c, sess.RefreshToken, sess.RefreshExpiresAt)
	}
	return map[string]interface{}{"user": sess.User, "accessToken": sess.AccessToken}, nil
}

func (r *Resolver) signin(p graphql.ResolveParams) (interface{}, error) {
	c, err := echoContext(p)
	if err != nil {
		return nil, err
	}
	in := inputObject(p)
	sess, err := r.Sessions.Signin(p.Context, str(in, "email"), str(in, "password"))
	if err != nil {
		return nil, err
	}
	r.Cookies.setRefresh(c, sess.RefreshToken, sess.RefreshExpiresAt)
	return map[string]interface{}{"user": sess.User, "accessToken": sess.AccessToken}, nil
}

// refreshToken rotates the cookie's refresh token.  On failure the cookie is
// left as it was.
func (r *Resolver) refreshToken(p graphql.ResolveParams) (interface{}, error) {
	c, err := echoContext(p)
	if err != nil {
		return nil, err
	}
	pair, err := r.Sessions.Refresh(p.Context, readRefresh(c))
	if err != nil {
		return nil, err
	}
	r.Cookies.setRefresh(c, pair.RefreshToken, pair.RefreshExpiresAt)
	return map[string]interface{}{"accessToken": pair.AccessToken}, nil
}

// logout requires a valid access token; an unauthenticated call changes
// nothing.  Once authenticated the cookie is cleared even if no refresh
// token was sent.
func (r *Resolver) logout(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	c, err := echoContext(p)
	if err != nil {
		return nil, err
	}
	err = r.Sessions.Logout(ctx, id.UserID, readRefresh(c))
	r.Cookies.clearRefresh(c)
	if err != nil {
		return nil, err
	}
	return status("Logged out successfully."), nil
}
