package handler

import (
	"github.com/graphql-go/graphql"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/service"
)

// user returns the caller's own profile.  A refresh cookie must accompany
// the access token.
func (r *Resolver) user(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	c, err := echoContext(p)
	if err != nil {
		return nil, err
	}
	if readRefresh(c) == "" {
		return nil, service.Unauthorized("Unauthorized: refresh token missing.")
	}
	return r.Accounts.GetUser(ctx, id.UserID)
}

func (r *Resolver) users(p graphql.ResolveParams) (interface{}, error) {
	ctx, _, err := r.authorize(p, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return r.Accounts.ListUsers(ctx)
}

func (r *Resolver) updateUser(p graphql.ResolveParams) (interface{}, error) {
	ctx, id, err := r.authenticate(p)
	if err != nil {
		return nil, err
	}
	in := inputObject(p)
	upd := service.UpdateUserInput{
		Username:    optStr(in, "username"),
		Email:       optStr(in, "email"),
		Nickname:    optStr(in, "nickname"),
		Avatar:      optStr(in, "avatar"),
		DateOfBirth: optStr(in, "dateOfBirth"),
	}
	if s := optStr(in, "role"); s != nil {
		role := model.Role(*s)
		upd.Role = &role
	}
	if s := optStr(in, "gender"); s != nil {
		g := model.Gender(*s)
		upd.Gender = &g
	}
	if _, err := r.Accounts.UpdateUser(ctx, id.UserID, upd); err != nil {
		return nil, err
	}
	return status("User updated successfully."), nil
}
