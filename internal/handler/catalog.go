package handler

import (
	"github.com/graphql-go/graphql"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/service"
)

// Catalog reads are public.  Writes require the admin role.

func (r *Resolver) categories(p graphql.ResolveParams) (interface{}, error) {
	return r.Catalog.ListCategories(p.Context)
}

func (r *Resolver) products(p graphql.ResolveParams) (interface{}, error) {
	return r.Catalog.ListProducts(p.Context)
}

func (r *Resolver) categoryProducts(p graphql.ResolveParams) (interface{}, error) {
	c := p.Source.(*model.Category)
	return r.Catalog.ProductsByCategory(p.Context, c.ID)
}

func (r *Resolver) productCategory(p graphql.ResolveParams) (interface{}, error) {
	prod := p.Source.(*model.Product)
	return r.Catalog.CategoryByID(p.Context, prod.CategoryID)
}

func (r *Resolver) orderItemProduct(p graphql.ResolveParams) (interface{}, error) {
	it := p.Source.(*model.OrderItem)
	if it.ProductID == nil {
		return nil, nil
	}
	return r.Catalog.ProductByID(p.Context, *it.ProductID)
}

func (r *Resolver) createCategory(p graphql.ResolveParams) (interface{}, error) {
	ctx, _, err := r.authorize(p, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return r.Catalog.CreateCategory(ctx, str(inputObject(p), "name"))
}

func (r *Resolver) createProduct(p graphql.ResolveParams) (interface{}, error) {
	ctx, _, err := r.authorize(p, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID("categoryId", p.Args["categoryId"])
	if err != nil {
		return nil, err
	}
	return r.Catalog.CreateProduct(ctx, service.CreateProductInput{
		Name:        str(p.Args, "name"),
		Description: str(p.Args, "description"),
		Price:       str(p.Args, "price"),
		CategoryID:  categoryID,
	})
}
