package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/repository"
)

// CreateProductInput carries the product fields as they arrive on the wire.
// Price is a decimal string so no float rounding happens on the way in.
type CreateProductInput struct {
	Name        string
	Description string
	Price       string
	CategoryID  uint64
}

// CatalogService manages categories and products.
type CatalogService struct {
	categories CategoryStore
	products   ProductStore
}

func NewCatalogService(categories CategoryStore, products ProductStore) *CatalogService {
	return &CatalogService{categories: categories, products: products}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	cs, err := s.categories.List(ctx)
	if err != nil {
		return nil, Internal("Error while fetching categories.", err)
	}
	return cs, nil
}

// CategoryByID resolves a product's category.  A missing row yields nil
// without error since the field is nullable.
func (s *CatalogService) CategoryByID(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, Internal("Error while fetching category.", err)
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidInput("name", "Name is required.")
	}
	c := &model.Category{Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("name", "Category already exists.")
		}
		return nil, Internal("Error while creating category.", err)
	}
	log.Info().Uint64("category_id", c.ID).Str("name", c.Name).Msg("category created")
	return c, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	ps, err := s.products.List(ctx)
	if err != nil {
		return nil, Internal("Error while fetching products.", err)
	}
	return ps, nil
}

// ProductsByCategory returns the products of one category.
func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryID uint64) ([]*model.Product, error) {
	ps, err := s.products.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, Internal("Error while fetching products.", err)
	}
	return ps, nil
}

// ProductByID resolves an order item's product; nil when it was deleted.
func (s *CatalogService) ProductByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, Internal("Error while fetching product.", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, InvalidInput("name", "Name is required.")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || price.IsNegative() {
		return nil, InvalidInput("price", "Price must be a non-negative decimal.")
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Category not found")
		}
		return nil, Internal("Error while creating product.", err)
	}

	p := &model.Product{
		Name:        name,
		Description: in.Description,
		Price:       price,
		CategoryID:  in.CategoryID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, Internal("Error while creating product.", err)
	}
	log.Info().Uint64("product_id", p.ID).Uint64("category_id", p.CategoryID).Msg("product created")
	return p, nil
}
