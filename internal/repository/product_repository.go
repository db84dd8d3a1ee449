package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chenterphai/storefront-api/internal/model"
)

const productColumns = "id, name, description, price, category_id, creationtime, updatetime"

const (
	qProductInsert     = "INSERT INTO products (name, description, price, category_id, creationtime, updatetime) VALUES (?,?,?,?,?,?)"
	qProductByID       = "SELECT " + productColumns + " FROM products WHERE id = ?"
	qProductList       = "SELECT " + productColumns + " FROM products ORDER BY id"
	qProductByCategory = "SELECT " + productColumns + " FROM products WHERE category_id = ? ORDER BY id"
)

// ProductRepo encapsulates queries on the `products` table.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := new(model.Product)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.CreationTime, &p.UpdateTime); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a product.  The price is stored rounded to cents.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.Price = p.Price.Round(2)
	res, err := r.db.ExecContext(ctx, qProductInsert, p.Name, p.Description, p.Price, p.CategoryID, now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreationTime, p.UpdateTime = now, now
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, qProductByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns every product ordered by id.
func (r *ProductRepo) List(ctx context.Context) ([]*model.Product, error) {
	return r.query(ctx, qProductList)
}

// ListByCategory returns the products of one category.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Product, error) {
	return r.query(ctx, qProductByCategory, categoryID)
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...any) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
