package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chenterphai/storefront-api/internal/model"
)

const (
	qCategoryInsert = "INSERT INTO categories (name, creationtime, updatetime) VALUES (?,?,?)"
	qCategoryByID   = "SELECT id, name, creationtime, updatetime FROM categories WHERE id = ?"
	qCategoryByName = "SELECT id, name, creationtime, updatetime FROM categories WHERE name = ?"
	qCategoryList   = "SELECT id, name, creationtime, updatetime FROM categories ORDER BY id"
)

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCategoryRepo constructs a CategoryRepo with the provided DB handle.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a new category.  On success the category's ID and
// timestamps are populated.  A duplicate name returns ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, qCategoryInsert, c.Name, now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreationTime, c.UpdateTime = now, now
	return nil
}

func (r *CategoryRepo) getOne(ctx context.Context, q string, arg any) (*model.Category, error) {
	var c model.Category
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&c.ID, &c.Name, &c.CreationTime, &c.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByID fetches a category by its ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	return r.getOne(ctx, qCategoryByID, id)
}

// GetByName fetches a category by its unique name.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	return r.getOne(ctx, qCategoryByName, name)
}

// List returns all categories ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx, qCategoryList)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.CreationTime, &c.UpdateTime); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
