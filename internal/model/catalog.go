package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products.  Corresponds to a row in `categories`.
type Category struct {
	ID           uint64    `json:"id"`           // categories.id
	Name         string    `json:"name"`         // categories.name (unique)
	CreationTime time.Time `json:"creationtime"` // categories.creationtime
	UpdateTime   time.Time `json:"updatetime"`   // categories.updatetime
}

// Product is a sellable item.  A product always belongs to a category;
// categories referenced by products cannot be deleted (RESTRICT).
type Product struct {
	ID           uint64          `json:"id"`           // products.id
	Name         string          `json:"name"`         // products.name
	Description  string          `json:"description"`  // products.description
	Price        decimal.Decimal `json:"price"`        // products.price DECIMAL(10,2)
	CategoryID   uint64          `json:"categoryId"`   // products.category_id
	CreationTime time.Time       `json:"creationtime"` // products.creationtime
	UpdateTime   time.Time       `json:"updatetime"`   // products.updatetime
}
