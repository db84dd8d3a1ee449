package service

import (
	"context"
	"time"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/queue"
	"github.com/chenterphai/storefront-api/internal/repository"
)

// The interfaces below are satisfied by the repository package and by the
// in-memory stores used in tests.  Implementations report absence with
// repository.ErrNotFound and UNIQUE violations with repository.ErrDuplicate.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

type TokenStore interface {
	Create(ctx context.Context, token string, userID uint64, expiresAt time.Time) error
	FindByValue(ctx context.Context, token string) (*model.Token, error)
	UpdateByValue(ctx context.Context, oldToken, newToken string, expiresAt time.Time) error
	DeleteByValue(ctx context.Context, token string) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uint64) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, userID uint64, shippingAddress string, lines []repository.OrderLine) (*model.Order, error)
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
}

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}
