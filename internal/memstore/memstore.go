// Package memstore provides in-memory implementations of the service store
// interfaces.  They follow the repository contract (ErrNotFound on misses,
// ErrDuplicate on UNIQUE violations, compare-and-swap token rotation) and
// back the service and handler tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/repository"
	"github.com/chenterphai/storefront-api/internal/utils"
)

// Users is an in-memory user table with UNIQUE username and email.
type Users struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]model.User
}

func NewUsers() *Users { return &Users{rows: map[uint64]model.User{}} }

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Username == u.Username || r.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.seq++
	now := time.Now().UTC()
	u.ID, u.CreationTime, u.UpdateTime = s.seq, now, now
	s.rows[u.ID] = *u
	return nil
}

func (s *Users) find(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if match(r) {
			u := r
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *Users) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username })
}

func (s *Users) List(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.rows))
	for _, r := range s.rows {
		u := r
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Users) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rows {
		if id != u.ID && (r.Username == u.Username || r.Email == u.Email) {
			return repository.ErrDuplicate
		}
	}
	u.UpdateTime = time.Now().UTC()
	s.rows[u.ID] = *u
	return nil
}

func (s *Users) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// SetRole changes a stored role directly, as an operator would in the
// database.
func (s *Users) SetRole(id uint64, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.rows[id]
	u.Role = role
	s.rows[id] = u
}

// Tokens keeps one refresh token record per user, keyed by token digest.
type Tokens struct {
	mu     sync.Mutex
	seq    uint64
	byUser map[uint64]*model.Token
}

func NewTokens() *Tokens { return &Tokens{byUser: map[uint64]*model.Token{}} }

func (s *Tokens) Create(_ context.Context, token string, userID uint64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	exp := expiresAt
	if t, ok := s.byUser[userID]; ok {
		t.TokenHash, t.ExpiresAt, t.IsRevoked, t.UpdateTime = utils.HashToken(token), &exp, false, now
		return nil
	}
	s.seq++
	s.byUser[userID] = &model.Token{
		ID: s.seq, UserID: userID, TokenHash: utils.HashToken(token),
		ExpiresAt: &exp, CreationTime: now, UpdateTime: now,
	}
	return nil
}

func (s *Tokens) lookup(token string) *model.Token {
	h := utils.HashToken(token)
	for _, t := range s.byUser {
		if t.TokenHash == h {
			return t
		}
	}
	return nil
}

func (s *Tokens) FindByValue(_ context.Context, token string) (*model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.lookup(token)
	if t == nil || t.IsRevoked || (t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)) {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Tokens) UpdateByValue(_ context.Context, oldToken, newToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.lookup(oldToken)
	if t == nil || t.IsRevoked {
		return repository.ErrNotFound
	}
	exp := expiresAt
	t.TokenHash, t.ExpiresAt, t.UpdateTime = utils.HashToken(newToken), &exp, time.Now().UTC()
	return nil
}

func (s *Tokens) DeleteByValue(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.lookup(token); t != nil {
		delete(s.byUser, t.UserID)
	}
	return nil
}

// Len reports the number of stored records.
func (s *Tokens) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}

// Categories is an in-memory category table with UNIQUE name.
type Categories struct {
	mu   sync.Mutex
	seq  uint64
	rows []model.Category
}

func NewCategories() *Categories { return &Categories{} }

func (s *Categories) Create(_ context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	s.seq++
	now := time.Now().UTC()
	c.ID, c.CreationTime, c.UpdateTime = s.seq, now, now
	s.rows = append(s.rows, *c)
	return nil
}

func (s *Categories) get(match func(model.Category) bool) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if match(r) {
			c := r
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Categories) GetByID(_ context.Context, id uint64) (*model.Category, error) {
	return s.get(func(c model.Category) bool { return c.ID == id })
}

func (s *Categories) GetByName(_ context.Context, name string) (*model.Category, error) {
	return s.get(func(c model.Category) bool { return c.Name == name })
}

func (s *Categories) List(_ context.Context) ([]*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Category, 0, len(s.rows))
	for _, r := range s.rows {
		c := r
		out = append(out, &c)
	}
	return out, nil
}

// Products is an in-memory product table.
type Products struct {
	mu   sync.Mutex
	seq  uint64
	rows []model.Product
}

func NewProducts() *Products { return &Products{} }

func (s *Products) Create(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := time.Now().UTC()
	p.ID, p.CreationTime, p.UpdateTime = s.seq, now, now
	p.Price = p.Price.Round(2)
	s.rows = append(s.rows, *p)
	return nil
}

func (s *Products) GetByID(_ context.Context, id uint64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			p := r
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Products) List(_ context.Context) ([]*model.Product, error) {
	return s.filter(func(model.Product) bool { return true }), nil
}

func (s *Products) ListByCategory(_ context.Context, categoryID uint64) ([]*model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.CategoryID == categoryID }), nil
}

func (s *Products) filter(keep func(model.Product) bool) []*model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Product{}
	for _, r := range s.rows {
		if keep(r) {
			p := r
			out = append(out, &p)
		}
	}
	return out
}

// Orders stores orders and items; prices come from Products.  Payments
// recorded through the paired Payments store show up on the order.
type Orders struct {
	mu       sync.Mutex
	seq      uint64
	itemSeq  uint64
	rows     []*model.Order
	products *Products
	payments *Payments
}

func NewOrders(products *Products, payments *Payments) *Orders {
	return &Orders{products: products, payments: payments}
}

func (s *Orders) Create(ctx context.Context, userID uint64, shippingAddress string, lines []repository.OrderLine) (*model.Order, error) {
	now := time.Now().UTC()
	o := &model.Order{
		UserID: userID, Status: model.OrderPending, ShippingAddress: shippingAddress,
		OrderDate: now, CreationTime: now, UpdateTime: now, TotalAmount: decimal.Zero,
		Payments: []*model.Payment{},
	}
	for _, l := range lines {
		p, err := s.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", l.ProductID, err)
		}
		pid := p.ID
		o.Items = append(o.Items, &model.OrderItem{
			ProductID: &pid, Quantity: l.Quantity, PriceAtOrder: p.Price,
			CreationTime: now, UpdateTime: now,
		})
		o.TotalAmount = o.TotalAmount.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	o.TotalAmount = o.TotalAmount.Round(2)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	o.ID = s.seq
	for _, it := range o.Items {
		s.itemSeq++
		it.ID, it.OrderID = s.itemSeq, o.ID
	}
	s.rows = append(s.rows, o)
	return s.snapshot(o), nil
}

func (s *Orders) snapshot(o *model.Order) *model.Order {
	cp := *o
	cp.Payments, _ = s.payments.ListByOrder(context.Background(), o.ID)
	return &cp
}

func (s *Orders) GetByID(_ context.Context, id uint64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.rows {
		if o.ID == id {
			return s.snapshot(o), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Orders) ListByUser(_ context.Context, userID uint64) ([]*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Order{}
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].UserID == userID {
			out = append(out, s.snapshot(s.rows[i]))
		}
	}
	return out, nil
}

func (s *Orders) UpdateStatus(_ context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.rows {
		if o.ID == id {
			o.Status, o.UpdateTime = status, time.Now().UTC()
			return s.snapshot(o), nil
		}
	}
	return nil, repository.ErrNotFound
}

// Payments stores payments with UNIQUE transaction ids.
type Payments struct {
	mu   sync.Mutex
	seq  uint64
	rows []model.Payment
}

func NewPayments() *Payments { return &Payments{} }

func (s *Payments) Create(_ context.Context, p *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.TransactionID != nil {
		for _, r := range s.rows {
			if r.TransactionID != nil && *r.TransactionID == *p.TransactionID {
				return repository.ErrDuplicate
			}
		}
	}
	s.seq++
	now := time.Now().UTC()
	p.ID, p.PaymentDate, p.CreationTime, p.UpdateTime = s.seq, now, now, now
	p.Amount = p.Amount.Round(2)
	s.rows = append(s.rows, *p)
	return nil
}

func (s *Payments) ListByOrder(_ context.Context, orderID uint64) ([]*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Payment{}
	for _, r := range s.rows {
		if r.OrderID == orderID {
			p := r
			out = append(out, &p)
		}
	}
	return out, nil
}
