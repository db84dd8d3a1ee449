package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chenterphai/storefront-api/internal/model"
)

const orderColumns = "id, user_id, total_amount, status, shipping_address, order_date, creationtime, updatetime"

const (
	qOrderProductPrice = "SELECT price FROM products WHERE id = ?"
	qOrderInsert       = "INSERT INTO orders (user_id, total_amount, status, shipping_address, order_date, creationtime, updatetime) VALUES (?,?,?,?,?,?,?)"
	qOrderItemInsert   = "INSERT INTO order_items (order_id, product_id, quantity, price_at_order, creationtime, updatetime) VALUES (?,?,?,?,?,?)"
	qOrderByID         = "SELECT " + orderColumns + " FROM orders WHERE id = ?"
	qOrderByUser       = "SELECT " + orderColumns + " FROM orders WHERE user_id = ? ORDER BY id DESC"
	qOrderItems        = "SELECT id, order_id, product_id, quantity, price_at_order, creationtime, updatetime FROM order_items WHERE order_id = ? ORDER BY id"
	qOrderSetStatus    = "UPDATE orders SET status = ?, updatetime = ? WHERE id = ?"
)

// OrderLine is one requested product and quantity of a new order.
type OrderLine struct {
	ProductID uint64
	Quantity  int
}

// OrderRepo provides persistence for orders and their items.  Payments are
// loaded through the PaymentRepo sharing the same database.
type OrderRepo struct {
	db       *sql.DB
	payments *PaymentRepo
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db, payments: NewPaymentRepo(db)} }

// Create places an order for userID inside one transaction.  Each item's
// price_at_order is read from the product row at this moment and the total
// is the sum of price × quantity.  An unknown product aborts the whole
// order with ErrNotFound.
func (r *OrderRepo) Create(ctx context.Context, userID uint64, shippingAddress string, lines []OrderLine) (o *model.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	o = &model.Order{
		UserID:          userID,
		Status:          model.OrderPending,
		ShippingAddress: shippingAddress,
		OrderDate:       now,
		CreationTime:    now,
		UpdateTime:      now,
		TotalAmount:     decimal.Zero,
	}
	// Price every line first so the order row carries its final total.
	for _, l := range lines {
		var price decimal.Decimal
		if err = tx.QueryRowContext(ctx, qOrderProductPrice, l.ProductID).Scan(&price); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = fmt.Errorf("product %d: %w", l.ProductID, ErrNotFound)
			}
			return nil, err
		}
		pid := l.ProductID
		o.Items = append(o.Items, &model.OrderItem{
			ProductID:    &pid,
			Quantity:     l.Quantity,
			PriceAtOrder: price,
			CreationTime: now,
			UpdateTime:   now,
		})
		o.TotalAmount = o.TotalAmount.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	o.TotalAmount = o.TotalAmount.Round(2)

	res, err := tx.ExecContext(ctx, qOrderInsert, userID, o.TotalAmount, string(o.Status), shippingAddress, now, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	o.ID = uint64(id)

	for _, it := range o.Items {
		it.OrderID = o.ID
		res, err = tx.ExecContext(ctx, qOrderItemInsert, o.ID, *it.ProductID, it.Quantity, it.PriceAtOrder, now, now)
		if err != nil {
			return nil, err
		}
		itemID, idErr := res.LastInsertId()
		if idErr != nil {
			err = idErr
			return nil, err
		}
		it.ID = uint64(itemID)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	o.Payments = []*model.Payment{}
	return o, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	o := new(model.Order)
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress,
		&o.OrderDate, &o.CreationTime, &o.UpdateTime); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID fetches an order with its items and payments.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, qOrderByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser returns a user's orders, newest first, with items and payments.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx, qOrderByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The cursor is drained (and its connection released) before the
	// per-order child queries run.
	for _, o := range out {
		if err := r.loadChildren(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus changes an order's status.  Returns ErrNotFound when the
// order does not exist.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, qOrderSetStatus, string(status), now, id); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdateTime = now
	return o, nil
}

func (r *OrderRepo) loadChildren(ctx context.Context, o *model.Order) error {
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return err
	}
	payments, err := r.payments.ListByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	o.Items = items
	o.Payments = payments
	return nil
}

func (r *OrderRepo) items(ctx context.Context, orderID uint64) ([]*model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, qOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.OrderItem{}
	for rows.Next() {
		var (
			it  model.OrderItem
			pid sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &pid, &it.Quantity, &it.PriceAtOrder, &it.CreationTime, &it.UpdateTime); err != nil {
			return nil, err
		}
		if pid.Valid {
			v := uint64(pid.Int64)
			it.ProductID = &v
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
