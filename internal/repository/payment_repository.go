package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/chenterphai/storefront-api/internal/model"
)

const (
	qPaymentInsert  = "INSERT INTO payments (order_id, amount, method, transaction_id, status, payment_date, creationtime, updatetime) VALUES (?,?,?,?,?,?,?,?)"
	qPaymentByOrder = "SELECT id, order_id, amount, method, transaction_id, status, payment_date, creationtime, updatetime FROM payments WHERE order_id = ? ORDER BY id"
)

// PaymentRepo stores payment attempts against orders.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts p.  A reused gateway transaction id returns ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	now := time.Now().UTC()
	var txID sql.NullString
	if p.TransactionID != nil {
		txID = sql.NullString{String: *p.TransactionID, Valid: true}
	}
	p.Amount = p.Amount.Round(2)
	res, err := r.db.ExecContext(ctx, qPaymentInsert,
		p.OrderID, p.Amount, string(p.Method), txID, string(p.Status), now, now, now)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.PaymentDate, p.CreationTime, p.UpdateTime = now, now, now
	return nil
}

// ListByOrder returns the payments recorded for an order, oldest first.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uint64) ([]*model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, qPaymentByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Payment{}
	for rows.Next() {
		var (
			p    model.Payment
			txID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &txID, &p.Status,
			&p.PaymentDate, &p.CreationTime, &p.UpdateTime); err != nil {
			return nil, err
		}
		if txID.Valid {
			s := txID.String
			p.TransactionID = &s
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
