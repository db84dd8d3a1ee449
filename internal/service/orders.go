package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chenterphai/storefront-api/internal/metrics"
	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/queue"
	"github.com/chenterphai/storefront-api/internal/repository"
)

const publishTimeout = 5 * time.Second

// PlaceOrderInput is a new order as submitted by a customer.
type PlaceOrderInput struct {
	ShippingAddress string
	Items           []repository.OrderLine
}

// RecordPaymentInput is a payment attempt reported against an order.
// Status defaults to pending.
type RecordPaymentInput struct {
	OrderID       uint64
	Amount        string
	Method        model.PaymentMethod
	TransactionID *string
	Status        model.PaymentStatus
}

// OrderService places orders and records payments.  Ownership checks use
// the caller's persisted role, so a demoted admin loses access at once.
type OrderService struct {
	users     UserStore
	orders    OrderStore
	payments  PaymentStore
	publisher EventPublisher
}

// NewOrderService wires the order flows.  publisher may be nil, in which
// case no events are emitted.
func NewOrderService(users UserStore, orders OrderStore, payments PaymentStore, publisher EventPublisher) *OrderService {
	return &OrderService{users: users, orders: orders, payments: payments, publisher: publisher}
}

// PlaceOrder validates the lines and stores the order in one transaction.
// The order.placed event is sent after commit and its failure is only
// logged.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint64, in PlaceOrderInput) (*model.Order, error) {
	addr := strings.TrimSpace(in.ShippingAddress)
	if addr == "" {
		return nil, InvalidInput("shippingAddress", "Shipping address is required.")
	}
	if len(in.Items) == 0 {
		return nil, InvalidInput("items", "An order needs at least one item.")
	}
	for _, l := range in.Items {
		if l.ProductID == 0 {
			return nil, InvalidInput("productId", "Product id is required.")
		}
		if l.Quantity < 1 {
			return nil, InvalidInput("quantity", "Quantity must be at least 1.")
		}
	}

	o, err := s.orders.Create(ctx, userID, addr, in.Items)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Product not found")
		}
		return nil, Internal("Error while placing order.", err)
	}
	metrics.OrdersPlacedTotal.Inc()
	log.Info().Uint64("order_id", o.ID).Uint64("user_id", userID).Str("total", o.TotalAmount.StringFixed(2)).Msg("order placed")

	if s.publisher != nil {
		ev := orderPlacedEvent(o)
		go func() {
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
			defer cancel()
			if err := s.publisher.PublishOrderPlaced(pctx, ev); err != nil {
				log.Warn().Err(err).Uint64("order_id", ev.OrderID).Msg("order.placed event not published")
			}
		}()
	}
	return o, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uint64) ([]*model.Order, error) {
	list, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, Internal("Error while fetching orders.", err)
	}
	return list, nil
}

// GetOrder returns order id when the caller owns it or is an admin.  Other
// callers get NotFound so order ids are not disclosed.
func (s *OrderService) GetOrder(ctx context.Context, userID, id uint64) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Order not found")
		}
		return nil, Internal("Error while fetching order.", err)
	}
	if o.UserID == userID {
		return o, nil
	}
	admin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, NotFound("Order not found")
	}
	return o, nil
}

// RecordPayment stores a payment against an order visible to the caller.
func (s *OrderService) RecordPayment(ctx context.Context, userID uint64, in RecordPaymentInput) (*model.Payment, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, InvalidInput("amount", "Amount must be a positive decimal.")
	}
	if !in.Method.Valid() {
		return nil, InvalidInput("method", "Method is invalid!")
	}
	if in.Status == "" {
		in.Status = model.PaymentPending
	}
	if !in.Status.Valid() {
		return nil, InvalidInput("status", "Status is invalid!")
	}
	if in.TransactionID != nil && strings.TrimSpace(*in.TransactionID) == "" {
		in.TransactionID = nil
	}
	if _, err := s.GetOrder(ctx, userID, in.OrderID); err != nil {
		return nil, err
	}

	p := &model.Payment{
		OrderID:       in.OrderID,
		Amount:        amount,
		Method:        in.Method,
		TransactionID: in.TransactionID,
		Status:        in.Status,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("transactionId", "Transaction id already recorded.")
		}
		return nil, Internal("Error while recording payment.", err)
	}
	log.Info().Uint64("payment_id", p.ID).Uint64("order_id", p.OrderID).Str("status", string(p.Status)).Msg("payment recorded")
	return p, nil
}

// UpdateOrderStatus moves an order to status.  Callers restrict it to
// admins.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, InvalidInput("status", "Status is invalid!")
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Order not found")
		}
		return nil, Internal("Error while updating order.", err)
	}
	log.Info().Uint64("order_id", id).Str("status", string(status)).Msg("order status updated")
	return o, nil
}

func (s *OrderService) isAdmin(ctx context.Context, userID uint64) (bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, Internal("Error while checking role.", err)
	}
	return u.Role == model.RoleAdmin, nil
}

func orderPlacedEvent(o *model.Order) queue.OrderPlacedEvent {
	ev := queue.OrderPlacedEvent{
		OrderID:         o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PlacedAt:        o.OrderDate.In(time.UTC).Format(time.RFC3339),
	}
	for _, it := range o.Items {
		var pid uint64
		if it.ProductID != nil {
			pid = *it.ProductID
		}
		ev.Items = append(ev.Items, queue.OrderEventItem{
			ProductID:    pid,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder.StringFixed(2),
		})
	}
	return ev
}
