package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// PaymentStatus is the state of a single payment attempt.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded, PaymentCancelled:
		return true
	}
	return false
}

// PaymentMethod names the gateway or instrument used.
type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodPayPal       PaymentMethod = "paypal"
	MethodStripe       PaymentMethod = "stripe"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodKHQR         PaymentMethod = "khqr"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodPayPal, MethodStripe, MethodBankTransfer, MethodKHQR:
		return true
	}
	return false
}

// Order records a purchase by a user.  It aggregates one or more items and
// any number of payments.  Deleting a user cascades to their orders.
// TotalAmount is the sum of price_at_order times quantity over all items.
type Order struct {
	ID              uint64          `json:"id"`              // orders.id
	UserID          uint64          `json:"userId"`          // orders.user_id
	TotalAmount     decimal.Decimal `json:"totalAmount"`     // orders.total_amount DECIMAL(10,2)
	Status          OrderStatus     `json:"status"`          // orders.status
	ShippingAddress string          `json:"shippingAddress"` // orders.shipping_address
	OrderDate       time.Time       `json:"orderDate"`       // orders.order_date
	CreationTime    time.Time       `json:"creationtime"`    // orders.creationtime
	UpdateTime      time.Time       `json:"updatetime"`      // orders.updatetime
	Items           []*OrderItem    `json:"items"`
	Payments        []*Payment      `json:"payments"`
}

// OrderItem is one product line of an order.  PriceAtOrder is copied from
// the product when the order is placed so later price changes do not
// rewrite history.  ProductID becomes nil if the product is deleted.
type OrderItem struct {
	ID           uint64          `json:"id"`           // order_items.id
	OrderID      uint64          `json:"orderId"`      // order_items.order_id
	ProductID    *uint64         `json:"productId"`    // order_items.product_id (nullable)
	Quantity     int             `json:"quantity"`     // order_items.quantity
	PriceAtOrder decimal.Decimal `json:"priceAtOrder"` // order_items.price_at_order DECIMAL(10,2)
	CreationTime time.Time       `json:"creationtime"` // order_items.creationtime
	UpdateTime   time.Time       `json:"updatetime"`   // order_items.updatetime
}

// Payment is a payment attempt against an order.  Only gateway references
// are stored, never instrument details.
type Payment struct {
	ID            uint64          `json:"id"`            // payments.id
	OrderID       uint64          `json:"orderId"`       // payments.order_id
	Amount        decimal.Decimal `json:"amount"`        // payments.amount DECIMAL(10,2)
	Method        PaymentMethod   `json:"method"`        // payments.method
	TransactionID *string         `json:"transactionId"` // payments.transaction_id (unique, nullable)
	Status        PaymentStatus   `json:"status"`        // payments.status
	PaymentDate   time.Time       `json:"paymentDate"`   // payments.payment_date
	CreationTime  time.Time       `json:"creationtime"`  // payments.creationtime
	UpdateTime    time.Time       `json:"updatetime"`    // payments.updatetime
}
