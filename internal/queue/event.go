// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedQueue is the durable queue order events are routed to.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is published after an order and its items are committed.
// It carries enough information for downstream consumers to log, notify or
// trigger fulfilment without querying the primary database.  Amounts are
// decimal strings.
type OrderPlacedEvent struct {
	OrderID         uint64           `json:"order_id"`
	UserID          uint64           `json:"user_id"`
	TotalAmount     string           `json:"total_amount"`
	Status          string           `json:"status"`
	ShippingAddress string           `json:"shipping_address"`
	Items           []OrderEventItem `json:"items"`
	PlacedAt        string           `json:"placed_at"`
}

// OrderEventItem is one line of an OrderPlacedEvent.
type OrderEventItem struct {
	ProductID    uint64 `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}
