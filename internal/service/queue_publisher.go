package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/chenterphai/storefront-api/internal/queue"
)

// RabbitPublisher publishes domain events to RabbitMQ.  It dials per
// publish, which is fine for the order rate of a storefront and keeps no
// connection state to repair.  Errors are logged and returned so callers
// may ignore them without interrupting the request.
type RabbitPublisher struct {
	URL string
}

func NewRabbitPublisher(url string) *RabbitPublisher { return &RabbitPublisher{URL: url} }

// PublishOrderPlaced sends ev to the durable order.placed queue as a
// persistent JSON message.
func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.OrderPlacedQueue, // name
		true,                   // durable
		false,                  // autoDelete
		false,                  // exclusive
		false,                  // noWait
		nil,                    // args
	); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.OrderPlacedQueue, false, false, pub); err != nil {
		log.Warn().Err(err).Uint64("order_id", ev.OrderID).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
