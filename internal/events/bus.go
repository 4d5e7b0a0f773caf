// Package events broadcasts cache invalidations between API instances over
// an AMQP fanout exchange.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

// Applier drops local cache entries for an owner.
type Applier interface {
	InvalidateLocal(ctx context.Context, entity, ownerID string) int
}

type Bus struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	origin   string
	clockNow func() time.Time

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

func NewBus(url, exchange string) (*Bus, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	b := &Bus{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		origin:   uuid.NewString(),
		clockNow: time.Now,
	}

	if err := b.setup(); err != nil {
		b.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return b, nil
}

// setup declares the fanout exchange and a private queue for this instance.
func (b *Bus) setup() error {
	err := b.channel.ExchangeDeclare(
		b.exchange, // name
		"fanout",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := b.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	b.queue = q.Name

	if err := b.channel.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Notify publishes an invalidation. It satisfies cache.Notifier.
func (b *Bus) Notify(ctx context.Context, entity, ownerID string) error {
	msg := Invalidation{Entity: entity, OwnerID: ownerID, Origin: b.origin, At: b.clockNow()}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.channel.PublishWithContext(
		ctx,
		b.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   msg.At,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}

	logger.FromContext(ctx).Debug("published cache invalidation",
		"entity", entity, "owner", ownerID, "exchange", b.exchange)
	return nil
}

// Consume applies invalidations from other instances until ctx is done.
func (b *Bus) Consume(ctx context.Context, applier Applier) error {
	log := logger.FromContext(ctx)

	msgs, err := b.channel.Consume(
		b.queue, // queue
		"",      // consumer
		false,   // auto-ack
		true,    // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log.Info("consuming cache invalidations", "queue", b.queue)

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping invalidation consumer", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("invalidation channel closed")
			}
			if err := b.handle(ctx, delivery.Body, applier); err != nil {
				log.Error("dropping invalidation", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (b *Bus) handle(ctx context.Context, body []byte, applier Applier) error {
	msg, err := InvalidationFromJSON(body)
	if err != nil {
		return fmt.Errorf("decode invalidation: %w", err)
	}
	if msg.Origin == b.origin {
		return nil
	}
	n := applier.InvalidateLocal(ctx, msg.Entity, msg.OwnerID)
	logger.FromContext(ctx).Debug("applied remote invalidation",
		"entity", msg.Entity, "owner", msg.OwnerID, "origin", msg.Origin, "removed", n)
	return nil
}

func (b *Bus) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
