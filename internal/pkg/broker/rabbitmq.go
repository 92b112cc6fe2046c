// Package broker publishes messages to RabbitMQ with publisher confirms.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrdersExchange is the topic exchange order events are published to.
const OrdersExchange = "orders_topic"

// confirmation is the broker's answer to one publishing.
// *amqp.DeferredConfirmation satisfies it.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	publish publishFunc
}

// Dial connects to url (amqp:// or amqps://) and puts the channel into
// confirm mode.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("broker: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("broker: open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("broker: enable confirms: %w", err)
	}

	return &Client{conn: conn, ch: ch, publish: deferredPublish(ch)}, nil
}

// deferredPublish tags every publishing so its confirm is matched by
// delivery tag rather than by arrival order.
func deferredPublish(ch *amqp.Channel) publishFunc {
	return func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key,
			false, // mandatory
			false, // immediate
			msg,
		)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, errors.New("channel is not in confirm mode")
		}
		return dc, nil
	}
}

// DeclareTopology declares the orders exchange and the kitchen queue bound
// to every kitchen.* routing key.
func (c *Client) DeclareTopology() error {
	if err := c.ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("broker: declare exchange: %w", err)
	}
	if _, err := c.ch.QueueDeclare("kitchen.q", true, false, false, false, nil); err != nil {
		return fmt.Errorf("broker: declare queue: %w", err)
	}
	if err := c.ch.QueueBind("kitchen.q", "kitchen.#", OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("broker: bind queue: %w", err)
	}
	return nil
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("broker: connection is closed")
	}
	return nil
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Publish sends a persistent JSON message and waits for the broker to
// confirm that message.
func (c *Client) Publish(ctx context.Context, exchange, key string, body []byte, headers map[string]any) error {
	conf, err := c.publish(ctx, exchange, key, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table(headers),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("broker: publish %s/%s: %w", exchange, key, err)
	}

	ack, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("broker: publish %s/%s: awaiting confirm: %w", exchange, key, err)
	}
	if !ack {
		return fmt.Errorf("broker: publish %s/%s: NACK from broker", exchange, key)
	}
	return nil
}

// LogPublisher stands in for the broker when none is configured: messages
// are logged and dropped.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, exchange, key string, body []byte, _ map[string]any) error {
	slog.InfoContext(ctx, "broker disabled, message not published",
		"exchange", exchange,
		"routing_key", key,
		"bytes", len(body),
	)
	return nil
}
