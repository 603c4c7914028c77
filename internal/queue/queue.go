// Package queue owns the RabbitMQ topology: the durable sessions work
// queue and the session_updates topic exchange that broadcasts status
// changes with routing key "session.<id>".
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/imran601021/Resume/internal/domain"
)

const contentTypeJSON = "application/json"

// Dial connects to the broker.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return conn, nil
}

// Client publishes and consumes on a shared connection. Publishing opens a
// short-lived channel per call; consuming gets a dedicated channel.
type Client struct {
	conn     *amqp.Connection
	queue    string
	exchange string
}

func NewClient(conn *amqp.Connection, queue, exchange string) *Client {
	return &Client{conn: conn, queue: queue, exchange: exchange}
}

// DeclareTopology creates the durable queue and the topic exchange.
// Declarations are idempotent, every process calls this at startup.
func (c *Client) DeclareTopology() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		c.queue,
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := ch.ExchangeDeclare(
		c.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}
	return nil
}

// PublishSession hands a session to the worker pool.
func (c *Client) PublishSession(session domain.Session) error {
	body, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		"",      // default exchange
		c.queue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// PublishUpdate broadcasts a status change to subscribers of the session's
// routing key.
func (c *Client) PublishUpdate(update domain.StatusUpdate) error {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	routingKey := fmt.Sprintf("session.%s", update.SessionID)
	return ch.Publish(
		c.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Timestamp:   update.Timestamp,
			Body:        body,
		},
	)
}

// Consume opens a dedicated channel and starts delivering session messages.
// The returned delivery channel closes when the connection drops.
func (c *Client) Consume() (<-chan amqp.Delivery, *amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	deliveries, err := ch.Consume(
		c.queue,
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("consume queue %s: %w", c.queue, err)
	}
	return deliveries, ch, nil
}
