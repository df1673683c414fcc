package notify

import (
	"context"       // Publish deadline
	"encoding/json" // Message encoding
	"fmt"           // Error wrapping
	"sync"          // Channel guard

	amqp "github.com/rabbitmq/amqp091-go" // RabbitMQ client
)

// Publisher is the part of *amqp.Channel the notifier uses
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes reset notifications to a durable RabbitMQ queue
type AMQPNotifier struct {
	mu    sync.Mutex       // Channels are not safe for concurrent publishing
	conn  *amqp.Connection // Nil when built around a bare Publisher
	ch    Publisher        // Publishing channel
	queue string           // Target queue
}

// DialAMQP connects to RabbitMQ and declares the reset queue
func DialAMQP(url, queue string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open RabbitMQ channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, queue: queue}, nil
}

// NewAMQPNotifier wraps an existing publisher
func NewAMQPNotifier(ch Publisher, queue string) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, queue: queue}
}

// SendPasswordReset publishes msg as a persistent JSON message
func (n *AMQPNotifier) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key is the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // Survive broker restarts
			Body:         body,
		},
	)
}

// Close releases the broker connection
func (n *AMQPNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
