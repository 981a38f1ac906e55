package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// DefaultRoutingKey ключ маршрутизации событий очереди ожидания
const DefaultRoutingKey = "waitlist.notified"

// AMQPNotifier публикует события очереди ожидания в topic exchange RabbitMQ
type AMQPNotifier struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// NewAMQPNotifier подключается к брокеру и объявляет exchange
func NewAMQPNotifier(url, exchange, routingKey string) (*AMQPNotifier, error) {
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

// Notify публикует событие о том, что клиенту предложен слот
func (n *AMQPNotifier) Notify(ctx context.Context, entry *domain.WaitlistEntry) error {
	body, err := json.Marshal(NewWaitlistNotifiedEvent(entry))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = n.ch.PublishWithContext(ctx, n.exchange, n.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.ID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
