package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"socialgraph/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher публикует события в topic exchange, routing key = тип события
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitPublisher открывает соединение, канал и объявляет exchange
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	// Создаем exchange типа topic
	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	logger.Info("RabbitMQ publisher initialized", "exchange", exchange)
	return &RabbitPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// buildPublishing - routing key и тело сообщения для события
func buildPublishing(event Event) (string, amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return string(event.Type), amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	routingKey, msg, err := buildPublishing(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// EventHandler обрабатывает одно событие из очереди
type EventHandler func(ctx context.Context, event Event) error

// ConsumeEvents объявляет очередь, привязывает ее к exchange по bindingKey
// ("friend.*" - все события графа) и передает события в handler до отмены ctx.
// Сообщение подтверждается только после успешной обработки.
func (p *RabbitPublisher) ConsumeEvents(ctx context.Context, queueName, bindingKey string, handler EventHandler) error {
	p.mu.Lock()
	channel := p.channel
	p.mu.Unlock()
	if channel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}

	q, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := channel.QueueBind(q.Name, bindingKey, p.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := channel.Consume(
		q.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			event, err := decodeEvent(msg.Body)
			if err != nil {
				logger.Warn("Dropping malformed event", "routing_key", msg.RoutingKey, "error", err)
				_ = msg.Reject(false)
				continue
			}
			if err := handler(ctx, event); err != nil {
				logger.Warn("Event handler failed", "type", event.Type, "error", err)
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

func decodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event has no type")
	}
	return event, nil
}
