package events

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/quickcart/order-svc/internal/dal/rabbitmq"
	"github.com/quickcart/order-svc/internal/service/models/event"
)

// IEventPublisher emits domain events to named topics with at-least-once
// semantics. The key is the order id string: every event for one order lands
// on the same queue and is observed in emission order by a single consumer.
type IEventPublisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// RabbitPublisher publishes events to durable RabbitMQ queues, one per topic.
type RabbitPublisher struct {
	client *rabbitmq.Client
}

// MustNewRabbitPublisher creates a publisher and declares the topic queues.
func MustNewRabbitPublisher(client *rabbitmq.Client) *RabbitPublisher {
	topics := []string{
		event.TopicOrderCreated,
		event.TopicOrderStatusChanged,
		event.TopicOrderCancelled,
	}

	for _, topic := range topics {
		_, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:    topic,
			Durable: true,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to declare queue %s: %v", topic, err))
		}
	}

	return &RabbitPublisher{client: client}
}

// Publish sends one event to the topic queue. Failures surface to the caller;
// call sites decide whether to swallow them.
func (p *RabbitPublisher) Publish(_ context.Context, topic string, key string, payload []byte) error {
	err := p.client.Channel().Publish(
		"",    // default exchange routes by queue name
		topic, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    key,
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}
