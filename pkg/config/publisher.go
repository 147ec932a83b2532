package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher wraps one channel on the shared RabbitMQ connection.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Envelope is the wire format of every published message.
type Envelope struct {
	MessageID   string      `json:"message_id"`
	PublishedAt time.Time   `json:"published_at"`
	Payload     interface{} `json:"payload"`
}

func NewPublisher() (*Publisher, error) {
	if RabbitMQ == nil {
		return nil, fmt.Errorf("RabbitMQ connection not initialized")
	}
	ch, err := RabbitMQ.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &Publisher{conn: RabbitMQ, channel: ch}, nil
}

// Publish sends a persistent JSON message to the queue, declaring it if
// needed.
func (p *Publisher) Publish(queueName string, payload interface{}) error {
	if _, err := p.channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(Envelope{
		MessageID:   uuid.NewString(),
		PublishedAt: time.Now().UTC(),
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.channel.Publish("", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
