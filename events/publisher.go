package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Topics published after a successful write.
const (
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
)

// Publisher announces record mutations to other services.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Kafka publishes JSON events through a synchronous producer.
type Kafka struct {
	producer sarama.SyncProducer
	prefix   string
}

// NewConfig returns the producer settings Kafka expects: acknowledged,
// fully replicated writes with successes reported back.
func NewConfig(clientID string) *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	return config
}

// Dial connects a producer to brokers.
func Dial(brokers []string, clientID, prefix string) (*Kafka, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig(clientID))
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafka(producer, prefix), nil
}

// NewKafka wraps an existing producer. Topics are prefixed with prefix.
func NewKafka(producer sarama.SyncProducer, prefix string) *Kafka {
	return &Kafka{producer: producer, prefix: prefix}
}

func (k *Kafka) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     k.prefix + topic,
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send %s event: %w", topic, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
