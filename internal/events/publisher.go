package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"

	"retailshop/internal/models"
)

const TypeOrderCompleted = "order.completed"

// OrderCompleted is published once per order, after the transaction that
// moved it to complete has committed.
type OrderCompleted struct {
	Type          string             `json:"type"`
	OrderID       int64              `json:"order_id"`
	UserID        int64              `json:"user_id"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	Reference     string             `json:"reference,omitempty"`
	ReceiptNumber string             `json:"receipt_number,omitempty"`
	Items         []models.OrderItem `json:"items"`
	CompletedAt   time.Time          `json:"completed_at"`
}

func NewOrderCompleted(order *models.OrderWithItems, reference, receipt string) OrderCompleted {
	completedAt := time.Now().UTC()
	if order.CompletedAt != nil {
		completedAt = *order.CompletedAt
	}
	return OrderCompleted{
		Type:          TypeOrderCompleted,
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: string(order.PaymentMethod),
		Reference:     reference,
		ReceiptNumber: receipt,
		Items:         order.Items,
		CompletedAt:   completedAt,
	}
}

type Publisher interface {
	PublishOrderCompleted(ctx context.Context, event OrderCompleted) error
	Close() error
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama producer: %w", err)
	}

	log.Println("Kafka producer connected successfully.")
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishOrderCompleted keys the message by order ID so every event for one
// order lands on the same partition.
func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, event OrderCompleted) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.OrderID, 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send order %d to topic '%s': %w", event.OrderID, p.topic, err)
	}
	log.Printf("order %d event sent to topic '%s', partition %d, offset %d", event.OrderID, p.topic, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Noop drops events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishOrderCompleted(context.Context, OrderCompleted) error { return nil }

func (Noop) Close() error { return nil }
