package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailshop/internal/models"
)

func completedOrder() *models.OrderWithItems {
	return &models.OrderWithItems{
		Order: models.Order{
			OrderID:       42,
			UserID:        7,
			TotalAmount:   decimal.NewFromInt(500),
			PaymentMethod: models.PaymentMpesa,
			Status:        models.OrderStatusComplete,
		},
		Items: []models.OrderItem{{OrderID: 42, ProductID: 11, ProductName: "Kettle", Quantity: 5, Price: decimal.NewFromInt(100)}},
	}
}

func TestPublishOrderCompleted(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "retailshop.orders")
	defer publisher.Close()

	err := publisher.PublishOrderCompleted(context.Background(), NewOrderCompleted(completedOrder(), "RTS42-7", "NLJ7RT61SV"))
	require.NoError(t, err)
}

func TestPublishOrderCompletedPayload(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event OrderCompleted
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.Type != TypeOrderCompleted || event.Reference != "RTS42-7" || len(event.Items) != 1 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "retailshop.orders")
	defer publisher.Close()

	require.NoError(t, publisher.PublishOrderCompleted(context.Background(), NewOrderCompleted(completedOrder(), "RTS42-7", "")))
}

func TestPublishOrderCompletedBrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "retailshop.orders")
	defer publisher.Close()

	err := publisher.PublishOrderCompleted(context.Background(), NewOrderCompleted(completedOrder(), "", ""))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishOrderCompleted(context.Background(), OrderCompleted{}))
	assert.NoError(t, p.Close())
}
