package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/pkg/kafka"
)

type bookAvailable func(ctx context.Context, event kafka.EventBookAvailable) error

// Consumer feeds availability events into the reservation side so waiting
// holders get flagged when a copy comes back.
type Consumer struct {
	bookAvailableHandler bookAvailable
	log                  *zap.Logger
}

func NewConsumer(bookAvailable bookAvailable, log *zap.Logger) *Consumer {
	return &Consumer{
		bookAvailableHandler: bookAvailable,
		log:                  log.Named("consumer"),
	}
}

// Setup runs at the start of every session, so after each rebalance; it
// must stay re-entrant because the consume loop reuses this handler.
func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event kafka.EventBookAvailable
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("unmarshal event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.bookAvailableHandler(context.Background(), event); err != nil {
				consumer.log.Error("consumer.bookAvailableHandler", zap.Error(err))
				continue
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
