// Package events publishes circulation events to kafka. The only event
// today is "a copy of this book became available", emitted on every
// availability increment so the reservation side can flag waiting holders.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/pkg/breaker"
	"github.com/campuslib/library-service/pkg/kafka"
)

type Publisher interface {
	PublishBookAvailable(book model.Book) error
}

type publisher struct {
	producer sarama.SyncProducer
	cb       breaker.CircuitBreaker
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, log *zap.Logger) Publisher {
	return &publisher{
		producer: producer,
		cb:       breaker.New(20, 30*time.Second, 0.5, 3),
		log:      log.Named("events"),
	}
}

func (p *publisher) PublishBookAvailable(book model.Book) error {
	event := kafka.EventBookAvailable{
		BookID:          book.ID,
		BookUid:         book.BookUid,
		AvailableCopies: book.AvailableCopies,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: kafka.AvailabilityTopic,
		Key:   sarama.StringEncoder(book.BookUid),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}
