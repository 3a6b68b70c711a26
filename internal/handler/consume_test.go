package handler_test

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/handler"
	"github.com/campuslib/library-service/pkg/kafka"
)

type stubSession struct {
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (s *stubSession) Claims() map[string][]int32               { return nil }
func (s *stubSession) MemberID() string                         { return "test-member" }
func (s *stubSession) GenerationID() int32                      { return 1 }
func (s *stubSession) MarkOffset(string, int32, int64, string)  {}
func (s *stubSession) Commit()                                  {}
func (s *stubSession) ResetOffset(string, int32, int64, string) {}
func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg)
}
func (s *stubSession) Context() context.Context { return s.ctx }

type stubClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *stubClaim) Topic() string                            { return kafka.AvailabilityTopic }
func (c *stubClaim) Partition() int32                         { return 0 }
func (c *stubClaim) InitialOffset() int64                     { return 0 }
func (c *stubClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *stubClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

// The consume loop reuses one handler across sessions: every rebalance or
// broker hiccup ends the session and starts a new one on the same handler,
// so Setup and Cleanup must survive being called repeatedly.
func TestConsumer_SetupRepeatedSessions(t *testing.T) {
	t.Parallel()
	consumer := handler.NewConsumer(func(context.Context, kafka.EventBookAvailable) error {
		return nil
	}, zap.NewExample().Named("test"))

	for i := 0; i < 3; i++ {
		require.NotPanics(t, func() {
			require.NoError(t, consumer.Setup(&stubSession{ctx: context.Background()}))
			require.NoError(t, consumer.Cleanup(&stubSession{ctx: context.Background()}))
		})
	}
}

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()

	var got []kafka.EventBookAvailable
	consumer := handler.NewConsumer(func(_ context.Context, event kafka.EventBookAvailable) error {
		got = append(got, event)
		return nil
	}, zap.NewExample().Named("test"))

	messages := make(chan *sarama.ConsumerMessage, 2)
	messages <- &sarama.ConsumerMessage{
		Topic: kafka.AvailabilityTopic,
		Value: []byte(`{"bookID":7,"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","availableCopies":1}`),
	}
	messages <- &sarama.ConsumerMessage{
		Topic: kafka.AvailabilityTopic,
		Value: []byte(`not json`),
	}
	close(messages)

	session := &stubSession{ctx: context.Background()}
	require.NoError(t, consumer.ConsumeClaim(session, &stubClaim{messages: messages}))

	require.Equal(t, []kafka.EventBookAvailable{
		{BookID: 7, BookUid: "f7cdc58f-2caf-4b15-9727-f89dcc629b27", AvailableCopies: 1},
	}, got)
	// the valid message and the malformed one are both marked; neither may
	// wedge the partition
	require.Len(t, session.marked, 2)
}
