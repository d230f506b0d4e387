package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vncsmyrnk/potw/internal/core/domain"
	"github.com/vncsmyrnk/potw/internal/core/ports"
)

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 2 * time.Second

type KafkaPublisher struct {
	writer *kafka.Writer
}

/*
Messages are keyed by session id and balanced with kafka.Hash, so every
event of one session lands on the same partition in the order it was
written. RequireAll waits for every in-sync replica; payloads are small JSON
documents and compress well with Snappy.
*/
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{writer: w}
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers
// are configured.
func NewPublisher(brokers []string, topic string) ports.EventPublisher {
	if len(brokers) == 0 {
		return Noop{}
	}
	return NewKafkaPublisher(brokers, topic)
}

func message(event domain.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.SessionID, 10)),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}

func (kp *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	msg, err := message(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
