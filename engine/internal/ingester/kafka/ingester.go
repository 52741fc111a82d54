package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.uber.org/zap"
)

// Ingester consumes like events from a Kafka topic.
type Ingester struct {
	consumer *kafka.Consumer
	topic    string
	logger   *zap.Logger
}

// NewIngester creates a new Kafka ingester for like events.
func NewIngester(addr, groupID, topic string, logger *zap.Logger) (*Ingester, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": addr,
		"group.id":          groupID,
	})
	if err != nil {
		return nil, err
	}
	return &Ingester{consumer: consumer, topic: topic, logger: logger}, nil
}

// Ingest subscribes to the topic and streams decoded like events until the
// context is cancelled. Malformed payloads are logged and skipped.
func (i *Ingester) Ingest(ctx context.Context) (chan model.LikeEvent, error) {
	if err := i.consumer.SubscribeTopics([]string{i.topic}, nil); err != nil {
		return nil, err
	}
	ch := make(chan model.LikeEvent, 1)
	go func() {
		defer close(ch)
		defer i.consumer.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			msg, err := i.consumer.ReadMessage(time.Second)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				i.logger.Error("Failed to read message", zap.Error(err))
				continue
			}
			var event model.LikeEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				i.logger.Warn("Failed to unmarshal like event", zap.Error(err))
				continue
			}
			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
