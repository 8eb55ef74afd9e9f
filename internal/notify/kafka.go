package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
)

// KafkaSender publishes notifications to a Kafka topic consumed by the
// external notification service.
type KafkaSender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaSender creates a Kafka-backed Sender. Returns nil when brokers
// or the topic are not configured.
func NewKafkaSender(brokers []string, topic string) (*KafkaSender, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create notifications producer: %w", err)
	}
	return &KafkaSender{producer: producer, topic: topic}, nil
}

// Send publishes one notification keyed by order id.
func (s *KafkaSender) Send(_ context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(n.OrderID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (s *KafkaSender) Close() error {
	if s == nil {
		return nil
	}
	return s.producer.Close()
}
